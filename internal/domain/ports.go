package domain

import (
	"context"
	"time"
)

// Store is the persistence boundary. Multi-entity writes go through
// WithinTx so they are all-or-nothing; unique keys at the storage layer
// remain the final authority for registration races.
type Store interface {
	AccountStore
	DocumentStore
	GuestStore
	CatalogStore
	ReservationStore

	// WithinTx runs fn against a transactional view of the store and
	// rolls back when fn returns an error or panics.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type AccountStore interface {
	CreateAccount(ctx context.Context, a *Account) error
	AccountByUsername(ctx context.Context, username string) (Account, error)
	AccountByID(ctx context.Context, id int64) (Account, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

type DocumentStore interface {
	CreateDocument(ctx context.Context, d *Document) error
	DocumentTaken(ctx context.Context, series, number int) (bool, error)
}

type GuestStore interface {
	CreateGuest(ctx context.Context, g *Guest) error
	GuestByID(ctx context.Context, id int64) (Guest, error)
	GuestByAccount(ctx context.Context, accountID int64) (Guest, error)
	GuestPhoneTaken(ctx context.Context, phone string) (bool, error)
	ListGuests(ctx context.Context, q GuestQuery) ([]GuestView, error)
	SetDiscount(ctx context.Context, guestID int64, discount float64) error
}

type CatalogStore interface {
	CreateCategory(ctx context.Context, c *Category) error
	CreateItem(ctx context.Context, i *Item) error
	CreateEquipment(ctx context.Context, e Equipment) error
	CreateRoom(ctx context.Context, r *Room) error
	CreateService(ctx context.Context, s *Service) error
	ServiceByID(ctx context.Context, id int64) (Service, error)
	ListRooms(ctx context.Context, q RoomQuery) (RoomsPage, error)
	ListServices(ctx context.Context, q ServiceQuery) (ServicesPage, error)
}

type ReservationStore interface {
	CreateReservation(ctx context.Context, r *Reservation) error
	ReservationByID(ctx context.Context, id int64) (Reservation, error)
	UpdateReservationStatus(ctx context.Context, id int64, status ReservationStatus) error
	CreateProvision(ctx context.Context, p *ServiceProvision) error
}

// Session is the identity carried by a logged-in request.
type Session struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
}

// SessionStore issues opaque tokens and resolves them back to sessions.
type SessionStore interface {
	Create(ctx context.Context, s Session) (token string, err error)
	Get(ctx context.Context, token string) (Session, bool, error)
	Delete(ctx context.Context, token string) error
}

// Read models & queries

type GuestSort string

const (
	GuestSortDefault      GuestSort = ""
	GuestSortNameAsc      GuestSort = "name_asc"
	GuestSortNameDesc     GuestSort = "name_desc"
	GuestSortDiscountDesc GuestSort = "discount_desc"
	GuestSortBirthDateAsc GuestSort = "birthdate_asc"
)

type GuestQuery struct {
	// Search matches case-insensitively against full name, phone, the
	// linked account's email/username and the document series/number.
	Search string
	Sort   GuestSort
}

type GuestView struct {
	Guest
	Username     string
	Email        string
	DocSeries    int
	DocNumber    int
	HighDiscount bool
}

type RoomQuery struct {
	BedCount   *int
	CategoryID *int64
}

type RoomsPage struct {
	Items []Room
	// BedCounts is the distinct set of bed-count values present,
	// for building the filter UI.
	BedCounts []int
}

type ServiceQuery struct {
	// Search matches against name and description.
	Search string
	// ActiveOnly restricts Items; Total/ActiveCount are reported either way.
	ActiveOnly bool
}

type ServicesPage struct {
	Items       []Service
	Total       int
	ActiveCount int
}

// Dashboard is the minimal role-gated read payload.
type Dashboard struct {
	Role     Role      `json:"role"`
	Username string    `json:"username"`
	Now      time.Time `json:"now"`
}
