package domain

import "time"

type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Phone        *string
	BirthDate    *time.Time
	CreatedAt    time.Time
}

// Document is an identity document owned by exactly one guest.
// The (Series, Number) pair is unique across the system.
type Document struct {
	ID       int64
	Series   int
	Number   int
	IssuedOn time.Time
	IssuedBy string
}

type Guest struct {
	ID         int64
	AccountID  int64
	DocumentID int64
	FullName   string
	Phone      string
	BirthDate  time.Time
	Discount   float64 // fraction in [0,1)
}

// Category is a room class: price and included equipment.
type Category struct {
	ID          int64
	Name        string
	Price       float64
	Description string
}

type Item struct {
	ID   int64
	Name string
}

// Equipment links a Category to an Item; the pair is unique.
type Equipment struct {
	CategoryID int64
	ItemID     int64
}

type Room struct {
	ID         int64
	Floor      int
	RoomCount  int
	BedCount   int
	CategoryID int64
	Available  bool
}

type Service struct {
	ID          int64
	Name        string
	Price       float64
	Description string
	Active      bool
}

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// CanTransitionTo reports whether a reservation may move to next.
// Only active reservations transition; completed and cancelled are final.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if s != ReservationActive {
		return false
	}
	return next == ReservationCompleted || next == ReservationCancelled
}

type Reservation struct {
	ID           int64
	GuestID      int64
	RoomID       int64
	Arrival      time.Time
	Departure    time.Time
	Price        float64
	ActuallyPaid float64
	Status       ReservationStatus
	CreatedAt    time.Time // set once on insert, never updated
}

// ServiceProvision records one instance of a service rendered against a
// reservation. Rows are append-only.
type ServiceProvision struct {
	ID            int64
	ReservationID int64
	ServiceID     int64
	Quantity      int
	ProvidedOn    time.Time
}
