package app_test

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"hotel_business/internal/domain"
)

// memStore is an in-memory domain.Store used across the app tests.
// WithinTx snapshots state and restores it when fn fails, mirroring the
// rollback contract of the real store.
type memStore struct {
	mu sync.Mutex

	accounts     []domain.Account
	documents    []domain.Document
	guests       []domain.Guest
	categories   []domain.Category
	items        []domain.Item
	equipment    []domain.Equipment
	rooms        []domain.Room
	services     []domain.Service
	reservations []domain.Reservation
	provisions   []domain.ServiceProvision

	nextID int64
}

func newMemStore() *memStore { return &memStore{} }

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// ---- accounts ----

func (m *memStore) CreateAccount(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.accounts {
		if x.Username == a.Username {
			return domain.Conflict("username")
		}
		if x.Email == a.Email {
			return domain.Conflict("email")
		}
	}
	a.ID = m.id()
	m.accounts = append(m.accounts, *a)
	return nil
}

func (m *memStore) AccountByUsername(_ context.Context, username string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return domain.Account{}, domain.NotFound("account")
}

func (m *memStore) AccountByID(_ context.Context, id int64) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Account{}, domain.NotFound("account")
}

func (m *memStore) UsernameTaken(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) EmailTaken(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ---- documents ----

func (m *memStore) CreateDocument(_ context.Context, d *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.documents {
		if x.Series == d.Series && x.Number == d.Number {
			return domain.Conflict("document_number")
		}
	}
	d.ID = m.id()
	m.documents = append(m.documents, *d)
	return nil
}

func (m *memStore) DocumentTaken(_ context.Context, series, number int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.documents {
		if x.Series == series && x.Number == number {
			return true, nil
		}
	}
	return false, nil
}

// ---- guests ----

func (m *memStore) CreateGuest(_ context.Context, g *domain.Guest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.guests {
		if x.Phone == g.Phone {
			return domain.Conflict("guest_phone")
		}
	}
	g.ID = m.id()
	m.guests = append(m.guests, *g)
	return nil
}

func (m *memStore) GuestByID(_ context.Context, id int64) (domain.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.guests {
		if g.ID == id {
			return g, nil
		}
	}
	return domain.Guest{}, domain.NotFound("guest")
}

func (m *memStore) GuestByAccount(_ context.Context, accountID int64) (domain.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.guests {
		if g.AccountID == accountID {
			return g, nil
		}
	}
	return domain.Guest{}, domain.NotFound("guest")
}

func (m *memStore) GuestPhoneTaken(_ context.Context, phone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.guests {
		if g.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListGuests(_ context.Context, q domain.GuestQuery) ([]domain.GuestView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	views := make([]domain.GuestView, 0, len(m.guests))
	for _, g := range m.guests {
		v := domain.GuestView{Guest: g, HighDiscount: g.Discount > 0.10}
		for _, a := range m.accounts {
			if a.ID == g.AccountID {
				v.Username, v.Email = a.Username, a.Email
			}
		}
		for _, d := range m.documents {
			if d.ID == g.DocumentID {
				v.DocSeries, v.DocNumber = d.Series, d.Number
			}
		}
		if q.Search != "" && !guestMatches(v, q.Search) {
			continue
		}
		views = append(views, v)
	}

	switch q.Sort {
	case domain.GuestSortNameAsc:
		sort.SliceStable(views, func(i, j int) bool { return views[i].FullName < views[j].FullName })
	case domain.GuestSortNameDesc:
		sort.SliceStable(views, func(i, j int) bool { return views[i].FullName > views[j].FullName })
	case domain.GuestSortDiscountDesc:
		sort.SliceStable(views, func(i, j int) bool { return views[i].Discount > views[j].Discount })
	case domain.GuestSortBirthDateAsc:
		sort.SliceStable(views, func(i, j int) bool { return views[i].BirthDate.Before(views[j].BirthDate) })
	default:
		sort.SliceStable(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	}
	return views, nil
}

func guestMatches(v domain.GuestView, needle string) bool {
	hay := []string{
		strings.ToLower(v.FullName),
		v.Phone,
		strings.ToLower(v.Email),
		strings.ToLower(v.Username),
		strconv.Itoa(v.DocSeries),
		strconv.Itoa(v.DocNumber),
	}
	for _, h := range hay {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

func (m *memStore) SetDiscount(_ context.Context, guestID int64, discount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.guests {
		if m.guests[i].ID == guestID {
			m.guests[i].Discount = discount
			return nil
		}
	}
	return domain.NotFound("guest")
}

// ---- catalog ----

func (m *memStore) CreateCategory(_ context.Context, c *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	m.categories = append(m.categories, *c)
	return nil
}

func (m *memStore) CreateItem(_ context.Context, i *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i.ID = m.id()
	m.items = append(m.items, *i)
	return nil
}

func (m *memStore) CreateEquipment(_ context.Context, e domain.Equipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.equipment {
		if x.CategoryID == e.CategoryID && x.ItemID == e.ItemID {
			return domain.Conflict("equipment")
		}
	}
	m.equipment = append(m.equipment, e)
	return nil
}

func (m *memStore) CreateRoom(_ context.Context, r *domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.id()
	m.rooms = append(m.rooms, *r)
	return nil
}

func (m *memStore) CreateService(_ context.Context, s *domain.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	m.services = append(m.services, *s)
	return nil
}

func (m *memStore) ServiceByID(_ context.Context, id int64) (domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.services {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Service{}, domain.NotFound("service")
}

func (m *memStore) ListRooms(_ context.Context, q domain.RoomQuery) (domain.RoomsPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var page domain.RoomsPage
	seen := map[int]bool{}
	for _, r := range m.rooms {
		if !seen[r.BedCount] {
			seen[r.BedCount] = true
			page.BedCounts = append(page.BedCounts, r.BedCount)
		}
		if q.BedCount != nil && r.BedCount != *q.BedCount {
			continue
		}
		if q.CategoryID != nil && r.CategoryID != *q.CategoryID {
			continue
		}
		page.Items = append(page.Items, r)
	}
	sort.Ints(page.BedCounts)
	return page, nil
}

func (m *memStore) ListServices(_ context.Context, q domain.ServiceQuery) (domain.ServicesPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var page domain.ServicesPage
	for _, s := range m.services {
		page.Total++
		if s.Active {
			page.ActiveCount++
		}
		if q.ActiveOnly && !s.Active {
			continue
		}
		if q.Search != "" &&
			!strings.Contains(strings.ToLower(s.Name), q.Search) &&
			!strings.Contains(strings.ToLower(s.Description), q.Search) {
			continue
		}
		page.Items = append(page.Items, s)
	}
	return page, nil
}

// ---- reservations ----

func (m *memStore) CreateReservation(_ context.Context, r *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.id()
	m.reservations = append(m.reservations, *r)
	return nil
}

func (m *memStore) ReservationByID(_ context.Context, id int64) (domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Reservation{}, domain.NotFound("reservation")
}

func (m *memStore) UpdateReservationStatus(_ context.Context, id int64, status domain.ReservationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reservations {
		if m.reservations[i].ID == id {
			m.reservations[i].Status = status
			return nil
		}
	}
	return domain.NotFound("reservation")
}

// ---- tx ----

func (m *memStore) WithinTx(_ context.Context, fn func(domain.Store) error) error {
	m.mu.Lock()
	snap := memStore{
		accounts:     append([]domain.Account(nil), m.accounts...),
		documents:    append([]domain.Document(nil), m.documents...),
		guests:       append([]domain.Guest(nil), m.guests...),
		categories:   append([]domain.Category(nil), m.categories...),
		items:        append([]domain.Item(nil), m.items...),
		equipment:    append([]domain.Equipment(nil), m.equipment...),
		rooms:        append([]domain.Room(nil), m.rooms...),
		services:     append([]domain.Service(nil), m.services...),
		reservations: append([]domain.Reservation(nil), m.reservations...),
		provisions:   append([]domain.ServiceProvision(nil), m.provisions...),
		nextID:       m.nextID,
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.accounts, m.documents, m.guests = snap.accounts, snap.documents, snap.guests
		m.categories, m.items, m.equipment = snap.categories, snap.items, snap.equipment
		m.rooms, m.services = snap.rooms, snap.services
		m.reservations, m.provisions = snap.reservations, snap.provisions
		m.nextID = snap.nextID
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) CreateProvision(_ context.Context, p *domain.ServiceProvision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	m.provisions = append(m.provisions, *p)
	return nil
}

// ---- sessions ----

type memSessions struct {
	mu    sync.Mutex
	store map[string]domain.Session
	n     int
}

func newMemSessions() *memSessions { return &memSessions{store: map[string]domain.Session{}} }

func (m *memSessions) Create(_ context.Context, s domain.Session) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	token := "tok-" + strconv.Itoa(m.n)
	m.store[token] = s
	return token, nil
}

func (m *memSessions) Get(_ context.Context, token string) (domain.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[token]
	return s, ok, nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, token)
	return nil
}
