package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"

	"hotel_business/internal/adapters/observability"
	"hotel_business/internal/domain"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, so the same repo methods
// run inside and outside transactions.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repo struct {
	db *sql.DB // nil inside a transaction
	q  dbtx
}

func New(db *sql.DB) *Repo { return &Repo{db: db, q: db} }

// WithinTx runs fn against a transactional repo view. Nested calls join
// the surrounding transaction.
func (r *Repo) WithinTx(ctx context.Context, fn func(domain.Store) error) error {
	if r.db == nil {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			observability.ObserveTx("rollback")
			panic(p)
		}
	}()
	if err := fn(&Repo{q: tx}); err != nil {
		_ = tx.Rollback()
		observability.ObserveTx("rollback")
		return err
	}
	if err := tx.Commit(); err != nil {
		observability.ObserveTx("rollback")
		return err
	}
	observability.ObserveTx("commit")
	return nil
}

// unique keys as named in migrations/001_init.sql, mapped to the form
// field each one guards. The keys are the final authority for races the
// application-level pre-checks cannot close.
var conflictFields = map[string]string{
	"uq_documents_series_number": "document_number",
	"uq_accounts_username":       "username",
	"uq_accounts_email":          "email",
	"uq_guests_phone":            "guest_phone",
	"uq_equipment_category_item": "equipment",
}

func mapWriteErr(err error) error {
	var me *gomysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		for key, field := range conflictFields {
			if strings.Contains(me.Message, key) {
				return domain.Conflict(field)
			}
		}
		return domain.Conflict("id")
	}
	return err
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// ---- accounts ----

func (r *Repo) CreateAccount(ctx context.Context, a *domain.Account) error {
	res, err := r.q.ExecContext(ctx, insertAccountSQL,
		a.Username, a.Email, a.PasswordHash, string(a.Role), valStr(a.Phone), a.BirthDate)
	if err != nil {
		return mapWriteErr(err)
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) scanAccount(row *sql.Row) (domain.Account, error) {
	var a domain.Account
	var role string
	var phone sql.NullString
	var birth sql.NullTime
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &role, &phone, &birth, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Account{}, domain.NotFound("account")
	}
	if err != nil {
		return domain.Account{}, err
	}
	a.Role, err = domain.ParseRole(role)
	if err != nil {
		return domain.Account{}, err
	}
	if phone.Valid {
		p := phone.String
		a.Phone = &p
	}
	if birth.Valid {
		b := birth.Time
		a.BirthDate = &b
	}
	return a, nil
}

func (r *Repo) AccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.scanAccount(r.q.QueryRowContext(ctx, getAccountByUsernameSQL, username))
}

func (r *Repo) AccountByID(ctx context.Context, id int64) (domain.Account, error) {
	return r.scanAccount(r.q.QueryRowContext(ctx, getAccountByIDSQL, id))
}

func (r *Repo) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	err := r.q.QueryRowContext(ctx, query, args...).Scan(&ok)
	return ok, err
}

func (r *Repo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, usernameTakenSQL, username)
}

func (r *Repo) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, emailTakenSQL, email)
}

// ---- documents ----

func (r *Repo) CreateDocument(ctx context.Context, d *domain.Document) error {
	res, err := r.q.ExecContext(ctx, insertDocumentSQL, d.Series, d.Number, d.IssuedOn, d.IssuedBy)
	if err != nil {
		return mapWriteErr(err)
	}
	d.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) DocumentTaken(ctx context.Context, series, number int) (bool, error) {
	return r.exists(ctx, documentTakenSQL, series, number)
}

// ---- guests ----

func (r *Repo) CreateGuest(ctx context.Context, g *domain.Guest) error {
	res, err := r.q.ExecContext(ctx, insertGuestSQL,
		g.AccountID, g.DocumentID, g.FullName, g.Phone, g.BirthDate, g.Discount)
	if err != nil {
		return mapWriteErr(err)
	}
	g.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) scanGuest(row *sql.Row) (domain.Guest, error) {
	var g domain.Guest
	err := row.Scan(&g.ID, &g.AccountID, &g.DocumentID, &g.FullName, &g.Phone, &g.BirthDate, &g.Discount)
	if err == sql.ErrNoRows {
		return domain.Guest{}, domain.NotFound("guest")
	}
	return g, err
}

func (r *Repo) GuestByID(ctx context.Context, id int64) (domain.Guest, error) {
	return r.scanGuest(r.q.QueryRowContext(ctx, getGuestByIDSQL, id))
}

func (r *Repo) GuestByAccount(ctx context.Context, accountID int64) (domain.Guest, error) {
	return r.scanGuest(r.q.QueryRowContext(ctx, getGuestByAccountSQL, accountID))
}

func (r *Repo) GuestPhoneTaken(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, guestPhoneTakenSQL, phone)
}

// guestOrder maps the closed sort enum to ORDER BY clauses; ids break ties
// so the ordering stays stable.
func guestOrder(sort domain.GuestSort) string {
	switch sort {
	case domain.GuestSortNameAsc:
		return "g.fullname ASC, g.id ASC"
	case domain.GuestSortNameDesc:
		return "g.fullname DESC, g.id ASC"
	case domain.GuestSortDiscountDesc:
		return "g.discount DESC, g.id ASC"
	case domain.GuestSortBirthDateAsc:
		return "g.date_of_birth ASC, g.id ASC"
	}
	return "g.id ASC"
}

func (r *Repo) ListGuests(ctx context.Context, q domain.GuestQuery) ([]domain.GuestView, error) {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	pat := "%" + search + "%"
	rows, err := r.q.QueryContext(ctx, listGuestsSQL+guestOrder(q.Sort),
		search, pat, pat, pat, pat, pat, pat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GuestView
	for rows.Next() {
		var v domain.GuestView
		if err := rows.Scan(
			&v.ID, &v.AccountID, &v.DocumentID, &v.FullName, &v.Phone, &v.BirthDate, &v.Discount,
			&v.Username, &v.Email, &v.DocSeries, &v.DocNumber,
		); err != nil {
			return nil, err
		}
		v.HighDiscount = v.Discount > 0.10
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) SetDiscount(ctx context.Context, guestID int64, discount float64) error {
	res, err := r.q.ExecContext(ctx, updateGuestDiscountSQL, discount, guestID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return domain.NotFound("guest")
	}
	return err
}

// ---- catalog ----

func (r *Repo) CreateCategory(ctx context.Context, c *domain.Category) error {
	res, err := r.q.ExecContext(ctx, insertCategorySQL, c.Name, c.Price, c.Description)
	if err != nil {
		return mapWriteErr(err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) CreateItem(ctx context.Context, i *domain.Item) error {
	res, err := r.q.ExecContext(ctx, insertItemSQL, i.Name)
	if err != nil {
		return mapWriteErr(err)
	}
	i.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) CreateEquipment(ctx context.Context, e domain.Equipment) error {
	_, err := r.q.ExecContext(ctx, insertEquipmentSQL, e.CategoryID, e.ItemID)
	return mapWriteErr(err)
}

func (r *Repo) CreateRoom(ctx context.Context, room *domain.Room) error {
	res, err := r.q.ExecContext(ctx, insertRoomSQL,
		room.Floor, room.RoomCount, room.BedCount, room.CategoryID, room.Available)
	if err != nil {
		return mapWriteErr(err)
	}
	room.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) CreateService(ctx context.Context, s *domain.Service) error {
	res, err := r.q.ExecContext(ctx, insertServiceSQL, s.Name, s.Price, s.Description, s.Active)
	if err != nil {
		return mapWriteErr(err)
	}
	s.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) ServiceByID(ctx context.Context, id int64) (domain.Service, error) {
	var s domain.Service
	err := r.q.QueryRowContext(ctx, getServiceSQL, id).
		Scan(&s.ID, &s.Name, &s.Price, &s.Description, &s.Active)
	if err == sql.ErrNoRows {
		return domain.Service{}, domain.NotFound("service")
	}
	return s, err
}

func (r *Repo) ListRooms(ctx context.Context, q domain.RoomQuery) (domain.RoomsPage, error) {
	var page domain.RoomsPage

	var bed, cat any
	if q.BedCount != nil {
		bed = *q.BedCount
	}
	if q.CategoryID != nil {
		cat = *q.CategoryID
	}
	rows, err := r.q.QueryContext(ctx, listRoomsSQL, bed, bed, cat, cat)
	if err != nil {
		return domain.RoomsPage{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.Floor, &room.RoomCount, &room.BedCount, &room.CategoryID, &room.Available); err != nil {
			return domain.RoomsPage{}, err
		}
		page.Items = append(page.Items, room)
	}
	if err := rows.Err(); err != nil {
		return domain.RoomsPage{}, err
	}

	bcRows, err := r.q.QueryContext(ctx, distinctBedCountsSQL)
	if err != nil {
		return domain.RoomsPage{}, err
	}
	defer bcRows.Close()
	for bcRows.Next() {
		var n int
		if err := bcRows.Scan(&n); err != nil {
			return domain.RoomsPage{}, err
		}
		page.BedCounts = append(page.BedCounts, n)
	}
	return page, bcRows.Err()
}

func (r *Repo) ListServices(ctx context.Context, q domain.ServiceQuery) (domain.ServicesPage, error) {
	var page domain.ServicesPage

	activeOnly := 0
	if q.ActiveOnly {
		activeOnly = 1
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))
	pat := "%" + search + "%"
	rows, err := r.q.QueryContext(ctx, listServicesSQL, activeOnly, search, pat, pat)
	if err != nil {
		return domain.ServicesPage{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.Description, &s.Active); err != nil {
			return domain.ServicesPage{}, err
		}
		page.Items = append(page.Items, s)
	}
	if err := rows.Err(); err != nil {
		return domain.ServicesPage{}, err
	}

	if err := r.q.QueryRowContext(ctx, countServicesSQL).Scan(&page.Total, &page.ActiveCount); err != nil {
		return domain.ServicesPage{}, err
	}
	return page, nil
}

// ---- reservations ----

func (r *Repo) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	if res.Status == "" {
		res.Status = domain.ReservationActive
	}
	out, err := r.q.ExecContext(ctx, insertReservationSQL,
		res.GuestID, res.RoomID, res.Arrival, res.Departure, res.Price, res.ActuallyPaid, string(res.Status))
	if err != nil {
		return mapWriteErr(err)
	}
	res.ID, err = out.LastInsertId()
	return err
}

func (r *Repo) ReservationByID(ctx context.Context, id int64) (domain.Reservation, error) {
	var res domain.Reservation
	var status string
	err := r.q.QueryRowContext(ctx, getReservationSQL, id).Scan(
		&res.ID, &res.GuestID, &res.RoomID, &res.Arrival, &res.Departure,
		&res.Price, &res.ActuallyPaid, &status, &res.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Reservation{}, domain.NotFound("reservation")
	}
	if err != nil {
		return domain.Reservation{}, err
	}
	res.Status = domain.ReservationStatus(status)
	return res, nil
}

func (r *Repo) UpdateReservationStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	res, err := r.q.ExecContext(ctx, updateReservationStatusSQL, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return domain.NotFound("reservation")
	}
	return err
}

func (r *Repo) CreateProvision(ctx context.Context, p *domain.ServiceProvision) error {
	res, err := r.q.ExecContext(ctx, insertProvisionSQL,
		p.ReservationID, p.ServiceID, p.Quantity, p.ProvidedOn)
	if err != nil {
		return mapWriteErr(err)
	}
	p.ID, err = res.LastInsertId()
	return err
}
