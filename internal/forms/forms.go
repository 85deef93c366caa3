// Package forms maps raw request values onto validated inputs for the
// domain workflows. Field errors from every form involved in a request are
// accumulated and surfaced together.
package forms

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"hotel_business/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report errors under the external form field name, not the Go one
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Accepted date layouts, matching what the registration UI historically sent.
var dateLayouts = []string{"2006-01-02", "02.01.2006", "02/01/2006"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parser collects per-field parse failures while pulling typed values out
// of url.Values.
type parser struct {
	values url.Values
	errs   *domain.ValidationError
	broken map[string]bool
}

func newParser(v url.Values) *parser {
	return &parser{values: v, errs: domain.NewValidationError(), broken: map[string]bool{}}
}

func (p *parser) str(field string) string {
	return strings.TrimSpace(p.values.Get(field))
}

func (p *parser) fail(field, msg string) {
	p.errs.Add(field, msg)
	p.broken[field] = true
}

func (p *parser) intVal(field string) int {
	s := p.str(field)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		p.fail(field, "must be a number")
		return 0
	}
	return n
}

func (p *parser) int64Val(field string) int64 {
	s := p.str(field)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.fail(field, "must be a number")
		return 0
	}
	return n
}

func (p *parser) floatVal(field string) float64 {
	s := p.str(field)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(field, "must be a number")
		return 0
	}
	return f
}

func (p *parser) dateVal(field string) time.Time {
	s := p.str(field)
	if s == "" {
		return time.Time{}
	}
	t, ok := parseDate(s)
	if !ok {
		p.fail(field, "must be a date")
		return time.Time{}
	}
	return t
}

func (p *parser) optDate(field string) *time.Time {
	s := p.str(field)
	if s == "" {
		return nil
	}
	t, ok := parseDate(s)
	if !ok {
		p.fail(field, "must be a date")
		return nil
	}
	return &t
}

// check runs struct validation and folds the messages into the parser's
// accumulated errors, skipping fields that already failed to parse.
func (p *parser) check(s any) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	for _, fe := range err.(validator.ValidationErrors) {
		field := fe.Field()
		if p.broken[field] {
			continue
		}
		p.errs.Add(field, msgFor(fe))
	}
}

func (p *parser) result() *domain.ValidationError {
	if p.errs.Empty() {
		return nil
	}
	return p.errs
}

func msgFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return "at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "numeric":
		return "digits only"
	case "gte":
		return "must be at least " + fe.Param()
	case "lt":
		return "must be below " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "invalid value"
}

// ---- login ----

type Login struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func ParseLogin(v url.Values) (Login, *domain.ValidationError) {
	p := newParser(v)
	f := Login{Username: p.str("username"), Password: v.Get("password")}
	p.check(f)
	return f, p.result()
}

// ---- registration (document + account + guest, validated together) ----

type DocumentPart struct {
	Series   int       `form:"document_series" validate:"required,min=1"`
	Number   int       `form:"document_number" validate:"required,min=1"`
	IssuedOn time.Time `form:"document_issued_on" validate:"required"`
	IssuedBy string    `form:"document_issued_by" validate:"required,max=255"`
}

type AccountPart struct {
	Username  string     `form:"username" validate:"required,min=3,max=150"`
	Email     string     `form:"email" validate:"required,email,max=255"`
	Password  string     `form:"password" validate:"required,min=8"`
	Phone     string     `form:"phone" validate:"omitempty,max=15"`
	BirthDate *time.Time `form:"birth_date" validate:"omitempty"`
}

type GuestPart struct {
	FullName  string    `form:"guest_full_name" validate:"required,max=255"`
	Phone     string    `form:"guest_phone" validate:"required,numeric,max=15"`
	BirthDate time.Time `form:"guest_birth_date" validate:"required"`
}

type Registration struct {
	Document DocumentPart
	Account  AccountPart
	Guest    GuestPart
}

// ParseRegistration validates all three parts and returns every field
// error at once, not just the first failing part.
func ParseRegistration(v url.Values) (Registration, *domain.ValidationError) {
	p := newParser(v)
	f := Registration{
		Document: DocumentPart{
			Series:   p.intVal("document_series"),
			Number:   p.intVal("document_number"),
			IssuedOn: p.dateVal("document_issued_on"),
			IssuedBy: p.str("document_issued_by"),
		},
		Account: AccountPart{
			Username:  p.str("username"),
			Email:     strings.ToLower(p.str("email")),
			Password:  v.Get("password"),
			Phone:     p.str("phone"),
			BirthDate: p.optDate("birth_date"),
		},
		Guest: GuestPart{
			FullName:  p.str("guest_full_name"),
			Phone:     p.str("guest_phone"),
			BirthDate: p.dateVal("guest_birth_date"),
		},
	}
	p.check(f.Document)
	p.check(f.Account)
	p.check(f.Guest)
	return f, p.result()
}

// ---- service assignment ----

type Assignment struct {
	GuestID       int64     `form:"guest_id" validate:"required,min=1"`
	ReservationID int64     `form:"reservation_id" validate:"required,min=1"`
	ServiceID     int64     `form:"service_id" validate:"required,min=1"`
	Quantity      int       `form:"quantity" validate:"min=1"`
	ProvidedOn    time.Time `form:"provided_on" validate:"required"`
}

func ParseAssignment(v url.Values) (Assignment, *domain.ValidationError) {
	p := newParser(v)
	f := Assignment{
		GuestID:       p.int64Val("guest_id"),
		ReservationID: p.int64Val("reservation_id"),
		ServiceID:     p.int64Val("service_id"),
		Quantity:      p.intVal("quantity"),
		ProvidedOn:    p.dateVal("provided_on"),
	}
	if p.str("quantity") == "" {
		f.Quantity = 1
	}
	p.check(f)
	return f, p.result()
}

// ---- reservation booking ----

type Booking struct {
	GuestID      int64     `form:"guest_id" validate:"required,min=1"`
	RoomID       int64     `form:"room_id" validate:"required,min=1"`
	Arrival      time.Time `form:"arrival" validate:"required"`
	Departure    time.Time `form:"departure" validate:"required"`
	Price        float64   `form:"price" validate:"gte=0"`
	ActuallyPaid float64   `form:"actually_paid" validate:"gte=0"`
}

func ParseBooking(v url.Values) (Booking, *domain.ValidationError) {
	p := newParser(v)
	f := Booking{
		GuestID:      p.int64Val("guest_id"),
		RoomID:       p.int64Val("room_id"),
		Arrival:      p.dateVal("arrival"),
		Departure:    p.dateVal("departure"),
		Price:        p.floatVal("price"),
		ActuallyPaid: p.floatVal("actually_paid"),
	}
	p.check(f)
	// storage does not enforce date order; it is validated here
	if !f.Arrival.IsZero() && !f.Departure.IsZero() && !f.Arrival.Before(f.Departure) {
		p.errs.Add("departure", "must be after arrival")
	}
	return f, p.result()
}

// ---- reservation status & guest discount (staff operations) ----

type StatusChange struct {
	Status string `form:"status" validate:"required,oneof=completed cancelled"`
}

func ParseStatusChange(v url.Values) (StatusChange, *domain.ValidationError) {
	p := newParser(v)
	f := StatusChange{Status: p.str("status")}
	p.check(f)
	return f, p.result()
}

type DiscountChange struct {
	Discount float64 `form:"discount" validate:"gte=0,lt=1"`
}

func ParseDiscountChange(v url.Values) (DiscountChange, *domain.ValidationError) {
	p := newParser(v)
	if p.str("discount") == "" {
		p.fail("discount", "required")
	}
	f := DiscountChange{Discount: p.floatVal("discount")}
	p.check(f)
	return f, p.result()
}
