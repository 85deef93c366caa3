package httpserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_business/internal/app"
	"hotel_business/internal/domain"
	"hotel_business/internal/forms"
)

type Handlers struct {
	Auth  *app.AuthService
	Reg   *app.RegistrationService
	Q     *app.QueryService
	Staff *app.StaffService

	sessionTTL time.Duration
	loginLimit *ipLimiter
}

func NewHandlers(auth *app.AuthService, reg *app.RegistrationService, q *app.QueryService, staff *app.StaffService, sessionTTL time.Duration, loginRPS float64, loginBurst int) *Handlers {
	return &Handlers{
		Auth:       auth,
		Reg:        reg,
		Q:          q,
		Staff:      staff,
		sessionTTL: sessionTTL,
		loginLimit: newIPLimiter(loginRPS, loginBurst),
	}
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Group(func(r chi.Router) {
		r.Use(h.LoadSession)

		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

		r.Get("/services", h.publicServices)
		r.Get("/services/{id}", h.serviceQuote)

		// the redirect target for every denied request
		r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusUnauthorized, "authentication required")
		})
		r.With(h.ThrottleLogin).Post("/login", h.login)
		r.Post("/logout", h.logout)
		r.Post("/register", h.register)

		r.With(RequireRole(domain.RoleAdmin)).Get("/admin", h.dashboard)
		r.With(RequireRole(domain.RoleClient)).Get("/client", h.dashboard)

		r.Route("/manager", func(r chi.Router) {
			r.Use(RequireRole(domain.RoleManager))
			r.Get("/", h.dashboard)
			r.Get("/guests", h.listGuests)
			r.Get("/services", h.listServices)
			r.Get("/rooms", h.listRooms)
			r.Post("/assignment", h.assignService)
			r.Post("/reservations", h.bookReservation)
			r.Post("/reservations/{id}/status", h.changeStatus)
			r.Post("/guests/{id}/discount", h.changeDiscount)
		})
	})
}

// ---- rendering ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// echoValues returns the submitted form minus credential fields, so a
// failed form can be re-rendered with what the user typed.
func echoValues(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for k := range form {
		if k == "password" {
			continue
		}
		out[k] = form.Get(k)
	}
	return out
}

func writeFieldErrors(w http.ResponseWriter, verr *domain.ValidationError, form url.Values) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"errors": verr.Fields,
		"values": echoValues(form),
	})
}

// writeAppErr maps a service error to the response contract: field errors
// as 422, per-entity not-found as 404, anything else as a logged 500 with
// a generic body.
func writeAppErr(w http.ResponseWriter, err error, form url.Values) {
	if verr, ok := domain.AsValidation(err); ok {
		writeFieldErrors(w, verr, form)
		return
	}
	if nf, ok := domain.AsNotFound(err); ok {
		writeError(w, http.StatusNotFound, nf.Error())
		return
	}
	log.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

func dashboardPath(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "/admin"
	case domain.RoleManager:
		return "/manager"
	case domain.RoleClient:
		return "/client"
	}
	return "/services"
}

// ---- auth & registration ----

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form")
		return
	}
	f, verr := forms.ParseLogin(r.PostForm)
	if verr != nil {
		writeFieldErrors(w, verr, r.PostForm)
		return
	}
	token, acc, err := h.Auth.Login(r.Context(), f.Username, f.Password)
	if err != nil {
		if err == domain.ErrBadCredentials {
			writeError(w, http.StatusUnauthorized, domain.ErrBadCredentials.Error())
			return
		}
		writeAppErr(w, err, r.PostForm)
		return
	}
	h.setSessionCookie(w, token)
	http.Redirect(w, r, dashboardPath(acc.Role), http.StatusSeeOther)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := h.Auth.Logout(r.Context(), c.Value); err != nil {
			log.Error().Err(err).Msg("session delete failed")
		}
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/services", http.StatusSeeOther)
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form")
		return
	}
	f, verr := forms.ParseRegistration(r.PostForm)
	if verr != nil {
		writeFieldErrors(w, verr, r.PostForm)
		return
	}
	acc, _, err := h.Reg.Register(r.Context(), f)
	if err != nil {
		writeAppErr(w, err, r.PostForm)
		return
	}
	token, err := h.Auth.StartSession(r.Context(), acc)
	if err != nil {
		writeAppErr(w, err, r.PostForm)
		return
	}
	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/client", http.StatusSeeOther)
}

// ---- public catalog ----

type pricedService struct {
	domain.Service
	Quote domain.PriceQuote `json:"price_quote"`
}

func (h *Handlers) publicServices(w http.ResponseWriter, r *http.Request) {
	items, err := h.Q.PublicServices(r.Context())
	if err != nil {
		writeAppErr(w, err, nil)
		return
	}

	// A logged-in guest sees prices with their discount applied.
	var guest *domain.Guest
	if sess, ok := SessionFrom(r.Context()); ok {
		guest, err = h.Q.GuestForAccount(r.Context(), sess.AccountID)
		if err != nil {
			writeAppErr(w, err, nil)
			return
		}
	}

	out := make([]pricedService, 0, len(items))
	for _, svc := range items {
		out = append(out, pricedService{Service: svc, Quote: domain.Quote(svc.Price, guest)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) serviceQuote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a number")
		return
	}
	var accountID *int64
	if sess, ok := SessionFrom(r.Context()); ok {
		accountID = &sess.AccountID
	}
	quote, err := h.Q.ServiceQuote(r.Context(), id, accountID)
	if err != nil {
		writeAppErr(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// ---- dashboards ----

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, domain.Dashboard{Role: sess.Role, Username: sess.Username, Now: time.Now().UTC()})
}

// ---- manager listings ----

func (h *Handlers) listGuests(w http.ResponseWriter, r *http.Request) {
	q := domain.GuestQuery{
		Search: r.URL.Query().Get("q"),
		Sort:   domain.GuestSort(r.URL.Query().Get("sort")),
	}
	views, err := h.Q.Guests(r.Context(), q)
	if err != nil {
		writeAppErr(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": views})
}

func (h *Handlers) listServices(w http.ResponseWriter, r *http.Request) {
	page, err := h.Q.Services(r.Context(), domain.ServiceQuery{Search: r.URL.Query().Get("q")})
	if err != nil {
		writeAppErr(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":  page.Items,
		"total":  page.Total,
		"active": page.ActiveCount,
	})
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	var q domain.RoomQuery
	if s := r.URL.Query().Get("bed_count"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bed_count must be a number")
			return
		}
		q.BedCount = &n
	}
	if s := r.URL.Query().Get("category_id"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "category_id must be a number")
			return
		}
		q.CategoryID = &n
	}
	page, err := h.Q.Rooms(r.Context(), q)
	if err != nil {
		writeAppErr(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":      page.Items,
		"bed_counts": page.BedCounts,
	})
}

// ---- manager commands ----

func (h *Handlers) assignService(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form")
		return
	}
	f, verr := forms.ParseAssignment(r.PostForm)
	if verr != nil {
		writeFieldErrors(w, verr, r.PostForm)
		return
	}
	prov, err := h.Staff.AssignService(r.Context(), f.GuestID, f.ReservationID, f.ServiceID, f.Quantity, f.ProvidedOn)
	if err != nil {
		writeAppErr(w, err, r.PostForm)
		return
	}
	writeJSON(w, http.StatusCreated, prov)
}

func (h *Handlers) bookReservation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form")
		return
	}
	f, verr := forms.ParseBooking(r.PostForm)
	if verr != nil {
		writeFieldErrors(w, verr, r.PostForm)
		return
	}
	res, err := h.Staff.Book(r.Context(), domain.Reservation{
		GuestID:      f.GuestID,
		RoomID:       f.RoomID,
		Arrival:      f.Arrival,
		Departure:    f.Departure,
		Price:        f.Price,
		ActuallyPaid: f.ActuallyPaid,
	})
	if err != nil {
		writeAppErr(w, err, r.PostForm)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a number")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form")
		return
	}
	f, verr := forms.ParseStatusChange(r.PostForm)
	if verr != nil {
		writeFieldErrors(w, verr, r.PostForm)
		return
	}
	if err := h.Staff.ChangeReservationStatus(r.Context(), id, domain.ReservationStatus(f.Status)); err != nil {
		writeAppErr(w, err, r.PostForm)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": f.Status})
}

func (h *Handlers) changeDiscount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a number")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form")
		return
	}
	f, verr := forms.ParseDiscountChange(r.PostForm)
	if verr != nil {
		writeFieldErrors(w, verr, r.PostForm)
		return
	}
	if err := h.Staff.SetDiscount(r.Context(), id, f.Discount); err != nil {
		writeAppErr(w, err, r.PostForm)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "discount": f.Discount})
}
