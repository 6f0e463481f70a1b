package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"innkeep/internal/adapters/observability"
	"innkeep/internal/adapters/session"
	"innkeep/internal/app"
	"innkeep/internal/domain"
)

type Handlers struct {
	Q        *app.QueryService
	Bookings *app.BookingService
	Accounts *app.AccountService
	Admin    *app.AdminService
	Sessions *session.Manager
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/", h.index)
	s.mux.Get("/room/{id}", h.roomDetail)

	s.mux.Get("/register", h.registerForm)
	s.mux.Post("/register", h.register)
	s.mux.Get("/login", h.loginForm)
	s.mux.Post("/login", h.login)
	s.mux.Get("/logout", h.logout)

	s.mux.Get("/book/{roomID}", h.bookForm)
	s.mux.Post("/book/{roomID}", h.createBooking)
	s.mux.Get("/my-bookings", h.myBookings)
	s.mux.Post("/my-bookings/{id}/delete", h.cancelBooking)

	s.mux.Get("/admin/rooms", h.adminRooms)
	s.mux.Get("/admin/rooms/create", h.adminRoomForm)
	s.mux.Post("/admin/rooms/create", h.adminCreateRoom)
	s.mux.Get("/admin/rooms/{id}/edit", h.adminRoomEditForm)
	s.mux.Post("/admin/rooms/{id}/edit", h.adminEditRoom)
	s.mux.Get("/admin/hotels", h.adminHotels)
	s.mux.Get("/admin/hotels/create", h.adminHotelForm)
	s.mux.Post("/admin/hotels/create", h.adminCreateHotel)
	s.mux.Get("/admin/hotels/{id}/edit", h.adminHotelEditForm)
	s.mux.Post("/admin/hotels/{id}/edit", h.adminEditHotel)
	s.mux.Get("/admin/bookings", h.adminBookings)
	s.mux.Get("/admin/users", h.adminUsers)
}

// ---- response plumbing ----

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeETagged(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// redirectLogin sends an anonymous caller to the login form, keeping
// the requested destination for the post-login redirect.
func redirectLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	redirect(w, r, "/login?next="+url.QueryEscape(next))
}

// guardRedirect applies the authorization failure policy: login
// redirect for anonymous callers, home redirect with a warning for
// authenticated callers short of admin. Returns true when handled.
func guardRedirect(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case errors.Is(err, domain.ErrAuthenticationRequired):
		redirectLogin(w, r)
		return true
	case errors.Is(err, domain.ErrAuthorizationDenied):
		setFlash(w, "warning", domain.ErrAuthorizationDenied.Error())
		redirect(w, r, "/")
		return true
	}
	return false
}

// safeNext allows only same-site destinations for post-login redirects.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}

// ---- wire models ----

type hotelJSON struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	City *string `json:"city"`
}

type roomJSON struct {
	ID            int64   `json:"id"`
	Number        string  `json:"number"`
	HotelID       int64   `json:"hotel_id"`
	RoomType      string  `json:"room_type"`
	Description   *string `json:"description"`
	PricePerNight float64 `json:"price_per_night"`
	Capacity      int     `json:"capacity"`
}

type bookingJSON struct {
	ID         int64   `json:"id"`
	RoomNumber string  `json:"room_number"`
	HotelName  string  `json:"hotel_name"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Nights     int     `json:"nights"`
	TotalPrice float64 `json:"total_price"`
	UserEmail  string  `json:"user_email,omitempty"`
	UserName   string  `json:"user_name,omitempty"`
}

func toHotelJSON(h domain.Hotel) hotelJSON {
	return hotelJSON{ID: h.ID, Name: h.Name, City: h.City}
}

func toRoomJSON(r domain.Room) roomJSON {
	return roomJSON{
		ID: r.ID, Number: r.Number, HotelID: r.HotelID, RoomType: r.RoomType,
		Description: r.Description, PricePerNight: r.PricePerNight, Capacity: r.Capacity,
	}
}

func toBookingJSON(bv domain.BookingView, withUser bool) bookingJSON {
	out := bookingJSON{
		ID:         bv.ID,
		RoomNumber: bv.RoomNumber,
		HotelName:  bv.HotelName,
		CheckIn:    bv.CheckIn.Format(domain.DateLayout),
		CheckOut:   bv.CheckOut.Format(domain.DateLayout),
		Nights:     bv.Nights(),
		TotalPrice: bv.TotalPrice,
	}
	if withUser {
		out.UserEmail = bv.UserEmail
		out.UserName = bv.UserName
	}
	return out
}

// ---- public pages ----

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	var hotelID *int64
	if v := r.URL.Query().Get("hotel_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			hotelID = &id
		}
	}

	listing, err := h.Q.ListRooms(r.Context(), hotelID, domain.Today())
	if err != nil {
		log.Error().Err(err).Msg("room listing failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	hotels := make([]hotelJSON, 0, len(listing.Hotels))
	for _, hl := range listing.Hotels {
		hotels = append(hotels, toHotelJSON(hl))
	}
	rooms := make([]roomJSON, 0, len(listing.Rooms))
	for _, rm := range listing.Rooms {
		rooms = append(rooms, toRoomJSON(rm))
	}

	resp := struct {
		Hotels         []hotelJSON `json:"hotels"`
		Rooms          []roomJSON  `json:"rooms"`
		SelectedHotel  *int64      `json:"selected_hotel_id"`
		TotalRooms     int         `json:"total_rooms"`
		AvailableCount int         `json:"available_count"`
		ActiveRoomIDs  []int64     `json:"active_room_ids"`
		Notice         *Flash      `json:"notice,omitempty"`
	}{
		Hotels:         hotels,
		Rooms:          rooms,
		SelectedHotel:  listing.SelectedHotel,
		TotalRooms:     listing.TotalRooms,
		AvailableCount: listing.AvailableCount,
		ActiveRoomIDs:  listing.ActiveRoomIDs,
		Notice:         popFlash(w, r),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) roomDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	det, err := h.Q.GetRoom(r.Context(), id, domain.Today())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "room not found")
			return
		}
		log.Error().Err(err).Int64("room", id).Msg("room detail failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	resp := struct {
		Room            roomJSON  `json:"room"`
		Hotel           hotelJSON `json:"hotel"`
		CurrentlyBooked bool      `json:"currently_booked"`
	}{toRoomJSON(det.Room), toHotelJSON(det.Hotel), det.CurrentlyBooked}
	writeETagged(w, r, resp)
}

// ---- accounts ----

func (h *Handlers) registerForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Fields []string `json:"fields"`
		Notice *Flash   `json:"notice,omitempty"`
	}{[]string{"email", "name", "password"}, popFlash(w, r)})
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Form", "")
		return
	}
	_, err := h.Accounts.Register(r.Context(),
		r.PostFormValue("email"), r.PostFormValue("name"), r.PostFormValue("password"))
	if err != nil {
		observability.ObserveAuth("register", "failed")
		if ve := domain.IsValidationError(err); ve != nil {
			setFlash(w, "danger", "please fill in all fields")
			redirect(w, r, "/register")
			return
		}
		if errors.Is(err, domain.ErrDuplicateEmail) {
			setFlash(w, "danger", err.Error())
			redirect(w, r, "/register")
			return
		}
		log.Error().Err(err).Msg("registration failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	observability.ObserveAuth("register", "ok")
	setFlash(w, "success", "registration successful, you can now log in")
	redirect(w, r, "/login")
}

func (h *Handlers) loginForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Fields []string `json:"fields"`
		Next   string   `json:"next,omitempty"`
		Notice *Flash   `json:"notice,omitempty"`
	}{[]string{"email", "password"}, r.URL.Query().Get("next"), popFlash(w, r)})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Form", "")
		return
	}
	u, err := h.Accounts.Authenticate(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrAuthenticationFailed) {
			observability.ObserveAuth("login", "failed")
			setFlash(w, "danger", err.Error())
			to := "/login"
			if next := r.URL.Query().Get("next"); next != "" {
				to += "?next=" + url.QueryEscape(next)
			}
			redirect(w, r, to)
			return
		}
		log.Error().Err(err).Msg("login failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if err := h.Sessions.Issue(w, u); err != nil {
		log.Error().Err(err).Msg("session issue failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	observability.ObserveAuth("login", "ok")
	setFlash(w, "success", "logged in")
	redirect(w, r, safeNext(r.URL.Query().Get("next")))
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if callerFrom(r) == nil {
		redirectLogin(w, r)
		return
	}
	h.Sessions.Clear(w)
	setFlash(w, "info", "logged out")
	redirect(w, r, "/")
}

// ---- bookings ----

func (h *Handlers) bookForm(w http.ResponseWriter, r *http.Request) {
	if callerFrom(r) == nil {
		redirectLogin(w, r)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	det, err := h.Q.GetRoom(r.Context(), id, domain.Today())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "room not found")
			return
		}
		log.Error().Err(err).Msg("book form failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Room   roomJSON  `json:"room"`
		Hotel  hotelJSON `json:"hotel"`
		Fields []string  `json:"fields"`
		Notice *Flash    `json:"notice,omitempty"`
	}{toRoomJSON(det.Room), toHotelJSON(det.Hotel), []string{"check_in", "check_out"}, popFlash(w, r)})
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if caller == nil {
		redirectLogin(w, r)
		return
	}
	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Form", "")
		return
	}

	_, err = h.Bookings.CreateBooking(r.Context(), caller, roomID,
		r.PostFormValue("check_in"), r.PostFormValue("check_out"))
	if err != nil {
		switch {
		case guardRedirect(w, r, err):
		case errors.Is(err, domain.ErrNotFound):
			writeProblem(w, http.StatusNotFound, "Not Found", "room not found")
		case errors.Is(err, domain.ErrDateRangeConflict):
			observability.ObserveBooking("conflict")
			setFlash(w, "danger", err.Error())
			redirect(w, r, "/book/"+strconv.FormatInt(roomID, 10))
		case errors.Is(err, domain.ErrInvalidDateFormat), errors.Is(err, domain.ErrInvalidDateRange):
			observability.ObserveBooking("rejected")
			setFlash(w, "danger", err.Error())
			redirect(w, r, "/book/"+strconv.FormatInt(roomID, 10))
		default:
			log.Error().Err(err).Int64("room", roomID).Msg("create booking failed")
			writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	observability.ObserveBooking("created")
	setFlash(w, "success", "booking created")
	redirect(w, r, "/my-bookings")
}

func (h *Handlers) myBookings(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if caller == nil {
		redirectLogin(w, r)
		return
	}
	views, err := h.Bookings.MyBookings(r.Context(), caller)
	if err != nil {
		if guardRedirect(w, r, err) {
			return
		}
		log.Error().Err(err).Msg("my bookings failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]bookingJSON, 0, len(views))
	for _, bv := range views {
		out = append(out, toBookingJSON(bv, false))
	}
	writeJSON(w, http.StatusOK, struct {
		Bookings []bookingJSON `json:"bookings"`
		Notice   *Flash        `json:"notice,omitempty"`
	}{out, popFlash(w, r)})
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if caller == nil {
		redirectLogin(w, r)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := h.Bookings.CancelBooking(r.Context(), caller, id); err != nil {
		switch {
		case guardRedirect(w, r, err):
		case errors.Is(err, domain.ErrNotFound):
			// same notice whether the booking is missing or someone else's
			setFlash(w, "danger", "booking not found")
			redirect(w, r, "/my-bookings")
		default:
			log.Error().Err(err).Int64("booking", id).Msg("cancel booking failed")
			writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	observability.ObserveBooking("cancelled")
	setFlash(w, "success", "booking cancelled")
	redirect(w, r, "/my-bookings")
}
