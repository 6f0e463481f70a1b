package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"innkeep/internal/app"
	"innkeep/internal/domain"
)

// Admin write handlers share one error policy: guard failures follow
// guardRedirect, validation and duplicate errors flash back to the
// originating form, anything else is a 500.

func (h *Handlers) adminRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Admin.ListRooms(r.Context(), callerFrom(r))
	if err != nil {
		h.adminListErr(w, r, err, "admin room listing failed")
		return
	}
	out := make([]roomJSON, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, toRoomJSON(rm))
	}
	writeJSON(w, http.StatusOK, struct {
		Rooms  []roomJSON `json:"rooms"`
		Notice *Flash     `json:"notice,omitempty"`
	}{out, popFlash(w, r)})
}

func (h *Handlers) adminHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Admin.ListHotels(r.Context(), callerFrom(r))
	if err != nil {
		h.adminListErr(w, r, err, "admin hotel listing failed")
		return
	}
	type hotelWithRooms struct {
		hotelJSON
		Rooms []roomJSON `json:"rooms"`
	}
	out := make([]hotelWithRooms, 0, len(hotels))
	for _, hw := range hotels {
		rooms := make([]roomJSON, 0, len(hw.Rooms))
		for _, rm := range hw.Rooms {
			rooms = append(rooms, toRoomJSON(rm))
		}
		out = append(out, hotelWithRooms{toHotelJSON(hw.Hotel), rooms})
	}
	writeJSON(w, http.StatusOK, struct {
		Hotels []hotelWithRooms `json:"hotels"`
		Notice *Flash           `json:"notice,omitempty"`
	}{out, popFlash(w, r)})
}

func (h *Handlers) adminBookings(w http.ResponseWriter, r *http.Request) {
	views, err := h.Admin.ListBookings(r.Context(), callerFrom(r))
	if err != nil {
		h.adminListErr(w, r, err, "admin booking listing failed")
		return
	}
	out := make([]bookingJSON, 0, len(views))
	for _, bv := range views {
		out = append(out, toBookingJSON(bv, true))
	}
	writeJSON(w, http.StatusOK, struct {
		Bookings []bookingJSON `json:"bookings"`
		Notice   *Flash        `json:"notice,omitempty"`
	}{out, popFlash(w, r)})
}

func (h *Handlers) adminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Admin.ListUsers(r.Context(), callerFrom(r))
	if err != nil {
		h.adminListErr(w, r, err, "admin user listing failed")
		return
	}
	type userJSON struct {
		ID        int64  `json:"id"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		IsAdmin   bool   `json:"is_admin"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]userJSON, 0, len(users))
	for _, u := range users {
		out = append(out, userJSON{
			ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin,
			CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	writeJSON(w, http.StatusOK, struct {
		Users  []userJSON `json:"users"`
		Notice *Flash     `json:"notice,omitempty"`
	}{out, popFlash(w, r)})
}

// ---- hotel forms ----

func (h *Handlers) adminHotelForm(w http.ResponseWriter, r *http.Request) {
	if guardRedirect(w, r, app.Require(callerFrom(r), app.LevelAdmin)) {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Fields []string `json:"fields"`
		Notice *Flash   `json:"notice,omitempty"`
	}{[]string{"name", "city"}, popFlash(w, r)})
}

func (h *Handlers) adminCreateHotel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Form", "")
		return
	}
	_, err := h.Admin.CreateHotel(r.Context(), callerFrom(r),
		r.PostFormValue("name"), r.PostFormValue("city"))
	if err != nil {
		h.adminWriteErr(w, r, err, "/admin/hotels/create", "create hotel failed")
		return
	}
	setFlash(w, "success", "hotel created")
	redirect(w, r, "/admin/hotels")
}

func (h *Handlers) adminHotelEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	hotel, err := h.Admin.GetHotel(r.Context(), callerFrom(r), id)
	if err != nil {
		h.adminListErr(w, r, err, "admin hotel edit form failed")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Hotel  hotelJSON `json:"hotel"`
		Notice *Flash    `json:"notice,omitempty"`
	}{toHotelJSON(hotel), popFlash(w, r)})
}

func (h *Handlers) adminEditHotel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Form", "")
		return
	}
	err = h.Admin.UpdateHotel(r.Context(), callerFrom(r), id,
		r.PostFormValue("name"), r.PostFormValue("city"))
	if err != nil {
		h.adminWriteErr(w, r, err, "/admin/hotels/"+strconv.FormatInt(id, 10)+"/edit", "update hotel failed")
		return
	}
	setFlash(w, "success", "hotel updated")
	redirect(w, r, "/admin/hotels")
}

// ---- room forms ----

func (h *Handlers) adminRoomForm(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if guardRedirect(w, r, app.Require(caller, app.LevelAdmin)) {
		return
	}
	hotels, err := h.Q.ListHotels(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("admin room form failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]hotelJSON, 0, len(hotels))
	for _, hl := range hotels {
		out = append(out, toHotelJSON(hl))
	}
	writeJSON(w, http.StatusOK, struct {
		Hotels []hotelJSON `json:"hotels"`
		Fields []string    `json:"fields"`
		Notice *Flash      `json:"notice,omitempty"`
	}{out, []string{"number", "room_type", "description", "price_per_night", "capacity", "hotel_id"}, popFlash(w, r)})
}

func (h *Handlers) adminCreateRoom(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Form", "")
		return
	}
	_, err := h.Admin.CreateRoom(r.Context(), callerFrom(r), roomInputFromForm(r))
	if err != nil {
		h.adminWriteErr(w, r, err, "/admin/rooms/create", "create room failed")
		return
	}
	setFlash(w, "success", "room created")
	redirect(w, r, "/admin/rooms")
}

func (h *Handlers) adminRoomEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	caller := callerFrom(r)
	room, err := h.Admin.GetRoom(r.Context(), caller, id)
	if err != nil {
		h.adminListErr(w, r, err, "admin room edit form failed")
		return
	}
	hotels, err := h.Q.ListHotels(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("admin room edit form failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]hotelJSON, 0, len(hotels))
	for _, hl := range hotels {
		out = append(out, toHotelJSON(hl))
	}
	writeJSON(w, http.StatusOK, struct {
		Room   roomJSON    `json:"room"`
		Hotels []hotelJSON `json:"hotels"`
		Notice *Flash      `json:"notice,omitempty"`
	}{toRoomJSON(room), out, popFlash(w, r)})
}

func (h *Handlers) adminEditRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Form", "")
		return
	}
	err = h.Admin.UpdateRoom(r.Context(), callerFrom(r), id, roomInputFromForm(r))
	if err != nil {
		h.adminWriteErr(w, r, err, "/admin/rooms/"+strconv.FormatInt(id, 10)+"/edit", "update room failed")
		return
	}
	setFlash(w, "success", "room updated")
	redirect(w, r, "/admin/rooms")
}

// Numeric fields fall back to zero on garbage input; the service-side
// validation turns that into a field error.
func roomInputFromForm(r *http.Request) app.RoomInput {
	price, _ := strconv.ParseFloat(r.PostFormValue("price_per_night"), 64)
	capacity, _ := strconv.Atoi(r.PostFormValue("capacity"))
	hotelID, _ := strconv.ParseInt(r.PostFormValue("hotel_id"), 10, 64)
	return app.RoomInput{
		Number:        r.PostFormValue("number"),
		RoomType:      r.PostFormValue("room_type"),
		Description:   r.PostFormValue("description"),
		PricePerNight: price,
		Capacity:      capacity,
		HotelID:       hotelID,
	}
}

func (h *Handlers) adminListErr(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if guardRedirect(w, r, err) {
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	log.Error().Err(err).Msg(msg)
	writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handlers) adminWriteErr(w http.ResponseWriter, r *http.Request, err error, backTo, msg string) {
	if guardRedirect(w, r, err) {
		return
	}
	if ve := domain.IsValidationError(err); ve != nil {
		setFlash(w, "danger", ve.Error())
		redirect(w, r, backTo)
		return
	}
	switch {
	case errors.Is(err, domain.ErrDuplicateHotelName), errors.Is(err, domain.ErrDuplicateRoomNum):
		setFlash(w, "danger", err.Error())
		redirect(w, r, backTo)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "")
	default:
		log.Error().Err(err).Msg(msg)
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
