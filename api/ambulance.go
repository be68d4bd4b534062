package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/medbridge/backend/config"
	"github.com/medbridge/backend/middlewares"
	"github.com/medbridge/backend/models"
	"github.com/thedevsaddam/govalidator"
)

func BookAmbulance(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	var opts models.BookAmbulanceOpts
	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.BookAmbulanceRules,
		Data:    &opts,
	}
	v := govalidator.New(validatorOpts)
	errs := v.ValidateJSON()
	if len(errs) > 0 {
		w.WriteJSON(http.StatusBadRequest, errs, nil, "failed validations")
		return
	}

	booking, err := ctx.Ambulances.Book(r.Context(), opts)
	if err != nil {
		w.String(http.StatusInternalServerError, "Failed to book ambulance: "+err.Error())
		return
	}

	w.WriteJSON(http.StatusOK, booking, nil, "")
}

func GetAmbulanceBookings(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	bookings, err := ctx.Ambulances.List(r.Context())
	if err != nil {
		w.String(http.StatusInternalServerError, "Failed to get bookings: "+err.Error())
		return
	}

	if bookings == nil {
		bookings = []models.AmbulanceBooking{}
	}

	w.WriteJSON(http.StatusOK, bookings, nil, "")
}

func GetAmbulanceBooking(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.Atoi(mux.Vars(r)["bookingId"])
	if err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed parsing booking id")
		return
	}

	booking, err := ctx.Ambulances.Get(r.Context(), bookingID)
	if err != nil {
		writeServiceJSONError(w, err, "failed getting booking")
		return
	}

	w.WriteJSON(http.StatusOK, booking, nil, "")
}

// CompleteAmbulanceBooking closes the booking and frees its ambulance.
func CompleteAmbulanceBooking(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.Atoi(mux.Vars(r)["bookingId"])
	if err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed parsing booking id")
		return
	}

	booking, err := ctx.Ambulances.Complete(r.Context(), bookingID)
	if err != nil {
		writeServiceJSONError(w, err, "failed completing booking")
		return
	}

	w.WriteJSON(http.StatusOK, booking, nil, "")
}
