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

func InsertAppointment(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	userInfo := middlewares.UserInfo(r)
	if !userInfo.IsPatient {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	var opts models.InsertAppointmentOpts
	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.InsertAppointmentRules,
		Data:    &opts,
	}
	v := govalidator.New(validatorOpts)
	errs := v.ValidateJSON()
	if len(errs) > 0 {
		w.Write(http.StatusBadRequest, errs, nil, middlewares.Responses.FailedValidations)
		return
	}

	appointment, err := ctx.Appointments.Create(r.Context(), userInfo.ID, opts)
	if err != nil {
		writeServiceJSONError(w, err, "failed inserting appointment")
		return
	}

	w.WriteJSON(http.StatusOK, appointment, nil, "")
}

// GetAppointment returns one appointment to its patient, its doctor or an admin.
func GetAppointment(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	userInfo := middlewares.UserInfo(r)

	appointmentID, err := strconv.Atoi(mux.Vars(r)["appointmentId"])
	if err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed parsing appointment id")
		return
	}

	appointment, err := ctx.Appointments.Get(r.Context(), appointmentID)
	if err != nil {
		if serviceStatus(err) == http.StatusNotFound {
			w.Write(http.StatusNotFound, nil, err, middlewares.Responses.AppointmentNotFound)
			return
		}
		writeServiceJSONError(w, err, "failed getting appointment")
		return
	}

	if !userInfo.IsAdmin && appointment.PatientID != userInfo.ID && appointment.DoctorID != userInfo.ID {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	w.WriteJSON(http.StatusOK, appointment, nil, "")
}

func GetPatientAppointments(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	userInfo := middlewares.UserInfo(r)
	if !userInfo.IsPatient {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	appointments, err := ctx.Appointments.ListByPatient(r.Context(), userInfo.ID)
	if err != nil {
		writeServiceJSONError(w, err, "failed getting appointments")
		return
	}

	if appointments == nil {
		appointments = []models.Appointment{}
	}

	w.WriteJSON(http.StatusOK, appointments, nil, "")
}

// GetMyDoctorAppointments lists the caller's appointments when the caller is a doctor.
func GetMyDoctorAppointments(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	userInfo := middlewares.UserInfo(r)
	if !userInfo.IsDoctor {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	appointments, err := ctx.Appointments.ListByDoctor(r.Context(), userInfo.ID)
	if err != nil {
		writeServiceJSONError(w, err, "failed getting appointments")
		return
	}

	w.WriteJSON(http.StatusOK, appointments, nil, "")
}

func AssignAppointmentDoctor(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	userInfo := middlewares.UserInfo(r)
	if !userInfo.IsAdmin {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	appointmentID, err := strconv.Atoi(mux.Vars(r)["appointmentId"])
	if err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed parsing appointment id")
		return
	}

	var opts models.AssignDoctorOpts
	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.AssignDoctorRules,
		Data:    &opts,
	}
	v := govalidator.New(validatorOpts)
	errs := v.ValidateJSON()
	if len(errs) > 0 {
		w.Write(http.StatusBadRequest, errs, nil, middlewares.Responses.FailedValidations)
		return
	}

	appointment, err := ctx.Appointments.AssignDoctor(r.Context(), appointmentID, opts)
	if err != nil {
		writeServiceJSONError(w, err, "failed assigning doctor")
		return
	}

	w.WriteJSON(http.StatusOK, appointment, nil, "")
}

// UpdateAppointmentTreatment lets the appointment's doctor, or an admin, record the treatment.
func UpdateAppointmentTreatment(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	userInfo := middlewares.UserInfo(r)
	if !userInfo.IsDoctor && !userInfo.IsAdmin {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	appointmentID, err := strconv.Atoi(mux.Vars(r)["appointmentId"])
	if err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed parsing appointment id")
		return
	}

	var opts models.UpdateTreatmentOpts
	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.UpdateTreatmentRules,
		Data:    &opts,
	}
	v := govalidator.New(validatorOpts)
	errs := v.ValidateJSON()
	if len(errs) > 0 {
		w.Write(http.StatusBadRequest, errs, nil, middlewares.Responses.FailedValidations)
		return
	}

	doctorID := userInfo.ID
	if userInfo.IsAdmin {
		doctorID = 0
	}

	appointment, err := ctx.Appointments.UpdateTreatment(r.Context(), appointmentID, doctorID, opts)
	if err != nil {
		writeServiceJSONError(w, err, "failed updating treatment")
		return
	}

	w.WriteJSON(http.StatusOK, appointment, nil, "")
}
