package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/medbridge/backend/config"
	"github.com/medbridge/backend/helpers"
	"github.com/medbridge/backend/middlewares"
	"github.com/medbridge/backend/models"
	"github.com/pkg/errors"
	"github.com/thedevsaddam/govalidator"
)

const maxDoctorFormSize = 10 << 20

// RegisterDoctor takes a multipart form with the doctor JSON in the "doctor"
// part and the profile picture in the "image" part. The account stays
// PENDING until an admin verifies it.
func RegisterDoctor(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxDoctorFormSize); err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed parsing multipart form")
		return
	}

	// The doctor part is validated as a JSON body of its own.
	doctorReq, err := http.NewRequest(http.MethodPost, r.URL.String(), strings.NewReader(r.FormValue("doctor")))
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}
	doctorReq.Header.Set("Content-Type", "application/json")

	var opts models.RegisterDoctorOpts
	validatorOpts := govalidator.Options{
		Request: doctorReq,
		Rules:   models.RegisterDoctorRules,
		Data:    &opts,
	}
	v := govalidator.New(validatorOpts)
	errs := v.ValidateJSON()
	if len(errs) > 0 {
		w.Write(http.StatusBadRequest, errs, nil, middlewares.Responses.FailedValidations)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "image is required")
		return
	}
	defer file.Close()

	imageName := helpers.ImageName(header.Filename)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if err := ctx.Images.Upload(imageName, contentType, file); err != nil {
		w.WriteJSON(http.StatusInternalServerError, nil, err, "failed storing image")
		return
	}

	user := newUser(opts.RegisterUserOpts, models.ConstRoles.Doctor, models.ConstUserStatuses.Pending)
	user.Doctor = &models.DoctorProfile{
		Speciality: opts.Speciality,
		Experience: opts.Experience,
		Fees:       opts.Fees,
		ImageName:  imageName,
	}
	if ok := registerUser(ctx, w, user); !ok {
		return
	}

	w.WriteJSON(http.StatusOK, user, nil, "")
}

func GetDoctors(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	writeDoctors(ctx, w, "")
}

func GetPendingDoctors(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	writeDoctors(ctx, w, models.ConstUserStatuses.Pending)
}

func writeDoctors(ctx *config.AppContext, w *middlewares.ResponseWriter, status string) {
	doctors, err := ctx.DB.GetUsersByRole(models.ConstRoles.Doctor, status)
	if err != nil {
		w.WriteJSON(http.StatusInternalServerError, nil, err, "failed getting doctors")
		return
	}

	if doctors == nil {
		doctors = []models.User{}
	}

	w.WriteJSON(http.StatusOK, doctors, nil, "")
}

// VerifyDoctor activates a pending doctor account. Admins only.
func VerifyDoctor(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	userInfo := middlewares.UserInfo(r)
	if !userInfo.IsAdmin {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	doctorID, err := strconv.Atoi(mux.Vars(r)["doctorId"])
	if err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed parsing doctor id")
		return
	}

	doctor, err := ctx.DB.GetUserByID(doctorID)
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}

	if doctor == nil {
		w.Write(http.StatusNotFound, nil, nil, middlewares.Responses.UserNotFound)
		return
	}

	if doctor.Role != models.ConstRoles.Doctor {
		w.WriteJSON(http.StatusBadRequest, nil, nil, "User is not a doctor")
		return
	}

	if err := ctx.DB.UpdateUserStatus(doctorID, models.ConstUserStatuses.Active); err != nil {
		w.WriteJSON(http.StatusInternalServerError, nil, err, "Failed to verify doctor")
		return
	}
	doctor.Status = models.ConstUserStatuses.Active

	w.WriteJSON(http.StatusOK, doctor, nil, "")
}

func GetSpecialists(_ *config.AppContext, w *middlewares.ResponseWriter, _ *http.Request) {
	w.WriteJSON(http.StatusOK, models.Specialities, nil, "")
}

func GetDoctorsBySpeciality(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	doctors, err := ctx.DB.GetDoctorsBySpeciality(mux.Vars(r)["speciality"])
	if err != nil {
		w.WriteJSON(http.StatusInternalServerError, nil, err, "failed getting doctors")
		return
	}

	details := make([]models.DoctorDetails, 0, len(doctors))
	for _, doctor := range doctors {
		detail := models.DoctorDetails{
			ID:        doctor.ID,
			Firstname: doctor.Firstname,
			Lastname:  doctor.Lastname,
		}
		if doctor.Doctor != nil {
			detail.Speciality = doctor.Doctor.Speciality
		}
		details = append(details, detail)
	}

	w.WriteJSON(http.StatusOK, details, nil, "")
}

func GetDoctorImage(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	image, contentType, err := ctx.Images.Download(mux.Vars(r)["imageName"])
	if err != nil {
		if errors.Is(err, helpers.ErrImageNotFound) {
			w.Write(http.StatusNotFound, nil, err, middlewares.Responses.ImageNotFound)
			return
		}
		w.WriteJSON(http.StatusInternalServerError, nil, err, "failed getting image")
		return
	}

	if contentType == "" {
		contentType = http.DetectContentType(bytes.TrimSpace(image))
	}

	w.Bytes(http.StatusOK, contentType, image)
}

// GetDoctorAppointments lists the appointments of ?doctorId= as the doctor sees them.
func GetDoctorAppointments(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.GetDoctorAppointmentsRules,
	}
	v := govalidator.New(validatorOpts)
	errs := v.Validate()
	if len(errs) > 0 {
		w.Write(http.StatusBadRequest, errs, nil, middlewares.Responses.FailedValidations)
		return
	}

	var opts models.GetDoctorAppointmentsOpts
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(&opts, r.URL.Query()); err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed decoding doctor id")
		return
	}

	appointments, err := ctx.Appointments.ListByDoctor(r.Context(), opts.DoctorID)
	if err != nil {
		writeServiceJSONError(w, err, "failed getting appointments")
		return
	}

	w.WriteJSON(http.StatusOK, appointments, nil, "")
}
