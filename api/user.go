package api

import (
	"net/http"

	"github.com/medbridge/backend/config"
	"github.com/medbridge/backend/helpers"
	"github.com/medbridge/backend/middlewares"
	"github.com/medbridge/backend/models"
	"github.com/thedevsaddam/govalidator"
)

// RegisterPatient creates an active patient account.
func RegisterPatient(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	var opts models.RegisterUserOpts
	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.RegisterUserRules,
		Data:    &opts,
	}
	v := govalidator.New(validatorOpts)
	errs := v.ValidateJSON()
	if len(errs) > 0 {
		w.Write(http.StatusBadRequest, errs, nil, middlewares.Responses.FailedValidations)
		return
	}

	user := newUser(opts, models.ConstRoles.Patient, models.ConstUserStatuses.Active)
	if ok := registerUser(ctx, w, user); !ok {
		return
	}

	w.WriteJSON(http.StatusOK, user, nil, "")
}

// registerUser hashes the password and stores user. It writes the error
// response itself and reports whether the caller may go on.
func registerUser(ctx *config.AppContext, w *middlewares.ResponseWriter, user *models.User) bool {
	counter, err := ctx.DB.CountUsersByEmail(user.Email)
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return false
	}
	if counter > 0 {
		w.Write(http.StatusBadRequest, nil, nil, middlewares.Responses.EmailExists)
		return false
	}

	password, err := helpers.HashPassword(user.Password)
	if err != nil {
		w.WriteJSON(http.StatusInternalServerError, nil, err, "failed hashing password")
		return false
	}
	user.Password = password

	userID, err := ctx.DB.InsertUser(user)
	if err != nil {
		w.WriteJSON(http.StatusInternalServerError, nil, err, "failed inserting user")
		return false
	}
	user.ID = userID

	return true
}

func newUser(opts models.RegisterUserOpts, role, status string) *models.User {
	return &models.User{
		Firstname:  opts.Firstname,
		Lastname:   opts.Lastname,
		Email:      opts.Email,
		Password:   opts.Password,
		Contact:    opts.Contact,
		Age:        opts.Age,
		Sex:        opts.Sex,
		BloodGroup: opts.BloodGroup,
		Street:     opts.Street,
		City:       opts.City,
		Pincode:    opts.Pincode,
		Role:       role,
		Status:     status,
	}
}

// Login checks the credentials and the requested role and returns the user with a token.
func Login(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	var opts models.LoginOpts
	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.LoginRules,
		Data:    &opts,
	}
	v := govalidator.New(validatorOpts)
	errs := v.ValidateJSON()
	if len(errs) > 0 {
		w.Write(http.StatusBadRequest, errs, nil, middlewares.Responses.FailedValidations)
		return
	}

	user, err := ctx.DB.GetUserByEmail(opts.Email)
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}

	if user == nil || !helpers.AuthenticateHashedPassword(user.Password, opts.Password) {
		w.Write(http.StatusUnauthorized, nil, nil, middlewares.Responses.InvalidCredentials)
		return
	}

	if user.Role != opts.Role {
		w.Write(http.StatusBadRequest, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	if !user.IsActive() {
		w.Write(http.StatusBadRequest, nil, nil, middlewares.Responses.DoctorNotVerified)
		return
	}

	token, err := helpers.GenerateToken(user, ctx.Config.JWTSecret, ctx.Config.TokenTTL)
	if err != nil {
		w.WriteJSON(http.StatusInternalServerError, nil, err, "failed generating token")
		return
	}
	user.Token = token

	w.WriteJSON(http.StatusOK, user, nil, "")
}
