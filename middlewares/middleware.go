package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/medbridge/backend/config"
	"github.com/medbridge/backend/helpers"
	"github.com/medbridge/backend/models"
	jwtmiddleware "github.com/mfuentesg/go-jwtmiddleware"
	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

const requestIDHeader = "X-Request-ID"

func jwtErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)
	if err.Error() == "Token is expired" {
		rw.Error(http.StatusUnauthorized, "unauthorized", WithErrorScope("token"), WithErrorType(1))
		return
	}
	rw.Error(http.StatusUnauthorized, "unauthorized", WithErrorScope("token"))
}

func NewJWTMiddleware(secret []byte) *jwtmiddleware.Middleware {
	return jwtmiddleware.New(
		jwtmiddleware.WithErrorHandler(jwtErrorHandler),
		jwtmiddleware.WithSigningMethod(jwt.SigningMethodHS256),
		jwtmiddleware.WithSignKey(secret),
		jwtmiddleware.WithUserProperty("_jwt-token"),
	)
}

// LoggerRequest attaches a request scoped logger to the request context.
func LoggerRequest(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	rw.Header().Set(requestIDHeader, requestID)

	requestLogger := config.GetLogger().WithFields(log.Fields{
		"request_id": requestID,
		"query":      r.URL.Query(),
		"host":       r.Host,
		"url":        r.URL.Path,
		"method":     r.Method,
	})
	requestLogger.Info("logger_request")
	next(rw, r.WithContext(config.WithLogger(r.Context(), requestLogger)))
}

func UserMiddleware() negroni.HandlerFunc {
	return negroni.HandlerFunc(func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		authorization := r.Header.Get("Authorization")
		if len(authorization) == 0 {
			authorization = r.URL.Query().Get("token")
			r.Header.Set("Authorization", authorization)
		}
		token := strings.Split(authorization, " ")
		if len(token) != 2 {
			next(rw, r)
			return
		}

		data, _ := helpers.ParserTokenUnverified(token[1])
		tokenParse, ok := data["u"].(map[string]interface{})
		if !ok {
			next(rw, r)
			return
		}

		dataInfo := models.InfoUser{}
		mapstructure.Decode(map[string]interface{}{
			"ID":    tokenParse["i"],
			"Role":  tokenParse["r"],
			"Email": tokenParse["email"],
		}, &dataInfo)

		dataInfo.IsAdmin = dataInfo.Role == models.ConstRoles.Admin
		dataInfo.IsDoctor = dataInfo.Role == models.ConstRoles.Doctor
		dataInfo.IsPatient = dataInfo.Role == models.ConstRoles.Patient
		if !dataInfo.IsAdmin && !dataInfo.IsDoctor && !dataInfo.IsPatient {
			NewResponseWriter(rw, r).Error(http.StatusUnauthorized, "unauthorized", WithErrorScope("token"))
			return
		}

		user := map[string]interface{}{
			"ID":        dataInfo.ID,
			"Email":     dataInfo.Email,
			"Role":      dataInfo.Role,
			"IsAdmin":   dataInfo.IsAdmin,
			"IsDoctor":  dataInfo.IsDoctor,
			"IsPatient": dataInfo.IsPatient,
		}
		ctx := context.WithValue(r.Context(), string("user"), user)
		ctx = config.WithLogger(ctx, config.LoggerFrom(ctx).WithField("user_id", dataInfo.ID))
		next(rw, r.WithContext(ctx))
	})
}

// UserInfo returns the caller decoded by UserMiddleware.
func UserInfo(r *http.Request) models.InfoUser {
	userInfo := models.InfoUser{}
	mapstructure.Decode(r.Context().Value("user"), &userInfo)
	return userInfo
}
