package middlewares

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/medbridge/backend/config"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type ResponseWriter struct {
	Writer   http.ResponseWriter
	Logger   *log.Entry
	Language string
}

func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	rw := &ResponseWriter{
		Writer: w,
		Logger: config.LoggerFrom(r.Context()),
	}
	rw.GetRequestLanguage(r)
	return rw
}

type generalResponse struct {
	Errors  []*errorResponse `json:"errors"`
	Success bool             `json:"success"`
	Data    interface{}      `json:"data"`
}

type errorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Scope   string      `json:"scope"`
	Type    int         `json:"type"`
	Data    interface{} `json:"data"`
}

type ErrOption func(*errorResponse)

func WithErrorType(errType int) ErrOption {
	return func(err *errorResponse) {
		err.Type = errType
	}
}

func WithErrorScope(scope string) ErrOption {
	return func(err *errorResponse) {
		err.Scope = scope
	}
}

func (r *ResponseWriter) logger() *log.Entry {
	if r.Logger == nil {
		return config.GetLogger()
	}
	return r.Logger
}

// GetRequestLanguage picks the message language from Accept-Language, English by default.
func (r *ResponseWriter) GetRequestLanguage(req *http.Request) {
	r.Language = Language.English
	accept := strings.ToLower(req.Header.Get("Accept-Language"))
	for lang := range LanguageMap {
		if strings.HasPrefix(accept, lang) {
			r.Language = lang
			return
		}
	}
}

func (r *ResponseWriter) writeJSONResponse(code int, errors []*errorResponse, data interface{}) {
	response := &generalResponse{Errors: errors, Success: errors == nil, Data: data}
	r.writePlainJSONResponse(code, response)
}

func (r *ResponseWriter) writePlainJSONResponse(statusCode int, data interface{}) {
	b, err := json.Marshal(data)
	if err != nil {
		r.logger().WithError(err).Error("failed encoding response")
		r.Writer.WriteHeader(http.StatusInternalServerError)
		r.Writer.Write([]byte(fmt.Sprintf("unexpected error: %v", err)))
		return
	}

	r.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	r.Writer.WriteHeader(statusCode)

	if _, err := r.Writer.Write(b); err != nil {
		r.logger().WithError(err).Warn("could not write response")
	}
}

func (r *ResponseWriter) logStatus(statusCode int, data interface{}, err error, message string) {
	fields := log.Fields{"status_code": statusCode}
	if statusCode < 300 {
		r.logger().WithFields(fields).Info("success")
		return
	}
	if err == nil {
		err = errors.New(message)
	}
	fields["errors"] = data
	r.logger().WithFields(fields).Error(err)
}

// WriteJSON writes data as is. Error statuses without data get {"error": message}.
func (r *ResponseWriter) WriteJSON(statusCode int, data interface{}, err error, message string) {
	if statusCode >= 300 && data == nil {
		data = map[string]interface{}{
			"error": message,
		}
	}
	r.logStatus(statusCode, data, err, message)
	r.writePlainJSONResponse(statusCode, data)
}

// Write is WriteJSON with a message in the request language.
func (r *ResponseWriter) Write(statusCode int, data interface{}, err error, message *NewRM) {
	r.WriteJSON(statusCode, data, err, message.In(r.Language))
}

func (r *ResponseWriter) JSON(code int, data interface{}) {
	r.writeJSONResponse(code, nil, data)
}

// String writes a plain text body, logging errors like WriteJSON does.
func (r *ResponseWriter) String(code int, msg string) {
	r.logStatus(code, nil, nil, msg)
	r.Writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	r.Writer.WriteHeader(code)
	if _, err := r.Writer.Write([]byte(msg)); err != nil {
		r.logger().WithError(err).Warn("could not write response")
	}
}

func (r *ResponseWriter) Stringf(code int, format string, args ...interface{}) {
	r.String(code, fmt.Sprintf(format, args...))
}

func (r *ResponseWriter) Bytes(code int, contentType string, body []byte) {
	r.Writer.Header().Set("Content-Type", contentType)
	r.Writer.WriteHeader(code)
	if _, err := r.Writer.Write(body); err != nil {
		r.logger().WithError(err).Warn("could not write response")
	}
}

func (r *ResponseWriter) Errorf(code int, format string, args ...interface{}) {
	errors := []*errorResponse{
		{Code: code, Message: fmt.Sprintf(format, args...)},
	}
	r.writeJSONResponse(code, errors, nil)
}

func (r *ResponseWriter) Error(code int, msg string, opts ...ErrOption) {
	err := &errorResponse{Code: code, Message: msg}
	for _, With := range opts {
		With(err)
	}
	r.writeJSONResponse(code, []*errorResponse{err}, nil)
}
