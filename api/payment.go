package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/medbridge/backend/config"
	"github.com/medbridge/backend/middlewares"
	"github.com/medbridge/backend/models"
	"github.com/thedevsaddam/govalidator"
)

// CreateOrder opens a gateway order. The amount query parameter is in rupees.
func CreateOrder(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.CreateOrderRules,
	}
	v := govalidator.New(validatorOpts)
	errs := v.Validate()
	if len(errs) > 0 {
		w.WriteJSON(http.StatusBadRequest, errs, nil, "failed validations")
		return
	}

	var opts models.CreateOrderOpts
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(&opts, r.URL.Query()); err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed decoding amount")
		return
	}

	order, err := ctx.Payments.CreateOrder(r.Context(), models.ToMinorUnits(float64(opts.Amount)))
	if err != nil {
		writeServiceError(w, err, "Error creating order: ")
		return
	}

	w.WriteJSON(http.StatusOK, order, nil, "")
}

// VerifyPayment takes the checkout callback fields. Any JSON scalar is
// accepted for each field, so appointment_id may come as a number or a string.
func VerifyPayment(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.String(http.StatusBadRequest, "Invalid request body")
		return
	}

	opts := models.VerifyPaymentOpts{
		OrderID:       bodyString(body, "order_id"),
		PaymentID:     bodyString(body, "razorpay_payment_id"),
		Signature:     bodyString(body, "razorpay_signature"),
		AppointmentID: bodyString(body, "appointment_id"),
	}

	verified, err := ctx.Payments.Verify(r.Context(), opts)
	if err != nil {
		writeServiceError(w, err, "Payment verification failed: ")
		return
	}

	if !verified {
		w.String(http.StatusBadRequest, "Invalid signature")
		return
	}

	w.String(http.StatusOK, "Payment verified and emails sent successfully")
}

func bodyString(body map[string]interface{}, key string) string {
	switch value := body[key].(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}

// RefundPayment refunds part or all of a payment. The amount is in rupees.
func RefundPayment(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	var opts models.RefundOpts
	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.RefundRules,
		Data:    &opts,
	}
	v := govalidator.New(validatorOpts)
	errs := v.ValidateJSON()
	if len(errs) > 0 {
		w.WriteJSON(http.StatusBadRequest, errs, nil, "failed validations")
		return
	}

	refund, err := ctx.Payments.Refund(r.Context(), opts.PaymentID, models.ToMinorUnits(opts.Amount))
	if err != nil {
		writeServiceError(w, err, "Refund failed: ")
		return
	}

	w.WriteJSON(http.StatusOK, refund, nil, "")
}
