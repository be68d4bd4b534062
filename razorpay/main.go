package razorpay

import (
	"github.com/medbridge/backend/models"
	"github.com/pkg/errors"
	rzp "github.com/razorpay/razorpay-go"
)

type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type paymentAPI interface {
	Refund(paymentID string, amount int, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RP creates orders and refunds on the Razorpay API.
type RP struct {
	Currency string

	orders   orderAPI
	payments paymentAPI
}

func New(keyID, keySecret, currency string) *RP {
	client := rzp.NewClient(keyID, keySecret)
	return &RP{
		Currency: currency,
		orders:   client.Order,
		payments: client.Payment,
	}
}

// CreateOrder creates an auto-captured order for amount minor units.
func (rp *RP) CreateOrder(amount int, receipt string) (*models.PaymentOrder, error) {
	data := map[string]interface{}{
		"amount":          amount,
		"currency":        rp.Currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}

	body, err := rp.orders.Create(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, "razorpay: failed creating order")
	}

	order, err := rp.parseOrder(body, amount)
	if err != nil {
		return nil, err
	}
	order.Receipt = receipt

	return order, nil
}

// FetchOrder reads an order back from the gateway, with the amount it was created for.
func (rp *RP) FetchOrder(orderID string) (*models.PaymentOrder, error) {
	body, err := rp.orders.Fetch(orderID, nil, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "razorpay: failed fetching order %s", orderID)
	}

	order, err := rp.parseOrder(body, 0)
	if err != nil {
		return nil, err
	}
	if receipt, ok := body["receipt"].(string); ok {
		order.Receipt = receipt
	}

	return order, nil
}

func (rp *RP) parseOrder(body map[string]interface{}, amount int) (*models.PaymentOrder, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, errors.New("razorpay: order response without id")
	}

	order := models.PaymentOrder{
		ID:       id,
		Amount:   amount,
		Currency: rp.Currency,
	}
	if value, ok := body["amount"].(float64); ok {
		order.Amount = int(value)
	}
	if value, ok := body["currency"].(string); ok && value != "" {
		order.Currency = value
	}

	return &order, nil
}

// Refund refunds amount minor units of a captured payment and returns the gateway response.
func (rp *RP) Refund(paymentID string, amount int) (map[string]interface{}, error) {
	body, err := rp.payments.Refund(paymentID, amount, nil, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "razorpay: failed refunding payment %s", paymentID)
	}

	return body, nil
}
