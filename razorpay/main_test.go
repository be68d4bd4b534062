package razorpay

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrders struct {
	create func(data map[string]interface{}) (map[string]interface{}, error)
	fetch  func(orderID string) (map[string]interface{}, error)
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	return f.create(data)
}

func (f *fakeOrders) Fetch(orderID string, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	return f.fetch(orderID)
}

type fakePayments struct {
	refund func(paymentID string, amount int) (map[string]interface{}, error)
}

func (f *fakePayments) Refund(paymentID string, amount int, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	return f.refund(paymentID, amount)
}

func TestCreateOrder(t *testing.T) {
	var sent map[string]interface{}
	rp := &RP{
		Currency: "INR",
		orders: &fakeOrders{create: func(data map[string]interface{}) (map[string]interface{}, error) {
			sent = data
			return map[string]interface{}{"id": "order_1", "amount": float64(50000), "currency": "INR"}, nil
		}},
	}

	order, err := rp.CreateOrder(50000, "rcpt")

	require.NoError(t, err)
	assert.Equal(t, "order_1", order.ID)
	assert.Equal(t, 50000, order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, 1, sent["payment_capture"])
	assert.Equal(t, "rcpt", sent["receipt"])
}

func TestCreateOrderGatewayError(t *testing.T) {
	rp := &RP{
		Currency: "INR",
		orders: &fakeOrders{create: func(map[string]interface{}) (map[string]interface{}, error) {
			return nil, errors.New("Authentication failed")
		}},
	}

	_, err := rp.CreateOrder(100, "rcpt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Authentication failed")
}

func TestCreateOrderWithoutID(t *testing.T) {
	rp := &RP{
		orders: &fakeOrders{create: func(map[string]interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{}, nil
		}},
	}

	_, err := rp.CreateOrder(100, "rcpt")

	assert.Error(t, err)
}

func TestRefund(t *testing.T) {
	rp := &RP{
		payments: &fakePayments{refund: func(paymentID string, amount int) (map[string]interface{}, error) {
			assert.Equal(t, "pay_1", paymentID)
			assert.Equal(t, 25000, amount)
			return map[string]interface{}{"id": "rfnd_1", "status": "processed"}, nil
		}},
	}

	body, err := rp.Refund("pay_1", 25000)

	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", body["id"])
}

func TestFetchOrder(t *testing.T) {
	rp := &RP{
		Currency: "INR",
		orders: &fakeOrders{fetch: func(orderID string) (map[string]interface{}, error) {
			assert.Equal(t, "order_1", orderID)
			return map[string]interface{}{"id": "order_1", "amount": float64(45000), "currency": "INR", "receipt": "rcpt", "status": "paid"}, nil
		}},
	}

	order, err := rp.FetchOrder("order_1")

	require.NoError(t, err)
	assert.Equal(t, 45000, order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rcpt", order.Receipt)
}

func TestFetchOrderGatewayError(t *testing.T) {
	rp := &RP{
		orders: &fakeOrders{fetch: func(string) (map[string]interface{}, error) {
			return nil, errors.New("The id provided does not exist")
		}},
	}

	_, err := rp.FetchOrder("order_missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "The id provided does not exist")
}
