package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders/", r.URL.Path)
		assert.Equal(t, "device-1", r.Header.Get("X-Device-Id"))
		assert.Contains(t, r.Header.Get("Authorization"), "Basic ")

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "10.00", body["expected_output_amount"])
		assert.Equal(t, "BTC_TEST", body["input_currency"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"identifier": "ord-1",
			"rate": 40000.12,
			"expected_input_amount": 0.00025,
			"payment_uri": "bitcoin:bc1qxyz?amount=0.00025"
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "device-1", "user", "pass")
	result, err := c.CreateOrder(context.Background(), "10.00", "BTC_TEST")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", result.Identifier)
	assert.Equal(t, "40000.12", result.Rate.String())
	assert.Equal(t, "0.00025", result.ExpectedInputAmount.String())
	assert.Equal(t, "bitcoin:bc1qxyz?amount=0.00025", result.PaymentURI)
}

func TestCreateOrderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad currency", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "device-1", "user", "pass")
	_, err := c.CreateOrder(context.Background(), "10.00", "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestOrderInfoUnwrapsArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/info/ord-1", r.URL.Path)
		_, _ = w.Write([]byte(`[{
			"fiat_amount": 10,
			"currency_id": "BTC",
			"crypto_amount": 0.00025,
			"address": "bc1qxyz",
			"fiat": "EUR",
			"created_at": "2024-01-05T10:30:00Z",
			"status": "PE"
		}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "device-1", "", "")
	detail, err := c.OrderInfo(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "BTC", detail.CurrencyID)
	assert.Equal(t, "0.00025", detail.CryptoAmount.String())
	assert.Equal(t, "bc1qxyz", detail.Address)
}

func TestOrderInfoEmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", "")
	_, err := c.OrderInfo(context.Background(), "ord-1")
	assert.Error(t, err)
}

func TestCurrenciesDisplayNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/currencies", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"symbol": "BTC_TEST", "name": "Bitcoin Test BTC", "image": "btc.svg"},
			{"symbol": "XRP_TEST", "name": "Ripple Test XRP", "image": "xrp.svg"},
			{"symbol": "LTC", "name": "Litecoin", "image": "ltc.svg"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", "")
	currencies, err := c.Currencies(context.Background())
	require.NoError(t, err)
	require.Len(t, currencies, 3)
	assert.Equal(t, "Bitcoin BTC", currencies[0].Name)
	assert.Equal(t, "Ripple XRP", currencies[1].Name)
	assert.Equal(t, "Litecoin", currencies[2].Name)
}
