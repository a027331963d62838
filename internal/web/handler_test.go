package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptocheckout/internal/gateway"
	"cryptocheckout/internal/models"
	"cryptocheckout/internal/services"
	"cryptocheckout/internal/session"
	"cryptocheckout/internal/store"
	"cryptocheckout/internal/wallet"
)

// paymentsStub fakes the external payments API.
func paymentsStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"identifier": "ord-1",
			"rate": 40000,
			"expected_input_amount": 0.00025,
			"payment_uri": "bitcoin:bc1qxyz"
		}`))
	})
	mux.HandleFunc("GET /orders/info/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{
			"fiat_amount": 10,
			"currency_id": "BTC",
			"crypto_amount": 0.00025,
			"address": "bc1qxyz",
			"fiat": "EUR",
			"created_at": "2024-01-05T10:30:00Z",
			"status": "PE"
		}]`))
	})
	mux.HandleFunc("GET /currencies", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"symbol": "BTC_TEST", "name": "Bitcoin Test BTC", "image": "btc.svg"},
			{"symbol": "ETH_TEST", "name": "Ethereum Goerli ETH", "image": "eth.svg"}
		]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, provider wallet.Provider) *httptest.Server {
	t.Helper()
	upstream := paymentsStub(t)
	client := gateway.NewClient(upstream.URL, "device-1", "user", "pass")

	orders := store.NewMemoryOrders()
	manager := session.NewManager(orders, store.NewMemoryDeadlines(), client, "", 900*time.Second)
	manager.Location = time.UTC
	t.Cleanup(manager.Shutdown)

	handler := NewHandler(
		&services.OrderService{Gateway: client, Orders: orders},
		manager,
		client,
		provider,
	)
	app := httptest.NewServer(NewServer(handler).Router)
	t.Cleanup(app.Close)
	return app
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCreateOrderEndpoint(t *testing.T) {
	app := newTestApp(t, nil)

	resp := postJSON(t, app.URL+"/api/orders", `{"amount": "10", "currency": "BTC_TEST", "concept": "coffee"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ord-1", body["identifier"])
	assert.Equal(t, "/payment/ord-1", body["location"])
}

func TestCreateOrderValidation(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"too many decimals", `{"amount": "10.505", "currency": "BTC_TEST"}`},
		{"zero", `{"amount": "0", "currency": "BTC_TEST"}`},
		{"negative", `{"amount": "-5", "currency": "BTC_TEST"}`},
		{"empty amount", `{"amount": "", "currency": "BTC_TEST"}`},
		{"no currency", `{"amount": "10.00"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app.URL+"/api/orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetOrderReturnsCombinedRecord(t *testing.T) {
	app := newTestApp(t, nil)

	require.Eventually(t, func() bool {
		resp, err := http.Get(app.URL + "/api/orders/ord-1")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var body struct {
			Loading bool                   `json:"loading"`
			Record  *models.CombinedRecord `json:"record"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) != nil {
			return false
		}
		return !body.Loading && body.Record != nil && body.Record.Currency == "BTC"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestListCurrencies(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := http.Get(app.URL + "/api/currencies")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	currencies := decode[[]models.Currency](t, resp)
	require.Len(t, currencies, 2)
	assert.Equal(t, "Bitcoin BTC", currencies[0].Name)
	assert.Equal(t, "Ethereum ETH", currencies[1].Name)
}

func TestListCurrenciesSearch(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := http.Get(app.URL + "/api/currencies?search=ripple")
	require.NoError(t, err)
	defer resp.Body.Close()

	currencies := decode[[]models.Currency](t, resp)
	assert.Empty(t, currencies)

	resp2, err := http.Get(app.URL + "/api/currencies?search=bitcoin")
	require.NoError(t, err)
	defer resp2.Body.Close()

	currencies = decode[[]models.Currency](t, resp2)
	require.Len(t, currencies, 1)
	assert.Equal(t, "BTC_TEST", currencies[0].Symbol)
}

func TestSelectPaymentMethodWithoutProvider(t *testing.T) {
	app := newTestApp(t, nil)

	resp := postJSON(t, app.URL+"/api/orders/ord-1/payment-method", `{"method": "web3"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[wallet.Result](t, resp)
	assert.Equal(t, wallet.ModeSmartQR, result.Mode, "mode stays on QR")
	require.NotNil(t, result.Alert)
	assert.Equal(t, models.AlertWarning, result.Alert.Level)
}

type approvingProvider struct{}

func (approvingProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{"0xabc"}, nil
}

type rejectingProvider struct{}

func (rejectingProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	return nil, errors.New("user rejected")
}

func TestSelectPaymentMethodHandshake(t *testing.T) {
	app := newTestApp(t, approvingProvider{})

	resp := postJSON(t, app.URL+"/api/orders/ord-1/payment-method", `{"method": "web3"}`)
	result := decode[wallet.Result](t, resp)
	assert.Equal(t, wallet.ModeWeb3, result.Mode)
	assert.Equal(t, "0xabc", result.Account)
}

func TestSelectPaymentMethodRejected(t *testing.T) {
	app := newTestApp(t, rejectingProvider{})

	resp := postJSON(t, app.URL+"/api/orders/ord-1/payment-method", `{"method": "web3"}`)
	result := decode[wallet.Result](t, resp)
	assert.Equal(t, wallet.ModeSmartQR, result.Mode)
	require.NotNil(t, result.Alert)
	assert.Equal(t, models.AlertError, result.Alert.Level)
}

func TestSelectPaymentMethodUnknown(t *testing.T) {
	app := newTestApp(t, nil)

	resp := postJSON(t, app.URL+"/api/orders/ord-1/payment-method", `{"method": "cash"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNavigationTargets(t *testing.T) {
	app := newTestApp(t, nil)

	for _, path := range []string{"/payment/payment-success", "/payment/payment-failure"} {
		resp, err := http.Get(app.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}
}

func TestStreamEventsBridge(t *testing.T) {
	app := newTestApp(t, nil)

	wsEndpoint := "ws" + strings.TrimPrefix(app.URL, "http") + "/ws/ord-1"
	conn, _, err := websocket.DefaultDialer.Dial(wsEndpoint, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	sawRecord := false
	for i := 0; i < 5 && !sawRecord; i++ {
		var ev session.Event
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Kind == session.EventRecord {
			sawRecord = true
			require.NotNil(t, ev.Record)
			assert.Equal(t, "BTC", ev.Record.Currency)
		}
	}
	assert.True(t, sawRecord, "bridge must deliver the combined record")
}
