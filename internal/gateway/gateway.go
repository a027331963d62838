package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cryptocheckout/internal/models"
)

// Client talks to the external payments API. All business logic (rates,
// address generation, settlement) lives on the other side; this client only
// shapes requests and unwraps responses.
type Client struct {
	baseURL  string
	client   *http.Client
	deviceID string
	auth     string
}

func NewClient(baseURL, deviceID, username, password string) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
		deviceID: deviceID,
	}
	if username != "" {
		c.auth = "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
	}
	return c
}

type createOrderRequest struct {
	ExpectedOutputAmount string `json:"expected_output_amount"`
	InputCurrency        string `json:"input_currency"`
}

// CreateOrderResult carries the fields persisted into the local OrderRecord.
type CreateOrderResult struct {
	Identifier          string      `json:"identifier"`
	Rate                json.Number `json:"rate"`
	ExpectedInputAmount json.Number `json:"expected_input_amount"`
	PaymentURI          string      `json:"payment_uri"`
}

func (c *Client) CreateOrder(ctx context.Context, amount, currency string) (*CreateOrderResult, error) {
	body, err := json.Marshal(createOrderRequest{
		ExpectedOutputAmount: amount,
		InputCurrency:        currency,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	var result CreateOrderResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if result.Identifier == "" {
		return nil, errors.New("order response missing identifier")
	}
	return &result, nil
}

// OrderInfo fetches the order detail. The endpoint returns a single-element
// array wrapping the detail object.
func (c *Client) OrderInfo(ctx context.Context, identifier string) (models.OrderDetail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/info/"+identifier, nil)
	if err != nil {
		return models.OrderDetail{}, err
	}
	c.setHeaders(req)

	var details []models.OrderDetail
	if err := c.do(req, &details); err != nil {
		return models.OrderDetail{}, err
	}
	if len(details) == 0 {
		return models.OrderDetail{}, errors.New("order info response is empty")
	}
	return details[0], nil
}

// displayNames rewrites test-network names to friendlier labels.
var displayNames = []struct {
	match string
	name  string
}{
	{"Bitcoin Cash Test", "Bitcoin BCH"},
	{"Bitcoin Test", "Bitcoin BTC"},
	{"Ethereum Goerli", "Ethereum ETH"},
	{"Ripple Test", "Ripple XRP"},
	{"USD Coin", "USD Coin USDC"},
}

func (c *Client) Currencies(ctx context.Context) ([]models.Currency, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/currencies", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	var currencies []models.Currency
	if err := c.do(req, &currencies); err != nil {
		return nil, err
	}
	for i, cur := range currencies {
		for _, dn := range displayNames {
			if strings.Contains(cur.Name, dn.match) {
				currencies[i].Name = dn.name
				break
			}
		}
	}
	return currencies, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("payments api status %d: %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("payments api status %d", resp.StatusCode)
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(out)
}
