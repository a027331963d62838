package models

import "encoding/json"

type PaymentStatus string

const (
	StatusCompleted    PaymentStatus = "CO"
	StatusAccepted     PaymentStatus = "AC"
	StatusExpired      PaymentStatus = "EX"
	StatusCancelled    PaymentStatus = "OC"
	StatusPending      PaymentStatus = "PE"
	StatusInsufficient PaymentStatus = "IA"
	StatusRefunded     PaymentStatus = "RF"
	StatusFailed       PaymentStatus = "FA"
)

// Outcome classifies a status code by the side effect it triggers.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailure
	OutcomeAlert
)

func (s PaymentStatus) Outcome() Outcome {
	switch s {
	case StatusCompleted, StatusAccepted:
		return OutcomeSuccess
	case StatusExpired, StatusCancelled:
		return OutcomeFailure
	case StatusPending, StatusInsufficient, StatusRefunded, StatusFailed:
		return OutcomeAlert
	default:
		return OutcomeNone
	}
}

func (s PaymentStatus) Known() bool {
	return s.Outcome() != OutcomeNone
}

type AlertLevel string

const (
	AlertWarning AlertLevel = "warning"
	AlertInfo    AlertLevel = "info"
	AlertError   AlertLevel = "error"
)

type Alert struct {
	Title   string     `json:"title"`
	Message string     `json:"message"`
	Level   AlertLevel `json:"level"`
}

// Alert returns the modal shown for the non-navigating statuses.
func (s PaymentStatus) Alert() (Alert, bool) {
	switch s {
	case StatusPending:
		return Alert{Title: "Pago Pendiente", Message: "El pago está pendiente de confirmación.", Level: AlertWarning}, true
	case StatusInsufficient:
		return Alert{Title: "Cantidad Insuficiente", Message: "La cantidad de criptomoneda es menor que la requerida.", Level: AlertInfo}, true
	case StatusRefunded:
		return Alert{Title: "Pago reembolsado", Message: "La transacción ha sido reembolsada.", Level: AlertInfo}, true
	case StatusFailed:
		return Alert{Title: "Pago Fallido", Message: "El pago ha fallado.", Level: AlertError}, true
	}
	return Alert{}, false
}

// OrderRecord is the locally persisted data captured at order creation time.
// Identifier is the join key with the server-fetched detail.
type OrderRecord struct {
	Identifier   string `json:"identifier"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	Concept      string `json:"concept"`
	Rate         string `json:"rate,omitempty"`
	CryptoAmount string `json:"crypto_amount,omitempty"`
	PaymentURI   string `json:"payment_uri,omitempty"`
}

func (r OrderRecord) IsZero() bool {
	return r == OrderRecord{}
}

// OrderDetail is the server-authoritative order data fetched by identifier.
// The orders-info endpoint wraps it in a single-element array.
type OrderDetail struct {
	FiatAmount   json.Number   `json:"fiat_amount"`
	CurrencyID   string        `json:"currency_id"`
	CryptoAmount json.Number   `json:"crypto_amount"`
	TagMemo      string        `json:"tag_memo"`
	Address      string        `json:"address"`
	Fiat         string        `json:"fiat"`
	CreatedAt    string        `json:"created_at"`
	Status       PaymentStatus `json:"status"`
	PaymentURI   string        `json:"payment_uri"`
}

// CombinedRecord is the merged view-model of OrderRecord, OrderDetail and
// subsequent live updates.
type CombinedRecord struct {
	FiatAmount         string        `json:"fiat_amount"`
	CryptoAmountToSend string        `json:"cryptoAmountToSend"`
	Amount             string        `json:"amount"`
	Currency           string        `json:"currency"`
	Concept            string        `json:"concept"`
	QRCodeURL          string        `json:"qrCodeUrl"`
	BlockchainAddress  string        `json:"blockchainAddress"`
	TagMemo            string        `json:"tagMemo"`
	Fiat               string        `json:"fiat"`
	CreatedAt          string        `json:"created_at"`
	Status             PaymentStatus `json:"status"`
}

type Currency struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  string `json:"image"`
}
