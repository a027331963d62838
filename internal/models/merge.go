package models

import (
	"encoding/json"
	"time"
)

// FallbackMissing is shown when the server omits an optional display field.
const FallbackMissing = "No proporcionado"

// BuildCombined merges a locally cached OrderRecord with the server-fetched
// OrderDetail. Server fields take precedence except for the entered amount,
// which is kept when present; missing optional fields fall back to a literal.
// The merge is a pure function, repeating it with the same inputs yields the
// same record.
func BuildCombined(local OrderRecord, detail OrderDetail, loc *time.Location) CombinedRecord {
	rec := CombinedRecord{
		FiatAmount:         numberString(detail.FiatAmount, "0"),
		CryptoAmountToSend: numberString(detail.CryptoAmount, ""),
		Amount:             local.Amount,
		Currency:           detail.CurrencyID,
		Concept:            local.Concept,
		QRCodeURL:          local.PaymentURI,
		BlockchainAddress:  detail.Address,
		TagMemo:            detail.TagMemo,
		Fiat:               detail.Fiat,
		Status:             detail.Status,
	}
	if rec.Amount == "" {
		rec.Amount = numberString(detail.CryptoAmount, "")
	}
	if rec.QRCodeURL == "" {
		rec.QRCodeURL = detail.PaymentURI
	}
	if rec.TagMemo == "" {
		rec.TagMemo = FallbackMissing
	}
	if rec.BlockchainAddress == "" {
		rec.BlockchainAddress = FallbackMissing
	}
	if detail.CreatedAt != "" {
		rec.CreatedAt = FormatCreatedAt(detail.CreatedAt, loc)
	}
	return rec
}

// ApplyUpdate shallow-merges a live feed frame into the record, inbound fields
// win. Unknown keys are ignored.
func ApplyUpdate(rec *CombinedRecord, fields map[string]json.RawMessage, loc *time.Location) {
	for key, raw := range fields {
		switch key {
		case "status":
			var s PaymentStatus
			if json.Unmarshal(raw, &s) == nil {
				rec.Status = s
			}
		case "fiat_amount":
			if v, ok := rawNumberString(raw); ok {
				rec.FiatAmount = v
			}
		case "crypto_amount":
			if v, ok := rawNumberString(raw); ok {
				rec.CryptoAmountToSend = v
			}
		case "currency_id":
			if v, ok := rawString(raw); ok {
				rec.Currency = v
			}
		case "address":
			if v, ok := rawString(raw); ok && v != "" {
				rec.BlockchainAddress = v
			}
		case "tag_memo":
			if v, ok := rawString(raw); ok && v != "" {
				rec.TagMemo = v
			}
		case "fiat":
			if v, ok := rawString(raw); ok {
				rec.Fiat = v
			}
		case "payment_uri":
			if v, ok := rawString(raw); ok && v != "" {
				rec.QRCodeURL = v
			}
		case "created_at":
			if v, ok := rawString(raw); ok && v != "" {
				rec.CreatedAt = FormatCreatedAt(v, loc)
			}
		}
	}
}

// FormatCreatedAt renders a server RFC3339 timestamp as DD/MM/YYYY HH:MM in
// the given location. Unparseable input is passed through unchanged.
func FormatCreatedAt(createdAt string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return createdAt
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("02/01/2006 15:04")
}

func numberString(n json.Number, fallback string) string {
	if n.String() == "" {
		return fallback
	}
	return n.String()
}

func rawString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func rawNumberString(raw json.RawMessage) (string, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil && n.String() != "" {
		return n.String(), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return "", false
}
