package services

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"cryptocheckout/internal/gateway"
	"cryptocheckout/internal/logger"
	"cryptocheckout/internal/metrics"
	"cryptocheckout/internal/models"
	"cryptocheckout/internal/store"
)

var (
	ErrInvalidAmount   = errors.New("amount must be a positive number with at most two decimals")
	ErrMissingCurrency = errors.New("no currency selected")
)

// amountPattern mirrors the checkout form rule: non-negative integer part,
// optional dot and up to two decimals.
var amountPattern = regexp.MustCompile(`^\d+(\.\d{0,2})?$`)

type OrderService struct {
	Gateway *gateway.Client
	Orders  store.OrderRepository
}

// ValidateAmount reports whether the form would allow submission.
func ValidateAmount(amount string) error {
	if !amountPattern.MatchString(amount) {
		return ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil || v <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NormalizeAmount canonicalizes a valid amount to two decimals, the same
// normalization the form applies on blur.
func NormalizeAmount(amount string) string {
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return amount
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Create validates the input, submits the order to the payments API and
// persists the returned metadata as one local record. There is no retry; a
// failed creation leaves nothing behind.
func (s *OrderService) Create(ctx context.Context, amount, currency, concept string) (models.OrderRecord, error) {
	if err := ValidateAmount(amount); err != nil {
		return models.OrderRecord{}, err
	}
	if currency == "" {
		return models.OrderRecord{}, ErrMissingCurrency
	}
	amount = NormalizeAmount(amount)

	result, err := s.Gateway.CreateOrder(ctx, amount, currency)
	if err != nil {
		metrics.OrderCreateErrorsTotal.Inc()
		logger.Log.Error("order creation failed",
			zap.String("currency", currency),
			zap.Error(err))
		return models.OrderRecord{}, err
	}

	record := models.OrderRecord{
		Identifier:   result.Identifier,
		Amount:       amount,
		Currency:     currency,
		Concept:      concept,
		Rate:         result.Rate.String(),
		CryptoAmount: result.ExpectedInputAmount.String(),
		PaymentURI:   result.PaymentURI,
	}
	if err := s.Orders.Save(ctx, record); err != nil {
		return models.OrderRecord{}, err
	}

	metrics.OrdersCreatedTotal.Inc()
	logger.Log.Info("order created",
		zap.String("identifier", record.Identifier),
		zap.String("currency", currency),
		zap.String("amount", amount))
	return record, nil
}
