package wallet

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"cryptocheckout/internal/logger"
	"cryptocheckout/internal/models"
)

// Display modes for the payment panel.
const (
	ModeSmartQR = "smartQR"
	ModeWeb3    = "web3"
)

// Provider is an injected wallet the user can approve account access for.
// This is a capability negotiation only; no transaction is built or sent.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]string, error)
}

// Selector switches between the QR and external-wallet display modes. The
// web3 mode only activates after a successful account handshake; any failure
// keeps the current mode and surfaces a modal.
type Selector struct {
	provider Provider

	mu      sync.Mutex
	mode    string
	account string
}

func NewSelector(provider Provider) *Selector {
	return &Selector{provider: provider, mode: ModeSmartQR}
}

// Result is what the view renders after a mode switch attempt.
type Result struct {
	Mode    string        `json:"mode"`
	Account string        `json:"account,omitempty"`
	Alert   *models.Alert `json:"alert,omitempty"`
}

// Select attempts to activate the given mode. Switching to QR is
// unconditional; switching to web3 requires the handshake to succeed.
func (s *Selector) Select(ctx context.Context, mode string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode != ModeWeb3 {
		s.mode = ModeSmartQR
		return Result{Mode: s.mode, Account: s.account}
	}

	if s.provider == nil {
		return Result{
			Mode: s.mode,
			Alert: &models.Alert{
				Title:   "MetaMask no encontrado",
				Message: "Instala MetaMask para usar esta opción.",
				Level:   models.AlertWarning,
			},
		}
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil || len(accounts) == 0 {
		logger.Log.Warn("wallet handshake failed", zap.Error(err))
		return Result{
			Mode: s.mode,
			Alert: &models.Alert{
				Title:   "Error",
				Message: "No se pudo conectar con MetaMask.",
				Level:   models.AlertError,
			},
		}
	}

	s.mode = ModeWeb3
	s.account = accounts[0]
	return Result{Mode: s.mode, Account: s.account}
}

// Mode returns the currently active display mode.
func (s *Selector) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}
