package services

import (
	"errors"
	"fmt"

	"TakeawayPos/app/database"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCashierPIN is seeded on first run and should be changed in setup
const DefaultCashierPIN = "1234"

var (
	// ErrInvalidPIN is returned when the cashier PIN does not match
	ErrInvalidPIN = errors.New("invalid PIN")

	// ErrSessionActive is returned when a session is already open
	ErrSessionActive = errors.New("a cashier session is already active")

	// ErrNoSession is returned when no session is open
	ErrNoSession = errors.New("no active cashier session")
)

// SessionService gates access to the order screen behind a cashier PIN and
// owns the lifetime of the per-session order state. One session at a time.
type SessionService struct {
	localDB *database.LocalDB
	logger  *LoggerService
	taxRate float64
	orders  *OrderService
}

// NewSessionService creates a new session service. The PIN hash is seeded
// with the default PIN if none exists yet.
func NewSessionService(localDB *database.LocalDB, logger *LoggerService, taxRatePercent float64) (*SessionService, error) {
	s := &SessionService{
		localDB: localDB,
		logger:  logger,
		taxRate: taxRatePercent,
	}

	if localDB != nil {
		hash, err := localDB.GetPINHash()
		if err != nil {
			return nil, fmt.Errorf("failed to read PIN hash: %w", err)
		}
		if hash == "" {
			if err := s.storePIN(DefaultCashierPIN); err != nil {
				return nil, err
			}
			logger.LogWarning("Seeded default cashier PIN, change it in setup")
		}
	}

	return s, nil
}

// Start verifies the PIN and opens a session, constructing the order state
// and loading any held orders persisted from earlier sessions
func (s *SessionService) Start(pin string) (*OrderService, error) {
	if s.orders != nil {
		return nil, ErrSessionActive
	}

	if s.localDB != nil {
		hash, err := s.localDB.GetPINHash()
		if err != nil {
			return nil, fmt.Errorf("failed to read PIN hash: %w", err)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
			return nil, ErrInvalidPIN
		}
	}

	orders, err := NewOrderService(s.localDB, s.taxRate)
	if err != nil {
		return nil, err
	}

	s.orders = orders
	s.logger.LogInfo("Cashier session started")
	return orders, nil
}

// Orders returns the active session's order state, or an error when no
// session is open
func (s *SessionService) Orders() (*OrderService, error) {
	if s.orders == nil {
		return nil, ErrNoSession
	}
	return s.orders, nil
}

// End closes the active session. Held orders stay persisted; the in-memory
// cart is discarded.
func (s *SessionService) End() error {
	if s.orders == nil {
		return ErrNoSession
	}
	s.orders = nil
	s.logger.LogInfo("Cashier session ended")
	return nil
}

// ChangePIN rotates the cashier PIN after verifying the current one
func (s *SessionService) ChangePIN(currentPIN, newPIN string) error {
	if s.localDB == nil {
		return fmt.Errorf("no credential store available")
	}
	if len(newPIN) < 4 {
		return fmt.Errorf("PIN must be at least 4 digits")
	}

	hash, err := s.localDB.GetPINHash()
	if err != nil {
		return fmt.Errorf("failed to read PIN hash: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(currentPIN)); err != nil {
		return ErrInvalidPIN
	}

	return s.storePIN(newPIN)
}

func (s *SessionService) storePIN(pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}
	return s.localDB.SetPINHash(string(hash))
}
