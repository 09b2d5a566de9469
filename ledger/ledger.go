// Package ledger holds the player's Bits and Cryptos balances
package ledger

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInsufficientFunds is returned when a withdrawal exceeds the balance
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount is returned for NaN, infinite or negative amounts
	ErrInvalidAmount = errors.New("invalid amount")
)

// Ledger tracks spendable Bits, lifetime Bits and the Cryptos balance
// Invariants: current >= 0, lifetime never decreases, lifetime >= current
// Not safe for concurrent use; the owning game controller serializes access
type Ledger struct {
	current   float64
	lifetime  float64
	secondary float64
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{}
}

// Current returns spendable Bits
func (l *Ledger) Current() float64 { return l.current }

// Lifetime returns all Bits ever deposited
func (l *Ledger) Lifetime() float64 { return l.lifetime }

// Secondary returns the Cryptos balance
func (l *Ledger) Secondary() float64 { return l.secondary }

// Deposit credits Bits to both current and lifetime totals
func (l *Ledger) Deposit(amount float64) error {
	if err := validate(amount); err != nil {
		return err
	}
	l.current += amount
	l.lifetime += amount
	return nil
}

// Withdraw debits current Bits, leaving the ledger untouched on failure
func (l *Ledger) Withdraw(amount float64) error {
	if err := validate(amount); err != nil {
		return err
	}
	if l.current < amount {
		return fmt.Errorf("%w: have %.0f, need %.0f", ErrInsufficientFunds, l.current, amount)
	}
	l.current -= amount
	return nil
}

// DepositSecondary credits Cryptos
func (l *Ledger) DepositSecondary(amount float64) error {
	if err := validate(amount); err != nil {
		return err
	}
	l.secondary += amount
	return nil
}

// WithdrawSecondary debits Cryptos
func (l *Ledger) WithdrawSecondary(amount float64) error {
	if err := validate(amount); err != nil {
		return err
	}
	if l.secondary < amount {
		return fmt.Errorf("%w: have %.0f cryptos, need %.0f", ErrInsufficientFunds, l.secondary, amount)
	}
	l.secondary -= amount
	return nil
}

// ResetCurrent zeroes spendable Bits; lifetime is kept
func (l *Ledger) ResetCurrent() {
	l.current = 0
}

// Restore replaces all balances from persisted values
// Non-finite or negative inputs are clamped to zero and lifetime is raised to current if needed
func (l *Ledger) Restore(current, lifetime, secondary float64) {
	l.current = sanitize(current)
	l.lifetime = max(sanitize(lifetime), l.current)
	l.secondary = sanitize(secondary)
}

func validate(amount float64) error {
	if !isFinite(amount) || amount < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return nil
}

func sanitize(v float64) float64 {
	if !isFinite(v) || v < 0 {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
