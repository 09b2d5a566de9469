// Package minigame implements the firewall code challenge and the data breach grid
package minigame

import (
	"strings"
	"unicode"
)

// Rand is the random source used by the mini-games; *rand.Rand satisfies it
type Rand interface {
	IntN(n int) int
}

const (
	// CodeLength is the number of hex digits in a firewall code
	CodeLength = 4
	hexDigits  = "0123456789ABCDEF"
)

// KeyResult is the outcome of one keystroke on the firewall keypad
type KeyResult int

const (
	KeyIgnored KeyResult = iota
	KeyAccepted
	KeyMatched
	// KeyMismatch means a full wrong code was entered; input is cleared
	KeyMismatch
)

// Firewall holds the code to match and the player's partial input
type Firewall struct {
	code  string
	input []byte
}

// NewFirewall generates a random hex code
func NewFirewall(r Rand) *Firewall {
	var sb strings.Builder
	for range CodeLength {
		sb.WriteByte(hexDigits[r.IntN(len(hexDigits))])
	}
	return &Firewall{code: sb.String(), input: make([]byte, 0, CodeLength)}
}

// Code returns the code to type
func (f *Firewall) Code() string { return f.code }

// Input returns what has been typed so far
func (f *Firewall) Input() string { return string(f.input) }

// Key feeds one character; non-hex characters are ignored and case is folded
func (f *Firewall) Key(ch rune) KeyResult {
	ch = unicode.ToUpper(ch)
	if !strings.ContainsRune(hexDigits, ch) || len(f.input) >= CodeLength {
		return KeyIgnored
	}
	f.input = append(f.input, byte(ch))
	if len(f.input) < CodeLength {
		return KeyAccepted
	}
	if string(f.input) == f.code {
		return KeyMatched
	}
	f.input = f.input[:0]
	return KeyMismatch
}

// Backspace removes the last typed character
func (f *Firewall) Backspace() {
	if len(f.input) > 0 {
		f.input = f.input[:len(f.input)-1]
	}
}

// Clear discards the typed input
func (f *Firewall) Clear() {
	f.input = f.input[:0]
}
