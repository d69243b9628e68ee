// Package amount converts between the ledger's two amount encodings and
// human display strings. XRP amounts travel as bare integer strings
// denominated in drops; issued currencies travel as {value, currency,
// issuer} objects whose currency may be a 160-bit hex code.
package amount

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// DropsPerXRP is the ledger's fixed native-unit scale.
const DropsPerXRP = 1_000_000

// NativeUnit is the display suffix for native amounts.
const NativeUnit = "XRP"

var ErrInvalidAmount = errors.New("amount: invalid amount")

// Kind discriminates the two amount encodings. Downstream consumers
// switch on it exhaustively rather than probing field presence.
type Kind int

const (
	// KindNative is an XRP amount carried as an integer drops string.
	KindNative Kind = iota
	// KindIssued is an issued-currency amount with a decimal value.
	KindIssued
)

// Amount is the tagged union over the two encodings.
//
// Invariants: for KindNative, Drops is a non-negative integer string;
// for KindIssued, Symbol is either a plain currency code or a symbol
// resolved from the hex table, never the raw 40-hex-digit code.
type Amount struct {
	Kind   Kind
	Drops  string // KindNative only
	Value  string // KindIssued only
	Symbol string // KindIssued only
}

// Native builds a native amount, validating the drops string.
func Native(drops string) (Amount, error) {
	if _, err := parseDrops(drops); err != nil {
		return Amount{}, err
	}
	return Amount{Kind: KindNative, Drops: drops}, nil
}

// Issued builds an issued-currency amount, resolving the currency code.
func Issued(value, currency string) Amount {
	return Amount{Kind: KindIssued, Value: value, Symbol: ResolveSymbol(currency)}
}

// Decode maps a raw ledger amount field onto the tagged union. A JSON
// string is a native drops amount; a JSON object is an issued currency.
func Decode(raw json.RawMessage) (Amount, error) {
	if len(raw) == 0 {
		return Amount{}, ErrInvalidAmount
	}

	var drops string
	if err := json.Unmarshal(raw, &drops); err == nil {
		return Native(drops)
	}

	var issued struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
		Issuer   string `json:"issuer"`
	}
	if err := json.Unmarshal(raw, &issued); err != nil {
		return Amount{}, fmt.Errorf("%w: %s", ErrInvalidAmount, raw)
	}
	if issued.Value == "" || issued.Currency == "" {
		return Amount{}, fmt.Errorf("%w: issued amount missing value or currency", ErrInvalidAmount)
	}
	return Issued(issued.Value, issued.Currency), nil
}

// FormatNative renders a drops string as a decimal XRP display string,
// e.g. "1500000" -> "1.5 XRP". The division is exact for any drops value
// in 64-bit range.
func FormatNative(drops string) (string, error) {
	v, err := parseDrops(drops)
	if err != nil {
		return "", err
	}
	return decimal.NewFromInt(v).Shift(-6).String() + " " + NativeUnit, nil
}

// Format renders an Amount for display.
func Format(a Amount) (string, error) {
	switch a.Kind {
	case KindNative:
		return FormatNative(a.Drops)
	case KindIssued:
		return a.Value + " " + a.Symbol, nil
	default:
		return "", fmt.Errorf("%w: unknown amount kind %d", ErrInvalidAmount, a.Kind)
	}
}

// ToDrops converts a decimal XRP string (user input) to an integer drops
// string. Rejects negative values and values finer than one drop.
func ToDrops(xrp string) (string, error) {
	d, err := decimal.NewFromString(xrp)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, xrp)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("%w: negative value %q", ErrInvalidAmount, xrp)
	}
	drops := d.Shift(6)
	if !drops.IsInteger() {
		return "", fmt.Errorf("%w: %q is below one drop resolution", ErrInvalidAmount, xrp)
	}
	if drops.Cmp(decimal.NewFromInt(math.MaxInt64)) > 0 {
		return "", fmt.Errorf("%w: %q exceeds 64-bit drops range", ErrInvalidAmount, xrp)
	}
	return drops.String(), nil
}

// parseDrops validates a drops string: digits only, 64-bit range.
func parseDrops(drops string) (int64, error) {
	if drops == "" {
		return 0, fmt.Errorf("%w: empty drops string", ErrInvalidAmount)
	}
	for i := 0; i < len(drops); i++ {
		if drops[i] < '0' || drops[i] > '9' {
			return 0, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidAmount, drops)
		}
	}
	v, err := strconv.ParseInt(drops, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, drops)
	}
	return v, nil
}
