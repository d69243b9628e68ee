// Package txnorm normalizes raw account_tx envelopes into a single
// rendering-ready transaction model. The ledger returns a polymorphic set
// of transaction types with two incompatible amount encodings and an
// epoch offset on close times; everything downstream of this package sees
// one consistent shape.
//
// The package is pure: no network access, no mutable globals.
package txnorm

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/polysola/copilotxrp/internal/amount"
)

// rippleEpochOffset converts ledger close times to Unix time. The ledger
// epoch starts 2000-01-01T00:00Z, 946684800 seconds after the Unix epoch.
const rippleEpochOffset = 946684800

// timestampLayout is the UTC calendar format used for display.
const timestampLayout = "2006-01-02 15:04:05 UTC"

// Type is the closed set of transaction types this core distinguishes.
// Everything else collapses into TypeOther.
type Type int

const (
	TypeOther Type = iota
	TypePayment
	TypeOfferCreate
	TypeOfferCancel
	TypeTrustSet
	TypeCheckCreate
	TypeCheckCash
)

var typeNames = map[string]Type{
	"Payment":     TypePayment,
	"OfferCreate": TypeOfferCreate,
	"OfferCancel": TypeOfferCancel,
	"TrustSet":    TypeTrustSet,
	"CheckCreate": TypeCheckCreate,
	"CheckCash":   TypeCheckCash,
}

func typeFromName(name string) Type {
	if t, ok := typeNames[name]; ok {
		return t
	}
	return TypeOther
}

func (t Type) String() string {
	for name, v := range typeNames {
		if v == t {
			return name
		}
	}
	return "Other"
}

// Direction reports whether the queried account originated the
// transaction.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionOut
	DirectionIn
)

func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "Out"
	case DirectionIn:
		return "In"
	default:
		return "Unknown"
	}
}

// Envelope is one raw account_tx entry: execution metadata plus the
// transaction body. Newer node API versions carry the body under
// "tx_json", older ones under "tx"; both are accepted.
type Envelope struct {
	Meta      json.RawMessage `json:"meta"`
	TxJSON    json.RawMessage `json:"tx_json"`
	Tx        json.RawMessage `json:"tx"`
	Hash      string          `json:"hash"`
	Validated bool            `json:"validated"`
}

func (e Envelope) body() json.RawMessage {
	if len(e.TxJSON) > 0 {
		return e.TxJSON
	}
	return e.Tx
}

// Transaction is the normalized, rendering-ready record.
type Transaction struct {
	Type      Type
	TypeName  string // verbatim TransactionType, informative for TypeOther
	Hash      string
	Direction Direction
	Amount    *amount.Amount // nil when the transaction moved no amount
	Fee       string         // formatted native amount
	From      string
	To        string // empty for types with no destination
	Timestamp string // UTC calendar string, empty if the ledger gave none
	Status    string // ledger result code, verbatim
	Explorer  string // derived from Hash, never stored independently
}

// Options carries the per-query context a batch is normalized against.
type Options struct {
	// Account is the address the history was queried for; it decides
	// transaction direction.
	Account string
	// ExplorerBase is the transaction-explorer URL prefix.
	ExplorerBase string
}

type txBody struct {
	TransactionType string          `json:"TransactionType"`
	Account         string          `json:"Account"`
	Destination     string          `json:"Destination"`
	Amount          json.RawMessage `json:"Amount"`
	DeliverMax      json.RawMessage `json:"DeliverMax"`
	Fee             string          `json:"Fee"`
	Date            int64           `json:"date"`
	Hash            string          `json:"hash"`
}

type txMeta struct {
	TransactionResult string          `json:"TransactionResult"`
	DeliveredAmount   json.RawMessage `json:"delivered_amount"`
}

// Normalize maps one raw envelope into a Transaction. The second return
// is false when the envelope is a malformed partial record (missing
// metadata or body) and should be skipped rather than treated as a batch
// failure.
func Normalize(env Envelope, opts Options) (Transaction, bool) {
	rawBody := env.body()
	if len(env.Meta) == 0 || len(rawBody) == 0 {
		return Transaction{}, false
	}

	var body txBody
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return Transaction{}, false
	}
	var meta txMeta
	if err := json.Unmarshal(env.Meta, &meta); err != nil {
		return Transaction{}, false
	}

	tx := Transaction{
		Type:     typeFromName(body.TransactionType),
		TypeName: body.TransactionType,
		From:     body.Account,
		To:       body.Destination,
		Status:   meta.TransactionResult,
	}

	switch {
	case body.Account == "":
		tx.Direction = DirectionUnknown
	case body.Account == opts.Account:
		tx.Direction = DirectionOut
	default:
		tx.Direction = DirectionIn
	}

	// The metadata's delivered_amount is the authoritative post-execution
	// amount; the body's stated amount is only the intent. delivered_amount
	// can also be the literal string "unavailable" on old partial payments,
	// which fails decoding and falls through to the body.
	tx.Amount = decodeFirst(meta.DeliveredAmount, body.Amount, body.DeliverMax)

	if body.Fee != "" {
		if fee, err := amount.FormatNative(body.Fee); err == nil {
			tx.Fee = fee
		}
	}

	if body.Date > 0 {
		tx.Timestamp = time.Unix(body.Date+rippleEpochOffset, 0).UTC().Format(timestampLayout)
	}

	tx.Hash = body.Hash
	if tx.Hash == "" {
		tx.Hash = env.Hash
	}
	if tx.Hash != "" {
		tx.Explorer = ExplorerLink(opts.ExplorerBase, tx.Hash)
	}

	return tx, true
}

// NormalizeBatch normalizes a finite ordered sequence of envelopes,
// omitting skipped records and otherwise preserving order.
func NormalizeBatch(envs []Envelope, opts Options) []Transaction {
	out := make([]Transaction, 0, len(envs))
	for _, env := range envs {
		if tx, ok := Normalize(env, opts); ok {
			out = append(out, tx)
		}
	}
	return out
}

// ExplorerLink builds the deterministic explorer URL for a transaction
// hash.
func ExplorerLink(base, hash string) string {
	return strings.TrimSuffix(base, "/") + "/" + hash
}

func decodeFirst(candidates ...json.RawMessage) *amount.Amount {
	for _, raw := range candidates {
		if len(raw) == 0 {
			continue
		}
		if a, err := amount.Decode(raw); err == nil {
			return &a
		}
	}
	return nil
}
