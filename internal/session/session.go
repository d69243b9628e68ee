// Package session owns the connection lifecycle to a ledger node and
// exposes the wallet operations built on it: balance, transaction
// history, trust lines, and payment submission. It is the only component
// that issues requests on the connection and the sole caller of the
// transaction normalizer and the wallet key manager.
//
// Operations are caller-serialized; the session keeps no internal queue.
// Telemetry setters are the one concurrent entry point and touch only
// telemetry state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/polysola/copilotxrp/internal/config"
	"github.com/polysola/copilotxrp/internal/txnorm"
)

// Status is the session connection state.
type Status int

const (
	Disconnected Status = iota
	Connecting
	Connected
	// Failed means the last request hit a transport failure. The handle
	// stays open; the next successful request returns the session to
	// Connected without an explicit reconnect.
	Failed
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Action tags the result snapshot with the operation that produced it.
type Action int

const (
	ActionCreateWallet Action = iota
	ActionCheckBalance
	ActionSendPayment
	ActionCheckTrustlines
)

func (a Action) String() string {
	switch a {
	case ActionCreateWallet:
		return "Create Wallet"
	case ActionCheckBalance:
		return "Check Balance"
	case ActionSendPayment:
		return "Send Payment"
	case ActionCheckTrustlines:
		return "Check Trustlines"
	default:
		return "Unknown"
	}
}

// Result is the outcome of the most recent user action.
type Result struct {
	Action     Action
	Address    string
	PublicKey  string
	Balance    string
	Hash       string
	ResultCode string
	Explorer   string
	Amount     string
	To         string
	TrustLines []TrustLine
}

// TrustLine is one counterparty credit relationship. Currency is already
// symbol-resolved; the other fields are verbatim node values.
type TrustLine struct {
	Account  string
	Currency string
	Balance  string
	Limit    string
}

// NetworkStatus is the node-side telemetry snapshot.
type NetworkStatus struct {
	ServerState        string
	ValidatedLedgerSeq uint32
	ReserveBaseXRP     float64
}

// MarketQuote is the best-effort market telemetry snapshot.
type MarketQuote struct {
	PriceUSD     float64
	Change24hPct float64
}

// Snapshot is the read-only view the UI boundary consumes. Mutation
// happens only through session operations.
type Snapshot struct {
	Status       Status
	Err          error
	Result       *Result
	Transactions []txnorm.Transaction
	Network      *NetworkStatus
	Market       *MarketQuote
}

// normCacheSize bounds the cache of already-normalized validated
// transactions. Validated records are immutable, so cached entries can
// never go stale.
const normCacheSize = 512

// Dialer opens a Conn; swapped out in tests.
type Dialer func(ctx context.Context, url string, log *zap.Logger) (Conn, error)

// Session is one activation's connection to the ledger. Exactly one
// instance exists per active view; it is created on activation and torn
// down on deactivation, with no state surviving teardown.
type Session struct {
	cfg  *config.Config
	log  *zap.Logger
	dial Dialer

	mu     sync.Mutex
	conn   Conn
	status Status
	// gen increments on every Connect/Disconnect; completions from a
	// previous generation must not mutate state.
	gen uint64

	lastErr      error
	result       *Result
	transactions []txnorm.Transaction
	network      *NetworkStatus
	market       *MarketQuote

	normCache *lru.Cache[string, txnorm.Transaction]
}

// New creates a disconnected session.
func New(cfg *config.Config, log *zap.Logger) *Session {
	cache, _ := lru.New[string, txnorm.Transaction](normCacheSize)
	return &Session{
		cfg:       cfg,
		log:       log,
		dial:      dialNode,
		status:    Disconnected,
		normCache: cache,
	}
}

// Connect opens the connection to the configured node. No-op when a
// handle is already open.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return nil
	}
	s.status = Connecting
	gen := s.gen
	url := s.cfg.Node.URL
	s.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.Node.ConnectTimeout)
	defer cancel()
	conn, err := s.dial(dialCtx, url, s.log)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// Torn down while dialing.
		if conn != nil {
			conn.Close()
		}
		return errConnClosed
	}
	if err != nil {
		s.status = Failed
		s.lastErr = err
		s.log.Warn("node connection failed", zap.String("url", url), zap.Error(err))
		return err
	}
	s.conn = conn
	s.status = Connected
	s.gen++
	s.log.Info("connected to ledger node", zap.String("url", url))
	return nil
}

// Disconnect tears the connection down. Idempotent and safe from any
// state; afterwards no in-flight completion may mutate session state.
func (s *Session) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.status = Disconnected
	s.gen++
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Status returns the current connection state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns a read-only copy of the observable session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Status:  s.status,
		Err:     s.lastErr,
		Network: s.network,
		Market:  s.market,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	if s.transactions != nil {
		snap.Transactions = append([]txnorm.Transaction(nil), s.transactions...)
	}
	return snap
}

// RecordWalletCreated publishes a freshly generated wallet to the
// observable state. The seed is deliberately not part of the result.
func (s *Session) RecordWalletCreated(address, publicKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
	s.result = &Result{Action: ActionCreateWallet, Address: address, PublicKey: publicKey}
}

// SetNetworkStatus merges a successful telemetry fetch into the session
// state. Telemetry never touches operation-critical state.
func (s *Session) SetNetworkStatus(ns NetworkStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.network = &ns
}

// SetMarketQuote merges a successful market fetch into the session state.
func (s *Session) SetMarketQuote(q MarketQuote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.market = &q
}

// do issues one request on the open connection and folds the outcome
// into the state machine: transport failures park the session in Failed,
// any successful response returns it to Connected. Late completions
// (after Disconnect) leave state untouched.
func (s *Session) do(ctx context.Context, command string, params map[string]any) (json.RawMessage, error) {
	s.mu.Lock()
	conn := s.conn
	gen := s.gen
	s.mu.Unlock()
	if conn == nil {
		return nil, ErrNotConnected
	}

	result, err := conn.Request(ctx, command, params)

	s.mu.Lock()
	if s.gen == gen {
		var connErr *ConnectionError
		switch {
		case err == nil:
			s.status = Connected
		case errors.As(err, &connErr):
			s.status = Failed
		}
		// Node-level API errors prove the transport works; the state
		// machine stays put.
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return result, nil
}

// setOutcome records the result of a user action, unless the session was
// torn down while the action was in flight.
func (s *Session) setOutcome(gen uint64, result *Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.lastErr = err
	if result != nil {
		s.result = result
	}
}

// generation snapshots the teardown guard for an operation.
func (s *Session) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}
