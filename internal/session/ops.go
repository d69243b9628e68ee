package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/polysola/copilotxrp/internal/amount"
	"github.com/polysola/copilotxrp/internal/txnorm"
)

// Balance fetches and formats the native balance of an address.
func (s *Session) Balance(ctx context.Context, address string) (string, error) {
	gen := s.generation()
	display, err := s.balance(ctx, address)

	var result *Result
	if err == nil {
		result = &Result{Action: ActionCheckBalance, Address: address, Balance: display}
	}
	s.setOutcome(gen, result, err)
	return display, err
}

func (s *Session) balance(ctx context.Context, address string) (string, error) {
	if address == "" {
		return "", fmt.Errorf("%w: wallet address is required", ErrInvalidInput)
	}

	raw, err := s.do(ctx, "account_info", map[string]any{
		"account":      address,
		"ledger_index": "validated",
	})
	if err != nil {
		return "", mapAccountError(err)
	}

	var out struct {
		AccountData struct {
			Balance string `json:"Balance"`
		} `json:"account_data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("session: malformed account_info response: %w", err)
	}
	if out.AccountData.Balance == "" {
		return "", fmt.Errorf("session: account_info response carries no balance")
	}
	return amount.FormatNative(out.AccountData.Balance)
}

// History fetches up to limit transaction envelopes for an address and
// normalizes them. Direction and limit are explicit because the node's
// ordering flag has no single correct value; the result order is the
// node's order for the requested direction, consistent within one call.
// A limit <= 0 uses the configured default.
func (s *Session) History(ctx context.Context, address string, limit int, forward bool) ([]txnorm.Transaction, error) {
	gen := s.generation()
	txs, err := s.history(ctx, address, limit, forward)

	s.mu.Lock()
	if s.gen == gen {
		s.lastErr = err
		if err == nil {
			s.transactions = txs
		}
	}
	s.mu.Unlock()
	return txs, err
}

func (s *Session) history(ctx context.Context, address string, limit int, forward bool) ([]txnorm.Transaction, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: wallet address is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = s.cfg.History.Limit
	}

	raw, err := s.do(ctx, "account_tx", map[string]any{
		"account":          address,
		"ledger_index_min": -1,
		"ledger_index_max": -1,
		"binary":           false,
		"forward":          forward,
		"limit":            limit,
	})
	if err != nil {
		return nil, mapAccountError(err)
	}

	var out struct {
		Transactions json.RawMessage `json:"transactions"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("session: malformed account_tx response: %w", err)
	}
	// A missing transactions field is distinct from an empty list: the
	// former means the node could not serve history at all.
	if len(out.Transactions) == 0 || string(out.Transactions) == "null" {
		return nil, ErrHistoryUnavailable
	}

	var envs []txnorm.Envelope
	if err := json.Unmarshal(out.Transactions, &envs); err != nil {
		return nil, fmt.Errorf("session: malformed account_tx transactions: %w", err)
	}

	opts := txnorm.Options{Account: address, ExplorerBase: s.cfg.Explorer.BaseURL}
	txs := make([]txnorm.Transaction, 0, len(envs))
	for _, env := range envs {
		// Validated transactions are immutable, so renormalizing a hash
		// we have already seen for this address is wasted work.
		cacheKey := ""
		if env.Validated && env.Hash != "" {
			cacheKey = env.Hash + "|" + address
			if tx, ok := s.normCache.Get(cacheKey); ok {
				txs = append(txs, tx)
				continue
			}
		}
		tx, ok := txnorm.Normalize(env, opts)
		if !ok {
			continue
		}
		if cacheKey != "" {
			s.normCache.Add(cacheKey, tx)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// TrustLines fetches the counterparty credit relationships of an
// address. Only the currency field is symbol-resolved; balances and
// limits stay verbatim.
func (s *Session) TrustLines(ctx context.Context, address string) ([]TrustLine, error) {
	gen := s.generation()
	lines, err := s.trustLines(ctx, address)

	var result *Result
	if err == nil {
		result = &Result{Action: ActionCheckTrustlines, Address: address, TrustLines: lines}
	}
	s.setOutcome(gen, result, err)
	return lines, err
}

func (s *Session) trustLines(ctx context.Context, address string) ([]TrustLine, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: wallet address is required", ErrInvalidInput)
	}

	raw, err := s.do(ctx, "account_lines", map[string]any{"account": address})
	if err != nil {
		return nil, mapAccountError(err)
	}

	var out struct {
		Lines []struct {
			Account  string `json:"account"`
			Currency string `json:"currency"`
			Balance  string `json:"balance"`
			Limit    string `json:"limit"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("session: malformed account_lines response: %w", err)
	}

	lines := make([]TrustLine, 0, len(out.Lines))
	for _, l := range out.Lines {
		lines = append(lines, TrustLine{
			Account:  l.Account,
			Currency: amount.ResolveSymbol(l.Currency),
			Balance:  l.Balance,
			Limit:    l.Limit,
		})
	}
	return lines, nil
}

// ServerInfo fetches the node's status for telemetry. It bypasses the
// state machine fold on purpose: telemetry failures must never surface
// through the session status or error.
func (s *Session) ServerInfo(ctx context.Context) (NetworkStatus, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return NetworkStatus{}, ErrNotConnected
	}

	raw, err := conn.Request(ctx, "server_info", nil)
	if err != nil {
		return NetworkStatus{}, err
	}

	var out struct {
		Info struct {
			ServerState     string `json:"server_state"`
			ValidatedLedger struct {
				Seq            uint32  `json:"seq"`
				ReserveBaseXRP float64 `json:"reserve_base_xrp"`
			} `json:"validated_ledger"`
		} `json:"info"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return NetworkStatus{}, fmt.Errorf("session: malformed server_info response: %w", err)
	}
	return NetworkStatus{
		ServerState:        out.Info.ServerState,
		ValidatedLedgerSeq: out.Info.ValidatedLedger.Seq,
		ReserveBaseXRP:     out.Info.ValidatedLedger.ReserveBaseXRP,
	}, nil
}

// mapAccountError translates the node's account-lookup error into the
// session taxonomy.
func mapAccountError(err error) error {
	var api *APIError
	if errors.As(err, &api) && api.Name == "actNotFound" {
		return ErrAccountNotFound
	}
	return err
}
