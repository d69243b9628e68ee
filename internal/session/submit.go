package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Peersyst/xrpl-go/xrpl/transaction"
	"github.com/Peersyst/xrpl-go/xrpl/transaction/types"

	"github.com/polysola/copilotxrp/internal/amount"
	"github.com/polysola/copilotxrp/internal/txnorm"
	"github.com/polysola/copilotxrp/internal/wallet"
)

// validationPollInterval paces the post-submit polling for ledger
// validation.
const validationPollInterval = 2 * time.Second

// resultSuccess is the only engine result that counts as accepted.
const resultSuccess = "tesSUCCESS"

// SubmitReceipt is the outcome of a validated payment.
type SubmitReceipt struct {
	Hash       string
	ResultCode string
	From       string
	To         string
	Amount     string
	Explorer   string
}

// SubmitPayment signs and submits a native payment and waits for ledger
// validation. The secret is consumed: it is erased before the call
// returns, on every path, and never appears in logs or errors. Input
// validation completes before any network request is issued.
func (s *Session) SubmitPayment(ctx context.Context, from, to, amountXRP string, secret *wallet.Secret) (*SubmitReceipt, error) {
	defer secret.Close()

	gen := s.generation()
	rec, err := s.submitPayment(ctx, from, to, amountXRP, secret)

	var result *Result
	if err == nil {
		result = &Result{
			Action:     ActionSendPayment,
			Address:    from,
			To:         rec.To,
			Amount:     rec.Amount,
			Hash:       rec.Hash,
			ResultCode: rec.ResultCode,
			Explorer:   rec.Explorer,
		}
	}
	s.setOutcome(gen, result, err)
	return rec, err
}

func (s *Session) submitPayment(ctx context.Context, from, to, amountXRP string, secret *wallet.Secret) (*SubmitReceipt, error) {
	switch {
	case from == "":
		return nil, fmt.Errorf("%w: sender address is required", ErrInvalidInput)
	case to == "":
		return nil, fmt.Errorf("%w: destination address is required", ErrInvalidInput)
	case amountXRP == "":
		return nil, fmt.Errorf("%w: amount is required", ErrInvalidInput)
	case len(secret.Data()) == 0:
		return nil, fmt.Errorf("%w: wallet secret is required", ErrInvalidInput)
	}

	dropsStr, err := amount.ToDrops(amountXRP)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	drops, err := strconv.ParseUint(dropsStr, 10, 64)
	if err != nil || drops == 0 {
		return nil, fmt.Errorf("%w: amount must be at least one drop", ErrInvalidInput)
	}

	sw, err := wallet.FromSecret(secret)
	if err != nil {
		return nil, err
	}
	if sw.Address() != from {
		return nil, fmt.Errorf("%w: secret does not control the sender address", ErrInvalidInput)
	}

	// Autofill sequence and expiry from the node's current ledger view.
	raw, err := s.do(ctx, "account_info", map[string]any{
		"account":      from,
		"ledger_index": "current",
	})
	if err != nil {
		return nil, mapAccountError(err)
	}
	var info struct {
		AccountData struct {
			Sequence uint32 `json:"Sequence"`
		} `json:"account_data"`
		LedgerCurrentIndex uint32 `json:"ledger_current_index"`
		LedgerIndex        uint32 `json:"ledger_index"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("session: malformed account_info response: %w", err)
	}
	ledgerSeq := info.LedgerCurrentIndex
	if ledgerSeq == 0 {
		ledgerSeq = info.LedgerIndex
	}
	if ledgerSeq == 0 {
		return nil, fmt.Errorf("session: account_info response carries no ledger index")
	}

	p := &transaction.Payment{
		BaseTx: transaction.BaseTx{
			Account:            types.Address(from),
			Fee:                types.XRPCurrencyAmount(s.cfg.Submit.FeeDrops),
			Sequence:           info.AccountData.Sequence,
			LastLedgerSequence: ledgerSeq + s.cfg.Submit.LedgerWindow,
		},
		Destination: types.Address(to),
		Amount:      types.XRPCurrencyAmount(drops),
	}
	blob, hash, err := sw.SignPayment(p.Flatten())
	if err != nil {
		return nil, err
	}

	raw, err = s.do(ctx, "submit", map[string]any{"tx_blob": blob})
	if err != nil {
		return nil, err
	}
	var sub struct {
		EngineResult string `json:"engine_result"`
		TxJSON       struct {
			Hash string `json:"hash"`
		} `json:"tx_json"`
	}
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, fmt.Errorf("session: malformed submit response: %w", err)
	}
	if sub.TxJSON.Hash != "" {
		hash = sub.TxJSON.Hash
	}
	if sub.EngineResult != resultSuccess {
		return nil, &SubmissionError{ResultCode: sub.EngineResult}
	}

	finalCode, err := s.awaitValidation(ctx, hash)
	if err != nil {
		return nil, err
	}
	if finalCode != resultSuccess {
		return nil, &SubmissionError{ResultCode: finalCode}
	}

	display, err := amount.FormatNative(dropsStr)
	if err != nil {
		display = amountXRP + " " + amount.NativeUnit
	}
	return &SubmitReceipt{
		Hash:       hash,
		ResultCode: finalCode,
		From:       from,
		To:         to,
		Amount:     display,
		Explorer:   txnorm.ExplorerLink(s.cfg.Explorer.BaseURL, hash),
	}, nil
}

// awaitValidation polls the node until the transaction appears in a
// validated ledger, the configured window expires, or the context is
// cancelled. The first poll fires immediately.
func (s *Session) awaitValidation(ctx context.Context, hash string) (string, error) {
	deadline := time.NewTimer(s.cfg.Submit.ValidationWindow)
	defer deadline.Stop()
	ticker := time.NewTicker(validationPollInterval)
	defer ticker.Stop()

	for {
		raw, err := s.do(ctx, "tx", map[string]any{"transaction": hash})
		switch {
		case err == nil:
			var out struct {
				Validated bool `json:"validated"`
				Meta      struct {
					TransactionResult string `json:"TransactionResult"`
				} `json:"meta"`
			}
			if jsonErr := json.Unmarshal(raw, &out); jsonErr == nil && out.Validated {
				return out.Meta.TransactionResult, nil
			}
		default:
			var api *APIError
			if !errors.As(err, &api) || api.Name != "txnNotFound" {
				return "", err
			}
			// txnNotFound just means the transaction has not made it into
			// a ledger yet; keep waiting. Any other node error is
			// permanent and waiting out the window would not change it.
		}

		select {
		case <-deadline.C:
			return "", ErrSubmissionTimeout
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
