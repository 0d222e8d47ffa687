package token

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/near/near-bridge/prover"
)

// Bridge orchestrates the two-phase verify-then-credit mint protocol. Phase
// one forwards the proof to the external prover without touching ledger
// state; phase two runs as the continuation of the prover's answer, under
// the contract's own identity, and is the only place new supply is credited.
type Bridge struct {
	ledger *Ledger
	prover prover.Client
}

// NewBridge constructs a bridge over the ledger and prover client.
func NewBridge(ledger *Ledger, client prover.Client) (*Bridge, error) {
	if ledger == nil {
		return nil, fmt.Errorf("token: ledger required")
	}
	if client == nil {
		return nil, fmt.Errorf("token: prover client required")
	}
	return &Bridge{ledger: ledger, prover: client}, nil
}

// PendingMint is the continuation handle for an outstanding mint request.
// The ledger remains fully visible and mutable by other operations while the
// request is in flight; completion order across concurrent mints for the
// same recipient is unspecified, which is safe because credits are additive.
type PendingMint struct {
	ID       string
	newOwner string
	amount   *big.Int
	done     chan struct{}
	err      error
}

// Done is closed once verification has resolved and the completion ran.
func (p *PendingMint) Done() <-chan struct{} {
	return p.done
}

// Err returns the completion outcome. Only valid after Done is closed.
func (p *PendingMint) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return fmt.Errorf("token: mint %s still pending", p.ID)
	}
}

// Wait blocks until the mint resolves or the context expires.
func (p *PendingMint) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Mint starts a mint of amount tokens for newOwnerID, backed by a proof that
// the mirror tokens were locked on the foreign chain. No ledger state is
// mutated here; the returned continuation resolves once the prover answers
// and FinishMint has run.
//
// Once issued there is no cancellation path: verification eventually
// resolves to success or failure. The prover call receives a third of the
// caller's remaining deadline budget, leaving the rest for the completion.
func (b *Bridge) Mint(ctx context.Context, newOwnerID string, amount *big.Int, proof Proof) (*PendingMint, error) {
	if b == nil || b.ledger == nil {
		return nil, fmt.Errorf("token: bridge not initialised")
	}
	newOwner, err := validateAccountID(newOwnerID)
	if err != nil {
		return nil, fmt.Errorf("token: new owner account id %q: %w", newOwnerID, err)
	}
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	verifyProof, err := b.ledger.VerifyProof()
	if err != nil {
		return nil, err
	}

	req := prover.VerifyRequest{
		LogIndex:       proof.LogIndex,
		LogEntryData:   proof.LogEntryData,
		ReceiptIndex:   proof.ReceiptIndex,
		ReceiptData:    proof.ReceiptData,
		HeaderData:     proof.HeaderData,
		Path:           proof.Path,
		SkipBridgeCall: !verifyProof,
	}

	pending := &PendingMint{
		ID:       uuid.NewString(),
		newOwner: newOwner,
		amount:   new(big.Int).Set(amount),
		done:     make(chan struct{}),
	}

	// The continuation outlives the originating request; only the deadline
	// share carries over, not the caller's cancellation.
	verifyCtx := context.WithoutCancel(ctx)
	cancel := context.CancelFunc(func() {})
	if deadline, ok := ctx.Deadline(); ok {
		verifyCtx, cancel = context.WithTimeout(verifyCtx, time.Until(deadline)/3)
	}

	b.ledger.emit(MintRequestedEvent{RequestID: pending.ID, NewOwner: newOwner, Amount: amount})
	go b.complete(verifyCtx, cancel, pending, req)
	return pending, nil
}

func (b *Bridge) complete(ctx context.Context, cancel context.CancelFunc, pending *PendingMint, req prover.VerifyRequest) {
	defer close(pending.done)
	defer cancel()

	valid, verifyErr := b.prover.VerifyLogEntry(ctx, req)
	success := verifyErr == nil && valid

	finishErr := b.ledger.FinishMint(b.ledger.ContractID(), success, pending.newOwner, pending.amount)
	switch {
	case verifyErr != nil:
		pending.err = fmt.Errorf("token: proof verification: %w", verifyErr)
	default:
		pending.err = finishErr
	}
	b.ledger.emit(MintSettledEvent{
		RequestID: pending.ID,
		NewOwner:  pending.newOwner,
		Amount:    pending.amount,
		Success:   pending.err == nil,
	})
}
