package token

import (
	"fmt"
	"math/big"

	"github.com/near/near-bridge/storage"
)

// Proof is an opaque bundle of data asserting a lock event on the foreign
// chain. The ledger never inspects it; the bundle is handed unmodified to
// the prover.
type Proof struct {
	LogIndex     uint64   `json:"logIndex"`
	LogEntryData []byte   `json:"logEntryData"`
	ReceiptIndex uint64   `json:"receiptIndex"`
	ReceiptData  []byte   `json:"receiptData"`
	HeaderData   []byte   `json:"headerData"`
	Path         [][]byte `json:"proof"`
}

// FinishMint completes a mint once proof verification has resolved. It is
// only valid as the continuation of a mint request, acting under the
// contract's own identity: any other caller is rejected unconditionally,
// regardless of the verification flag. A failed verification aborts with no
// state change; the proof is considered consumed with no credit.
//
// Nothing here records which proofs were already consumed. Replaying a proof
// the prover would validate twice double-mints; that is a known gap,
// deliberately left open rather than papered over with ad-hoc dedup.
func (l *Ledger) FinishMint(callerID string, verificationSuccess bool, newOwnerID string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return ErrNotInitialized
	}
	if callerID != l.contractID {
		return ErrFinishMintForbidden
	}
	if !verificationSuccess {
		return ErrVerificationFailed
	}
	newOwner, err := validateAccountID(newOwnerID)
	if err != nil {
		return fmt.Errorf("token: new owner account id %q: %w", newOwnerID, err)
	}
	if err := checkAmount(amount); err != nil {
		return err
	}

	account, err := l.accounts.Get(newOwner)
	if err != nil {
		return err
	}
	credited := new(big.Int).Add(account.Balance, amount)
	if err := checkAmount(credited); err != nil {
		return err
	}
	supply := new(big.Int).Add(l.totalSupply, amount)
	if err := checkAmount(supply); err != nil {
		return err
	}
	account.Balance = credited
	previousSupply := l.totalSupply
	l.totalSupply = supply

	batch := new(storage.Batch)
	if err := l.stageMeta(batch); err != nil {
		l.totalSupply = previousSupply
		return err
	}
	if err := l.accounts.stage(batch, newOwner, account); err != nil {
		l.totalSupply = previousSupply
		return err
	}
	if err := l.db.Write(batch); err != nil {
		l.totalSupply = previousSupply
		return fmt.Errorf("token: persist mint: %w", err)
	}
	return nil
}
