package token

import (
	"fmt"
	"math/big"

	"github.com/near/near-bridge/storage"
)

// TransferFrom moves amount tokens from ownerID to newOwnerID on behalf of
// callerID. When the caller is not the owner the transfer is delegated and
// debits the caller's allowance on the owner account.
//
// Both account updates flush through one atomic batch write: a failed call
// leaves no partial effect.
func (l *Ledger) TransferFrom(callerID, ownerID, newOwnerID string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return ErrNotInitialized
	}
	caller, err := validateAccountID(callerID)
	if err != nil {
		return fmt.Errorf("token: caller account id %q: %w", callerID, err)
	}
	owner, err := validateAccountID(ownerID)
	if err != nil {
		return fmt.Errorf("token: owner account id %q: %w", ownerID, err)
	}
	newOwner, err := validateAccountID(newOwnerID)
	if err != nil {
		return fmt.Errorf("token: new owner account id %q: %w", newOwnerID, err)
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return ErrZeroAmount
	}

	account, err := l.accounts.Get(owner)
	if err != nil {
		return err
	}
	if account.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	account.Balance = new(big.Int).Sub(account.Balance, amount)

	delegated := caller != owner
	if delegated {
		allowance := account.Allowance(caller)
		if allowance.Cmp(amount) < 0 {
			return ErrInsufficientAllowance
		}
		account.SetAllowance(caller, new(big.Int).Sub(allowance, amount))
	}

	batch := new(storage.Batch)
	if err := l.accounts.stage(batch, owner, account); err != nil {
		return err
	}

	// Self-transfers reuse the already debited record so the credit is not
	// lost to a stale read.
	newAccount := account
	if newOwner != owner {
		newAccount, err = l.accounts.Get(newOwner)
		if err != nil {
			return err
		}
	}
	credited := new(big.Int).Add(newAccount.Balance, amount)
	if err := checkAmount(credited); err != nil {
		return err
	}
	newAccount.Balance = credited
	if err := l.accounts.stage(batch, newOwner, newAccount); err != nil {
		return err
	}
	if err := l.db.Write(batch); err != nil {
		return fmt.Errorf("token: persist transfer: %w", err)
	}
	l.emit(TransferEvent{Owner: owner, NewOwner: newOwner, Caller: caller, Amount: amount, Delegated: delegated})
	return nil
}

// Transfer moves amount tokens from the caller to newOwnerID. It behaves
// exactly like TransferFrom with the owner equal to the caller.
func (l *Ledger) Transfer(callerID, newOwnerID string, amount *big.Int) error {
	return l.TransferFrom(callerID, callerID, newOwnerID, amount)
}
