package token

import (
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Account holds the balance and allowance table for one owner. Allowance is
// the amount of tokens an escrow account may spend on behalf of the owner.
// Allowance entries are keyed by the hash of the escrow account id and exist
// only while the allowance is positive; a zero allowance is represented by
// the absence of the entry, which bounds storage growth from expired
// allowances.
type Account struct {
	Balance    *big.Int
	allowances map[[32]byte]*big.Int
}

// NewAccount returns a zero-balance account with no allowances.
func NewAccount() *Account {
	return &Account{
		Balance:    big.NewInt(0),
		allowances: make(map[[32]byte]*big.Int),
	}
}

func escrowHash(escrowID string) [32]byte {
	var hash [32]byte
	copy(hash[:], ethcrypto.Keccak256([]byte(escrowID)))
	return hash
}

// SetAllowance sets the allowance for the escrow account. A zero amount
// removes the entry.
func (a *Account) SetAllowance(escrowID string, allowance *big.Int) {
	key := escrowHash(escrowID)
	if allowance != nil && allowance.Sign() > 0 {
		a.allowances[key] = new(big.Int).Set(allowance)
		return
	}
	delete(a.allowances, key)
}

// Allowance returns the allowance of the escrow account, or zero if absent.
func (a *Account) Allowance(escrowID string) *big.Int {
	if allowance, ok := a.allowances[escrowHash(escrowID)]; ok {
		return new(big.Int).Set(allowance)
	}
	return big.NewInt(0)
}

// AllowanceCount returns the number of live allowance entries.
func (a *Account) AllowanceCount() int {
	return len(a.allowances)
}

// Copy returns a deep copy to avoid callers mutating shared pointers.
func (a *Account) Copy() *Account {
	if a == nil {
		return nil
	}
	clone := NewAccount()
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	}
	for key, allowance := range a.allowances {
		clone.allowances[key] = new(big.Int).Set(allowance)
	}
	return clone
}
