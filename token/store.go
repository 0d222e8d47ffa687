package token

import (
	"bytes"
	"fmt"
	"sort"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/near/near-bridge/storage"
)

var (
	accountPrefix = []byte("token/account/")
	metaKey       = ethcrypto.Keccak256([]byte("token/meta"))
)

// accountKey derives the storage key for an owner. Account ids are hashed
// before use as keys to bound key size and keep the lookup structure shallow;
// this is a locality optimization, not a security boundary.
func accountKey(ownerID string) []byte {
	buf := make([]byte, len(accountPrefix)+len(ownerID))
	copy(buf, accountPrefix)
	copy(buf[len(accountPrefix):], ownerID)
	return ethcrypto.Keccak256(buf)
}

type storedAllowance struct {
	Escrow [32]byte
	Amount *uint256.Int
}

type storedAccount struct {
	Balance    *uint256.Int
	Allowances []storedAllowance
}

// AccountStore persists account records in the underlying key-value store.
type AccountStore struct {
	db storage.Database
}

// NewAccountStore constructs a store bound to the provided database.
func NewAccountStore(db storage.Database) *AccountStore {
	return &AccountStore{db: db}
}

// Get returns the stored account for the owner, or a fresh zero-balance
// account if none exists. Lookup misses are not errors.
func (s *AccountStore) Get(ownerID string) (*Account, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("token: account store not initialised")
	}
	raw, ok, err := s.db.Get(accountKey(ownerID))
	if err != nil {
		return nil, fmt.Errorf("token: load account %s: %w", ownerID, err)
	}
	if !ok {
		return NewAccount(), nil
	}
	var stored storedAccount
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("token: decode account %s: %w", ownerID, err)
	}
	account := NewAccount()
	account.Balance = amountFromStored(stored.Balance)
	for _, entry := range stored.Allowances {
		account.allowances[entry.Escrow] = amountFromStored(entry.Amount)
	}
	return account, nil
}

// Put unconditionally overwrites the stored record for the owner.
func (s *AccountStore) Put(ownerID string, account *Account) error {
	batch := new(storage.Batch)
	if err := s.stage(batch, ownerID, account); err != nil {
		return err
	}
	return s.db.Write(batch)
}

// stage encodes the account into the batch without writing it. Callers that
// mutate several accounts stage them all and flush through one atomic Write.
func (s *AccountStore) stage(batch *storage.Batch, ownerID string, account *Account) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("token: account store not initialised")
	}
	if account == nil {
		return fmt.Errorf("token: account must not be nil")
	}
	encoded, err := encodeAccount(account)
	if err != nil {
		return fmt.Errorf("token: encode account %s: %w", ownerID, err)
	}
	batch.Put(accountKey(ownerID), encoded)
	return nil
}

func encodeAccount(account *Account) ([]byte, error) {
	balance, err := amountToStored(account.Balance)
	if err != nil {
		return nil, err
	}
	stored := storedAccount{Balance: balance}
	for key, allowance := range account.allowances {
		amount, err := amountToStored(allowance)
		if err != nil {
			return nil, err
		}
		stored.Allowances = append(stored.Allowances, storedAllowance{Escrow: key, Amount: amount})
	}
	// Deterministic encoding regardless of map iteration order.
	sort.Slice(stored.Allowances, func(i, j int) bool {
		return bytes.Compare(stored.Allowances[i].Escrow[:], stored.Allowances[j].Escrow[:]) < 0
	})
	return rlp.EncodeToBytes(stored)
}
