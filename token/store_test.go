package token

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/near/near-bridge/storage"
)

func TestAccountStoreGetMissingReturnsZeroAccount(t *testing.T) {
	store := NewAccountStore(storage.NewMemDB())
	account, err := store.Get("nobody.near")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if account.Balance.Sign() != 0 {
		t.Fatalf("missing account balance = %s, want 0", account.Balance)
	}
	if account.AllowanceCount() != 0 {
		t.Fatalf("missing account has %d allowances", account.AllowanceCount())
	}
}

func TestAccountStoreRoundTrip(t *testing.T) {
	store := NewAccountStore(storage.NewMemDB())
	account := NewAccount()
	account.Balance = big.NewInt(12345)
	account.SetAllowance("bob.near", big.NewInt(10))
	account.SetAllowance("alice.near", big.NewInt(20))
	if err := store.Put("carol.near", account); err != nil {
		t.Fatalf("put: %v", err)
	}

	loaded, err := store.Get("carol.near")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Balance.Cmp(big.NewInt(12345)) != 0 {
		t.Fatalf("balance = %s, want 12345", loaded.Balance)
	}
	if got := loaded.Allowance("bob.near"); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("bob allowance = %s, want 10", got)
	}
	if got := loaded.Allowance("alice.near"); got.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("alice allowance = %s, want 20", got)
	}
}

func TestAccountStorePutOverwrites(t *testing.T) {
	store := NewAccountStore(storage.NewMemDB())
	first := NewAccount()
	first.Balance = big.NewInt(1)
	first.SetAllowance("bob.near", big.NewInt(99))
	if err := store.Put("carol.near", first); err != nil {
		t.Fatalf("put: %v", err)
	}

	second := NewAccount()
	second.Balance = big.NewInt(2)
	if err := store.Put("carol.near", second); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	loaded, err := store.Get("carol.near")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Balance.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("balance = %s, want 2", loaded.Balance)
	}
	if loaded.AllowanceCount() != 0 {
		t.Fatal("overwrite must drop previous allowances")
	}
}

func TestAccountKeysAreHashedAndDistinct(t *testing.T) {
	a := accountKey("alice.near")
	b := accountKey("bob.near")
	if len(a) != 32 || len(b) != 32 {
		t.Fatalf("keys must be 32-byte hashes, got %d and %d", len(a), len(b))
	}
	if bytes.Equal(a, b) {
		t.Fatal("distinct owners must map to distinct keys")
	}
	if bytes.Contains(a, []byte("alice")) {
		t.Fatal("key must not embed the raw identifier")
	}
}

func TestEncodeAccountIsDeterministic(t *testing.T) {
	account := NewAccount()
	account.Balance = big.NewInt(7)
	for _, escrow := range []string{"e1.near", "e2.near", "e3.near", "e4.near"} {
		account.SetAllowance(escrow, big.NewInt(int64(len(escrow))))
	}
	first, err := encodeAccount(account)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := 0; i < 16; i++ {
		next, err := encodeAccount(account.Copy())
		if err != nil {
			t.Fatalf("encode %d: %v", i, err)
		}
		if !bytes.Equal(first, next) {
			t.Fatal("encoding must be independent of map iteration order")
		}
	}
}
