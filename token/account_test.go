package token

import (
	"math/big"
	"testing"
)

func TestAccountAllowanceLifecycle(t *testing.T) {
	account := NewAccount()
	if got := account.Allowance("bob.near"); got.Sign() != 0 {
		t.Fatalf("fresh account allowance = %s, want 0", got)
	}

	account.SetAllowance("bob.near", big.NewInt(100))
	if got := account.Allowance("bob.near"); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("allowance = %s, want 100", got)
	}
	if account.AllowanceCount() != 1 {
		t.Fatalf("expected 1 entry, got %d", account.AllowanceCount())
	}

	account.SetAllowance("bob.near", big.NewInt(25))
	if got := account.Allowance("bob.near"); got.Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("overwritten allowance = %s, want 25", got)
	}

	account.SetAllowance("bob.near", big.NewInt(0))
	if account.AllowanceCount() != 0 {
		t.Fatalf("zero allowance should delete entry, got %d entries", account.AllowanceCount())
	}
	if got := account.Allowance("bob.near"); got.Sign() != 0 {
		t.Fatalf("deleted allowance = %s, want 0", got)
	}
}

func TestAccountAllowanceIsolation(t *testing.T) {
	account := NewAccount()
	account.SetAllowance("bob.near", big.NewInt(10))
	account.SetAllowance("alice.near", big.NewInt(20))
	if got := account.Allowance("bob.near"); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("bob allowance = %s, want 10", got)
	}
	if got := account.Allowance("alice.near"); got.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("alice allowance = %s, want 20", got)
	}

	// Returned values must not alias internal state.
	got := account.Allowance("bob.near")
	got.SetInt64(999)
	if account.Allowance("bob.near").Cmp(big.NewInt(10)) != 0 {
		t.Fatal("Allowance must return a copy")
	}
}

func TestAccountCopy(t *testing.T) {
	account := NewAccount()
	account.Balance = big.NewInt(500)
	account.SetAllowance("bob.near", big.NewInt(50))

	clone := account.Copy()
	clone.Balance.SetInt64(0)
	clone.SetAllowance("bob.near", big.NewInt(1))

	if account.Balance.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("copy aliased balance: %s", account.Balance)
	}
	if got := account.Allowance("bob.near"); got.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("copy aliased allowances: %s", got)
	}
	if (*Account)(nil).Copy() != nil {
		t.Fatal("nil copy should be nil")
	}
}

func TestValidAccountID(t *testing.T) {
	valid := []string{"ok", "bob", "alice.near", "a1-b_c.d2", "system", "a-very-long-but-still-valid-account-id-under-sixty-four-chars00"}
	for _, id := range valid {
		if !ValidAccountID(id) {
			t.Fatalf("%q should be valid", id)
		}
	}
	invalid := []string{
		"", "a", "A.near", "alice near", "-alice", "alice-", "al..ice", "a__b_", "_ab",
		"verylongaccountidthatkeepsgoingandgoingandgoingwellbeyondsixtyfourcharacters",
	}
	for _, id := range invalid {
		if ValidAccountID(id) {
			t.Fatalf("%q should be invalid", id)
		}
	}
}
