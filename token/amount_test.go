package token

import (
	"errors"
	"math/big"
	"strings"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"100", "100"},
		{" 42 ", "42"},
		{"340282366920938463463374607431768211455", "340282366920938463463374607431768211455"}, // 2^128-1
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.input)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", tc.input, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ParseAmount(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestParseAmountRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "  ", "abc", "1.5", "0x10", "-1"} {
		if _, err := ParseAmount(input); err == nil {
			t.Fatalf("ParseAmount(%q) should fail", input)
		}
	}
}

func TestParseAmountRejectsOverflow(t *testing.T) {
	over := new(big.Int).Lsh(big.NewInt(1), 128).String() // 2^128
	if _, err := ParseAmount(over); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("got %v, want ErrAmountOverflow", err)
	}
	huge := strings.Repeat("9", 60)
	if _, err := ParseAmount(huge); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("got %v, want ErrAmountOverflow", err)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(nil); got != "0" {
		t.Fatalf("FormatAmount(nil) = %s, want 0", got)
	}
	if got := FormatAmount(big.NewInt(12345)); got != "12345" {
		t.Fatalf("FormatAmount = %s, want 12345", got)
	}
}

func TestCheckAmount(t *testing.T) {
	if err := checkAmount(big.NewInt(0)); err != nil {
		t.Fatalf("zero should pass: %v", err)
	}
	if err := checkAmount(nil); err == nil {
		t.Fatal("nil should fail")
	}
	if err := checkAmount(big.NewInt(-1)); err == nil {
		t.Fatal("negative should fail")
	}
	over := new(big.Int).Lsh(big.NewInt(1), 128)
	if err := checkAmount(over); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("got %v, want ErrAmountOverflow", err)
	}
}

func TestStoredAmountRoundTrip(t *testing.T) {
	want := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	stored, err := amountToStored(want)
	if err != nil {
		t.Fatalf("to stored: %v", err)
	}
	if got := amountFromStored(stored); got.Cmp(want) != 0 {
		t.Fatalf("round trip = %s, want %s", got, want)
	}
	if got := amountFromStored(nil); got.Sign() != 0 {
		t.Fatalf("nil stored should decode to 0, got %s", got)
	}
}
