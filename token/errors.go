package token

import "errors"

var (
	// ErrAlreadyInitialized indicates the ledger state already exists.
	ErrAlreadyInitialized = errors.New("token: already initialized")
	// ErrNotInitialized indicates the ledger has not been initialized yet.
	ErrNotInitialized = errors.New("token: ledger not initialized")
	// ErrInvalidAccountID indicates a syntactically invalid account identifier.
	ErrInvalidAccountID = errors.New("token: invalid account id")
	// ErrInvalidAmount indicates a malformed or out-of-domain amount string.
	ErrInvalidAmount = errors.New("token: invalid amount")
	// ErrZeroAmount indicates a transfer of zero tokens.
	ErrZeroAmount = errors.New("token: can't transfer 0 tokens")
	// ErrInsufficientBalance indicates the owner's balance does not cover the amount.
	ErrInsufficientBalance = errors.New("token: not enough balance")
	// ErrInsufficientAllowance indicates the caller's allowance does not cover the amount.
	ErrInsufficientAllowance = errors.New("token: not enough allowance")
	// ErrSelfAllowance indicates an attempt to grant an allowance to oneself.
	ErrSelfAllowance = errors.New("token: can't set allowance for yourself")
	// ErrFinishMintForbidden indicates finish mint was invoked by a caller other
	// than the contract itself.
	ErrFinishMintForbidden = errors.New("token: finish mint is only allowed to be called by the contract itself")
	// ErrVerificationFailed indicates the prover rejected the supplied proof.
	ErrVerificationFailed = errors.New("token: failed to verify the proof")
	// ErrAmountOverflow indicates an amount exceeded the unsigned 128-bit range.
	ErrAmountOverflow = errors.New("token: amount exceeds the 128-bit range")
)
