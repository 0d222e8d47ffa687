package token

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/near/near-bridge/storage"
)

type storedMeta struct {
	TotalSupply   *uint256.Int
	ProverAccount string
	VerifyProof   bool
}

// Ledger is the aggregate root for the fungible token state: the account
// store, the total supply and the bridge configuration. It is created once
// per database via Initialize and mutated in place by every subsequent call.
//
// A mutex serializes all mutating operations so each call runs to completion
// against a consistent view of the state: single writer, no interleaving.
type Ledger struct {
	mu       sync.Mutex
	db       storage.Database
	accounts *AccountStore
	emitter  Emitter

	// contractID is the ledger's own account identity. FinishMint rejects
	// every other caller; this is the integrity boundary that keeps third
	// parties from forging a verification result.
	contractID string

	initialized   bool
	totalSupply   *big.Int
	proverAccount string
	verifyProof   bool
}

// NewLedger constructs a ledger over the database and loads any previously
// initialized state. contractID is the account identity the ledger acts
// under when completing its own mint continuations.
func NewLedger(db storage.Database, contractID string) (*Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("token: database required")
	}
	self, err := validateAccountID(contractID)
	if err != nil {
		return nil, fmt.Errorf("token: contract account id %q: %w", contractID, err)
	}
	l := &Ledger{
		db:         db,
		accounts:   NewAccountStore(db),
		emitter:    NoopEmitter{},
		contractID: self,
	}
	if err := l.loadMeta(); err != nil {
		return nil, err
	}
	return l, nil
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (l *Ledger) SetEmitter(emitter Emitter) {
	if emitter == nil {
		l.emitter = NoopEmitter{}
		return
	}
	l.emitter = emitter
}

func (l *Ledger) emit(event Event) {
	if l.emitter != nil {
		l.emitter.Emit(event)
	}
}

func (l *Ledger) loadMeta() error {
	raw, ok, err := l.db.Get(metaKey)
	if err != nil {
		return fmt.Errorf("token: load ledger state: %w", err)
	}
	if !ok {
		return nil
	}
	var meta storedMeta
	if err := rlp.DecodeBytes(raw, &meta); err != nil {
		return fmt.Errorf("token: decode ledger state: %w", err)
	}
	l.initialized = true
	l.totalSupply = amountFromStored(meta.TotalSupply)
	l.proverAccount = meta.ProverAccount
	l.verifyProof = meta.VerifyProof
	return nil
}

func (l *Ledger) stageMeta(batch *storage.Batch) error {
	supply, err := amountToStored(l.totalSupply)
	if err != nil {
		return err
	}
	encoded, err := rlp.EncodeToBytes(storedMeta{
		TotalSupply:   supply,
		ProverAccount: l.proverAccount,
		VerifyProof:   l.verifyProof,
	})
	if err != nil {
		return fmt.Errorf("token: encode ledger state: %w", err)
	}
	batch.Put(metaKey, encoded)
	return nil
}

// Initialize creates the singleton ledger state with the given total supply
// owned by ownerID. It fails if any prior state exists.
func (l *Ledger) Initialize(ownerID string, totalSupply *big.Int, proverAccount string, verifyProof bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	owner, err := validateAccountID(ownerID)
	if err != nil {
		return fmt.Errorf("token: owner account id %q: %w", ownerID, err)
	}
	prover, err := validateAccountID(proverAccount)
	if err != nil {
		return fmt.Errorf("token: prover account id %q: %w", proverAccount, err)
	}
	if err := checkAmount(totalSupply); err != nil {
		return err
	}
	if l.initialized {
		return ErrAlreadyInitialized
	}
	if _, ok, err := l.db.Get(metaKey); err != nil {
		return fmt.Errorf("token: check ledger state: %w", err)
	} else if ok {
		return ErrAlreadyInitialized
	}

	l.totalSupply = new(big.Int).Set(totalSupply)
	l.proverAccount = prover
	l.verifyProof = verifyProof

	account, err := l.accounts.Get(owner)
	if err != nil {
		return err
	}
	account.Balance = new(big.Int).Set(totalSupply)

	batch := new(storage.Batch)
	if err := l.stageMeta(batch); err != nil {
		return err
	}
	if err := l.accounts.stage(batch, owner, account); err != nil {
		return err
	}
	if err := l.db.Write(batch); err != nil {
		return fmt.Errorf("token: persist ledger state: %w", err)
	}
	l.initialized = true
	return nil
}

// Initialized reports whether the ledger state exists.
func (l *Ledger) Initialized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.initialized
}

// ContractID returns the ledger's own account identity.
func (l *Ledger) ContractID() string {
	return l.contractID
}

// ProverAccount returns the configured prover account identifier.
func (l *Ledger) ProverAccount() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return "", ErrNotInitialized
	}
	return l.proverAccount, nil
}

// VerifyProof reports whether mint proofs undergo real verification. When
// false the bridge instructs the prover to skip verification; the call
// protocol is otherwise identical.
func (l *Ledger) VerifyProof() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return false, ErrNotInitialized
	}
	return l.verifyProof, nil
}

// TotalSupply returns the total supply of the token.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return nil, ErrNotInitialized
	}
	return new(big.Int).Set(l.totalSupply), nil
}

// Balance returns the balance of the owner account. Accounts that were never
// written have a zero balance.
func (l *Ledger) Balance(ownerID string) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return nil, ErrNotInitialized
	}
	account, err := l.accounts.Get(strings.TrimSpace(ownerID))
	if err != nil {
		return nil, err
	}
	return account.Balance, nil
}

// Allowance returns the current allowance of the escrow account on the owner
// account. The result is advisory: it can be stale by the time a caller acts
// on it, since allowances mutate on every delegated transfer.
func (l *Ledger) Allowance(ownerID, escrowID string) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return nil, ErrNotInitialized
	}
	owner, err := validateAccountID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("token: owner account id %q: %w", ownerID, err)
	}
	escrow, err := validateAccountID(escrowID)
	if err != nil {
		return nil, fmt.Errorf("token: escrow account id %q: %w", escrowID, err)
	}
	account, err := l.accounts.Get(owner)
	if err != nil {
		return nil, err
	}
	return account.Allowance(escrow), nil
}

// SetAllowance sets the allowance for escrowID on the caller's account. The
// caller is the balance owner; self-allowance is meaningless and forbidden.
func (l *Ledger) SetAllowance(callerID, escrowID string, allowance *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return ErrNotInitialized
	}
	owner, err := validateAccountID(callerID)
	if err != nil {
		return fmt.Errorf("token: caller account id %q: %w", callerID, err)
	}
	escrow, err := validateAccountID(escrowID)
	if err != nil {
		return fmt.Errorf("token: escrow account id %q: %w", escrowID, err)
	}
	if err := checkAmount(allowance); err != nil {
		return err
	}
	if escrow == owner {
		return ErrSelfAllowance
	}
	account, err := l.accounts.Get(owner)
	if err != nil {
		return err
	}
	account.SetAllowance(escrow, allowance)
	if err := l.accounts.Put(owner, account); err != nil {
		return err
	}
	l.emit(AllowanceEvent{Owner: owner, Escrow: escrow, Allowance: allowance})
	return nil
}
