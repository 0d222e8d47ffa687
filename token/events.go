package token

import "math/big"

// Event types emitted by the ledger.
const (
	TypeTransfer      = "token.transfer"
	TypeAllowance     = "token.allowance"
	TypeMintRequested = "token.mint.requested"
	TypeMintSettled   = "token.mint.settled"
)

// Event represents a structured state change emitted by the ledger.
type Event interface {
	EventType() string
	Attributes() map[string]string
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// TransferEvent is emitted for every balance movement between two accounts.
type TransferEvent struct {
	Owner     string
	NewOwner  string
	Caller    string
	Amount    *big.Int
	Delegated bool
}

func (TransferEvent) EventType() string { return TypeTransfer }

func (e TransferEvent) Attributes() map[string]string {
	attrs := map[string]string{
		"owner":    e.Owner,
		"newOwner": e.NewOwner,
		"caller":   e.Caller,
		"amount":   FormatAmount(e.Amount),
	}
	if e.Delegated {
		attrs["delegated"] = "true"
	}
	return attrs
}

// AllowanceEvent is emitted whenever an owner updates an escrow allowance.
type AllowanceEvent struct {
	Owner     string
	Escrow    string
	Allowance *big.Int
}

func (AllowanceEvent) EventType() string { return TypeAllowance }

func (e AllowanceEvent) Attributes() map[string]string {
	return map[string]string{
		"owner":     e.Owner,
		"escrow":    e.Escrow,
		"allowance": FormatAmount(e.Allowance),
	}
}

// MintRequestedEvent is emitted when a mint enters verification.
type MintRequestedEvent struct {
	RequestID string
	NewOwner  string
	Amount    *big.Int
}

func (MintRequestedEvent) EventType() string { return TypeMintRequested }

func (e MintRequestedEvent) Attributes() map[string]string {
	return map[string]string{
		"requestId": e.RequestID,
		"newOwner":  e.NewOwner,
		"amount":    FormatAmount(e.Amount),
	}
}

// MintSettledEvent is emitted once verification resolves, successfully or not.
type MintSettledEvent struct {
	RequestID string
	NewOwner  string
	Amount    *big.Int
	Success   bool
}

func (MintSettledEvent) EventType() string { return TypeMintSettled }

func (e MintSettledEvent) Attributes() map[string]string {
	success := "false"
	if e.Success {
		success = "true"
	}
	return map[string]string{
		"requestId": e.RequestID,
		"newOwner":  e.NewOwner,
		"amount":    FormatAmount(e.Amount),
		"success":   success,
	}
}
