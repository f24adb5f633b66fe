package ledger

import (
	"fmt"

	"github.com/pkg/errors"
)

// Validation and state-transition failures surfaced by programs. Every
// handler returns the first failure immediately; the runtime discards the
// whole transaction on any of them.
var (
	ErrNotSigner            = errors.New("missing required signature")
	ErrInvalidOwner         = errors.New("account ownership mismatch")
	ErrInvalidAccountData   = errors.New("invalid account data")
	ErrInvalidAddress       = errors.New("address derivation mismatch")
	ErrArithmeticOverflow   = errors.New("arithmetic overflow")
	ErrSlippageExceeded     = errors.New("slippage exceeded")
	ErrInvalidState         = errors.New("invalid lifecycle state")
	ErrInsufficientAccounts = errors.New("not enough account keys")
)

// Host-level failures.
var (
	ErrInvalidInstructionData = errors.New("invalid instruction data")
	ErrAccountInUse           = errors.New("account already in use")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrUnknownProgram         = errors.New("no program registered at address")
)

// InstructionError reports which instruction of a transaction failed and
// why. The transaction's writes are fully rolled back when one is returned.
type InstructionError struct {
	Index int
	Err   error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("error processing instruction %d: %v", e.Index, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}
