package ledger

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/forge-markets/forge-server/pkg/solana"
)

// Program is a registered instruction handler. Ids are injected at
// construction rather than compiled in, so the same handler code can run
// under any deployment address.
type Program interface {
	ID() ed25519.PublicKey
	Execute(ctx *Context, accounts []*AccountView, data []byte) error
}

// Context carries the host facilities an instruction may consume: the
// transaction's working state, the rent oracle, and the account-creation
// primitive.
type Context struct {
	Rent Rent

	state *State
	log   *logrus.Entry
}

// Log returns the instruction-scoped log entry.
func (c *Context) Log() *logrus.Entry {
	return c.log
}

// CreateAccount allocates a new account at the target address: lamports move
// from the payer, the owner program is assigned, and space zeroed bytes are
// allocated. The target address must authorize its own creation, either by
// transaction signature or by derived-seed capability, and must not already
// hold state.
func (c *Context) CreateAccount(payer, target *AccountView, authority Authority, lamports, space uint64, owner ed25519.PublicKey) error {
	if !payer.IsSigner() {
		return ErrNotSigner
	}
	if !authority.Covers(target.Address()) {
		return ErrInvalidAddress
	}
	if target.Exists() {
		return ErrAccountInUse
	}
	if payer.Lamports() < lamports {
		return ErrInsufficientFunds
	}

	payer.SetLamports(payer.Lamports() - lamports)
	target.SetLamports(lamports)
	target.SetOwner(owner)
	target.SetData(make([]byte, space))
	return nil
}

// Transaction is an ordered instruction list executed atomically. Signature
// verification happens upstream; the account metas already reflect which
// addresses signed.
type Transaction struct {
	Instructions []solana.Instruction
}

// Runtime is the entry dispatcher: it routes each instruction of a
// transaction to the program registered at its program id, executing against
// a working copy of the ledger state that is committed only if every
// instruction succeeds.
//
// Scheduling is external: the runtime processes one instruction at a time
// and callers are responsible for never executing two transactions that
// write the same account concurrently.
type Runtime struct {
	state    *State
	rent     Rent
	programs map[string]Program
	log      *logrus.Entry
}

func NewRuntime(state *State, rent Rent) *Runtime {
	return &Runtime{
		state:    state,
		rent:     rent,
		programs: make(map[string]Program),
		log:      logrus.StandardLogger().WithField("type", "ledger/runtime"),
	}
}

func (r *Runtime) Register(p Program) {
	r.programs[string(p.ID())] = p
}

// State exposes the committed ledger state.
func (r *Runtime) State() *State {
	return r.state
}

// Execute runs the transaction's instructions strictly in order, each seeing
// the previous instruction's completed writes. The first failure discards
// every write and is reported with the failing instruction's position;
// success commits all of them.
func (r *Runtime) Execute(tx Transaction) error {
	working := r.state.Clone()

	for i, instruction := range tx.Instructions {
		program, ok := r.programs[string(instruction.Program)]
		if !ok {
			return &InstructionError{Index: i, Err: ErrUnknownProgram}
		}

		log := r.log.WithFields(logrus.Fields{
			"instruction": i,
			"program":     base58.Encode(instruction.Program),
		})

		views := make([]*AccountView, len(instruction.Accounts))
		for j, meta := range instruction.Accounts {
			account := working.Account(meta.PublicKey)
			if account == nil {
				account = &Account{Owner: SystemProgramID}
				working.SetAccount(meta.PublicKey, account)
			}
			views[j] = NewAccountView(meta.PublicKey, account, meta.IsSigner, meta.IsWritable)
		}

		ctx := &Context{
			Rent:  r.rent,
			state: working,
			log:   log,
		}

		if err := program.Execute(ctx, views, instruction.Data); err != nil {
			log.WithError(err).Warn("instruction failed, dropping transaction")
			return &InstructionError{Index: i, Err: err}
		}

		log.Debug("instruction executed")
	}

	working.prune()
	r.state = working
	return nil
}
