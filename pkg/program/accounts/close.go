package accounts

import (
	"math"

	"github.com/forge-markets/forge-server/pkg/ledger"
)

// tombstone marks the first data byte of a closed record so any stale
// reference held later in the same transaction reads as garbage instead of
// the old record.
const tombstone = 0xff

// CloseProgramAccount destroys a record account: the data is tombstoned and
// shrunk to a single byte, the lamports move to the destination, and
// ownership reverts to the system program. A later instruction in the same
// transaction that re-reads the record sees the tombstone and fails its
// program-account check; the drained account is dropped from the ledger
// when the transaction commits.
func CloseProgramAccount(account, dest *ledger.AccountView) error {
	if account.DataLen() == 0 {
		return ledger.ErrInvalidAccountData
	}
	if account.DataLen() == 1 && account.Data()[0] == tombstone {
		return ledger.ErrInvalidAccountData
	}
	if dest.Lamports() > math.MaxUint64-account.Lamports() {
		return ledger.ErrArithmeticOverflow
	}

	data := account.Data()
	data[0] = tombstone
	account.Resize(1)

	dest.SetLamports(dest.Lamports() + account.Lamports())
	account.SetLamports(0)
	account.SetOwner(ledger.SystemProgramID)
	return nil
}
