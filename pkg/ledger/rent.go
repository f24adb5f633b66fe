package ledger

// Rent is the sysvar oracle for minimum account funding. Accounts below the
// exemption threshold are not persisted indefinitely, so every initializer
// funds new accounts to at least MinimumBalance of their size.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

// accountStorageOverhead is the ledger's fixed per-account metadata charge,
// applied on top of the data size.
const accountStorageOverhead = 128

// DefaultRent returns the mainnet rent parameters.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2.0,
	}
}

// MinimumBalance returns the rent-exempt balance for an account of the
// given data size.
func (r Rent) MinimumBalance(space int) uint64 {
	perYear := (uint64(space) + accountStorageOverhead) * r.LamportsPerByteYear
	return uint64(float64(perYear) * r.ExemptionThreshold)
}
