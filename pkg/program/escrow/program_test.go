package escrow_test

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/program/escrow"
	"github.com/forge-markets/forge-server/pkg/solana"
	"github.com/forge-markets/forge-server/pkg/testutil"
	"github.com/forge-markets/forge-server/pkg/token"
)

const testSeed = 42

type testEnv struct {
	*testutil.Env

	std     token.Standard
	program ed25519.PublicKey

	maker ed25519.PublicKey
	taker ed25519.PublicKey

	mintA ed25519.PublicKey
	mintB ed25519.PublicKey

	makerAtaA ed25519.PublicKey
	takerAtaB ed25519.PublicKey

	record ed25519.PublicKey
	vault  ed25519.PublicKey
}

func setup(t *testing.T, std token.Standard) *testEnv {
	env := &testEnv{
		Env:     testutil.NewEnv(t),
		std:     std,
		program: testutil.NewKey(t),
		maker:   testutil.NewKey(t),
		taker:   testutil.NewKey(t),
	}
	env.Runtime.Register(escrow.NewProcessor(env.program))

	env.FundAccount(t, env.maker, 1_000_000_000)
	env.FundAccount(t, env.taker, 1_000_000_000)

	env.mintA = env.CreateMint(t, std, 6, testutil.NewKey(t))
	env.mintB = env.CreateMint(t, std, 6, testutil.NewKey(t))

	env.makerAtaA = env.CreateAssociatedAccount(t, env.maker, env.mintA, 1_000)
	env.takerAtaB = env.CreateAssociatedAccount(t, env.taker, env.mintB, 1_000)

	var err error
	env.record, _, err = escrow.RecordAddress(env.program, env.maker, testSeed)
	require.NoError(t, err)
	env.vault, err = token.AssociatedAccount(env.record, std.ProgramID(), env.mintA)
	require.NoError(t, err)

	return env
}

func (e *testEnv) makeInstruction(args escrow.MakeArgs) solana.Instruction {
	return escrow.NewMakeInstruction(
		e.program, e.maker, e.record, e.mintA, e.mintB, e.makerAtaA, e.vault, e.std.ProgramID(), args,
	)
}

func (e *testEnv) takeInstruction(t *testing.T) solana.Instruction {
	takerAtaA, err := token.AssociatedAccount(e.taker, e.std.ProgramID(), e.mintA)
	require.NoError(t, err)
	makerAtaB, err := token.AssociatedAccount(e.maker, e.std.ProgramID(), e.mintB)
	require.NoError(t, err)

	return escrow.NewTakeInstruction(
		e.program, e.taker, e.maker, e.record, e.mintA, e.mintB, e.vault,
		takerAtaA, e.takerAtaB, makerAtaB, e.std.ProgramID(),
	)
}

func (e *testEnv) refundInstruction() solana.Instruction {
	return escrow.NewRefundInstruction(
		e.program, e.maker, e.record, e.mintA, e.vault, e.makerAtaA, e.std.ProgramID(),
	)
}

func (e *testEnv) submit(instructions ...solana.Instruction) error {
	return e.Runtime.Execute(ledger.Transaction{Instructions: instructions})
}

func TestMake(t *testing.T) {
	for _, std := range []token.Standard{token.StandardLegacy, token.StandardExtended} {
		t.Run(std.String(), func(t *testing.T) {
			env := setup(t, std)

			require.NoError(t, env.submit(env.makeInstruction(escrow.MakeArgs{
				Seed:    testSeed,
				Receive: 500,
				Amount:  200,
			})))

			assert.EqualValues(t, 800, env.TokenBalance(t, env.makerAtaA))
			assert.EqualValues(t, 200, env.TokenBalance(t, env.vault))

			account := env.Runtime.State().Account(env.record)
			require.NotNil(t, account)
			assert.Equal(t, env.program, account.Owner)

			var record escrow.Record
			require.NoError(t, record.Unmarshal(account.Data))
			assert.EqualValues(t, testSeed, record.Seed)
			assert.Equal(t, env.maker, record.Maker)
			assert.Equal(t, env.mintA, record.MintA)
			assert.Equal(t, env.mintB, record.MintB)
			assert.EqualValues(t, 500, record.Receive)
		})
	}
}

func TestMake_Validation(t *testing.T) {
	env := setup(t, token.StandardLegacy)

	// Zero amounts are meaningless offers.
	err := env.submit(env.makeInstruction(escrow.MakeArgs{Seed: testSeed, Receive: 0, Amount: 200}))
	assert.True(t, errors.Is(err, ledger.ErrInvalidInstructionData))

	err = env.submit(env.makeInstruction(escrow.MakeArgs{Seed: testSeed, Receive: 500, Amount: 0}))
	assert.True(t, errors.Is(err, ledger.ErrInvalidInstructionData))

	// The record account must sit at the derived address.
	instruction := env.makeInstruction(escrow.MakeArgs{Seed: testSeed, Receive: 500, Amount: 200})
	instruction.Accounts[1].PublicKey = testutil.NewKey(t)
	err = env.submit(instruction)
	assert.True(t, errors.Is(err, ledger.ErrInvalidAddress))

	// An unsigned maker cannot open an offer.
	instruction = env.makeInstruction(escrow.MakeArgs{Seed: testSeed, Receive: 500, Amount: 200})
	instruction.Accounts[0].IsSigner = false
	err = env.submit(instruction)
	assert.True(t, errors.Is(err, ledger.ErrNotSigner))

	// Nothing above left any trace.
	assert.EqualValues(t, 1_000, env.TokenBalance(t, env.makerAtaA))
	assert.Nil(t, env.Runtime.State().Account(env.record))
}

func TestMake_DuplicateSeed(t *testing.T) {
	env := setup(t, token.StandardLegacy)

	instruction := env.makeInstruction(escrow.MakeArgs{Seed: testSeed, Receive: 500, Amount: 200})
	require.NoError(t, env.submit(instruction))

	err := env.submit(instruction)
	assert.True(t, errors.Is(err, ledger.ErrAccountInUse))
}

func TestTake(t *testing.T) {
	for _, std := range []token.Standard{token.StandardLegacy, token.StandardExtended} {
		t.Run(std.String(), func(t *testing.T) {
			env := setup(t, std)
			makerLamports := env.Lamports(t, env.maker)

			require.NoError(t, env.submit(env.makeInstruction(escrow.MakeArgs{
				Seed:    testSeed,
				Receive: 500,
				Amount:  200,
			})))
			require.NoError(t, env.submit(env.takeInstruction(t)))

			takerAtaA, err := token.AssociatedAccount(env.taker, std.ProgramID(), env.mintA)
			require.NoError(t, err)
			makerAtaB, err := token.AssociatedAccount(env.maker, std.ProgramID(), env.mintB)
			require.NoError(t, err)

			assert.EqualValues(t, 200, env.TokenBalance(t, takerAtaA))
			assert.EqualValues(t, 500, env.TokenBalance(t, makerAtaB))
			assert.EqualValues(t, 500, env.TokenBalance(t, env.takerAtaB))

			// Record and vault are gone, with their rent back at the maker.
			assert.Nil(t, env.Runtime.State().Account(env.record))
			assert.Nil(t, env.Runtime.State().Account(env.vault))
			assert.Equal(t, makerLamports, env.Lamports(t, env.maker))
		})
	}
}

func TestTake_InsufficientPayment(t *testing.T) {
	env := setup(t, token.StandardLegacy)

	require.NoError(t, env.submit(env.makeInstruction(escrow.MakeArgs{
		Seed:    testSeed,
		Receive: 5_000, // more than the taker holds
		Amount:  200,
	})))

	err := env.submit(env.takeInstruction(t))
	assert.True(t, errors.Is(err, ledger.ErrInsufficientFunds))

	// The offer is untouched and still refundable.
	assert.EqualValues(t, 200, env.TokenBalance(t, env.vault))
	require.NoError(t, env.submit(env.refundInstruction()))
	assert.EqualValues(t, 1_000, env.TokenBalance(t, env.makerAtaA))
}

func TestTake_RequiresSigner(t *testing.T) {
	env := setup(t, token.StandardLegacy)

	require.NoError(t, env.submit(env.makeInstruction(escrow.MakeArgs{
		Seed:    testSeed,
		Receive: 500,
		Amount:  200,
	})))

	instruction := env.takeInstruction(t)
	instruction.Accounts[0].IsSigner = false
	err := env.submit(instruction)
	assert.True(t, errors.Is(err, ledger.ErrNotSigner))
}

func TestRefund(t *testing.T) {
	env := setup(t, token.StandardLegacy)
	makerLamports := env.Lamports(t, env.maker)

	require.NoError(t, env.submit(env.makeInstruction(escrow.MakeArgs{
		Seed:    testSeed,
		Receive: 500,
		Amount:  200,
	})))
	require.NoError(t, env.submit(env.refundInstruction()))

	assert.EqualValues(t, 1_000, env.TokenBalance(t, env.makerAtaA))
	assert.Nil(t, env.Runtime.State().Account(env.record))
	assert.Nil(t, env.Runtime.State().Account(env.vault))
	assert.Equal(t, makerLamports, env.Lamports(t, env.maker))
}

func TestRefund_OnlyMaker(t *testing.T) {
	env := setup(t, token.StandardLegacy)

	require.NoError(t, env.submit(env.makeInstruction(escrow.MakeArgs{
		Seed:    testSeed,
		Receive: 500,
		Amount:  200,
	})))

	// The taker signing in the maker slot does not pass the stored-maker
	// comparison.
	instruction := env.refundInstruction()
	instruction.Accounts[0].PublicKey = env.taker
	err := env.submit(instruction)
	assert.True(t, errors.Is(err, ledger.ErrInvalidOwner))

	assert.EqualValues(t, 200, env.TokenBalance(t, env.vault))
}

func TestTakeAndRefundAreExclusive(t *testing.T) {
	t.Run("take then refund", func(t *testing.T) {
		env := setup(t, token.StandardLegacy)
		require.NoError(t, env.submit(env.makeInstruction(escrow.MakeArgs{Seed: testSeed, Receive: 500, Amount: 200})))
		require.NoError(t, env.submit(env.takeInstruction(t)))

		err := env.submit(env.refundInstruction())
		assert.True(t, errors.Is(err, ledger.ErrInvalidOwner))
	})

	t.Run("refund then take", func(t *testing.T) {
		env := setup(t, token.StandardLegacy)
		require.NoError(t, env.submit(env.makeInstruction(escrow.MakeArgs{Seed: testSeed, Receive: 500, Amount: 200})))
		require.NoError(t, env.submit(env.refundInstruction()))

		err := env.submit(env.takeInstruction(t))
		assert.True(t, errors.Is(err, ledger.ErrInvalidOwner))
	})
}

func TestRecordCodec(t *testing.T) {
	record := escrow.Record{
		Seed:    7,
		Maker:   testutil.NewKey(t),
		MintA:   testutil.NewKey(t),
		MintB:   testutil.NewKey(t),
		Receive: 123,
		Bump:    254,
	}

	encoded := record.Marshal()
	require.Len(t, encoded, escrow.RecordSize)

	var decoded escrow.Record
	require.NoError(t, decoded.Unmarshal(encoded))
	assert.Equal(t, record, decoded)

	assert.Error(t, decoded.Unmarshal(encoded[:len(encoded)-1]))
}
