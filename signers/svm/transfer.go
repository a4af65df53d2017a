package svm

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/hawala-wallet/signcore"
)

// ComputeBudgetProgramID is the Solana Compute Budget program.
var ComputeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

// Compute budget defaults used by NewTokenTransfer.
const (
	DefaultComputeUnitLimit uint32 = 200_000
	DefaultComputeUnitPrice uint64 = 10_000
)

// SetComputeUnitLimit returns the compute budget instruction [2, u32 LE].
func SetComputeUnitLimit(units uint32) solana.Instruction {
	data := make([]byte, 5)
	data[0] = 2
	binary.LittleEndian.PutUint32(data[1:], units)
	return solana.NewInstruction(ComputeBudgetProgramID, solana.AccountMetaSlice{}, data)
}

// SetComputeUnitPrice returns the compute budget instruction [3, u64 LE],
// the price in micro-lamports per compute unit.
func SetComputeUnitPrice(microLamports uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = 3
	binary.LittleEndian.PutUint64(data[1:], microLamports)
	return solana.NewInstruction(ComputeBudgetProgramID, solana.AccountMetaSlice{}, data)
}

// TokenTransfer describes an SPL TransferChecked between the owners'
// associated token accounts.
type TokenTransfer struct {
	Owner     solana.PublicKey
	Recipient solana.PublicKey
	Mint      solana.PublicKey
	Amount    uint64
	Decimals  uint8
	Blockhash solana.Hash

	// FeePayer defaults to Owner. A different payer makes the
	// transaction need two signatures.
	FeePayer solana.PublicKey

	// Zero values select the defaults.
	ComputeUnitLimit uint32
	ComputeUnitPrice uint64
}

// NewTokenTransfer builds an unsigned SPL token transfer preceded by the
// compute budget instructions.
func NewTokenTransfer(t TokenTransfer) (Transaction, error) {
	sourceATA, _, err := solana.FindAssociatedTokenAddress(t.Owner, t.Mint)
	if err != nil {
		return Transaction{}, signcore.NewError(signcore.ErrCodeInvalidInput, "deriving source token account", err)
	}
	destATA, _, err := solana.FindAssociatedTokenAddress(t.Recipient, t.Mint)
	if err != nil {
		return Transaction{}, signcore.NewError(signcore.ErrCodeInvalidInput, "deriving destination token account", err)
	}

	limit := t.ComputeUnitLimit
	if limit == 0 {
		limit = DefaultComputeUnitLimit
	}
	price := t.ComputeUnitPrice
	if price == 0 {
		price = DefaultComputeUnitPrice
	}
	feePayer := t.FeePayer
	if feePayer.IsZero() {
		feePayer = t.Owner
	}

	transfer := token.NewTransferCheckedInstructionBuilder().
		SetAmount(t.Amount).
		SetDecimals(t.Decimals).
		SetSourceAccount(sourceATA).
		SetMintAccount(t.Mint).
		SetDestinationAccount(destATA).
		SetOwnerAccount(t.Owner).
		Build()

	return FromInstructions(feePayer, t.Blockhash,
		SetComputeUnitLimit(limit),
		SetComputeUnitPrice(price),
		transfer,
	)
}
