// Package svm builds Solana transactions (legacy and v0 messages), returns
// the serialized message each required signer must sign, and compiles
// externally produced Ed25519 signatures into a broadcast-ready transaction.
//
// Ed25519 signs the message bytes directly, so a Solana pre-image carries
// the whole serialized message in its Hash field rather than a digest.
package svm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/encoding"
)

// AccountMeta is one account referenced by an instruction.
type AccountMeta struct {
	PublicKey  string `json:"publicKey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// Instruction is a program invocation. Data is hex encoded in JSON.
type Instruction struct {
	ProgramID string            `json:"programId"`
	Accounts  []AccountMeta     `json:"accounts"`
	Data      encoding.HexBytes `json:"data"`
}

// AddressTable is an address lookup table account and the addresses it
// holds. Any table makes the transaction a v0 message.
type AddressTable struct {
	Address   string   `json:"address"`
	Addresses []string `json:"addresses"`
}

// Transaction is an unsigned Solana transaction. All keys and the blockhash
// are base58.
type Transaction struct {
	FeePayer        string         `json:"feePayer"`
	RecentBlockhash string         `json:"recentBlockhash"`
	Instructions    []Instruction  `json:"instructions"`
	AddressTables   []AddressTable `json:"addressTables,omitempty"`
}

func parseKey(field, s string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, signcore.NewError(signcore.ErrCodeInvalidInput, fmt.Sprintf("invalid %s %q", field, s), err)
	}
	return key, nil
}

// build converts tx into a solana-go transaction with empty signature slots.
func (tx Transaction) build() (*solana.Transaction, error) {
	if len(tx.Instructions) == 0 {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "transaction has no instructions")
	}
	feePayer, err := parseKey("feePayer", tx.FeePayer)
	if err != nil {
		return nil, err
	}
	blockhash, err := solana.HashFromBase58(tx.RecentBlockhash)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "invalid recentBlockhash", err)
	}

	instructions := make([]solana.Instruction, 0, len(tx.Instructions))
	for i, inst := range tx.Instructions {
		programID, err := parseKey(fmt.Sprintf("instruction %d programId", i), inst.ProgramID)
		if err != nil {
			return nil, err
		}
		metas := make(solana.AccountMetaSlice, 0, len(inst.Accounts))
		for _, acc := range inst.Accounts {
			key, err := parseKey(fmt.Sprintf("instruction %d account", i), acc.PublicKey)
			if err != nil {
				return nil, err
			}
			metas = append(metas, &solana.AccountMeta{
				PublicKey:  key,
				IsSigner:   acc.IsSigner,
				IsWritable: acc.IsWritable,
			})
		}
		instructions = append(instructions, solana.NewInstruction(programID, metas, inst.Data))
	}

	opts := []solana.TransactionOption{solana.TransactionPayer(feePayer)}
	if len(tx.AddressTables) > 0 {
		tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(tx.AddressTables))
		for _, table := range tx.AddressTables {
			addr, err := parseKey("address table", table.Address)
			if err != nil {
				return nil, err
			}
			entries := make(solana.PublicKeySlice, 0, len(table.Addresses))
			for _, a := range table.Addresses {
				key, err := parseKey("address table entry", a)
				if err != nil {
					return nil, err
				}
				entries = append(entries, key)
			}
			tables[addr] = entries
		}
		opts = append(opts, solana.TransactionAddressTables(tables))
	}

	out, err := solana.NewTransaction(instructions, blockhash, opts...)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "building transaction", err)
	}
	return out, nil
}

// FromInstructions converts instructions built with solana-go program
// builders into a Transaction.
func FromInstructions(feePayer solana.PublicKey, blockhash solana.Hash, instructions ...solana.Instruction) (Transaction, error) {
	tx := Transaction{
		FeePayer:        feePayer.String(),
		RecentBlockhash: blockhash.String(),
	}
	for _, inst := range instructions {
		data, err := inst.Data()
		if err != nil {
			return Transaction{}, signcore.NewError(signcore.ErrCodeInvalidInput, "encoding instruction data", err)
		}
		out := Instruction{ProgramID: inst.ProgramID().String(), Data: data}
		for _, acc := range inst.Accounts() {
			out.Accounts = append(out.Accounts, AccountMeta{
				PublicKey:  acc.PublicKey.String(),
				IsSigner:   acc.IsSigner,
				IsWritable: acc.IsWritable,
			})
		}
		tx.Instructions = append(tx.Instructions, out)
	}
	return tx, nil
}
