package api

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/encoding"
	"github.com/hawala-wallet/signcore/signers/btc"
	"github.com/hawala-wallet/signcore/signers/cosmos"
	"github.com/hawala-wallet/signcore/signers/evm"
	"github.com/hawala-wallet/signcore/signers/svm"
)

// PreImagesResponse lists what must be signed, in signing order.
type PreImagesResponse struct {
	PreImages []signcore.PreImageHash `json:"preImages"`
	// SignDoc is the unhashed sign bytes, for signers that display them.
	SignDoc encoding.HexBytes `json:"signDoc,omitempty"`
	// PSBT is the BIP-174 export of a Bitcoin transaction, when requested.
	PSBT encoding.HexBytes `json:"psbt,omitempty"`
}

// BitcoinRequest carries an unsigned Bitcoin transaction. HashType 0 is
// SIGHASH_DEFAULT, read as SIGHASH_ALL for non-taproot inputs.
type BitcoinRequest struct {
	Transaction btc.Transaction              `json:"transaction"`
	HashType    txscript.SigHashType         `json:"hashType,omitempty"`
	Signatures  []signcore.ExternalSignature `json:"signatures,omitempty"`
	// PSBT asks the pre-image call to also export the transaction as a PSBT.
	PSBT bool `json:"psbt,omitempty"`
	// SignedPSBT supplies signatures as a PSBT returned by a signer, in
	// addition to Signatures.
	SignedPSBT encoding.HexBytes `json:"signedPsbt,omitempty"`
}

// BitcoinPreImages returns one sighash per input.
func BitcoinPreImages(req BitcoinRequest) (*PreImagesResponse, error) {
	pres, err := btc.PreImages(req.Transaction, req.HashType)
	if err != nil {
		return nil, err
	}
	resp := &PreImagesResponse{PreImages: pres}
	if req.PSBT {
		packet, err := btc.ToPSBT(req.Transaction, req.HashType)
		if err != nil {
			return nil, err
		}
		if resp.PSBT, err = btc.EncodePSBT(packet); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// BitcoinCompile verifies req.Signatures and returns the signed transaction.
func BitcoinCompile(req BitcoinRequest) (*signcore.BitcoinTransaction, error) {
	sigs := req.Signatures
	if len(req.SignedPSBT) > 0 {
		packet, err := btc.DecodePSBT(req.SignedPSBT)
		if err != nil {
			return nil, err
		}
		fromPSBT, err := btc.SignaturesFromPSBT(packet)
		if err != nil {
			return nil, err
		}
		sigs = append(append([]signcore.ExternalSignature(nil), sigs...), fromPSBT...)
	}
	return btc.Compile(req.Transaction, req.HashType, sigs)
}

// EthereumRequest carries an unsigned Ethereum transaction. Set-code
// transactions need their authorization signatures before the transaction
// pre-image can be computed.
type EthereumRequest struct {
	Transaction             evm.Transaction              `json:"transaction"`
	Signature               *signcore.ExternalSignature  `json:"signature,omitempty"`
	AuthorizationSignatures []signcore.ExternalSignature `json:"authorizationSignatures,omitempty"`
}

// EthereumPreImages returns the transaction signing hash. For a set-code
// transaction without authorization signatures it returns the
// authorization pre-images instead, which must be signed first.
func EthereumPreImages(req EthereumRequest) (*PreImagesResponse, error) {
	tx := req.Transaction
	if len(tx.Authorizations) > 0 && len(req.AuthorizationSignatures) == 0 {
		pres, err := evm.AuthorizationPreImages(tx)
		if err != nil {
			return nil, err
		}
		return &PreImagesResponse{PreImages: pres}, nil
	}
	pre, err := evm.PreImage(tx, req.AuthorizationSignatures)
	if err != nil {
		return nil, err
	}
	return &PreImagesResponse{PreImages: []signcore.PreImageHash{pre}}, nil
}

// EthereumCompile verifies the signature and returns the raw transaction.
func EthereumCompile(req EthereumRequest) (*signcore.EthereumTransaction, error) {
	if req.Signature == nil {
		return nil, signcore.Errorf(signcore.ErrIncompleteSignatureSet, "transaction signature is missing")
	}
	return evm.Compile(req.Transaction, *req.Signature, req.AuthorizationSignatures)
}

// AuthoritiesResponse lists the recovered signer of each authorization tuple.
type AuthoritiesResponse struct {
	Authorities []common.Address `json:"authorities"`
}

// RecoverAuthorizations pairs the authorization signatures with their
// tuples and recovers each authority.
func RecoverAuthorizations(req EthereumRequest) (*AuthoritiesResponse, error) {
	signed, err := evm.SignedAuthorizations(req.Transaction, req.AuthorizationSignatures)
	if err != nil {
		return nil, err
	}
	out := make([]common.Address, len(signed))
	for i, a := range signed {
		if out[i], err = evm.RecoverAuthorizationSigner(a); err != nil {
			return nil, err
		}
	}
	return &AuthoritiesResponse{Authorities: out}, nil
}

// CosmosRequest carries an unsigned Cosmos SDK transaction.
type CosmosRequest struct {
	Transaction cosmos.Transaction           `json:"transaction"`
	Signatures  []signcore.ExternalSignature `json:"signatures,omitempty"`
}

// CosmosPreImages returns the SHA-256 of the sign doc and the doc itself.
func CosmosPreImages(req CosmosRequest) (*PreImagesResponse, error) {
	doc, err := cosmos.SignBytes(req.Transaction)
	if err != nil {
		return nil, err
	}
	pre, err := cosmos.PreImage(req.Transaction)
	if err != nil {
		return nil, err
	}
	return &PreImagesResponse{PreImages: []signcore.PreImageHash{pre}, SignDoc: doc}, nil
}

// CosmosCompile verifies the signature and returns TxRaw.
func CosmosCompile(req CosmosRequest) (*signcore.CosmosTransaction, error) {
	return cosmos.Compile(req.Transaction, req.Signatures)
}

// SolanaRequest carries an unsigned Solana transaction.
type SolanaRequest struct {
	Transaction svm.Transaction              `json:"transaction"`
	Signatures  []signcore.ExternalSignature `json:"signatures,omitempty"`
}

// SolanaPreImages returns one pre-image per required signer. Each carries
// the full message, which is also returned as SignDoc.
func SolanaPreImages(req SolanaRequest) (*PreImagesResponse, error) {
	pres, err := svm.PreImages(req.Transaction)
	if err != nil {
		return nil, err
	}
	resp := &PreImagesResponse{PreImages: pres}
	if len(pres) > 0 {
		resp.SignDoc = encoding.HexBytes(pres[0].Hash)
	}
	return resp, nil
}

// SolanaCompile verifies every signer's signature and returns the wire transaction.
func SolanaCompile(req SolanaRequest) (*signcore.SolanaTransaction, error) {
	return svm.Compile(req.Transaction, req.Signatures)
}
