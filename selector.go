package signcore

import (
	"fmt"
)

// MatchSignatures pairs every pre-image with exactly one external signature
// and verifies each pair before returning them in pre-image order.
//
// Matching works in this order:
//  1. A pre-image with an InputIndex matches the signature with the same InputIndex.
//     A lone pre-image also accepts a lone signature that omits the index.
//  2. A pre-image without an InputIndex matches the signature with the same SignerID.
//  3. Remaining signatures without an InputIndex or SignerID are assigned in order.
//
// A pre-image left without a signature fails with IncompleteSignatureSet.
// A pair rejected by verify fails with SignatureMismatch. Signatures that match
// no pre-image are ignored.
func MatchSignatures(preImages []PreImageHash, sigs []ExternalSignature, verify SignatureVerifier) ([]ExternalSignature, error) {
	if len(preImages) == 0 {
		return nil, Errorf(ErrInvalidInput, "no pre-images to match")
	}

	used := make([]bool, len(sigs))
	matched := make([]ExternalSignature, len(preImages))
	found := make([]bool, len(preImages))

	// Pass 1: explicit input index.
	for i, pre := range preImages {
		if pre.InputIndex == nil {
			continue
		}
		for j, sig := range sigs {
			if used[j] || sig.InputIndex == nil || *sig.InputIndex != *pre.InputIndex {
				continue
			}
			matched[i], found[i], used[j] = sig, true, true
			break
		}
		if !found[i] && len(preImages) == 1 && len(sigs) == 1 && sigs[0].InputIndex == nil {
			matched[i], found[i], used[0] = sigs[0], true, true
		}
	}

	// Pass 2: signer id.
	for i, pre := range preImages {
		if found[i] || pre.InputIndex != nil || pre.SignerID == "" {
			continue
		}
		for j, sig := range sigs {
			if used[j] || sig.SignerID == "" || sig.SignerID != pre.SignerID {
				continue
			}
			matched[i], found[i], used[j] = sig, true, true
			break
		}
	}

	// Pass 3: positional fallback for unlabelled signatures.
	for i, pre := range preImages {
		if found[i] || pre.InputIndex != nil {
			continue
		}
		for j, sig := range sigs {
			if used[j] || sig.InputIndex != nil || sig.SignerID != "" {
				continue
			}
			matched[i], found[i], used[j] = sig, true, true
			break
		}
	}

	var missing []string
	for i, ok := range found {
		if !ok {
			missing = append(missing, describe(preImages[i], i))
		}
	}
	if len(missing) > 0 {
		return nil, NewError(ErrCodeIncompleteSignatureSet,
			fmt.Sprintf("missing signatures for %v", missing), ErrIncompleteSignatureSet)
	}

	if verify != nil {
		for i, pre := range preImages {
			if !verify(pre, matched[i]) {
				return nil, NewError(ErrCodeSignatureMismatch,
					fmt.Sprintf("signature for %s does not verify against its public key", describe(pre, i)),
					ErrSignatureMismatch)
			}
		}
	}

	return matched, nil
}

func describe(pre PreImageHash, position int) string {
	switch {
	case pre.InputIndex != nil:
		return fmt.Sprintf("input %d", *pre.InputIndex)
	case pre.SignerID != "":
		return pre.SignerID
	default:
		return fmt.Sprintf("pre-image %d", position)
	}
}
