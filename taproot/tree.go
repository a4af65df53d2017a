package taproot

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/hawala-wallet/signcore"
)

// LeafVersionTapscript is the BIP-342 tapscript leaf version.
const LeafVersionTapscript byte = 0xc0

// LeafHash returns taggedHash("TapLeaf", version || compactSize(script) || script).
func LeafHash(script []byte, version byte) [32]byte {
	h := txscript.NewTapLeaf(txscript.TapscriptLeafVersion(version), script).TapHash()
	return h
}

// Tree is a script tree built from leaves paired left to right; an odd node at
// the end of a level is promoted unchanged. Branches hash their children in
// lexicographic order.
type Tree struct {
	Root   [32]byte
	Leaves []txscript.TapLeaf
	// Proofs holds the sibling hashes from each leaf up to the root.
	Proofs [][]byte
}

// BuildTree assembles scripts into a tree. versions may be nil, meaning every
// leaf is tapscript (0xc0); otherwise it must match scripts in length.
func BuildTree(scripts [][]byte, versions []byte) (*Tree, error) {
	if len(scripts) == 0 {
		return &Tree{}, nil
	}
	if versions != nil && len(versions) != len(scripts) {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "%d scripts but %d leaf versions", len(scripts), len(versions))
	}

	t := &Tree{
		Leaves: make([]txscript.TapLeaf, len(scripts)),
		Proofs: make([][]byte, len(scripts)),
	}
	nodes := make([]txscript.TapNode, len(scripts))
	members := make([][]int, len(scripts))
	for i, script := range scripts {
		version := LeafVersionTapscript
		if versions != nil {
			version = versions[i]
		}
		if version&0x01 != 0 {
			return nil, signcore.Errorf(signcore.ErrInvalidInput, "leaf version %#x has its low bit set", version)
		}
		t.Leaves[i] = txscript.NewTapLeaf(txscript.TapscriptLeafVersion(version), script)
		nodes[i] = t.Leaves[i]
		members[i] = []int{i}
	}

	for len(nodes) > 1 {
		var (
			nextNodes   []txscript.TapNode
			nextMembers [][]int
		)
		for i := 0; i < len(nodes); i += 2 {
			if i+1 == len(nodes) {
				nextNodes = append(nextNodes, nodes[i])
				nextMembers = append(nextMembers, members[i])
				continue
			}
			left, right := nodes[i], nodes[i+1]
			lh, rh := left.TapHash(), right.TapHash()
			for _, leaf := range members[i] {
				t.Proofs[leaf] = append(t.Proofs[leaf], rh[:]...)
			}
			for _, leaf := range members[i+1] {
				t.Proofs[leaf] = append(t.Proofs[leaf], lh[:]...)
			}
			nextNodes = append(nextNodes, txscript.NewTapBranch(left, right))
			nextMembers = append(nextMembers, append(append([]int(nil), members[i]...), members[i+1]...))
		}
		nodes, members = nextNodes, nextMembers
	}

	t.Root = nodes[0].TapHash()
	return t, nil
}

// BuildMerkleRoot returns the root of the tree built from scripts, or 32 zero
// bytes when there are no scripts.
func BuildMerkleRoot(scripts [][]byte, versions []byte) ([32]byte, error) {
	t, err := BuildTree(scripts, versions)
	if err != nil {
		return [32]byte{}, err
	}
	return t.Root, nil
}

// ControlBlock returns the serialized BIP-341 control block for spending
// leaf leafIndex of the tree under internalKey.
func (t *Tree) ControlBlock(internalKey []byte, leafIndex int) ([]byte, error) {
	if leafIndex < 0 || leafIndex >= len(t.Leaves) {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "leaf index %d out of range", leafIndex)
	}
	pub, err := ParseInternalKey(internalKey)
	if err != nil {
		return nil, err
	}
	out := outputKeyOf(txscript.ComputeTaprootOutputKey(pub, t.Root[:]))

	cb := txscript.ControlBlock{
		InternalKey:     pub,
		OutputKeyYIsOdd: out.Parity == 1,
		LeafVersion:     t.Leaves[leafIndex].LeafVersion,
		InclusionProof:  t.Proofs[leafIndex],
	}
	raw, err := cb.ToBytes()
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "cannot serialize control block", err)
	}
	return raw, nil
}

// OutputKey tweaks internalKey with the tree root.
func (t *Tree) OutputKey(internalKey []byte) (OutputKey, error) {
	return TweakPublicKey(internalKey, t.Root[:])
}
