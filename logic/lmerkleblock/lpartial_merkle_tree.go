package lmerkleblock

import (
	"io"
	"math"

	"github.com/copernet/copernicus/util"
)

// PartialMerkleTree is a tree representation with only transmitted
// merkle nodes and the transaction ids needed to proove matches in the
// transaction set. It allows an SPV-style client to verify a subset of a
// block's transactions are present in the merkle root without receiving
// the full block.
type PartialMerkleTree struct {
	txs    int
	bits   []bool
	hashes []util.Hash
	bad    bool
}

// NewPartialMerkleTree builds the partial tree over txids, recording only
// the hashes and flag bits needed to reconstruct the merkle root and prove
// membership of the transactions flagged true in matches.
func NewPartialMerkleTree(txids []util.Hash, matches []bool) *PartialMerkleTree {
	pmt := PartialMerkleTree{}

	pmt.txs = len(txids)
	pmt.bad = false

	var height uint
	for pmt.calcTreeWidth(height) > 1 {
		height++
	}

	pmt.traverseAndBuild(height, 0, txids, matches)

	return &pmt
}

func (pmt *PartialMerkleTree) calcTreeWidth(height uint) uint {
	return uint((pmt.txs + (1 << height) - 1) >> height)
}

func (pmt *PartialMerkleTree) traverseAndBuild(height uint, pos uint, txids []util.Hash, matches []bool) {
	var parentOfMatch bool
	for p := pos << height; p < (pos+1)<<height && p < uint(pmt.txs); p++ {
		parentOfMatch = parentOfMatch || matches[p]
	}

	pmt.bits = append(pmt.bits, parentOfMatch)
	if height == 0 || !parentOfMatch {
		pmt.hashes = append(pmt.hashes, pmt.calcHash(height, pos, txids))
		return
	}

	pmt.traverseAndBuild(height-1, pos*2, txids, matches)
	if pos*2+1 < pmt.calcTreeWidth(height-1) {
		pmt.traverseAndBuild(height-1, pos*2+1, txids, matches)
	}
}

func (pmt *PartialMerkleTree) calcHash(height uint, pos uint, txids []util.Hash) util.Hash {
	if height == 0 {
		return txids[pos]
	}
	left := pmt.calcHash(height-1, pos*2, txids)
	right := left
	if pos*2+1 < pmt.calcTreeWidth(height-1) {
		right = pmt.calcHash(height-1, pos*2+1, txids)
	}
	return combineHash(left, right)
}

func combineHash(left, right util.Hash) util.Hash {
	buf := make([]byte, 0, 2*util.Hash256Size)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	b := util.DoubleSha256Bytes(buf)

	var h util.Hash
	copy(h[:], b)
	return h
}

// ExtractMatches walks the partial tree, appending matched txids to matches
// (and their position to items), and returns the reconstructed merkle root.
// A corrupt or inconsistent tree yields the zero hash.
func (pmt *PartialMerkleTree) ExtractMatches(matches *[]util.Hash, items *[]int) *util.Hash {
	*matches = (*matches)[:0]
	if pmt.txs == 0 {
		return &util.Hash{}
	}
	if len(pmt.hashes) > pmt.txs {
		return &util.Hash{}
	}
	if len(pmt.bits) < len(pmt.hashes) {
		return &util.Hash{}
	}

	var height uint
	for pmt.calcTreeWidth(height) > 1 {
		height++
	}

	bitUsed, hashUsed := 0, 0
	root := pmt.traverseAndExtract(height, 0, &bitUsed, &hashUsed, matches, items)

	if pmt.bad {
		return &util.Hash{}
	}
	if (bitUsed+7)/8 != (len(pmt.bits)+7)/8 {
		return &util.Hash{}
	}
	if hashUsed != len(pmt.hashes) {
		return &util.Hash{}
	}
	return root
}

func (pmt *PartialMerkleTree) traverseAndExtract(height uint, pos uint, bitUsed, hashUsed *int,
	matches *[]util.Hash, items *[]int) *util.Hash {

	if *bitUsed >= len(pmt.bits) {
		pmt.bad = true
		return &util.Hash{}
	}

	parentOfMatch := pmt.bits[*bitUsed]
	*bitUsed++
	if height == 0 || !parentOfMatch {
		if *hashUsed >= len(pmt.hashes) {
			pmt.bad = true
			return &util.Hash{}
		}
		hash := pmt.hashes[*hashUsed]
		*hashUsed++
		if height == 0 && parentOfMatch {
			*matches = append(*matches, hash)
			*items = append(*items, int(pos))
		}
		return &hash
	}

	left := pmt.traverseAndExtract(height-1, pos*2, bitUsed, hashUsed, matches, items)

	right := left
	if pos*2+1 < pmt.calcTreeWidth(height-1) {
		right = pmt.traverseAndExtract(height-1, pos*2+1, bitUsed, hashUsed, matches, items)
		if right.IsEqual(left) {
			pmt.bad = true
		}
	}

	h := combineHash(*left, *right)
	return &h
}

func (pmt *PartialMerkleTree) Serialize(w io.Writer) (err error) {
	if err = util.WriteVarInt(w, uint64(pmt.txs)); err != nil {
		return
	}
	if err = util.WriteVarInt(w, uint64(len(pmt.hashes))); err != nil {
		return
	}
	for _, hash := range pmt.hashes {
		if _, err = hash.Serialize(w); err != nil {
			return
		}
	}

	bs := make([]byte, (len(pmt.bits)+7)/8)
	for p := 0; p < len(pmt.bits); p++ {
		if pmt.bits[p] {
			bs[p/8] |= uint8(1 << uint(p%8))
		}
	}
	return util.WriteVarBytes(w, bs)
}

func (pmt *PartialMerkleTree) Unserialize(r io.Reader) (err error) {
	txs, err := util.ReadVarInt(r)
	if err != nil {
		return
	}
	pmt.txs = int(txs)

	length, err := util.ReadVarInt(r)
	if err != nil {
		return
	}

	hashes := make([]util.Hash, length)
	for i := uint64(0); i < length; i++ {
		if _, err = hashes[i].Unserialize(r); err != nil {
			return
		}
	}
	pmt.hashes = hashes

	bs, err := util.ReadVarBytes(r, math.MaxUint32, "")
	if err != nil {
		return
	}
	pmt.bits = make([]bool, len(bs)*8)
	for p := 0; p < len(pmt.bits); p++ {
		pmt.bits[p] = bs[p/8]&(1<<uint(p%8)) != 0
	}
	pmt.bad = false

	return nil
}
