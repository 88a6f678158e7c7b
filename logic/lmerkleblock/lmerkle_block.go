package lmerkleblock

import (
	"io"

	"github.com/copernet/copernicus/model/block"
	"github.com/copernet/copernicus/util"
	"gopkg.in/fatih/set.v0"
)

// MerkleBlock carries a block header plus a PartialMerkleTree proving a
// chosen subset of the block's transactions without requiring the full
// transaction list, the wire form used to answer filtered-block requests.
type MerkleBlock struct {
	Header block.BlockHeader
	Txn    *PartialMerkleTree
}

// NewMerkleBlock builds a MerkleBlock for bk, flagging every transaction
// whose id is present in txids as a match.
func NewMerkleBlock(bk *block.Block, txids *set.Set) *MerkleBlock {
	mb := MerkleBlock{Header: bk.Header}

	match := make([]bool, 0, len(bk.Txs))
	hashes := make([]util.Hash, 0, len(bk.Txs))

	for _, transaction := range bk.Txs {
		txid := transaction.GetHash()
		match = append(match, txids.Has(txid))
		hashes = append(hashes, txid)
	}
	mb.Txn = NewPartialMerkleTree(hashes, match)

	return &mb
}

func (mb *MerkleBlock) Serialize(w io.Writer) error {
	if err := mb.Header.Serialize(w); err != nil {
		return err
	}
	return mb.Txn.Serialize(w)
}

func (mb *MerkleBlock) Unserialize(r io.Reader) error {
	if err := mb.Header.Deserialize(r); err != nil {
		return err
	}
	pmt := PartialMerkleTree{}
	if err := pmt.Unserialize(r); err != nil {
		return err
	}
	mb.Txn = &pmt
	return nil
}
