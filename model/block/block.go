package block

import (
	"io"
	"unsafe"

	"github.com/copernet/copernicus/model/tx"
	"github.com/copernet/copernicus/util"
)

// Block is a header plus its full transaction list, the unit component H
// validates end to end: stateless checks, contextual checks against the
// active chain, and (on success) storage plus a chain-activation attempt.
type Block struct {
	Header BlockHeader
	Txs    []*tx.Tx
}

func (bl *Block) GetBlockHeader() BlockHeader {
	return bl.Header
}

func (bl *Block) GetHash() util.Hash {
	return bl.Header.GetHash()
}

func (bl *Block) SetNull() {
	bl.Header.SetNull()
	bl.Txs = nil
}

func (bl *Block) Serialize(w io.Writer) error {
	if err := bl.Header.Serialize(w); err != nil {
		return err
	}
	if err := util.WriteVarInt(w, uint64(len(bl.Txs))); err != nil {
		return err
	}
	for _, transaction := range bl.Txs {
		if err := transaction.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

func (bl *Block) Unserialize(r io.Reader) error {
	if err := bl.Header.Deserialize(r); err != nil {
		return err
	}
	count, err := util.ReadVarInt(r)
	if err != nil {
		return err
	}
	bl.Txs = make([]*tx.Tx, count)
	for i := range bl.Txs {
		transaction := tx.NewEmptyTx()
		if err := transaction.Unserialize(r); err != nil {
			return err
		}
		bl.Txs[i] = transaction
	}
	return nil
}

func (bl *Block) SerializeSize() uint {
	size := uint(unsafe.Sizeof(BlockHeader{}))
	for _, transaction := range bl.Txs {
		size += uint(transaction.SerializeSize())
	}
	return size
}

func NewBlock() *Block {
	return &Block{}
}
