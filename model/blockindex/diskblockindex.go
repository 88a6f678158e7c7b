package blockindex

import (
	"io"

	"github.com/copernet/copernicus/util"
)

// clientVersion is stamped into every persisted record so a future format
// change can be detected on load; it is not otherwise interpreted.
const clientVersion = 160000

// Serialize writes the on-disk representation of a block-index entry:
// client version, height, status, tx count, file number, the data offset
// (only with BlockHaveData), the undo offset (only with BlockHaveUndo), and
// the full 80-byte header. It deliberately does not persist Prev/Skip/ChainWork/
// ChainTxCount/SequenceID/TimeMax — those are memory-only fields the block
// index recomputes on load (LoadBlockIndexDB walks entries in height order
// and re-derives them).
func (bIndex *BlockIndex) Serialize(w io.Writer) error {
	if err := util.WriteVarLenInt(w, uint64(clientVersion)); err != nil {
		return err
	}
	if err := util.WriteVarLenInt(w, uint64(bIndex.Height)); err != nil {
		return err
	}
	if err := util.WriteVarLenInt(w, uint64(bIndex.Status)); err != nil {
		return err
	}
	if err := util.WriteVarLenInt(w, uint64(bIndex.TxCount)); err != nil {
		return err
	}
	if err := util.WriteVarLenInt(w, uint64(bIndex.File)); err != nil {
		return err
	}
	if bIndex.Status&BlockHaveData != 0 {
		if err := util.WriteVarLenInt(w, uint64(bIndex.DataPos)); err != nil {
			return err
		}
	}
	if bIndex.Status&BlockHaveUndo != 0 {
		if err := util.WriteVarLenInt(w, uint64(bIndex.UndoPos)); err != nil {
			return err
		}
	}
	return bIndex.Header.Serialize(w)
}

// Unserialize reads back a record written by Serialize.
func (bIndex *BlockIndex) Unserialize(r io.Reader) error {
	if _, err := util.ReadVarLenInt(r); err != nil {
		return err
	}
	height, err := util.ReadVarLenInt(r)
	if err != nil {
		return err
	}
	bIndex.Height = int32(height)

	status, err := util.ReadVarLenInt(r)
	if err != nil {
		return err
	}
	bIndex.Status = uint32(status)

	txCount, err := util.ReadVarLenInt(r)
	if err != nil {
		return err
	}
	bIndex.TxCount = int32(txCount)

	file, err := util.ReadVarLenInt(r)
	if err != nil {
		return err
	}
	bIndex.File = int32(file)

	if bIndex.Status&BlockHaveData != 0 {
		pos, err := util.ReadVarLenInt(r)
		if err != nil {
			return err
		}
		bIndex.DataPos = uint32(pos)
	}
	if bIndex.Status&BlockHaveUndo != 0 {
		pos, err := util.ReadVarLenInt(r)
		if err != nil {
			return err
		}
		bIndex.UndoPos = uint32(pos)
	}
	return bIndex.Header.Deserialize(r)
}
