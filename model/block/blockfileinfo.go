package block

import (
	"fmt"
	"io"
	"time"

	"github.com/copernet/copernicus/util"
)

// BlockFileInfo tracks one blk?????.dat/rev?????.dat pair: how many blocks
// it holds, how many bytes are used in each, and the height/time range
// covered, so the engine can decide when to roll over to a new file and
// (with pruning) which files are safe to delete.
type BlockFileInfo struct {
	Blocks      uint32 // number of blocks stored in file
	Size        uint32 // number of used bytes of block file
	UndoSize    uint32 // number of used bytes in the undo file
	HeightFirst uint32 // lowest height of block in file
	HeightLast  uint32 // highest height of block in file
	timeFirst   uint64 // earliest time of block in file
	timeLast    uint64 // latest time of block in file
	index       uint32
}

func (bfi *BlockFileInfo) Serialize(w io.Writer) error {
	if err := util.WriteVarLenInt(w, uint64(bfi.Blocks)); err != nil {
		return err
	}
	if err := util.WriteVarLenInt(w, uint64(bfi.Size)); err != nil {
		return err
	}
	if err := util.WriteVarLenInt(w, uint64(bfi.UndoSize)); err != nil {
		return err
	}
	if err := util.WriteVarLenInt(w, uint64(bfi.HeightFirst)); err != nil {
		return err
	}
	if err := util.WriteVarLenInt(w, uint64(bfi.HeightLast)); err != nil {
		return err
	}
	if err := util.WriteVarLenInt(w, bfi.timeFirst); err != nil {
		return err
	}
	if err := util.WriteVarLenInt(w, bfi.timeLast); err != nil {
		return err
	}
	return util.WriteVarLenInt(w, uint64(bfi.index))
}

func (bfi *BlockFileInfo) Unserialize(r io.Reader) error {
	var err error
	var v uint64
	if v, err = util.ReadVarLenInt(r); err != nil {
		return err
	}
	bfi.Blocks = uint32(v)
	if v, err = util.ReadVarLenInt(r); err != nil {
		return err
	}
	bfi.Size = uint32(v)
	if v, err = util.ReadVarLenInt(r); err != nil {
		return err
	}
	bfi.UndoSize = uint32(v)
	if v, err = util.ReadVarLenInt(r); err != nil {
		return err
	}
	bfi.HeightFirst = uint32(v)
	if v, err = util.ReadVarLenInt(r); err != nil {
		return err
	}
	bfi.HeightLast = uint32(v)
	if bfi.timeFirst, err = util.ReadVarLenInt(r); err != nil {
		return err
	}
	if bfi.timeLast, err = util.ReadVarLenInt(r); err != nil {
		return err
	}
	if v, err = util.ReadVarLenInt(r); err != nil {
		return err
	}
	bfi.index = uint32(v)
	return nil
}

func (bfi *BlockFileInfo) SetNull() {
	bfi.Size = 0
	bfi.timeFirst = 0
	bfi.UndoSize = 0
	bfi.timeLast = 0
	bfi.HeightLast = 0
	bfi.HeightFirst = 0
	bfi.Blocks = 0
}

func (bfi *BlockFileInfo) AddBlock(heightIn int32, timeIn uint64) {
	nHeightIn := uint32(heightIn)
	if bfi.Blocks == 0 || bfi.HeightFirst > nHeightIn {
		bfi.HeightFirst = nHeightIn
	}
	if bfi.Blocks == 0 || bfi.timeFirst > timeIn {
		bfi.timeFirst = timeIn
	}
	bfi.Blocks++
	if nHeightIn > bfi.HeightLast {
		bfi.HeightLast = nHeightIn
	}
	if timeIn > bfi.timeLast {
		bfi.timeLast = timeIn
	}
}

// GetSerializeList documents field order for external tooling that reads
// the raw file; Serialize/Unserialize above are the actual codec.
func (bfi *BlockFileInfo) GetSerializeList() []string {
	return []string{"Blocks", "Size", "UndoSize", "HeightFirst", "HeightLast", "timeFirst", "timeLast", "index"}
}

func (bfi *BlockFileInfo) GetIndex() uint32 {
	return bfi.index
}

func (bfi *BlockFileInfo) SetIndex(idx uint32) {
	bfi.index = idx
}

func (bfi *BlockFileInfo) String() string {
	return fmt.Sprintf("BlockFileInfo(blocks=%d, size=%d, heights=%d...%d, time=%s...%s)",
		bfi.Blocks, bfi.Size, bfi.HeightFirst, bfi.HeightLast,
		time.Unix(int64(bfi.timeFirst), 0).Format(time.RFC3339),
		time.Unix(int64(bfi.timeLast), 0).Format(time.RFC3339))
}

func NewBlockFileInfo() *BlockFileInfo {
	bfi := new(BlockFileInfo)
	return bfi
}
