package chain

import (
	"io"

	"github.com/copernet/copernicus/util"
)

// BlockLocator is a sparse, thinning-with-distance list of block hashes
// (dense near the tip, exponentially sparser toward genesis) used to find
// the fork point with a peer without either side knowing the other's chain
// in advance.
type BlockLocator struct {
	blockHashList []util.Hash
}

func NewBlockLocator(vHaveIn []util.Hash) *BlockLocator {
	blo := BlockLocator{}
	blo.blockHashList = vHaveIn
	return &blo
}

func (blt *BlockLocator) SetNull() {
	blt.blockHashList = make([]util.Hash, 0, 0)
}

func (blt *BlockLocator) IsNull() bool {
	return len(blt.blockHashList) == 0
}

func (blt *BlockLocator) GetBlockHashList() []util.Hash {
	return blt.blockHashList
}

func (blt *BlockLocator) Serialize(w io.Writer) error {
	if err := util.WriteVarInt(w, uint64(len(blt.blockHashList))); err != nil {
		return err
	}
	for i := range blt.blockHashList {
		if _, err := blt.blockHashList[i].Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

func (blt *BlockLocator) Unserialize(r io.Reader) error {
	count, err := util.ReadVarInt(r)
	if err != nil {
		return err
	}
	blt.blockHashList = make([]util.Hash, count)
	for i := range blt.blockHashList {
		if _, err := blt.blockHashList[i].Unserialize(r); err != nil {
			return err
		}
	}
	return nil
}
