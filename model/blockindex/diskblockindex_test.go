package blockindex

import (
	"testing"
	"bytes"
	"math/rand"
)

func TestSerialize(t *testing.T) {
	var bIndex1, bIndex2 BlockIndex
	buf := bytes.NewBuffer(nil);
	r := rand.New(rand.NewSource(0));
	for i := 1; i <= 100; i++ {
		bIndex1.Height = r.Int31()
		bIndex1.Status = r.Uint32()
		bIndex1.TxCount = r.Int31()
		bIndex1.File = r.Int31()
		bIndex1.DataPos = r.Uint32()
		bIndex1.UndoPos = r.Uint32()
		err := bIndex1.Serialize(buf)
		if err != nil {
			t.Error(err)
		}
		bIndex2 = BlockIndex{}
		err = bIndex2.Unserialize(buf)
		if err != nil {
			t.Error(err)
		}
		// offsets are stored only when the matching HAVE_DATA/HAVE_UNDO bit is set
		wantDataPos, wantUndoPos := uint32(0), uint32(0)
		if bIndex1.Status&BlockHaveData != 0 {
			wantDataPos = bIndex1.DataPos
		}
		if bIndex1.Status&BlockHaveUndo != 0 {
			wantUndoPos = bIndex1.UndoPos
		}
		if bIndex1.Height != bIndex2.Height || bIndex1.Status != bIndex2.Status ||
			bIndex1.TxCount != bIndex2.TxCount || bIndex1.File != bIndex2.File ||
			wantDataPos != bIndex2.DataPos || wantUndoPos != bIndex2.UndoPos {
			t.Errorf("Unserialize after Serialize returns differently")
			return
		}
	}
}
