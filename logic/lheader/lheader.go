package lheader

import (
	"math/big"

	"github.com/copernet/copernicus/errcode"
	"github.com/copernet/copernicus/log"
	"github.com/copernet/copernicus/logic/lblock"
	"github.com/copernet/copernicus/logic/lblockindex"
	"github.com/copernet/copernicus/model/block"
	"github.com/copernet/copernicus/model/blockindex"
	"github.com/copernet/copernicus/model/chain"
	"github.com/copernet/copernicus/model/pow"
	"github.com/copernet/copernicus/util"
)

// AcceptHeader runs the stateless and contextual header checks (component H's
// lighter cousin, without any transaction data) and, if the header is new,
// links a fresh BlockIndex entry into the chain's index map and branch set.
// adjustTime is the network-adjusted "now" used by the future-timestamp check.
func AcceptHeader(header *block.BlockHeader, adjustTime int64) (*blockindex.BlockIndex, error) {
	gChain := chain.GetInstance()
	hash := header.GetHash()

	if bi := gChain.FindBlockIndex(hash); bi != nil {
		return bi, nil
	}

	if err := lblock.CheckBlockHeader(header); err != nil {
		return nil, err
	}

	var preIndex *blockindex.BlockIndex
	if header.HashPrevBlock != util.HashZero {
		preIndex = gChain.FindBlockIndex(header.HashPrevBlock)
		if preIndex == nil {
			return nil, errcode.NewError(errcode.RejectInvalid, "prev-blk-not-found")
		}
		if preIndex.IsFailed() {
			return nil, errcode.NewError(errcode.RejectInvalid, "bad-prevblk")
		}
	}

	if err := lblock.ContextualCheckBlockHeader(header, preIndex, adjustTime); err != nil {
		return nil, err
	}

	if preIndex != nil && !lblockindex.CheckIndexAgainstCheckpoint(preIndex) {
		return nil, errcode.NewError(errcode.RejectCheckpoint, "checkpoint mismatch")
	}

	bi := blockindex.NewBlockIndex(header)
	bi.Prev = preIndex
	if preIndex != nil {
		bi.Height = preIndex.Height + 1
		bi.BuildSkip()
		proof := pow.GetBlockProof(bi)
		bi.ChainWork = *new(big.Int).Add(&preIndex.ChainWork, proof)
		if header.Time > preIndex.TimeMax {
			bi.TimeMax = header.Time
		} else {
			bi.TimeMax = preIndex.TimeMax
		}
	} else {
		bi.Height = 0
		bi.ChainWork = *pow.GetBlockProof(bi)
		bi.TimeMax = header.Time
	}
	bi.AddStatus(blockindex.BlockValidHeader)

	if err := gChain.AddToIndexMap(bi); err != nil {
		return nil, err
	}
	if err := gChain.AddToBranch(bi); err != nil {
		return nil, err
	}

	log.Debug("AcceptHeader: accepted header %s at height %d", hash, bi.Height)
	return bi, nil
}
