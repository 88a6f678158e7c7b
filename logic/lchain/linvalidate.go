package lchain

import (
	"github.com/copernet/copernicus/logic/lmempool"
	"github.com/copernet/copernicus/model/blockindex"
	"github.com/copernet/copernicus/model/chain"
	"github.com/copernet/copernicus/model/tx"
	"github.com/copernet/copernicus/persist"
)

// InvalidateBlock marks pindex FAILED_VALID and, if it is on the active
// chain, marks each active block from the tip down to pindex FAILED_CHILD
// while disconnecting down to its parent, so the active tip is never built
// on a block we now consider invalid. Descendants of pindex that are not on
// the active chain keep their status.
func InvalidateBlock(pindex *blockindex.BlockIndex) error {
	gChain := chain.GetInstance()

	pindex.AddStatus(blockindex.BlockFailed)
	persist.GetInstance().AddDirtyBlockIndex(pindex)
	gChain.RemoveCandidate(pindex)

	for gChain.Contains(pindex) {
		indexWalk := gChain.Tip()
		indexWalk.AddStatus(blockindex.BlockFailedParent)
		persist.GetInstance().AddDirtyBlockIndex(indexWalk)
		gChain.RemoveCandidate(indexWalk)

		// ActivateBestChain considers blocks already on the active chain
		// unconditionally valid, so force disconnection away from it.
		if err := DisconnectTip(false); err != nil {
			lmempool.RemoveForReorg(gChain.Tip().Height+1, int(tx.StandardLockTimeVerifyFlags))
			return err
		}
	}

	// The resulting new tip may have fallen out of the candidate set;
	// rebuild it from every known index so find_most_work_chain can still
	// reach every branch that is still viable.
	for _, index := range gChain.AllBlockIndexes() {
		gChain.AddCandidate(index)
	}

	lmempool.RemoveForReorg(gChain.Tip().Height+1, int(tx.StandardLockTimeVerifyFlags))
	return nil
}

// ReconsiderBlock clears the FAILED_VALID/FAILED_CHILD flags from pindex,
// every descendant of pindex, and every ancestor of pindex, re-adding
// whatever becomes eligible again to the candidate set. It does not itself
// reactivate the chain; callers call ActivateBestChain afterward.
func ReconsiderBlock(pindex *blockindex.BlockIndex) error {
	gChain := chain.GetInstance()
	height := pindex.Height

	for _, bl := range gChain.AllBlockIndexes() {
		if !bl.IsValid(blockindex.BlockValidTransactions) && bl.GetAncestor(height) == pindex {
			bl.SubStatus(blockindex.BlockInvalidMask)
			persist.GetInstance().AddDirtyBlockIndex(bl)
			if bl.IsValid(blockindex.BlockValidTransactions) && bl.ChainTxCount != 0 {
				gChain.AddCandidate(bl)
			}
		}
	}

	for p := pindex; p != nil; p = p.Prev {
		if p.Status&blockindex.BlockInvalidMask != 0 {
			p.SubStatus(blockindex.BlockInvalidMask)
			persist.GetInstance().AddDirtyBlockIndex(p)
		}
	}

	return nil
}
