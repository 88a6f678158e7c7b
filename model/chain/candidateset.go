package chain

import (
	"bytes"
	"math"
	"math/big"
	"time"

	"github.com/copernet/copernicus/model/blockindex"
	"github.com/copernet/copernicus/model/chainparams"
	"github.com/copernet/copernicus/util"
	"github.com/google/btree"
)

// candidateItem orders branch tips by CBlockIndexWorkComparator: parent
// chain-work descending, sequence id ascending (earlier arrival wins), then
// a deterministic hash tiebreak so the order is total. btree.BTree.Max()
// returns the most-preferred entry, so "less preferred" must sort as the
// smaller item.
type candidateItem struct {
	index *blockindex.BlockIndex
}

func parentWork(bi *blockindex.BlockIndex) *big.Int {
	if bi.Prev != nil {
		return &bi.Prev.ChainWork
	}
	return &bi.ChainWork
}

func (ci *candidateItem) Less(than btree.Item) bool {
	other := than.(*candidateItem)
	a, b := ci.index, other.index

	aWork, bWork := parentWork(a), parentWork(b)
	if cmp := aWork.Cmp(bWork); cmp != 0 {
		return cmp < 0
	}
	if a.SequenceID != b.SequenceID {
		// earlier sequence id (smaller) is preferred, so it must sort larger.
		return a.SequenceID > b.SequenceID
	}
	return bytes.Compare(a.BlockHash[:], b.BlockHash[:]) < 0
}

func (c *Chain) ensureCandidates() {
	if c.candidates == nil {
		c.candidates = btree.New(32)
	}
	if c.blocksUnlinked == nil {
		c.blocksUnlinked = make(map[util.Hash][]*blockindex.BlockIndex)
	}
}

// addCandidate registers a branch tip as eligible for find_most_work_chain
// consideration: VALID_TRANSACTIONS with chain_tx known, per spec §4.J.
func (c *Chain) addCandidate(bi *blockindex.BlockIndex) {
	c.ensureCandidates()
	if bi.IsFailed() || bi.ChainTxCount == 0 || !bi.IsValid(blockindex.BlockValidTransactions) {
		return
	}
	c.candidates.ReplaceOrInsert(&candidateItem{index: bi})
}

func (c *Chain) removeCandidate(bi *blockindex.BlockIndex) {
	if c.candidates == nil {
		return
	}
	c.candidates.Delete(&candidateItem{index: bi})
}

// AddCandidate exposes addCandidate to callers outside this package that
// rebuild the candidate set after resetting failure flags (reconsider_block).
func (c *Chain) AddCandidate(bi *blockindex.BlockIndex) {
	c.addCandidate(bi)
}

// RemoveCandidate exposes removeCandidate to callers outside this package
// that drop a branch tip from contention after marking it failed
// (invalidate_block).
func (c *Chain) RemoveCandidate(bi *blockindex.BlockIndex) {
	c.removeCandidate(bi)
}

// lateForkPenaltyWindow is the policy constant resolving spec §4.J's
// "penaltyWindow": ten block intervals, wide enough that a fork needs to
// sit unreconciled for a meaningful multiple of it before losing work.
func lateForkPenaltyWindow(params *chainparams.BitcoinParams) time.Duration {
	return 10 * params.TargetTimePerBlock
}

// penalizedChainWork computes the effective chain-work of candidate after
// applying the late-fork penalty (spec §4.J): work accrued since the fork
// point is right-shifted by floor(log2(elapsed/penaltyWindow)) bits, where
// elapsed runs from the first active-chain block after the fork to the
// candidate's timestamp; it is halved once per doubling of that delay.
func (c *Chain) penalizedChainWork(candidate *blockindex.BlockIndex) *big.Int {
	tip := c.Tip()
	if tip == nil {
		return &candidate.ChainWork
	}
	fork := c.FindFork(candidate)
	if fork == nil || fork == tip {
		return &candidate.ChainWork
	}
	activeForkStart := c.GetIndex(fork.Height + 1)
	if activeForkStart == nil {
		return &candidate.ChainWork
	}

	window := lateForkPenaltyWindow(c.params)
	// TargetTimePerBlock holds a plain count of seconds, so window does too.
	windowSeconds := int64(window)
	if windowSeconds <= 0 {
		return &candidate.ChainWork
	}

	elapsed := int64(candidate.GetBlockTime()) - int64(activeForkStart.GetBlockTime())
	if elapsed <= windowSeconds {
		return &candidate.ChainWork
	}

	ratio := float64(elapsed) / float64(windowSeconds)
	k := int(math.Log2(ratio))
	if k <= 0 {
		return &candidate.ChainWork
	}

	extra := new(big.Int).Sub(&candidate.ChainWork, &fork.ChainWork)
	extra.Rsh(extra, uint(k))
	return new(big.Int).Add(&fork.ChainWork, extra)
}

// outranksTip reports whether candidate, after the late-fork penalty, still
// beats the current tip's chain-work and is therefore worth reconnecting to.
func (c *Chain) outranksTip(candidate *blockindex.BlockIndex) bool {
	tip := c.Tip()
	if tip == nil {
		return true
	}
	return c.penalizedChainWork(candidate).Cmp(&tip.ChainWork) > 0
}

// checkCandidateViable walks candidate back toward the active chain. If it
// descends from a failed block it is marked FAILED_CHILD and dropped; if it
// descends from a block we don't have data for yet, it is parked in
// blocksUnlinked to be retried once that data arrives. Returns false in
// either case, meaning the caller must discard candidate and try the next.
func (c *Chain) checkCandidateViable(candidate *blockindex.BlockIndex) bool {
	p := candidate
	for p != nil && !c.Contains(p) {
		if p.IsFailed() {
			candidate.AddStatus(blockindex.BlockFailedParent)
			c.removeCandidate(candidate)
			c.RemoveFromBranch(candidate)
			return false
		}
		if !p.HaveData() {
			c.ensureCandidates()
			c.removeCandidate(candidate)
			hash := *p.GetBlockHash()
			c.blocksUnlinked[hash] = append(c.blocksUnlinked[hash], candidate)
			return false
		}
		p = p.Prev
	}
	return true
}
