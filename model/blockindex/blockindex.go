package blockindex

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/copernet/copernicus/model/block"
	"github.com/copernet/copernicus/model/chainparams"
	"github.com/copernet/copernicus/util"
)

// BlockIndex is the in-memory node of the block-index DAG (component B): the
// chain is a tree rooted at genesis, each header possibly having several
// children, with at most one child chain being the currently active branch.
// Every BlockIndex the engine holds lives in one arena-backed map keyed by
// hash; Prev/Skip are pointers into that same arena, never owned elsewhere.
type BlockIndex struct {
	Header block.BlockHeader
	// BlockHash caches Header.GetHash() since it is looked up constantly and
	// recomputing it is relatively expensive.
	BlockHash util.Hash
	// Prev is the block-index entry for the parent block; nil for genesis.
	Prev *BlockIndex
	// Skip is the skip-pointer used for O(log n) ancestor lookups.
	Skip *BlockIndex

	// Height of this entry in the chain; genesis is height 0.
	Height int32

	// File is which numbered blk?????.dat this block's data lives in.
	File int32
	// DataPos is the byte offset within blk?????.dat.
	DataPos uint32
	// UndoPos is the byte offset within rev?????.dat, valid only once
	// BlockHaveUndo is set.
	UndoPos uint32

	// ChainWork is the total expected work over the chain up to and
	// including this block; the chain-work comparator (component C) orders
	// candidate tips by this value.
	ChainWork big.Int

	// TxCount is the number of transactions in this block (headers-first
	// download may not know this yet).
	TxCount int32
	// ChainTxCount is the number of transactions in the chain up to and
	// including this block; non-zero only once this block and all its
	// ancestors have BlockHaveData.
	ChainTxCount int64

	// Status is the bitfield of blockstatus.go constants: validity lattice
	// plus HAVE_DATA/HAVE_UNDO/FAILED_VALID/FAILED_CHILD.
	Status uint32

	// SequenceID is assigned in the order blocks are received; used as a
	// deterministic tiebreak in the candidate-tip comparator so that,
	// absent any other preference, the first-seen chain wins (discourages
	// late-announced forks from displacing an equal-work incumbent).
	SequenceID int32

	// TimeMax is the maximum header timestamp over the chain up to and
	// including this block; used to bound per-block timestamp checks.
	TimeMax uint32
}

const medianTimeSpan = 11

func (bIndex *BlockIndex) SetNull() {
	bIndex.Header.SetNull()
	bIndex.BlockHash = util.Hash{}
	bIndex.Prev = nil
	bIndex.Skip = nil

	bIndex.Height = 0
	bIndex.File = -1
	bIndex.DataPos = 0
	bIndex.UndoPos = 0
	bIndex.ChainWork = big.Int{}
	bIndex.ChainTxCount = 0
	bIndex.TxCount = 0
	bIndex.Status = BlockValidUnknown
	bIndex.SequenceID = 0
	bIndex.TimeMax = 0
}

func (bIndex *BlockIndex) HaveData() bool {
	return bIndex.Status&BlockHaveData != 0
}

func (bIndex *BlockIndex) HaveUndo() bool {
	return bIndex.Status&BlockHaveUndo != 0
}

func (bIndex *BlockIndex) HeaderValid() bool {
	return bIndex.IsValid(BlockValidHeader)
}

func (bIndex *BlockIndex) ValidatedChain() bool {
	return bIndex.IsValid(BlockValidChain)
}

func (bIndex *BlockIndex) ScriptsValidated() bool {
	return bIndex.IsValid(BlockValidScripts)
}

// IsFailed reports whether this block is itself invalid or descends from an
// invalid block.
func (bIndex *BlockIndex) IsFailed() bool {
	return bIndex.Status&BlockInvalidMask != 0
}

// AddStatus ORs the given blockstatus.go flag(s) into Status, e.g. marking
// an entry BlockFailed once its block has failed validation.
func (bIndex *BlockIndex) AddStatus(flag uint32) {
	bIndex.Status |= flag
}

// SubStatus clears the given blockstatus.go flag(s) from Status.
func (bIndex *BlockIndex) SubStatus(flag uint32) {
	bIndex.Status &^= flag
}

func (bIndex *BlockIndex) GetUndoPos() block.DiskBlockPos {
	return block.DiskBlockPos{File: bIndex.File, Pos: bIndex.UndoPos}
}

func (bIndex *BlockIndex) GetBlockPos() block.DiskBlockPos {
	return block.DiskBlockPos{File: bIndex.File, Pos: bIndex.DataPos}
}

func (bIndex *BlockIndex) GetBlockHeader() *block.BlockHeader {
	return &bIndex.Header
}

func (bIndex *BlockIndex) GetBlockHash() *util.Hash {
	return &bIndex.BlockHash
}

func (bIndex *BlockIndex) SetBlockHash(hash util.Hash) {
	bIndex.BlockHash = hash
}

// IsGenesis reports whether this entry is the network's genesis block, by
// hash rather than by Height==0 && Prev==nil so it stays correct even for
// an entry not yet linked into the block-index arena.
func (bIndex *BlockIndex) IsGenesis(params *chainparams.BitcoinParams) bool {
	genesisHash := params.GenesisBlock.GetHash()
	return bIndex.BlockHash.IsEqual(&genesisHash)
}

func (bIndex *BlockIndex) GetBlockTime() uint32 {
	return bIndex.Header.Time
}

func (bIndex *BlockIndex) GetBlockTimeMax() uint32 {
	return bIndex.TimeMax
}

// GetMedianTimePast is the median of this block's and up to its 10
// immediate ancestors' timestamps, the clock contextual checks compare
// against instead of a single block's timestamp (timestamp manipulation
// resistance).
func (bIndex *BlockIndex) GetMedianTimePast() int64 {
	median := make([]int64, 0, medianTimeSpan)
	index := bIndex
	numNodes := 0
	for i := 0; i < medianTimeSpan && index != nil; i++ {
		median = append(median, int64(index.GetBlockTime()))
		index = index.Prev
		numNodes++
	}
	median = median[:numNodes]
	sort.Slice(median, func(i, j int) bool {
		return median[i] < median[j]
	})

	return median[numNodes/2]
}

// IsValid reports whether this entry has reached at least the given rung of
// the validity lattice (BlockValidHeader..BlockValidScripts) and has not
// failed.
func (bIndex *BlockIndex) IsValid(upto uint32) bool {
	if bIndex.Status&BlockInvalidMask != 0 {
		return false
	}
	return bIndex.Status&BlockValidityMask >= upto
}

// RaiseValidity promotes this entry's validity level to upto if it is not
// already at or above it. The lattice is monotonic: callers never need to
// lower it, and RaiseValidity silently no-ops if upto isn't actually higher.
// Returns true if the validity was changed.
func (bIndex *BlockIndex) RaiseValidity(upto uint32) bool {
	if bIndex.Status&BlockInvalidMask != 0 {
		return false
	}
	if bIndex.Status&BlockValidityMask >= upto {
		return false
	}
	bIndex.Status = (bIndex.Status &^ BlockValidityMask) | upto
	return true
}

// BuildSkip wires this entry's skip pointer once its parent is known; call
// immediately after linking Prev.
func (bIndex *BlockIndex) BuildSkip() {
	if bIndex.Prev != nil {
		bIndex.Skip = bIndex.Prev.GetAncestor(getSkipHeight(bIndex.Height))
	}
}

// invertLowestOne turns the lowest '1' bit in n's binary representation
// into a '0'.
func invertLowestOne(n int32) int32 {
	return n & (n - 1)
}

// getSkipHeight computes what height to jump back to with the skip
// pointer. Any height strictly below the input is a legal choice; this
// expression was chosen because it performs well in practice (at most ~110
// hops back across 2**18 blocks).
func getSkipHeight(height int32) int32 {
	if height < 2 {
		return 0
	}
	if height&1 > 0 {
		return invertLowestOne(invertLowestOne(height-1)) + 1
	}
	return invertLowestOne(height)
}

// GetAncestor walks Prev/Skip pointers to find the ancestor at the given
// height in O(log n) hops.
func (bIndex *BlockIndex) GetAncestor(height int32) *BlockIndex {
	if height > bIndex.Height || height < 0 {
		return nil
	}
	indexWalk := bIndex
	heightWalk := bIndex.Height
	for heightWalk > height {
		heightSkip := getSkipHeight(heightWalk)
		heightSkipPrev := getSkipHeight(heightWalk - 1)
		if indexWalk.Skip != nil && (heightSkip == height ||
			(heightSkip > height && !(heightSkipPrev < heightSkip-2 && heightSkipPrev >= height))) {
			// Only follow skip if prev->skip isn't better than skip->prev.
			indexWalk = indexWalk.Skip
			heightWalk = heightSkip
		} else {
			if indexWalk.Prev == nil {
				panic("blockindex: walked past genesis looking for ancestor")
			}
			indexWalk = indexWalk.Prev
			heightWalk--
		}
	}
	return indexWalk
}

func (bIndex *BlockIndex) String() string {
	hash := bIndex.GetBlockHash()
	return fmt.Sprintf("BlockIndex(height=%d, merkle=%s, hash=%s, status=%#x)",
		bIndex.Height, bIndex.Header.MerkleRoot.String(), hash.String(), bIndex.Status)
}

// IsDAAEnabled reports whether this block's height has reached the new
// difficulty-adjustment-algorithm activation height, i.e. whether the block
// built on top of this one must use the new DAA retarget policy.
func (bIndex *BlockIndex) IsDAAEnabled(params daaParams) bool {
	return bIndex.Height >= params.GetDAAHeight()
}

// daaParams is the minimal slice of chainparams.BitcoinParams that
// IsDAAEnabled needs.
type daaParams interface {
	GetDAAHeight() int32
}

func NewBlockIndex(blkHeader *block.BlockHeader) *BlockIndex {
	blockIndex := new(BlockIndex)
	blockIndex.SetNull()
	blockIndex.Header = *blkHeader
	blockIndex.BlockHash = blkHeader.GetHash()
	return blockIndex
}
