// Package versionbits implements the BIP9/BIP135-unified deployment state
// machine: each soft fork gets a bit in the block version field and walks
// DEFINED->STARTED->LOCKED_IN->ACTIVE (or ->FAILED past its timeout),
// counting signaling blocks over a miner confirmation window.
package versionbits

import (
	"math"
	"sync"

	"github.com/copernet/copernicus/model/blockindex"
	"github.com/copernet/copernicus/model/chainparams"
	"github.com/copernet/copernicus/model/consensus"
)

const (
	// VersionBitsLastOldBlockVersion is the highest pre-versionbits block
	// version a miner would still produce.
	VersionBitsLastOldBlockVersion = 4
	// VersionBitsTopBits marks a block version as versionbits-encoded.
	VersionBitsTopBits = 0x20000000
	// VersionBitsTopMask isolates the top three bits VersionBitsTopBits sets.
	VersionBitsTopMask int32 = 0xE0000000
	// VersionBitsNumBits is how many of the remaining bits are available
	// for deployments to claim.
	VersionBitsNumBits = 29
)

type ThresholdState int

const (
	ThresholdDefined ThresholdState = iota
	ThresholdStarted
	ThresholdLockedIn
	ThresholdActive
	ThresholdFailed
)

func (s ThresholdState) String() string {
	switch s {
	case ThresholdDefined:
		return "defined"
	case ThresholdStarted:
		return "started"
	case ThresholdLockedIn:
		return "locked_in"
	case ThresholdActive:
		return "active"
	case ThresholdFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BIP9DeploymentInfo is display/gbt metadata for a deployment slot; the
// activation parameters themselves live on consensus.Param.Deployments.
type BIP9DeploymentInfo struct {
	Name     string
	GbtForce bool
}

// VersionBitsDeploymentInfo is indexed by consensus.DeploymentPos.
var VersionBitsDeploymentInfo = []BIP9DeploymentInfo{
	consensus.DeploymentTestDummy: {Name: "testdummy", GbtForce: true},
	consensus.DeploymentCSV:       {Name: "csv", GbtForce: true},
}

// ThresholdConditionCache memoizes the computed state at every period
// boundary block seen so far, keyed by the BlockIndex whose state it is;
// states only ever move forward, so nothing ever needs invalidating.
type ThresholdConditionCache map[*blockindex.BlockIndex]ThresholdState

// VersionBitsCache holds one ThresholdConditionCache per deployment slot.
// A single instance is shared across all deployments' state computations
// so that querying one deployment doesn't discard another's cached work.
type VersionBitsCache struct {
	sync.RWMutex
	cache [consensus.MaxVersionBitsDeployments]ThresholdConditionCache
}

func NewVersionBitsCache() *VersionBitsCache {
	vbc := &VersionBitsCache{}
	for i := range vbc.cache {
		vbc.cache[i] = make(ThresholdConditionCache)
	}
	return vbc
}

func (vbc *VersionBitsCache) Clear() {
	vbc.Lock()
	defer vbc.Unlock()
	for i := range vbc.cache {
		vbc.cache[i] = make(ThresholdConditionCache)
	}
}

// VBCache is the process-wide versionbits cache. It holds no consensus
// state of its own, only memoized results that are always safe to discard
// and recompute, so unlike the chain/UTXO state it is not threaded through
// ConsensusEngine.
var VBCache = NewVersionBitsCache()

func NewWarnBitsCache(bitNum int) []ThresholdConditionCache {
	w := make([]ThresholdConditionCache, bitNum)
	for i := range w {
		w[i] = make(ThresholdConditionCache)
	}
	return w
}

// conditionChecker abstracts "does this block signal readiness" so the
// same GetStateFor walk serves both real BIP9 deployments and the warning
// bits checker below.
type conditionChecker interface {
	BeginTime(params *chainparams.BitcoinParams) int64
	EndTime(params *chainparams.BitcoinParams) int64
	Period(params *chainparams.BitcoinParams) int
	Threshold(params *chainparams.BitcoinParams) int
	MinLockedBlocks(params *chainparams.BitcoinParams) int
	Condition(index *blockindex.BlockIndex, params *chainparams.BitcoinParams) bool
}

func VersionBitsState(indexPrev *blockindex.BlockIndex, params *chainparams.BitcoinParams, pos consensus.DeploymentPos, vbc *VersionBitsCache) ThresholdState {
	vc := &VersionBitsConditionChecker{id: pos}
	vbc.Lock()
	defer vbc.Unlock()
	return GetStateFor(vc, indexPrev, params, vbc.cache[pos])
}

func VersionBitsStateSinceHeight(indexPrev *blockindex.BlockIndex, params *chainparams.BitcoinParams, pos consensus.DeploymentPos, vbc *VersionBitsCache) int32 {
	vc := &VersionBitsConditionChecker{id: pos}
	vbc.Lock()
	defer vbc.Unlock()
	return GetStateSinceHeightFor(vc, indexPrev, params, vbc.cache[pos])
}

func VersionBitsMask(params *chainparams.BitcoinParams, pos consensus.DeploymentPos) uint32 {
	vc := VersionBitsConditionChecker{id: pos}
	return uint32(vc.Mask(params))
}

// VersionBitsConditionChecker is the BIP9Deployment-table-backed checker:
// a block signals if its version has the topbits pattern set and the bit
// for this deployment set.
type VersionBitsConditionChecker struct {
	id consensus.DeploymentPos
}

func (vc *VersionBitsConditionChecker) BeginTime(params *chainparams.BitcoinParams) int64 {
	return params.Deployments[vc.id].StartTime
}

func (vc *VersionBitsConditionChecker) EndTime(params *chainparams.BitcoinParams) int64 {
	return params.Deployments[vc.id].Timeout
}

func (vc *VersionBitsConditionChecker) Period(params *chainparams.BitcoinParams) int {
	return int(params.DeploymentWindow(vc.id))
}

func (vc *VersionBitsConditionChecker) Threshold(params *chainparams.BitcoinParams) int {
	return int(params.DeploymentThreshold(vc.id))
}

// MinLockedBlocks is the BIP135 extension letting a deployment require
// staying LOCKED_IN for more than one window before going ACTIVE (0, the
// BIP9 default, means exactly one window).
func (vc *VersionBitsConditionChecker) MinLockedBlocks(params *chainparams.BitcoinParams) int {
	return int(params.Deployments[vc.id].MinLockedBlocks)
}

func (vc *VersionBitsConditionChecker) Condition(index *blockindex.BlockIndex, params *chainparams.BitcoinParams) bool {
	return (index.Header.Version&VersionBitsTopMask) == VersionBitsTopBits &&
		(index.Header.Version&vc.Mask(params)) != 0
}

func (vc *VersionBitsConditionChecker) Mask(params *chainparams.BitcoinParams) int32 {
	return int32(1) << uint(params.Deployments[vc.id].Bit)
}

// GetStateFor walks the deployment's threshold state machine up to
// indexPrev's period, memoizing every period-boundary block it visits in
// cache. indexPrev is the block whose child's state is being asked about;
// nil means "the block after genesis".
func GetStateFor(vc conditionChecker, indexPrev *blockindex.BlockIndex, params *chainparams.BitcoinParams, cache ThresholdConditionCache) ThresholdState {
	period := vc.Period(params)
	threshold := vc.Threshold(params)
	minLocked := vc.MinLockedBlocks(params)
	timeStart := vc.BeginTime(params)
	timeTimeout := vc.EndTime(params)

	// A block's state is always the same as that of the first of its
	// period, so work in terms of the indexPrev whose height is a
	// multiple of period, minus one.
	if indexPrev != nil {
		indexPrev = indexPrev.GetAncestor(indexPrev.Height - (indexPrev.Height+1)%int32(period))
	}

	toCompute := make([]*blockindex.BlockIndex, 0)
	for {
		if _, ok := cache[indexPrev]; !ok {
			if indexPrev == nil {
				cache[indexPrev] = ThresholdDefined
				break
			}
			if indexPrev.GetMedianTimePast() < timeStart {
				cache[indexPrev] = ThresholdDefined
				break
			}
			toCompute = append(toCompute, indexPrev)
			indexPrev = indexPrev.GetAncestor(indexPrev.Height - int32(period))
		} else {
			break
		}
	}

	state, ok := cache[indexPrev]
	if !ok {
		panic("versionbits: cache should hold an entry for indexPrev by now")
	}

	lockedInHeight := int32(-1)
	if prev, ok := findLockedInAncestor(cache, indexPrev); ok {
		lockedInHeight = prev
	}

	for n := len(toCompute) - 1; n >= 0; n-- {
		indexPrev = toCompute[n]
		stateNext := state

		switch state {
		case ThresholdDefined:
			if indexPrev.GetMedianTimePast() >= timeTimeout {
				stateNext = ThresholdFailed
			} else if indexPrev.GetMedianTimePast() >= timeStart {
				stateNext = ThresholdStarted
			}
		case ThresholdStarted:
			count := 0
			walk := indexPrev
			for i := 0; i < period; i++ {
				if vc.Condition(walk, params) {
					count++
				}
				walk = walk.Prev
			}
			if count >= threshold {
				stateNext = ThresholdLockedIn
				lockedInHeight = indexPrev.Height
			} else if indexPrev.GetMedianTimePast() >= timeTimeout {
				stateNext = ThresholdFailed
			}
		case ThresholdLockedIn:
			// BIP135 per-deployment minimum LOCKED_IN duration: stay
			// locked in until at least minLocked blocks/windows have
			// passed since lock-in, then go active.
			if minLocked == 0 || lockedInHeight < 0 || indexPrev.Height-lockedInHeight+1 >= int32(minLocked) {
				stateNext = ThresholdActive
			}
		case ThresholdFailed, ThresholdActive:
			// Terminal states.
		}
		state = stateNext
		cache[indexPrev] = state
	}
	return state
}

// findLockedInAncestor recovers the height at which the chain entered
// LOCKED_IN, needed to evaluate a BIP135 MinLockedBlocks requirement when
// resuming a walk from a cached LOCKED_IN state. Most deployments have
// MinLockedBlocks==0 and never consult this.
func findLockedInAncestor(cache ThresholdConditionCache, index *blockindex.BlockIndex) (int32, bool) {
	for idx, st := range cache {
		if st == ThresholdLockedIn && idx != nil && (index == nil || idx.Height <= index.Height) {
			return idx.Height, true
		}
	}
	return -1, false
}

func GetStateSinceHeightFor(vc conditionChecker, indexPrev *blockindex.BlockIndex, params *chainparams.BitcoinParams, cache ThresholdConditionCache) int32 {
	initialState := GetStateFor(vc, indexPrev, params, cache)
	if initialState == ThresholdDefined {
		return 0
	}

	period := int32(vc.Period(params))
	indexPrev = indexPrev.GetAncestor(indexPrev.Height - ((indexPrev.Height + 1) % period))
	previousPeriodParent := indexPrev.GetAncestor(indexPrev.Height - period)
	for previousPeriodParent != nil && GetStateFor(vc, previousPeriodParent, params, cache) == initialState {
		indexPrev = previousPeriodParent
		previousPeriodParent = indexPrev.GetAncestor(indexPrev.Height - period)
	}
	return indexPrev.Height + 1
}

// WarningBitsConditionChecker flags a block as signaling an *unknown* rule
// change: the top bits pattern plus a bit that isn't currently assigned to
// any deployment ComputeBlockVersion itself would set. Enough of these in
// a row is the "unknown new rules activated" miner warning.
type WarningBitsConditionChecker struct {
	bit int
}

func NewWarningBitsConChecker(bitIn int) *WarningBitsConditionChecker {
	return &WarningBitsConditionChecker{bit: bitIn}
}

func (w *WarningBitsConditionChecker) BeginTime(params *chainparams.BitcoinParams) int64 { return 0 }

func (w *WarningBitsConditionChecker) EndTime(params *chainparams.BitcoinParams) int64 {
	return math.MaxInt64
}

func (w *WarningBitsConditionChecker) Period(params *chainparams.BitcoinParams) int {
	return int(params.MinerConfirmationWindow)
}

func (w *WarningBitsConditionChecker) Threshold(params *chainparams.BitcoinParams) int {
	return int(params.RuleChangeActivationThreshold)
}

func (w *WarningBitsConditionChecker) MinLockedBlocks(params *chainparams.BitcoinParams) int {
	return 0
}

func (w *WarningBitsConditionChecker) Condition(index *blockindex.BlockIndex, params *chainparams.BitcoinParams) bool {
	return index.Header.Version&VersionBitsTopMask == VersionBitsTopBits &&
		(index.Header.Version>>uint(w.bit))&1 != 0 &&
		(ComputeBlockVersion(index.Prev, params, VBCache)>>uint(w.bit))&1 == 0
}

// ComputeBlockVersion builds the version field a new block extending
// indexPrev should use: the versionbits top bits plus one bit set for
// every deployment currently STARTED or LOCKED_IN.
func ComputeBlockVersion(indexPrev *blockindex.BlockIndex, params *chainparams.BitcoinParams, vbc *VersionBitsCache) int32 {
	version := int32(VersionBitsTopBits)
	for i := 0; i < int(consensus.MaxVersionBitsDeployments); i++ {
		pos := consensus.DeploymentPos(i)
		state := VersionBitsState(indexPrev, params, pos, vbc)
		if state == ThresholdLockedIn || state == ThresholdStarted {
			version |= int32(VersionBitsMask(params, pos))
		}
	}
	return version
}
