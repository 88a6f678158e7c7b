// Package consensus defines the network-agnostic consensus parameter record:
// the plain value struct threaded through every component instead of a
// process-wide global (spec Design Notes, "Inheritance-based params → a
// value struct").
package consensus

import (
	"math/big"
	"time"

	"github.com/copernet/copernicus/util"
)

type DeploymentPos int

const (
	DeploymentTestDummy DeploymentPos = iota
	// DeploymentCSV is BIP68/BIP112/BIP113.
	DeploymentCSV
	// MaxVersionBitsDeployments bounds the deployment table; add new
	// deployments above this line and to model/versionbits's info table.
	MaxVersionBitsDeployments
)

// BIP9Deployment is one entry of the BIP135-unified versionbits table
// (spec §4.A/§4.I): a bit position plus the time/window/threshold
// parameters that govern its DEFINED->STARTED->LOCKED_IN->ACTIVE/FAILED walk.
type BIP9Deployment struct {
	// Bit is the position within header.version this deployment signals on.
	Bit int
	// StartTime is the earliest MTP at which signaling is considered.
	StartTime int64
	// Timeout is the MTP after which an un-locked-in deployment fails.
	Timeout int64
	// WindowSize overrides Param.MinerConfirmationWindow when non-zero,
	// letting a deployment use a shorter/longer confirmation window
	// (BIP135 per-fork windows).
	WindowSize uint32
	// Threshold overrides Param.RuleChangeActivationThreshold when
	// non-zero (BIP135 per-fork thresholds).
	Threshold uint32
	// MinLockedBlocks is the minimum number of blocks a deployment must
	// stay LOCKED_IN before becoming ACTIVE (0 = exactly one window).
	MinLockedBlocks uint32
	// MinLockedTime is the minimum time (seconds) since lock-in before
	// ACTIVE, checked against median time past.
	MinLockedTime int64
	// GbtForce indicates whether getblocktemplate-style callers must
	// include this deployment's rule even when not signaling (mempool
	// wipe mandated on activation if true).
	GbtForce bool
}

// Param is the full set of network parameters consulted by the engine. One
// value is built per network name and never mutated after construction.
type Param struct {
	GenesisHash            *util.Hash
	SubsidyHalvingInterval int

	// Block height and hash at which BIP34 becomes active.
	BIP34Height int32
	BIP34Hash   util.Hash
	// Block height at which BIP65 becomes active.
	BIP65Height int32
	// Block height at which BIP66 becomes active.
	BIP66Height int32
	// Block height at which UAHF kicks in.
	UAHFHeight int32
	// Block height at which the new DAA retarget algorithm kicks in.
	DAAHeight int32

	// Block height at which OP_RETURN replay-protection commitment stops
	// being enforced.
	AntiReplayOpReturnSunsetHeight int32
	AntiReplayOpReturnCommitment   []byte

	// Two historical heights whose block contained a duplicate coinbase
	// txid colliding with an earlier, already-spent coinbase; BIP30 is not
	// enforced against these two blocks specifically (original_source
	// supplement, see SPEC_FULL "Supplemented features").
	BIP30Exceptions map[int32]util.Hash

	// Minimum blocks including miner confirmation of the total blocks in
	// a retargeting period; used as the default versionbits threshold
	// when a deployment does not specify its own.
	RuleChangeActivationThreshold uint32
	MinerConfirmationWindow       uint32

	Deployments [MaxVersionBitsDeployments]BIP9Deployment

	// Proof-of-work parameters.
	PowLimit                     *big.Int
	FPowAllowMinDifficultyBlocks bool
	FPowNoRetargeting            bool
	TargetTimePerBlock           time.Duration
	TargetTimespan               time.Duration
	RetargetAdjustmentFactor     int64

	// The best chain should have at least this much work.
	MinimumChainWork util.Hash

	// By default assume that the signatures in ancestors of this block
	// are valid (assumevalid fast path, spec §4.J).
	DefaultAssumeValid util.Hash

	// Activation time at which the cash hard fork (UAHF) kicks in.
	CashHardForkActivationTime int64

	CashaddrPrefix string
}

// DifficultyAdjustmentInterval is the classic retarget period in blocks
// (2016 for Bitcoin-style 2-week/10-minute parameters).
func (pm *Param) DifficultyAdjustmentInterval() int64 {
	return int64(pm.TargetTimespan / pm.TargetTimePerBlock)
}

// GetDAAHeight satisfies model/blockindex's daaParams interface.
func (pm *Param) GetDAAHeight() int32 {
	return pm.DAAHeight
}

// DeploymentWindow resolves the effective confirmation window for a
// deployment, falling back to the network default when unset.
func (pm *Param) DeploymentWindow(d DeploymentPos) uint32 {
	if w := pm.Deployments[d].WindowSize; w != 0 {
		return w
	}
	return pm.MinerConfirmationWindow
}

// DeploymentThreshold resolves the effective signaling threshold for a
// deployment, falling back to the network default when unset.
func (pm *Param) DeploymentThreshold(d DeploymentPos) uint32 {
	if t := pm.Deployments[d].Threshold; t != 0 {
		return t
	}
	return pm.RuleChangeActivationThreshold
}
