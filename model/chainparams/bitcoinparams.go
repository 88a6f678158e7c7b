package chainparams

import (
	"errors"
	"math/big"
	"time"

	"github.com/copernet/copernicus/model/block"
	"github.com/copernet/copernicus/model/consensus"
	"github.com/copernet/copernicus/util"
	"github.com/copernet/copernicus/util/amount"
)

// AntiReplayCommitment is the OP_RETURN payload miners must commit to on
// pre-fork chains to keep post-fork transactions from replaying there.
const AntiReplayCommitment = "Bitcoin: A Peer-to-Peer Electronic Cash System"

// ActiveNetParams is the process-wide selected network; engine.New resolves
// it once from conf.Cfg.NetworkName at startup.
var ActiveNetParams = &TestNetParams

var (
	bigOne = big.NewInt(1)
	// 2^224 - 1
	mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)
	// 2^255 - 1
	regressionPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
	testNetPowLimit     = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)
)

// Checkpoint pins a known-good (height, hash) pair; a header chain that
// diverges from a checkpoint it has reached is rejected outright rather
// than merely losing the chain-work race (spec §4.A/§4.G).
type Checkpoint struct {
	Height int32
	Hash   util.Hash
}

// ChainTxData seeds wallet/UI progress estimation; kept only as descriptive
// metadata, never consulted by consensus or storage logic.
type ChainTxData struct {
	Time    time.Time
	TxCount int64
	TxRate  float64
}

// BitcoinParams is the complete network parameter record: the embedded
// consensus.Param plus everything specific to running as a full node on
// that network (genesis, magic bytes, checkpoints, address prefixes).
type BitcoinParams struct {
	consensus.Param

	Name string
	// Net is the four-byte magic prefixing every on-disk block record
	// (persist/blkdb) and every P2P message.
	Net          uint32
	DefaultPort  string
	GenesisBlock *block.Block

	PowLimitBits             uint32
	CoinbaseMaturity         uint16
	SubsidyReductionInterval int32
	ReduceMinDifficulty      bool
	MinDiffReductionTime     time.Duration

	Checkpoints []Checkpoint

	// BIP34 supermajority gate: once BlockEnforceNumRequired of the last
	// BlockUpgradeNumToCheck blocks signal the new version, it becomes
	// mandatory; once BlockRejectNumRequired do, old versions are rejected.
	BlockEnforceNumRequired uint64
	BlockRejectNumRequired  uint64
	BlockUpgradeNumToCheck  uint64

	RequireStandard bool
	RelayNonStdTxs  bool

	// Address-prefix bytes (component A responsibility); wallet key
	// derivation itself is out of scope.
	PubKeyHashAddressID byte
	ScriptHashAddressID byte
	PrivateKeyID        byte

	PruneAfterHeight    int
	chainTxData         ChainTxData
	MiningRequiresPeers bool

	// MonolithActivationTime/MagneticAnomalyActivationTime/
	// ReplayProtectionActivationTime gate the three post-UAHF opcode/replay
	// hard forks (original_source supplement: the distilled spec folds
	// these into "script verify flags" without naming the individual
	// activation times). Median-time-past gated, like UAHF/DAA are
	// height-gated.
	MonolithActivationTime         int64
	MagneticAnomalyActivationTime  int64
	ReplayProtectionActivationTime int64
}

func (param *BitcoinParams) TxData() *ChainTxData {
	return &param.chainTxData
}

var MainNetParams = BitcoinParams{
	Param: consensus.Param{
		GenesisHash:            &GenesisBlockHash,
		SubsidyHalvingInterval: 210000,
		BIP34Height:            227931,
		BIP34Hash:              *util.HashFromString("000000000000024b89b42a942fe0d9fea3bb44ab7bd1b19115dd6a759c0808b8"),
		BIP65Height:            388381,
		BIP66Height:            363725,
		PowLimit:               mainPowLimit,
		TargetTimespan:         60 * 60 * 24 * 14,
		TargetTimePerBlock:     60 * 10,

		FPowAllowMinDifficultyBlocks: false,
		FPowNoRetargeting:            false,

		RuleChangeActivationThreshold: 1916,
		MinerConfirmationWindow:       2016,
		Deployments: [consensus.MaxVersionBitsDeployments]consensus.BIP9Deployment{
			consensus.DeploymentTestDummy: {Bit: 28, StartTime: 1199145601, Timeout: 1230767999},
			consensus.DeploymentCSV:       {Bit: 0, StartTime: 1462060800, Timeout: 1493596800},
		},

		MinimumChainWork:   *util.HashFromString("000000000000000000000000000000000000000000b8702680bcb0fec8548e05"),
		DefaultAssumeValid: *util.HashFromString("0000000000000000007e11995a8969e2d8838e72da271cdd1903ae4c6753064a"),

		UAHFHeight: 478559,
		DAAHeight:  504031,

		RetargetAdjustmentFactor: 4,
	},

	Name:        "main",
	Net:         0xd9b4bef9,
	DefaultPort: "8333",
	GenesisBlock: GenesisBlock,

	PowLimitBits:             GenesisBlock.Header.Bits,
	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 210000,
	ReduceMinDifficulty:      false,

	Checkpoints: []Checkpoint{
		{11111, *util.HashFromString("0000000069e244f73d78e8fd29ba2fd2ed618bd6fa2ee92559f542fdb26e7c1d")},
		{33333, *util.HashFromString("000000002dd5588a74784eaa7ab0507a18ad16a236e7b1ce69f00d7ddfb5d0a6")},
		{74000, *util.HashFromString("0000000000573993a3c9e41ce34471c079dcf5f52a0e824a81e7f953b8661a20")},
		{105000, *util.HashFromString("00000000000291ce28027faea320c8d2b054b2e0fe44a773f3eefb151d6bdc97")},
		{134444, *util.HashFromString("00000000000005b12ffd4cd315cd34ffd4a594f430ac814c91184a0d42d2b0fe")},
		{168000, *util.HashFromString("000000000000099e61ea72015e79632f216fe6cb33d7899acb35b75c8303b763")},
		{193000, *util.HashFromString("000000000000059f452a5f7340de6682a977387c17010ff6e6c3bd83ca8b1317")},
		{210000, *util.HashFromString("000000000000048b95347e83192f69cf0366076336c639f9b7228e9ba171342e")},
		{216116, *util.HashFromString("00000000000001b4f4b433e81ee46494af945cf96014816a4e2370f11b23df4e")},
		{225430, *util.HashFromString("00000000000001c108384350f74090433e7fcf79a606b8e797f065b130575932")},
		{250000, *util.HashFromString("000000000000003887df1f29024b06fc2200b55f8af8f35453d7be294df2d214")},
	},

	// 75% (750/1000) enforces, 95% (950/1000) rejects, per BIP34.
	BlockEnforceNumRequired: 750,
	BlockRejectNumRequired:  950,
	BlockUpgradeNumToCheck:  1000,

	RequireStandard:     true,
	RelayNonStdTxs:      false,
	PubKeyHashAddressID: 0x00,
	ScriptHashAddressID: 0x05,
	PrivateKeyID:        0x80,

	MonolithActivationTime:         1526400000,
	MagneticAnomalyActivationTime:  1542300000,
	ReplayProtectionActivationTime: 1557921600,
}

var TestNetParams = BitcoinParams{
	Param: consensus.Param{
		GenesisHash:                    &TestNetGenesisHash,
		SubsidyHalvingInterval:         210000,
		BIP34Height:                    21111,
		BIP34Hash:                      *util.HashFromString("0000000023b3a96d3484e5abb3755c413e7d41500f8e2a5c3f0dd01299cd8ef8"),
		BIP65Height:                    581885,
		BIP66Height:                    330776,
		AntiReplayOpReturnSunsetHeight: 1250000,
		AntiReplayOpReturnCommitment:   []byte(AntiReplayCommitment),
		PowLimit:                       testNetPowLimit,
		TargetTimespan:                 60 * 60 * 24 * 14,
		TargetTimePerBlock:             60 * 10,

		FPowAllowMinDifficultyBlocks: true,
		FPowNoRetargeting:            false,

		RuleChangeActivationThreshold: 1512,
		MinerConfirmationWindow:       2016,
		Deployments: [consensus.MaxVersionBitsDeployments]consensus.BIP9Deployment{
			consensus.DeploymentTestDummy: {Bit: 28, StartTime: 1199145601, Timeout: 1230767999},
			consensus.DeploymentCSV:       {Bit: 0, StartTime: 1456790400, Timeout: 1493596800},
		},

		MinimumChainWork:   *util.HashFromString("000000000000000000000000000000000000000000000030015a07e503af3227"),
		DefaultAssumeValid: *util.HashFromString("00000000000000ba5624709777f8df34b911c16a33a474562aec7360580218cc"),

		UAHFHeight: 1155875,
		DAAHeight:  1188697,

		RetargetAdjustmentFactor: 4,
	},

	Name:        "test",
	Net:         0x0709110b,
	DefaultPort: "18333",
	GenesisBlock: TestNetGenesisBlock,

	PowLimitBits:             TestNetGenesisBlock.Header.Bits,
	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 210000,
	ReduceMinDifficulty:      true,
	MinDiffReductionTime:     time.Minute * 20,

	Checkpoints: []Checkpoint{
		{1200000, *util.HashFromString("00000000d91bdbb5394bcf457c0f0b7a7e43eb978e2d881b6c2a4c2756abc558")},
	},

	BlockEnforceNumRequired: 51,
	BlockRejectNumRequired:  75,
	BlockUpgradeNumToCheck:  100,

	RelayNonStdTxs:      true,
	PubKeyHashAddressID: 0x6f,
	ScriptHashAddressID: 0xc4,
	PrivateKeyID:        0xef,
	MiningRequiresPeers: true,

	MonolithActivationTime:         1526400000,
	MagneticAnomalyActivationTime:  1542300000,
	ReplayProtectionActivationTime: 1557921600,

	chainTxData: ChainTxData{Time: time.Unix(1483546230, 0), TxCount: 12834668, TxRate: 0.15},
}

var RegressionNetParams = BitcoinParams{
	Param: consensus.Param{
		GenesisHash:            &RegTestGenesisHash,
		SubsidyHalvingInterval: 150,
		BIP34Height:            100000000,
		BIP65Height:            1351,
		BIP66Height:            1251,
		PowLimit:               regressionPowLimit,
		TargetTimespan:         60 * 60 * 24 * 14,
		TargetTimePerBlock:     60 * 10,

		FPowAllowMinDifficultyBlocks: true,
		FPowNoRetargeting:            true,

		RuleChangeActivationThreshold: 108,
		MinerConfirmationWindow:       144,
		Deployments: [consensus.MaxVersionBitsDeployments]consensus.BIP9Deployment{
			consensus.DeploymentTestDummy: {Bit: 28, StartTime: 0, Timeout: 999999999999},
		},

		UAHFHeight: 0,
		DAAHeight:  0,

		RetargetAdjustmentFactor: 4,
	},

	Name:        "regtest",
	Net:         0xdab5bffa,
	DefaultPort: "18444",
	GenesisBlock: RegTestGenesisBlock,

	PowLimitBits:             RegTestGenesisBlock.Header.Bits,
	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 150,
	ReduceMinDifficulty:      true,
	MinDiffReductionTime:     time.Minute * 20,

	Checkpoints: nil,

	BlockEnforceNumRequired: 750,
	BlockRejectNumRequired:  950,
	BlockUpgradeNumToCheck:  1000,

	RelayNonStdTxs:      true,
	PubKeyHashAddressID: 0x6f,
	ScriptHashAddressID: 0xc4,
	PrivateKeyID:        0xef,

	MonolithActivationTime:         0,
	MagneticAnomalyActivationTime:  0,
	ReplayProtectionActivationTime: 0,
}

var registeredNets = make(map[uint32]struct{})

func init() {
	mustRegister(&MainNetParams)
	mustRegister(&TestNetParams)
	mustRegister(&RegressionNetParams)
}

func Register(params *BitcoinParams) error {
	if _, ok := registeredNets[params.Net]; ok {
		return errors.New("duplicate bitcoin network")
	}
	registeredNets[params.Net] = struct{}{}
	return nil
}

func mustRegister(params *BitcoinParams) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

// ParamsForNetwork resolves a network name (as returned by
// conf.Configuration.NetworkName) to its BitcoinParams.
func ParamsForNetwork(name string) (*BitcoinParams, error) {
	switch name {
	case "main", "mainnet":
		return &MainNetParams, nil
	case "test", "testnet3":
		return &TestNetParams, nil
	case "regtest":
		return &RegressionNetParams, nil
	default:
		return nil, errors.New("unknown network: " + name)
	}
}

// IsUAHFEnabled reports whether the given height has crossed the UAHF fork
// point on the active network.
func IsUAHFEnabled(height int32) bool {
	return height >= ActiveNetParams.UAHFHeight
}

// IsDAAEnabled reports whether the given height has crossed the new
// difficulty-adjustment-algorithm fork point on the active network.
func IsDAAEnabled(height int32) bool {
	return height >= ActiveNetParams.DAAHeight
}

// IsMonolithEnabled reports whether the May 2018 opcode-reenabling fork
// (OP_CAT et al, "Monolith") is active at the given median time past.
func IsMonolithEnabled(medianTimePast int64) bool {
	return medianTimePast >= ActiveNetParams.MonolithActivationTime
}

// IsMagneticAnomalyEnabled reports whether the November 2018 fork (minimal
// push enforcement, OP_CHECKDATASIG) is active at the given median time past.
func IsMagneticAnomalyEnabled(medianTimePast int64) bool {
	return medianTimePast >= ActiveNetParams.MagneticAnomalyActivationTime
}

// IsReplayProtectionEnabled reports whether the following hard fork's
// replay-protection signature flag should already be enforced, so nodes are
// ready for it before the fork itself activates.
func IsReplayProtectionEnabled(medianTimePast int64) bool {
	return medianTimePast >= ActiveNetParams.ReplayProtectionActivationTime
}

// SetMainNetParams switches the process-wide active network to mainnet.
func SetMainNetParams() {
	ActiveNetParams = &MainNetParams
}

// SetTestNetParams switches the process-wide active network to testnet3,
// used by tests that need deterministic, low-difficulty parameters.
func SetTestNetParams() {
	ActiveNetParams = &TestNetParams
}

// SetRegTestParams switches the process-wide active network to regtest.
func SetRegTestParams() {
	ActiveNetParams = &RegressionNetParams
}

// GetBlockSubsidy returns the block reward at height under params, halving
// every SubsidyReductionInterval blocks.
func GetBlockSubsidy(height int32, params *BitcoinParams) amount.Amount {
	halvings := height / params.SubsidyReductionInterval
	if halvings >= 64 {
		return 0
	}

	nSubsidy := 50 * amount.COIN
	return amount.Amount(uint(nSubsidy) >> uint(halvings))
}
