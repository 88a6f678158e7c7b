package conf

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/copernet/copernicus/util"
)

// Cfg is the process-wide configuration, populated once by InitConfig at
// startup and read by every other package; nothing below the engine mutates
// it after that.
var Cfg *Configuration

// DataDir mirrors Cfg.DataDir for packages (mostly storage/db setup) that
// read the data directory before a Configuration is threaded to them.
var DataDir string

const (
	DefaultConnectTimeout = time.Second * 30
	DefaultDbCache        = 450 // MiB, matches the teacher's -dbcache default
	DefaultPruneMiB       = 0   // 0 disables pruning
)

// ScriptConfig groups the handful of script-relay policy knobs the UTXO/
// block pipelines read (kept distinct from consensus rules: these are local
// relay policy, not things that could fork the chain).
type ScriptConfig struct {
	AcceptDataCarrier       bool   `long:"datacarrier" description:"Relay and mine data carrier transactions" default:"true"`
	MaxDatacarrierBytes     uint   `long:"datacarriersize" description:"Maximum size of data in data carrier transactions we relay and mine" default:"223"`
	IsBareMultiSigStd       bool   `long:"bare-multisig" description:"Relay non-P2SH multisig" default:"true"`
	PromiscuousMempoolFlags string `long:"promiscuousmempoolflags" description:"Override standard script verification flags used when mempool admission checks a transaction, in hex"`
	Par                     int    `long:"par" description:"Number of concurrent script verification worker goroutines; 0 or negative disables the pool"`
}

// MempoolConfig groups the mempool admission/eviction policy knobs.
type MempoolConfig struct {
	MinFeeRate           int64 `long:"minrelaytxfee" description:"Minimum relay fee rate, satoshis per kB" default:"1000"`
	MaxPoolSize          int64 `long:"maxmempool" description:"Maximum size of the in-memory mempool in bytes"`
	LimitAncestorCount   int64 `long:"limitancestorcount" description:"Do not accept transactions if any ancestor would have more than this many in-mempool ancestors"`
	LimitAncestorSize    int64 `long:"limitancestorsize" description:"Do not accept transactions whose size with all in-mempool ancestors exceeds this many kilobytes"`
	LimitDescendantCount int64 `long:"limitdescendantcount" description:"Do not accept transactions if any ancestor would have more than this many in-mempool descendants"`
	LimitDescendantSize  int64 `long:"limitdescendantsize" description:"Do not accept transactions if any ancestor would have more than this many kilobytes of in-mempool descendants"`
}

// TxOutConfig groups output-relay policy.
type TxOutConfig struct {
	DustRelayFee int64 `long:"dustrelayfee" description:"Fee rate used to define whether an output is dust, satoshis per kB" default:"3000"`
}

// ChainConfig groups the chain-activation/UTXO-set-hash knobs.
type ChainConfig struct {
	StartLogHeight      int32  `long:"startlogheight" description:"Height at which block-connect benchmarking log lines begin"`
	AssumeValid         string `long:"assumevalid" description:"Assume that the signatures in ancestors of this block are valid, as hex hash; empty disables the fast path"`
	UtxoHashStartHeight int32  `long:"utxohashstartheight" default:"-1" description:"Height to begin logging the UTXO set hash at"`
	UtxoHashEndHeight   int32  `long:"utxohashendheight" default:"-1" description:"Height to stop logging the UTXO set hash at"`
}

// LogConfig groups log sink configuration.
type LogConfig struct {
	FileName string `long:"logfile" description:"Log file name, relative to datadir/logs" default:"copernicus"`
	Level    string `long:"debuglevel" description:"Logging level {emergency,alert,critical,error,warn,notice,info,debug}" default:"info"`
}

// P2PNetConfig groups the subset of network-selection flags this engine
// still consumes (full P2P transport configuration is a Non-goal).
type P2PNetConfig struct {
	TestNet bool `long:"testnet" description:"Use the test network"`
	RegTest bool `long:"regtest" description:"Use the regression test network"`
	SimNet  bool `long:"simnet" description:"Use the simulation test network"`
}

// BlockIndexConfig groups block-index self-check knobs.
type BlockIndexConfig struct {
	CheckBlockIndex bool `long:"checkblockindex" description:"Run self-check of the block index data structures after every connect/disconnect"`
}

// Configuration is the go-flags struct-tagged set of process options. It is
// deliberately narrower than a full node's: wallet/RPC/GUI flags are out of
// scope for this engine (spec Non-goals), but the flags that shape consensus
// or storage behavior (network selection, prune target, txindex, dbcache,
// reindex, assumevalid) are kept.
type Configuration struct {
	DataDir    string `short:"b" long:"datadir" description:"Directory to store data"`
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level {emergency,alert,critical,error,warn,notice,info,debug}" default:"info"`

	// NetworkName selects the active chain params ("mainnet", "testnet3",
	// "regtest", "simnet"); engine.New resolves it once at startup. Set
	// directly by callers that build a Configuration by hand, or derived
	// from the P2PNet flags below by resolveNetworkName after InitConfig
	// parses them.
	NetworkName string

	Reindex        bool   `long:"reindex" description:"Rebuild the block index from the block files on disk"`
	TxIndex        bool   `long:"txindex" description:"Maintain a full hash-based transaction index"`
	PruneTargetMiB uint64 `long:"prune" description:"Target size in MiB for block/undo file storage; 0 disables pruning"`
	DbCacheMiB     uint64 `long:"dbcache" description:"Maximum size of the UTXO cache in MiB" default:"450"`

	// Excessiveblocksize is the hard cap on serialized block size this node
	// will ever accept, independent of the network's own consensus rule.
	Excessiveblocksize uint64 `long:"excessiveblocksize" description:"Hard cap on serialized block size this node will accept"`

	P2PNet     P2PNetConfig     `group:"Network"`
	BlockIndex BlockIndexConfig `group:"BlockIndex"`
	Log        LogConfig        `group:"Log"`
	Mempool    MempoolConfig    `group:"Mempool"`
	TxOut      TxOutConfig      `group:"TxOut"`
	Script     ScriptConfig     `group:"Script"`
	Chain      ChainConfig      `group:"Chain"`
}

func init() {
	Cfg = defaultConfiguration()
}

func defaultConfiguration() *Configuration {
	return &Configuration{
		DataDir:            GetDataPath(),
		DebugLevel:         "info",
		DbCacheMiB:         DefaultDbCache,
		Excessiveblocksize: 32 * 1000 * 1000,
		Log: LogConfig{
			FileName: "copernicus",
			Level:    "info",
		},
		Mempool: MempoolConfig{
			MinFeeRate:           1000,
			MaxPoolSize:          300 * 1000 * 1000,
			LimitAncestorCount:   25,
			LimitAncestorSize:    101,
			LimitDescendantCount: 25,
			LimitDescendantSize:  101,
		},
		TxOut: TxOutConfig{
			DustRelayFee: 3000,
		},
		Script: ScriptConfig{
			AcceptDataCarrier:   true,
			MaxDatacarrierBytes: 223,
			Par:                 runtime.NumCPU(),
		},
	}
}

// NewDefaultConfiguration exposes the same defaults InitConfig starts from,
// for callers (engine bootstrap, tests) that want a Configuration without
// parsing any flags.
func NewDefaultConfiguration() *Configuration {
	return defaultConfiguration()
}

// InitConfig parses args (normally os.Args[1:]) into Cfg using go-flags. It
// is the process entrypoint's responsibility to call this before touching
// any other package; tests construct Cfg directly instead. Parse errors
// (including -h/--help) are handled by flags.Default, which prints usage
// and exits; callers never see them.
func InitConfig(args []string) *Configuration {
	cfg := defaultConfiguration()
	parser := flags.NewParser(cfg, flags.Default)
	parser.ParseArgs(args)
	cfg.NetworkName = resolveNetworkName(cfg)
	Cfg = cfg
	DataDir = cfg.DataDir
	return cfg
}

// resolveNetworkName turns the mutually-exclusive network flags into the
// name used by model/chainparams, for callers that parsed flags rather
// than setting NetworkName directly.
func resolveNetworkName(c *Configuration) string {
	switch {
	case c.P2PNet.RegTest:
		return "regtest"
	case c.P2PNet.TestNet:
		return "testnet3"
	case c.P2PNet.SimNet:
		return "simnet"
	default:
		return "mainnet"
	}
}

// GetDataPath returns the configured data directory, creating it if it does
// not yet exist. Falls back to a "copernicus" directory beside the binary
// when no explicit -datadir was given.
func GetDataPath() string {
	base := ""
	if Cfg != nil && Cfg.DataDir != "" {
		base = Cfg.DataDir
	} else {
		base = util.MergePath("copernicus")
	}
	dataPath := filepath.Clean(base)
	if !util.PathExists(dataPath) {
		if err := util.MakePath(dataPath); err != nil {
			panic(fmt.Errorf("could not create data directory %s: %v", dataPath, err))
		}
	}
	return dataPath
}

// FileExists reports whether path exists on the local filesystem, regardless
// of whether it names a file or a directory.
func FileExists(path string) bool {
	return util.PathExists(path)
}

// SetUnitTestDataDir points cfg (and the package-level DataDir mirror) at a
// freshly created temp directory, so test suites never touch a developer's
// real datadir. Callers are responsible for os.RemoveAll-ing the returned
// path once the test finishes.
func SetUnitTestDataDir(cfg *Configuration) (string, error) {
	dir, err := ioutil.TempDir("", "copernicus_test")
	if err != nil {
		return "", err
	}
	cfg.DataDir = dir
	DataDir = dir
	return dir, nil
}
