// Package engine wires together the consensus subsystems — block index,
// active chain, UTXO cache, mempool, block/undo storage, and the download
// coordinator — behind a single constructor-owned value, so a caller starts
// one ConsensusEngine per process instead of reaching for a scatter of
// GetInstance() singletons.
package engine

import (
	"path/filepath"

	"github.com/copernet/copernicus/collaborate"
	"github.com/copernet/copernicus/conf"
	"github.com/copernet/copernicus/download"
	"github.com/copernet/copernicus/log"
	"github.com/copernet/copernicus/logic/lblock"
	"github.com/copernet/copernicus/logic/lchain"
	"github.com/copernet/copernicus/logic/lheader"
	"github.com/copernet/copernicus/model/block"
	"github.com/copernet/copernicus/model/blockindex"
	"github.com/copernet/copernicus/model/chain"
	"github.com/copernet/copernicus/model/chainparams"
	"github.com/copernet/copernicus/model/mempool"
	"github.com/copernet/copernicus/model/utxo"
	"github.com/copernet/copernicus/persist"
	"github.com/copernet/copernicus/persist/blkdb"
	"github.com/copernet/copernicus/persist/db"
)

// ConsensusEngine owns the process's consensus state: the block-index chain,
// the UTXO cache, the block-tree and coin databases, the mempool, and the
// download coordinator. Its methods delegate to the free functions in
// logic/lchain, which still reach chain.GetInstance()/utxo.GetUtxoCacheInstance()
// directly; the engine is what calls InitGlobalChain/InitUtxoLruTip/etc in
// the first place, so the singletons those free functions read belong to
// the one engine a process constructs.
type ConsensusEngine struct {
	Cfg    *conf.Configuration
	Params *chainparams.BitcoinParams

	Chain       *chain.Chain
	UtxoCache   *utxo.CoinsLruCache
	BlockTreeDB *blkdb.BlockTreeDB
	Persist     *persist.PersistGlobal
	Mempool     *mempool.TxMempool
	Download    *download.Coordinator

	ScriptVerifier collaborate.IScriptVerifier
	MempoolAdapter collaborate.IMempool
	Clock          collaborate.Clock
	UI             collaborate.IUI
}

// New resolves cfg's network, initializes every consensus subsystem against
// it, and returns the engine that owns them. It is the one place a process
// calls InitGlobalChain/InitBlockTreeDB/InitUtxoLruTip/InitPersistGlobal/
// InitMempool — every other package that used to call those directly (test
// helpers aside) should now go through an engine.
func New(cfg *conf.Configuration) (*ConsensusEngine, error) {
	switch cfg.NetworkName {
	case "mainnet":
		chainparams.SetMainNetParams()
	case "regtest":
		chainparams.SetRegTestParams()
	default:
		chainparams.SetTestNetParams()
	}
	conf.Cfg = cfg

	chain.InitGlobalChain()
	persist.InitPersistGlobal()

	blkdb.InitBlockTreeDB(&blkdb.BlockTreeDBConfig{
		Do: &db.DBOption{
			FilePath:  filepath.Join(cfg.DataDir, "blocks", "index"),
			CacheSize: 1 << 20,
		},
	})
	utxo.InitUtxoLruTip(&utxo.UtxoConfig{
		Do: &db.DBOption{
			FilePath:  filepath.Join(cfg.DataDir, "chainstate"),
			CacheSize: 1 << 20,
		},
	})
	mempool.InitMempool()

	e := &ConsensusEngine{
		Cfg:         cfg,
		Params:      chainparams.ActiveNetParams,
		Chain:       chain.GetInstance(),
		UtxoCache:   utxo.GetUtxoCacheInstance(),
		BlockTreeDB: blkdb.GetInstance(),
		Persist:     persist.GetInstance(),
		Mempool:     mempool.GetInstance(),
		Download:    download.NewCoordinator(),

		ScriptVerifier: collaborate.NewScriptVerifier(),
		Clock:          collaborate.NewSystemClock(),
		UI:             collaborate.NewLogUI(),
	}
	e.MempoolAdapter = collaborate.NewMempool()

	log.Info("engine: initialized for network %s, data dir %s", cfg.NetworkName, cfg.DataDir)
	return e, nil
}

// InitGenesis writes the genesis block to disk and sets it as the chain's
// tip, if the chain doesn't already have a genesis entry.
func (e *ConsensusEngine) InitGenesis() error {
	return lchain.InitGenesisChain()
}

// AcceptHeader runs the header-only acceptance pipeline and links the result
// into the chain's index/branch, per component G.
func (e *ConsensusEngine) AcceptHeader(header *block.BlockHeader) (*blockindex.BlockIndex, error) {
	return lheader.AcceptHeader(header, e.Clock.AdjustedTime())
}

// ProcessNewBlock runs a freshly received or mined block through full
// validation and, on success, makes it part of the active chain. It reports
// whether the block was genuinely new to the index.
func (e *ConsensusEngine) ProcessNewBlock(pblock *block.Block, forceProcessing bool) (isNew bool, err error) {
	err = lchain.ProcessNewBlock(pblock, forceProcessing, &isNew)
	return isNew, err
}

// ActivateBestChain repeatedly connects/disconnects blocks until the active
// chain matches the best-work candidate, per component J.
func (e *ConsensusEngine) ActivateBestChain(pblock *block.Block) error {
	return lchain.ActivateBestChain(pblock)
}

// DisconnectTip undoes the active chain's current tip.
func (e *ConsensusEngine) DisconnectTip(bare bool) error {
	return lchain.DisconnectTip(bare)
}

// Tip returns the active chain's current best block.
func (e *ConsensusEngine) Tip() *blockindex.BlockIndex {
	return e.Chain.Tip()
}

// IsInitialBlockDownload reports whether the node is still catching up to
// the network, per component K's sync-state gating.
func (e *ConsensusEngine) IsInitialBlockDownload() bool {
	return lchain.IsInitialBlockDownload()
}

// CheckBlock runs the stateless block checks (component H) without touching
// the UTXO set or chain state.
func (e *ConsensusEngine) CheckBlock(pblock *block.Block) error {
	return lblock.CheckBlock(pblock, true, true)
}
