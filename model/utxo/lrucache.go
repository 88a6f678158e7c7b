package utxo

import (
	"unsafe"

	lru "github.com/hashicorp/golang-lru"

	"github.com/copernet/copernicus/log"
	"github.com/copernet/copernicus/model/outpoint"
	"github.com/copernet/copernicus/persist/db"
	"github.com/copernet/copernicus/util"
)

// CacheView is the read/write surface a block-connection or mempool
// consumer needs against the active UTXO set, independent of whether it is
// backed by the LRU cache or a scratch CoinsMap applied during validation.
type CacheView interface {
	GetCoin(point *outpoint.OutPoint) *Coin
	HaveCoin(point *outpoint.OutPoint) bool
	GetBestBlock() util.Hash
	SetBestBlock(hash util.Hash)
	UpdateCoins(cm *CoinsMap, hash *util.Hash) error
	Flush() bool
	GetCacheSize() int
}

// UtxoConfig carries the on-disk options for the coin database backing the
// process-wide UTXO cache.
type UtxoConfig struct {
	Do *db.DBOption
}

// CoinsLruCache layers a bounded in-memory LRU cache over the leveldb coin
// database: reads that miss the cache fall through to disk, and dirty
// entries accumulate in dirtyCoins until Flush writes them back in a batch.
type CoinsLruCache struct {
	db         *CoinsDB
	hashBlock  util.Hash
	cacheCoins *lru.Cache
	dirtyCoins *CoinsMap
}

var utxoTip *CoinsLruCache

// InitUtxoLruTip (re)builds the process-wide UTXO cache singleton from the
// given on-disk options. Like chain.InitGlobalChain, this is a deliberate
// package-level singleton rather than an engine-injected field until the
// consensus engine wiring lands; see versionbits.VBCache for the same
// tradeoff made elsewhere.
func InitUtxoLruTip(uc *UtxoConfig) {
	coinsDB := NewCoinsDB(uc.Do)
	utxoTip = NewCoinsLruCache(coinsDB)
}

func GetUtxoCacheInstance() *CoinsLruCache {
	if utxoTip == nil {
		log.Error("utxoTip has not been initialized")
	}
	return utxoTip
}

func NewCoinsLruCache(coinsDB *CoinsDB) *CoinsLruCache {
	cache, err := lru.New(1000000)
	if err != nil {
		panic("NewCoinsLruCache: " + err.Error())
	}
	return &CoinsLruCache{
		db:         coinsDB,
		cacheCoins: cache,
		dirtyCoins: NewEmptyCoinsMap(),
	}
}

// GetCoinsDB exposes the on-disk coin database backing the cache, for
// callers (chain-tip UTXO-set stats) that need to iterate it directly
// rather than going through the cached view.
func (coinsCache *CoinsLruCache) GetCoinsDB() *CoinsDB {
	return coinsCache.db
}

func (coinsCache *CoinsLruCache) GetCoin(point *outpoint.OutPoint) *Coin {
	if c, ok := coinsCache.cacheCoins.Get(*point); ok {
		return c.(*Coin)
	}

	coin, err := coinsCache.db.GetCoin(point)
	if err != nil {
		return nil
	}
	if coin.IsSpent() {
		// The parent has no entry for this outpoint, so our copy is fresh.
		coin.fresh = true
	}
	coinsCache.cacheCoins.Add(*point, coin)
	return coin
}

func (coinsCache *CoinsLruCache) HaveCoin(point *outpoint.OutPoint) bool {
	coin := coinsCache.GetCoin(point)
	return coin != nil && !coin.IsSpent()
}

func (coinsCache *CoinsLruCache) GetBestBlock() util.Hash {
	if coinsCache.hashBlock.IsNull() {
		hashBlock, err := coinsCache.db.GetBestBlock()
		if err != nil {
			return util.Hash{}
		}
		coinsCache.hashBlock = hashBlock
	}
	return coinsCache.hashBlock
}

func (coinsCache *CoinsLruCache) SetBestBlock(hash util.Hash) {
	coinsCache.hashBlock = hash
}

// UpdateCoins merges a scratch CoinsMap (as built up while connecting or
// disconnecting a block) into the LRU cache, draining cm as it goes.
func (coinsCache *CoinsLruCache) UpdateCoins(cm *CoinsMap, hash *util.Hash) error {
	for point, tempCoin := range cm.GetMap() {
		if tempCoin.isMempoolCoin {
			panic("a mempool-only coin should never reach the chainstate cache")
		}
		if !tempCoin.dirty {
			cm.UnCache(&point)
			continue
		}

		existing, ok := coinsCache.cacheCoins.Get(point)
		if !ok {
			if !(tempCoin.fresh && tempCoin.IsSpent()) {
				tempCoin.dirty = true
				coinsCache.cacheCoins.Add(point, tempCoin)
				coinsCache.dirtyCoins.GetMap()[point] = tempCoin
			}
		} else {
			globalCoin := existing.(*Coin)
			if tempCoin.fresh && !globalCoin.IsSpent() {
				panic("FRESH flag misapplied to cache entry for base transaction with spendable outputs")
			}
			if globalCoin.fresh && tempCoin.IsSpent() {
				// The grandparent view has no entry either; drop it outright.
				coinsCache.cacheCoins.Remove(point)
				coinsCache.dirtyCoins.UnCache(&point)
			} else {
				*globalCoin = *tempCoin
				globalCoin.dirty = true
				coinsCache.dirtyCoins.GetMap()[point] = globalCoin
			}
		}
		cm.UnCache(&point)
	}
	if hash != nil {
		coinsCache.hashBlock = *hash
	}
	return nil
}

func (coinsCache *CoinsLruCache) Flush() bool {
	err := coinsCache.db.BatchWrite(coinsCache.dirtyCoins, &coinsCache.hashBlock)
	coinsCache.dirtyCoins = NewEmptyCoinsMap()
	return err == nil
}

func (coinsCache *CoinsLruCache) UnCache(point *outpoint.OutPoint) {
	c, ok := coinsCache.cacheCoins.Get(*point)
	if !ok {
		return
	}
	coin := c.(*Coin)
	if !coin.dirty && !coin.fresh {
		coinsCache.cacheCoins.Remove(*point)
	}
}

func (coinsCache *CoinsLruCache) GetCacheSize() int {
	return coinsCache.cacheCoins.Len()
}

func (coinsCache *CoinsLruCache) DynamicMemoryUsage() int64 {
	return int64(unsafe.Sizeof(coinsCache.cacheCoins)) * int64(coinsCache.cacheCoins.Len())
}
