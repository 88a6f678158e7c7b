package utxo

import (
	"bytes"

	"github.com/copernet/copernicus/conf"
	"github.com/copernet/copernicus/log"
	"github.com/copernet/copernicus/model/outpoint"
	"github.com/copernet/copernicus/persist/db"
	"github.com/copernet/copernicus/util"
)

// CoinsDB is the leveldb-backed persistent layer under the in-memory
// coin cache: every key is prefixed with db.DbCoin except the single
// db.DbBestBlock record tracking the tip the chainstate was flushed at.
type CoinsDB struct {
	dbw *db.DBWrapper
}

func (coinsViewDB *CoinsDB) GetDBW() *db.DBWrapper {
	return coinsViewDB.dbw
}

func (coinsViewDB *CoinsDB) GetCoin(outpoint *outpoint.OutPoint) (*Coin, error) {
	buf := bytes.NewBuffer(nil)
	if err := NewCoinKey(outpoint).Serialize(buf); err != nil {
		return nil, err
	}

	coinBuf, err := coinsViewDB.dbw.Read(buf.Bytes())
	if err != nil {
		return nil, err
	}
	coin := NewEmptyCoin()
	if err := coin.Unserialize(bytes.NewReader(coinBuf)); err != nil {
		return nil, err
	}
	return coin, nil
}

func (coinsViewDB *CoinsDB) HaveCoin(outpoint *outpoint.OutPoint) bool {
	buf := bytes.NewBuffer(nil)
	if err := NewCoinKey(outpoint).Serialize(buf); err != nil {
		return false
	}
	return coinsViewDB.dbw.Exists(buf.Bytes())
}

func (coinsViewDB *CoinsDB) GetBestBlock() (util.Hash, error) {
	raw, err := coinsViewDB.dbw.Read([]byte{db.DbBestBlock})
	if err != nil {
		return util.Hash{}, err
	}
	var hashBestChain util.Hash
	if _, err := hashBestChain.Unserialize(bytes.NewReader(raw)); err != nil {
		return util.Hash{}, err
	}
	return hashBestChain, nil
}

// BatchWrite commits every dirty coin in cm to the database in one batch,
// draining cm as it goes, and records hashBlock as the new chainstate tip.
func (coinsViewDB *CoinsDB) BatchWrite(cm *CoinsMap, hashBlock *util.Hash) error {
	batch := db.NewBatchWrapper(coinsViewDB.dbw)
	count := 0
	changed := 0
	for point, coin := range cm.GetMap() {
		if coin.dirty {
			key := NewCoinKey(&point)
			keyBuf := bytes.NewBuffer(nil)
			if err := key.Serialize(keyBuf); err != nil {
				return err
			}

			if coin.IsSpent() {
				batch.Erase(keyBuf.Bytes())
			} else {
				coinBuf := bytes.NewBuffer(nil)
				if err := coin.Serialize(coinBuf); err != nil {
					return err
				}
				batch.Write(keyBuf.Bytes(), coinBuf.Bytes())
			}
			changed++
		}
		count++
		cm.UnCache(&point)
	}

	if hashBlock != nil && !hashBlock.IsNull() {
		hashBuf := bytes.NewBuffer(nil)
		if _, err := hashBlock.Serialize(hashBuf); err != nil {
			return err
		}
		batch.Write([]byte{db.DbBestBlock}, hashBuf.Bytes())
	}

	err := coinsViewDB.dbw.WriteBatch(batch, false)
	log.Debug("Committed %d changed transaction outputs (out of %d) to coin db", changed, count)
	return err
}

func (coinsViewDB *CoinsDB) EstimateSize() uint64 {
	return coinsViewDB.dbw.EstimateSize([]byte{db.DbCoin}, []byte{db.DbCoin + 1})
}

func newCoinsDB(do *db.DBOption) *CoinsDB {
	if do == nil {
		return nil
	}

	dbw, err := db.NewDBWrapper(&db.DBOption{
		FilePath:      do.FilePath,
		CacheSize:     do.CacheSize,
		Wipe:          do.Wipe,
		DontObfuscate: do.DontObfuscate,
	})
	if err != nil {
		panic("init CoinsDB failed: " + err.Error())
	}

	return &CoinsDB{dbw: dbw}
}

func NewCoinsDB(do *db.DBOption) *CoinsDB {
	if do == nil {
		do = &db.DBOption{
			FilePath:      conf.GetDataPath() + "/chainstate",
			CacheSize:     1 << 20,
			Wipe:          false,
			DontObfuscate: true,
		}
	}
	return newCoinsDB(do)
}
