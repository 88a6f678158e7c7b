package utxo

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/copernet/copernicus/model/outpoint"
	"github.com/copernet/copernicus/model/script"
	"github.com/copernet/copernicus/model/txout"
	"github.com/copernet/copernicus/persist/db"
	"github.com/copernet/copernicus/util"
	"github.com/copernet/copernicus/util/amount"
	"github.com/stretchr/testify/assert"
)

func newTestUtxoConfig(t *testing.T) (*UtxoConfig, func()) {
	path, err := ioutil.TempDir("", "utxo-lrucache-test")
	if err != nil {
		t.Fatalf("generate temp db path failed: %s", err)
	}
	cfg := &UtxoConfig{Do: &db.DBOption{
		FilePath:      path,
		CacheSize:     1 << 20,
		DontObfuscate: true,
	}}
	return cfg, func() { os.RemoveAll(path) }
}

func TestNewCoinsLruCache(t *testing.T) {
	cfg, cleanup := newTestUtxoConfig(t)
	defer cleanup()

	InitUtxoLruTip(cfg)
	cache := GetUtxoCacheInstance()

	cm := NewEmptyCoinsMap()
	op := outpoint.NewOutPoint(util.HashOne, 0)
	out := txout.NewTxOut(amount.Amount(50), script.NewScriptRaw([]byte{0x51}))
	coin := NewFreshCoin(out, 1, false)
	cm.AddCoin(op, coin, false)

	if err := cache.UpdateCoins(cm, &util.HashZero); err != nil {
		t.Fatalf("UpdateCoins failed: %s", err)
	}
	if !cache.Flush() {
		t.Fatal("Flush failed")
	}

	c := cache.GetCoin(op)
	assert.NotNil(t, c)
	assert.False(t, c.IsSpent())
}

func TestCoinsLruCache_GetCoin(t *testing.T) {
	cfg, cleanup := newTestUtxoConfig(t)
	defer cleanup()

	InitUtxoLruTip(cfg)
	cache := GetUtxoCacheInstance()

	op := outpoint.NewOutPoint(util.HashOne, 1)
	c := cache.GetCoin(op)
	assert.Nil(t, c)
	assert.False(t, cache.HaveCoin(op))
}
