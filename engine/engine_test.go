package engine

import (
	"fmt"
	"io/ioutil"
	"os"
	"testing"

	"github.com/copernet/copernicus/conf"
)

func newTestEngine(t *testing.T) (*ConsensusEngine, func()) {
	dataDir, err := ioutil.TempDir("/tmp", "engine-test")
	if err != nil {
		t.Fatalf("generate temp data dir failed: %s", err)
	}

	cfg := conf.NewDefaultConfiguration()
	cfg.NetworkName = "regtest"
	cfg.DataDir = dataDir

	e, err := New(cfg)
	if err != nil {
		os.RemoveAll(dataDir)
		t.Fatalf("engine.New failed: %v", err)
	}
	return e, func() { os.RemoveAll(dataDir) }
}

func TestNew_InitializesSubsystems(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()

	if e.Chain == nil || e.UtxoCache == nil || e.BlockTreeDB == nil || e.Persist == nil || e.Mempool == nil {
		t.Fatalf("expected engine.New to populate every subsystem field, got %+v", e)
	}
	if e.Download == nil {
		t.Errorf("expected a download coordinator")
	}
	if e.ScriptVerifier == nil || e.MempoolAdapter == nil || e.Clock == nil || e.UI == nil {
		t.Errorf("expected collaborator adapters to be wired")
	}
	if fmt.Sprint(e.Params) == "" {
		t.Errorf("expected network params to resolve")
	}
}

func TestInitGenesis_SetsTip(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()

	if err := e.InitGenesis(); err != nil {
		t.Fatalf("InitGenesis failed: %v", err)
	}
	tip := e.Tip()
	if tip == nil {
		t.Fatalf("expected a tip after InitGenesis")
	}
	if tip.Height != 0 {
		t.Errorf("expected genesis tip at height 0, got %d", tip.Height)
	}
}

func TestAcceptHeader_OnGenesisIsIdempotent(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()

	if err := e.InitGenesis(); err != nil {
		t.Fatalf("InitGenesis failed: %v", err)
	}
	genesis := e.Tip()

	bi, err := e.AcceptHeader(&genesis.Header)
	if err != nil {
		t.Fatalf("AcceptHeader on the known genesis header should succeed, got %v", err)
	}
	if bi != genesis {
		t.Errorf("expected AcceptHeader to return the existing genesis index")
	}
}
