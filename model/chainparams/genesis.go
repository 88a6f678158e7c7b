package chainparams

import (
	"github.com/copernet/copernicus/model/block"
	"github.com/copernet/copernicus/model/tx"
	"github.com/copernet/copernicus/util"
)

// newGenesisBlock assembles a single-coinbase block from the given header
// fields, sharing the well-known genesis coinbase transaction across all
// three networks (only the header differs between them).
func newGenesisBlock(version int32, timestamp, bits, nonce uint32) *block.Block {
	coinbase := tx.NewGenesisCoinbaseTx()
	b := block.NewBlock()
	b.Header = block.BlockHeader{
		Version:       version,
		HashPrevBlock: util.Hash{},
		MerkleRoot:    coinbase.GetHash(),
		Time:          timestamp,
		Bits:          bits,
		Nonce:         nonce,
	}
	b.Txs = []*tx.Tx{coinbase}
	return b
}

// GenesisBlock is the mainnet genesis: 2009-01-03 18:15:05 UTC, difficulty
// 1, nonce found by Satoshi's original miner.
var GenesisBlock = newGenesisBlock(1, 1231006505, 0x1d00ffff, 2083236893)
var GenesisBlockHash = GenesisBlock.Header.GetHash()

// TestNetGenesisBlock is testnet3's genesis: same difficulty, later
// timestamp, different nonce.
var TestNetGenesisBlock = newGenesisBlock(1, 1296688602, 0x1d00ffff, 414098458)
var TestNetGenesisHash = TestNetGenesisBlock.Header.GetHash()

// RegTestGenesisBlock uses the maximal proof-of-work target so tests can
// mine blocks instantly.
var RegTestGenesisBlock = newGenesisBlock(1, 1296688602, 0x207fffff, 2)
var RegTestGenesisHash = RegTestGenesisBlock.Header.GetHash()
