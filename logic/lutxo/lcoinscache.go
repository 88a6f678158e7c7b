package lutxo

import (
	"github.com/copernet/copernicus/model/outpoint"
	"github.com/copernet/copernicus/model/utxo"
	"github.com/copernet/copernicus/util"
)

// maxOutputsPerTx bounds the linear scan AccessByTxid performs; no
// standard transaction comes close to this many outputs, but a hostile one
// could pad an OP_RETURN-only tx to try to force an unbounded scan.
const maxOutputsPerTx = 11000

// AccessByTxid finds the first still-unspent output of the transaction
// identified by hash, used by RPC/wallet lookups that only have a txid and
// not a full outpoint. Returns an empty coin if every output is spent (or
// the transaction is unknown).
func AccessByTxid(view utxo.CacheView, hash *util.Hash) *utxo.Coin {
	point := outpoint.OutPoint{Hash: *hash, Index: 0}
	for point.Index < maxOutputsPerTx {
		coin := view.GetCoin(&point)
		if coin != nil && !coin.IsSpent() {
			return coin
		}
		point.Index++
	}
	return utxo.NewEmptyCoin()
}
