package mempool

import (
	"github.com/copernet/copernicus/model/outpoint"
	"github.com/copernet/copernicus/model/tx"
	"github.com/copernet/copernicus/util"
)

// orphanExpireInterval is how long an orphan is kept around waiting for its
// missing parent before CleanOrphan sweeps it out.
const orphanExpireInterval = 20 * 60

// OrphanTx is a transaction this node received but couldn't validate yet
// because it spends an output that hasn't arrived in the mempool or a block.
type OrphanTx struct {
	Tx         *tx.Tx
	NodeID     int64
	EntryTime  int64
	PrevOuts   []outpoint.OutPoint
}

// AddOrphanTx records txn as waiting on whichever of its inputs aren't yet
// spendable, indexing it by every one of those outpoints so a later arrival
// can find it.
func (m *TxMempool) AddOrphanTx(txn *tx.Tx, nodeID int64) {
	m.Lock()
	defer m.Unlock()

	hash := txn.GetHash()
	if _, ok := m.OrphanTransactions[hash]; ok {
		return
	}

	prevOuts := make([]outpoint.OutPoint, 0, txn.GetInsCount())
	for _, in := range txn.GetIns() {
		prevOuts = append(prevOuts, *in.PreviousOutPoint)
	}

	orphan := &OrphanTx{
		Tx:        txn,
		NodeID:    nodeID,
		EntryTime: util.GetTime(),
		PrevOuts:  prevOuts,
	}
	m.OrphanTransactions[hash] = orphan
	for _, prevOut := range prevOuts {
		m.OrphanTransactionsByPrev[prevOut] = append(m.OrphanTransactionsByPrev[prevOut], orphan)
	}
}

// EraseOrphanTx drops the orphan identified by hash. removeRedeemers also
// recursively erases every orphan that spends one of its outputs, since
// those can never be validated either once this one is discarded.
func (m *TxMempool) EraseOrphanTx(hash util.Hash, removeRedeemers bool) {
	m.Lock()
	defer m.Unlock()
	m.eraseOrphanTx(hash, removeRedeemers)
}

func (m *TxMempool) eraseOrphanTx(hash util.Hash, removeRedeemers bool) {
	orphan, ok := m.OrphanTransactions[hash]
	if !ok {
		return
	}

	for _, prevOut := range orphan.PrevOuts {
		siblings := m.OrphanTransactionsByPrev[prevOut]
		for i, o := range siblings {
			if o.Tx.GetHash().IsEqual(&hash) {
				siblings = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
		if len(siblings) == 0 {
			delete(m.OrphanTransactionsByPrev, prevOut)
		} else {
			m.OrphanTransactionsByPrev[prevOut] = siblings
		}
	}
	delete(m.OrphanTransactions, hash)

	if !removeRedeemers {
		return
	}
	for i := 0; i < orphan.Tx.GetOutsCount(); i++ {
		out := outpoint.OutPoint{Hash: hash, Index: uint32(i)}
		for _, child := range m.OrphanTransactionsByPrev[out] {
			childHash := child.Tx.GetHash()
			m.eraseOrphanTx(childHash, true)
		}
	}
}

// CleanOrphan drops every orphan that has been waiting longer than
// orphanExpireInterval seconds for its missing parent to show up.
func (m *TxMempool) CleanOrphan() {
	m.Lock()
	defer m.Unlock()

	cutoff := util.GetTime() - orphanExpireInterval
	var expired []util.Hash
	for hash, orphan := range m.OrphanTransactions {
		if orphan.EntryTime < cutoff {
			expired = append(expired, hash)
		}
	}
	for _, hash := range expired {
		m.eraseOrphanTx(hash, false)
	}
}
