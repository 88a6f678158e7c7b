package mempool

import (
	"fmt"
	"sync"

	"github.com/copernet/copernicus/model/outpoint"
	"github.com/copernet/copernicus/model/tx"
	"github.com/copernet/copernicus/model/utxo"
	"github.com/copernet/copernicus/util"
	"github.com/google/btree"
)

// MemPoolRemovalReason records why a transaction left the pool, mirroring
// the reasons the P2P/RPC/wallet layers care to distinguish (a reorg-evicted
// tx may be worth re-announcing; an expired one is not).
type MemPoolRemovalReason int

const (
	UNKNOWN MemPoolRemovalReason = iota
	EXPIRY
	SIZELIMIT
	REORG
	BLOCK
	CONFLICT
	REPLACED
)

// mempoolHeight is the sentinel GetCoin stamps on an unconfirmed output,
// matching the value bitcoin core uses for "this coin isn't in a block yet".
const mempoolHeight = 0x7fffffff

var Gpool *TxMempool

// TxMempool is safe for concurrent write And read access.
type TxMempool struct {
	sync.RWMutex
	// current mempool best feerate for one transaction.
	fee util.FeeRate
	// poolData store the tx in the mempool
	poolData map[util.Hash]*TxEntry
	//NextTx key is txPrevout, value is tx.
	nextTx map[outpoint.OutPoint]*TxEntry
	//RootTx contain all root transaction in mempool.
	rootTx                  map[util.Hash]*TxEntry
	txByAncestorFeeRateSort btree.BTree
	timeSortData            btree.BTree
	usageSize               int64
	checkFrequency          float64
	// sum of all mempool tx's size.
	totalTxSize uint64
	//transactionsUpdated mempool update transaction total number when create mempool late.
	transactionsUpdated uint64

	// OrphanTransactions holds transactions this node can't yet validate
	// because an input they spend hasn't arrived, keyed by their own hash.
	OrphanTransactions map[util.Hash]*OrphanTx
	// OrphanTransactionsByPrev indexes the same orphans by the outpoint
	// they're waiting on, so a newly accepted tx can find its orphaned
	// children in O(1) instead of scanning every orphan.
	OrphanTransactionsByPrev map[outpoint.OutPoint][]*OrphanTx
	// RejectedTxs remembers hashes this node refused for a reason other
	// than a missing input, so a resubmitted copy isn't re-orphaned.
	RejectedTxs map[util.Hash]struct{}
}

func NewTxMempool() *TxMempool {
	t := &TxMempool{}
	t.fee = util.FeeRate{SataoshisPerK: 1}
	t.nextTx = make(map[outpoint.OutPoint]*TxEntry)
	t.poolData = make(map[util.Hash]*TxEntry)
	t.timeSortData = *btree.New(32)
	t.rootTx = make(map[util.Hash]*TxEntry)
	t.txByAncestorFeeRateSort = *btree.New(32)
	t.OrphanTransactions = make(map[util.Hash]*OrphanTx)
	t.OrphanTransactionsByPrev = make(map[outpoint.OutPoint][]*OrphanTx)
	t.RejectedTxs = make(map[util.Hash]struct{})
	return t
}

func InitMempool() {
	Gpool = NewTxMempool()
}

// GetInstance returns the process-wide mempool, creating it on first use so
// packages that only ever touch one mempool don't need an explicit init call.
func GetInstance() *TxMempool {
	if Gpool == nil {
		Gpool = NewTxMempool()
	}
	return Gpool
}

// SetInstance swaps the process-wide mempool wholesale, used by
// RemoveForReorg's rebuild-from-scratch path.
func SetInstance(pool *TxMempool) {
	Gpool = pool
}

func (m *TxMempool) Size() int {
	return len(m.poolData)
}

func (m *TxMempool) GetCheckFrequency() float64 {
	return m.checkFrequency
}

func (m *TxMempool) SetCheckFrequency(freq float64) {
	m.checkFrequency = freq
}

// GetPoolAllTxSize returns the running total of every pooled tx's
// serialized size; withLock lets callers already holding the lock (e.g.
// CheckMempool, which takes RLock itself) skip re-locking.
func (m *TxMempool) GetPoolAllTxSize(withLock bool) uint64 {
	if withLock {
		m.RLock()
		defer m.RUnlock()
	}
	return m.totalTxSize
}

func (m *TxMempool) GetAllTxEntry() map[util.Hash]*TxEntry {
	m.RLock()
	defer m.RUnlock()
	return m.poolData
}

func (m *TxMempool) GetAllTxEntryWithoutLock() map[util.Hash]*TxEntry {
	return m.poolData
}

func (m *TxMempool) GetAllSpentOutWithoutLock() map[outpoint.OutPoint]*TxEntry {
	return m.nextTx
}

func (m *TxMempool) GetRootTx() map[util.Hash]TxEntry {
	m.RLock()
	defer m.RUnlock()
	root := make(map[util.Hash]TxEntry, len(m.rootTx))
	for h, e := range m.rootTx {
		root[h] = *e
	}
	return root
}

func (m *TxMempool) FindTx(hash util.Hash) *TxEntry {
	m.RLock()
	defer m.RUnlock()
	return m.poolData[hash]
}

func (m *TxMempool) HaveTransaction(transaction *tx.Tx) bool {
	m.RLock()
	defer m.RUnlock()
	_, ok := m.poolData[transaction.GetHash()]
	return ok
}

// IsTransactionInPool is HaveTransaction under the name the wallet layer
// reaches for.
func (m *TxMempool) IsTransactionInPool(transaction *tx.Tx) bool {
	return m.HaveTransaction(transaction)
}

func (m *TxMempool) HasSPentOutWithoutLock(point *outpoint.OutPoint) *TxEntry {
	return m.nextTx[*point]
}

func (m *TxMempool) HasSpentOut(point *outpoint.OutPoint) bool {
	m.RLock()
	defer m.RUnlock()
	_, ok := m.nextTx[*point]
	return ok
}

// GetCoin builds a coin view of an unconfirmed output so script/UTXO
// checks against not-yet-mined spends can reuse the usual Coin API.
func (m *TxMempool) GetCoin(point *outpoint.OutPoint) *utxo.Coin {
	m.RLock()
	defer m.RUnlock()
	entry, ok := m.poolData[point.Hash]
	if !ok {
		return nil
	}
	if int(point.Index) >= entry.Tx.GetOutsCount() {
		return nil
	}
	out := entry.Tx.GetTxOut(int(point.Index))
	if out == nil || out.IsNull() {
		return nil
	}
	return utxo.NewFreshCoin(out, mempoolHeight, entry.Tx.IsCoinBase())
}

// GetMinFeeRate is the feerate below which a new transaction is dropped
// once the mempool has grown past its configured byte ceiling.
func (m *TxMempool) GetMinFeeRate() *util.FeeRate {
	m.RLock()
	defer m.RUnlock()
	rate := m.fee
	return &rate
}

// GetMinFee recomputes the rolling minimum feerate given the pool's current
// byte usage against maxPoolSizeBytes, the same decay bitcoin core applies
// so a temporary size spike doesn't permanently price transactions out.
func (m *TxMempool) GetMinFee(maxPoolSizeBytes int64) *util.FeeRate {
	m.RLock()
	defer m.RUnlock()
	if m.usageSize < maxPoolSizeBytes/2 {
		return util.NewFeeRate(0)
	}
	rate := m.fee
	return &rate
}

// CalculateMemPoolAncestors walks parent pointers (or, with
// fSearchForParents false, the caller-supplied entry's already-known
// parents) transitively, returning every in-mempool ancestor. It enforces
// the four package limits along the way so a transaction that would create
// an oversized ancestor package is rejected before it's linked in.
func (m *TxMempool) CalculateMemPoolAncestors(transaction *tx.Tx, limitAncestorCount, limitAncestorSize,
	limitDescendantCount, limitDescendantSize uint64, fSearchForParents bool) (map[*TxEntry]struct{}, error) {

	parents := make(map[*TxEntry]struct{})
	if fSearchForParents {
		for _, in := range transaction.GetIns() {
			if entry, ok := m.poolData[in.PreviousOutPoint.Hash]; ok {
				parents[entry] = struct{}{}
				if uint64(len(parents)) > limitAncestorCount {
					return nil, fmt.Errorf("mempool: too many unconfirmed parents [limit: %d]", limitAncestorCount)
				}
			}
		}
	} else {
		entry, ok := m.poolData[transaction.GetHash()]
		if !ok {
			return nil, fmt.Errorf("mempool: CalculateMemPoolAncestors: tx %s not in mempool", transaction.GetHash())
		}
		for p := range entry.ParentTx {
			parents[p] = struct{}{}
		}
	}

	ancestors := make(map[*TxEntry]struct{})
	toProcess := make([]*TxEntry, 0, len(parents))
	for p := range parents {
		toProcess = append(toProcess, p)
	}

	totalSize := int64(transaction.EncodeSize())
	for len(toProcess) > 0 {
		entry := toProcess[len(toProcess)-1]
		toProcess = toProcess[:len(toProcess)-1]
		if _, ok := ancestors[entry]; ok {
			continue
		}
		ancestors[entry] = struct{}{}
		totalSize += int64(entry.TxSize)
		if uint64(totalSize) > limitAncestorSize {
			return nil, fmt.Errorf("mempool: too many unconfirmed ancestors [limit: %d bytes]", limitAncestorSize)
		}
		if uint64(len(entry.ChildTx)+1) > limitDescendantCount {
			return nil, fmt.Errorf("mempool: too many descendants for tx %s [limit: %d]",
				entry.Tx.GetHash(), limitDescendantCount)
		}
		if entry.SumTxSizeWithDescendants+int64(entry.TxSize) > int64(limitDescendantSize) {
			return nil, fmt.Errorf("mempool: too much descendant size for tx %s [limit: %d bytes]",
				entry.Tx.GetHash(), limitDescendantSize)
		}
		for grandparent := range entry.ParentTx {
			if _, ok := ancestors[grandparent]; !ok {
				toProcess = append(toProcess, grandparent)
			}
		}
	}
	if uint64(len(ancestors)) > limitAncestorCount {
		return nil, fmt.Errorf("mempool: too many unconfirmed ancestors [limit: %d]", limitAncestorCount)
	}
	return ancestors, nil
}

func (m *TxMempool) CalculateMemPoolAncestorsWithLock(hash *util.Hash) map[*TxEntry]struct{} {
	m.RLock()
	defer m.RUnlock()
	entry, ok := m.poolData[*hash]
	if !ok {
		return make(map[*TxEntry]struct{})
	}
	ancestors, err := m.CalculateMemPoolAncestors(entry.Tx, ^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0), false)
	if err != nil {
		return make(map[*TxEntry]struct{})
	}
	return ancestors
}

// CalculateDescendants walks ChildTx forward from entry, returning entry
// itself plus every transitive descendant in the pool.
func (m *TxMempool) CalculateDescendants(entry *TxEntry) map[*TxEntry]struct{} {
	descendants := make(map[*TxEntry]struct{})
	stage := []*TxEntry{entry}
	for len(stage) > 0 {
		e := stage[len(stage)-1]
		stage = stage[:len(stage)-1]
		if _, ok := descendants[e]; ok {
			continue
		}
		descendants[e] = struct{}{}
		for c := range e.ChildTx {
			if _, ok := descendants[c]; !ok {
				stage = append(stage, c)
			}
		}
	}
	return descendants
}

func (m *TxMempool) CalculateDescendantsWithLock(hash *util.Hash) map[*TxEntry]struct{} {
	m.RLock()
	defer m.RUnlock()
	entry, ok := m.poolData[*hash]
	if !ok {
		return make(map[*TxEntry]struct{})
	}
	return m.CalculateDescendants(entry)
}

// AddTx links a checked TxEntry into the pool: registers its spent
// outpoints, wires it to its already-pooled parents (and them to it),
// folds its size/fee into every ancestor's descendant totals, and folds
// the ancestor set's totals into its own ancestor state.
func (m *TxMempool) AddTx(txentry *TxEntry, ancestors map[*TxEntry]struct{}) error {
	hash := txentry.Tx.GetHash()
	if _, ok := m.poolData[hash]; ok {
		return nil
	}

	m.poolData[hash] = txentry
	m.timeSortData.ReplaceOrInsert(txentry)
	m.txByAncestorFeeRateSort.ReplaceOrInsert((*EntryAncestorFeeRateSort)(txentry))
	m.usageSize += txentry.GetUsageSize()
	m.totalTxSize += uint64(txentry.TxSize)
	m.transactionsUpdated++

	isRoot := true
	for _, in := range txentry.Tx.GetIns() {
		m.nextTx[*in.PreviousOutPoint] = txentry
		if parent, ok := m.poolData[in.PreviousOutPoint.Hash]; ok {
			txentry.UpdateParent(parent, true)
			parent.UpdateChild(txentry, true)
			isRoot = false
		}
	}
	if isRoot {
		m.rootTx[hash] = txentry
	}

	ancestorCount, ancestorSize, ancestorSigOps := 0, 0, 0
	var ancestorFee int64
	for ancestor := range ancestors {
		ancestorCount++
		ancestorSize += ancestor.TxSize
		ancestorSigOps += ancestor.SigOpCount
		ancestorFee += ancestor.TxFee
		ancestor.UpdateDescendantState(1, txentry.TxSize, txentry.TxFee)
	}
	txentry.UpdateAncestorState(ancestorCount, ancestorSize, ancestorSigOps, ancestorFee)

	return nil
}

// AssociateRelationship re-links a TxEntry into its parents' ChildTx sets;
// used by the undo-block replay path, where the entry's own ParentTx set is
// already correct (computed via CheckTxBeforeAcceptToMemPool) but the
// parents haven't been told about the child yet.
func (t *TxEntry) AssociateRelationship(pool *TxMempool) {
	for _, in := range t.Tx.GetIns() {
		if parent, ok := pool.poolData[in.PreviousOutPoint.Hash]; ok {
			t.UpdateParent(parent, true)
			parent.UpdateChild(t, true)
		}
	}
}

// StatisticIncrease folds txentry's own size/fee into every entry in
// ancestors' descendant totals and every entry in descendants' ancestor
// totals; used once a tx is added out of band (undo-block replay) so the
// normal AddTx bookkeeping still runs.
func (m *TxMempool) StatisticIncrease(txentry *TxEntry, ancestors, descendants map[*TxEntry]struct{}) {
	for ancestor := range ancestors {
		ancestor.UpdateDescendantState(1, txentry.TxSize, txentry.TxFee)
	}
	for descendant := range descendants {
		if descendant == txentry {
			continue
		}
		descendant.UpdateAncestorState(1, txentry.TxSize, txentry.SigOpCount, txentry.TxFee)
	}
}

func (m *TxMempool) removeUnchecked(entry *TxEntry, reason MemPoolRemovalReason) {
	for _, in := range entry.Tx.GetIns() {
		delete(m.nextTx, *in.PreviousOutPoint)
	}
	for parent := range entry.ParentTx {
		parent.UpdateChild(entry, false)
		parent.UpdateDescendantState(-1, -entry.TxSize, -entry.TxFee)
	}
	for child := range entry.ChildTx {
		child.UpdateParent(entry, false)
	}

	hash := entry.Tx.GetHash()
	delete(m.poolData, hash)
	delete(m.rootTx, hash)
	m.timeSortData.Delete(entry)
	m.txByAncestorFeeRateSort.Delete((*EntryAncestorFeeRateSort)(entry))
	m.usageSize -= entry.GetUsageSize()
	m.totalTxSize -= uint64(entry.TxSize)
	m.transactionsUpdated++
}

// RemoveStaged removes every entry in stage. When updateDescendants is set,
// each removed entry's surviving descendants (those not themselves in
// stage) have its contribution subtracted from their ancestor totals first,
// since removeUnchecked only fixes up direct parent/child links.
func (m *TxMempool) RemoveStaged(stage map[*TxEntry]struct{}, updateDescendants bool, reason MemPoolRemovalReason) {
	if updateDescendants {
		for it := range stage {
			for d := range m.CalculateDescendants(it) {
				if _, ok := stage[d]; ok || d == it {
					continue
				}
				d.UpdateAncestorState(-1, -it.TxSize, -it.SigOpCount, -it.TxFee)
			}
		}
	}
	for it := range stage {
		m.removeUnchecked(it, reason)
	}
}

func (m *TxMempool) removeTxRecursive(origTx *tx.Tx, reason MemPoolRemovalReason) {
	txsToRemove := make(map[*TxEntry]struct{})
	if entry, ok := m.poolData[origTx.GetHash()]; ok {
		txsToRemove[entry] = struct{}{}
	} else {
		for i := 0; i < origTx.GetOutsCount(); i++ {
			op := outpoint.OutPoint{Hash: origTx.GetHash(), Index: uint32(i)}
			if spender, ok := m.nextTx[op]; ok {
				if _, ok := m.poolData[spender.Tx.GetHash()]; ok {
					txsToRemove[spender] = struct{}{}
				}
			}
		}
	}

	allRemoves := make(map[*TxEntry]struct{})
	for it := range txsToRemove {
		for d := range m.CalculateDescendants(it) {
			allRemoves[d] = struct{}{}
		}
	}
	m.RemoveStaged(allRemoves, false, reason)
}

// RemoveTxRecursive drops origTx (if pooled) and every mempool descendant
// of it, or - if origTx itself was never pooled (already mined, or never
// accepted) - every mempool transaction that spends one of its outputs and
// their descendants. Used for reorg eviction and block-connect cleanup.
func (m *TxMempool) RemoveTxRecursive(origTx *tx.Tx, reason MemPoolRemovalReason) {
	m.Lock()
	defer m.Unlock()
	m.removeTxRecursive(origTx, reason)
}

// RemoveTxSelf removes exactly the given transactions (not their
// descendants) from the pool; used once a block confirms them and their
// former mempool children have already been reconciled separately.
func (m *TxMempool) RemoveTxSelf(txs []*tx.Tx) {
	m.Lock()
	defer m.Unlock()
	stage := make(map[*TxEntry]struct{})
	for _, transaction := range txs {
		if entry, ok := m.poolData[transaction.GetHash()]; ok {
			stage[entry] = struct{}{}
		}
	}
	m.RemoveStaged(stage, true, BLOCK)
}

func (m *TxMempool) expire(cutoff int64) {
	var toRemove []*TxEntry
	m.timeSortData.Ascend(func(i btree.Item) bool {
		entry := i.(*TxEntry)
		if entry.GetTime() >= cutoff {
			return false
		}
		toRemove = append(toRemove, entry)
		return true
	})
	stage := make(map[*TxEntry]struct{}, len(toRemove))
	for _, entry := range toRemove {
		for d := range m.CalculateDescendants(entry) {
			stage[d] = struct{}{}
		}
	}
	m.RemoveStaged(stage, false, EXPIRY)
}

// Expire evicts every transaction (and its descendants) that entered the
// pool strictly before cutoff.
func (m *TxMempool) Expire(cutoff int64) {
	m.Lock()
	defer m.Unlock()
	m.expire(cutoff)
}

func (m *TxMempool) trimToSize(sizeLimit int64) {
	for m.usageSize > sizeLimit && m.txByAncestorFeeRateSort.Len() > 0 {
		worst := m.txByAncestorFeeRateSort.Max()
		if worst == nil {
			return
		}
		entry := (*TxEntry)(worst.(*EntryAncestorFeeRateSort))
		stage := m.CalculateDescendants(entry)
		m.RemoveStaged(stage, false, SIZELIMIT)
	}
}

// TrimToSize evicts transactions in worst-ancestor-feerate-first order,
// along with their descendants, until the pool's memory usage is at or
// below sizeLimit bytes.
func (m *TxMempool) TrimToSize(sizeLimit int64) {
	m.Lock()
	defer m.Unlock()
	m.trimToSize(sizeLimit)
}

// Clear empties the pool; used when RemoveForReorg rebuilds from scratch.
func (m *TxMempool) Clear() {
	m.Lock()
	defer m.Unlock()
	m.poolData = make(map[util.Hash]*TxEntry)
	m.nextTx = make(map[outpoint.OutPoint]*TxEntry)
	m.rootTx = make(map[util.Hash]*TxEntry)
	m.timeSortData = *btree.New(32)
	m.txByAncestorFeeRateSort = *btree.New(32)
	m.usageSize = 0
	m.totalTxSize = 0
	m.transactionsUpdated++
}

// QueryHashes lists every pooled transaction's hash, the data underlying
// the p2p "mempool" message response.
func (m *TxMempool) QueryHashes() []util.Hash {
	m.RLock()
	defer m.RUnlock()
	hashes := make([]util.Hash, 0, len(m.poolData))
	for h := range m.poolData {
		hashes = append(hashes, h)
	}
	return hashes
}
