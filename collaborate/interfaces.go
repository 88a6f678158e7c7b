// Package collaborate defines the seams between the consensus core and the
// subsystems it depends on but does not own: script verification, the
// mempool's admission policy, peer transport, and the user-facing UI/abort
// path. The core talks to these only through the interfaces below, never
// through a concrete mempool/p2p/wallet type directly.
package collaborate

import (
	"github.com/copernet/copernicus/model/mempool"
	"github.com/copernet/copernicus/model/script"
	"github.com/copernet/copernicus/model/tx"
	"github.com/copernet/copernicus/util"
	"github.com/copernet/copernicus/util/amount"
)

// IScriptVerifier checks one input's scriptSig against its referenced
// scriptPubKey under the given verification flags.
type IScriptVerifier interface {
	Verify(transaction *tx.Tx, scriptSig, scriptPubKey *script.Script, inputIndex int,
		value amount.Amount, flags uint32) error
}

// IMempool is everything the chain activator and block pipeline need from
// the mempool without depending on its admission-policy internals.
type IMempool interface {
	AddUnchecked(entry *mempool.TxEntry, ancestors map[*mempool.TxEntry]struct{}) error
	RemoveForBlock(txs []*tx.Tx)
	RemoveForReorg(bestChainHeight int32, flags int)
	RemoveRecursive(transaction *tx.Tx, reason mempool.MemPoolRemovalReason)
	TrimToSize(sizeLimit int64)
	Check(bestChainHeight int32)
	Clear()
	QueryHashes() []util.Hash
}

// PeerID identifies a connected peer; the transport layer owning the real
// connection is outside this module's scope (§1 Non-goals).
type PeerID int64

// IPeerNet is the minimal push/iterate/disconnect surface the core needs to
// announce new tips, request blocks, and discipline misbehaving peers.
type IPeerNet interface {
	PushMessage(peer PeerID, msg interface{}) error
	ForEachPeer(f func(peer PeerID))
	Disconnect(peer PeerID)
	Misbehaving(peer PeerID, score int, reason string)
}

// IUI is the abort/progress surface: fatal errors and long operations need
// a user-visible channel that isn't a logger.
type IUI interface {
	ShowProgress(title string, percent int)
	NotifyBlockTip(initialDownload bool, hash util.Hash, height int32)
	ThreadSafeMessageBox(message, caption string, style uint32)
}

// Clock abstracts wall-clock reads so tests can drive time deterministically
// instead of depending on the real system clock.
type Clock interface {
	NowSeconds() int64
	NowMicros() int64
	AdjustedTime() int64
}
