// Package download tracks per-peer header/block sync progress and decides
// which blocks to request next. It owns no network connection itself — it
// hands back block hashes to request and peer IDs to discipline, leaving the
// actual push/disconnect to collaborate.IPeerNet.
package download

import (
	"sync"

	"github.com/copernet/copernicus/collaborate"
	"github.com/copernet/copernicus/model/blockindex"
	"github.com/copernet/copernicus/model/chainparams"
	"github.com/copernet/copernicus/util"
)

const (
	// blockDownloadWindow bounds how far ahead of our last common ancestor
	// with a peer we'll walk looking for blocks to request.
	blockDownloadWindow = 1024
	// findNextBlocksBatch caps how many ancestors are walked per call to
	// FindNextBlocksToDownload before giving up on the current window.
	findNextBlocksBatch = 128
	// maxBlocksInTransitPerPeer caps outstanding requests to a single peer.
	maxBlocksInTransitPerPeer = 16
	// blockStallingTimeoutSeconds is how long a peer's stalling_since can
	// age before it gets disconnected.
	blockStallingTimeoutSeconds = 2
)

// QueuedBlock is one block we've asked a peer for and are waiting on.
type QueuedBlock struct {
	Hash      util.Hash
	Index     *blockindex.BlockIndex
	TimeoutAt int64 // microseconds, util.GetMicrosTime clock
}

// PeerState is the per-peer bookkeeping the coordinator needs to decide what
// to request from that peer next and whether it's stalling.
type PeerState struct {
	PeerID             collaborate.PeerID
	BestKnownBlock     *blockindex.BlockIndex
	LastCommonBlock    *blockindex.BlockIndex
	BlocksInFlight     []*QueuedBlock
	StallingSince      int64
	SyncStarted        bool
	PreferredDownload  bool
}

func newPeerState(id collaborate.PeerID) *PeerState {
	return &PeerState{PeerID: id}
}

func (p *PeerState) inFlightCount() int {
	return len(p.BlocksInFlight)
}

func (p *PeerState) isInFlight(hash util.Hash) bool {
	for _, qb := range p.BlocksInFlight {
		if qb.Hash.IsEqual(&hash) {
			return true
		}
	}
	return false
}

// Coordinator is the global download state: one entry per connected peer
// plus the cross-peer in-flight index used to avoid double-requesting a
// block from two peers at once.
type Coordinator struct {
	lock sync.Mutex

	peers          map[collaborate.PeerID]*PeerState
	inFlightByHash map[util.Hash]collaborate.PeerID

	queuedValidatedHeaders int32
	preferredDownloadCount int32
}

// NewCoordinator builds an empty download coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		peers:          make(map[collaborate.PeerID]*PeerState),
		inFlightByHash: make(map[util.Hash]collaborate.PeerID),
	}
}

// AddPeer registers a newly connected peer.
func (c *Coordinator) AddPeer(id collaborate.PeerID, preferredDownload bool) *PeerState {
	c.lock.Lock()
	defer c.lock.Unlock()
	ps := newPeerState(id)
	ps.PreferredDownload = preferredDownload
	c.peers[id] = ps
	if preferredDownload {
		c.preferredDownloadCount++
	}
	return ps
}

// RemovePeer drops a disconnected peer and frees its in-flight slots.
func (c *Coordinator) RemovePeer(id collaborate.PeerID) {
	c.lock.Lock()
	defer c.lock.Unlock()
	ps, ok := c.peers[id]
	if !ok {
		return
	}
	for _, qb := range ps.BlocksInFlight {
		delete(c.inFlightByHash, qb.Hash)
	}
	if ps.PreferredDownload {
		c.preferredDownloadCount--
	}
	delete(c.peers, id)
}

// UpdateBestKnownBlock records a peer's claimed tip, learned from a headers
// message or inv announcement.
func (c *Coordinator) UpdateBestKnownBlock(id collaborate.PeerID, best *blockindex.BlockIndex) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if ps, ok := c.peers[id]; ok {
		ps.BestKnownBlock = best
	}
}

// lastCommonAncestor walks both indexes back to the same height, then
// back together, stopping at the first shared BlockIndex pointer. Mirrors
// the arena-pointer equality check the rest of the codebase uses for index
// comparisons (blockindex.BlockIndex values are never copied once arena-
// resident, so pointer identity means "same block").
func lastCommonAncestor(a, b *blockindex.BlockIndex) *blockindex.BlockIndex {
	if a == nil || b == nil {
		return nil
	}
	if a.Height > b.Height {
		a = a.GetAncestor(b.Height)
	} else if b.Height > a.Height {
		b = b.GetAncestor(a.Height)
	}
	for a != b && a != nil && b != nil {
		a = a.Prev
		b = b.Prev
	}
	if a == b {
		return a
	}
	return nil
}

// FindNextBlocksToDownload implements the spec's window-based next-block
// selection: refresh the last common ancestor, bail out if the peer has no
// more work than our tip, then walk forward in batches looking for blocks
// that aren't already downloaded or in flight. If nothing could be found
// because the window's leading edge is blocked on a block already in flight
// from another peer, that peer is returned as a "staller" so the caller can
// nudge it.
func (c *Coordinator) FindNextBlocksToDownload(id collaborate.PeerID, count int, ourTip *blockindex.BlockIndex) (
	toDownload []*blockindex.BlockIndex, stallers []collaborate.PeerID) {
	c.lock.Lock()
	defer c.lock.Unlock()

	ps, ok := c.peers[id]
	if !ok || ps.BestKnownBlock == nil || count <= 0 {
		return nil, nil
	}

	if ps.LastCommonBlock == nil {
		ps.LastCommonBlock = ourTip
	}
	ps.LastCommonBlock = lastCommonAncestor(ps.LastCommonBlock, ps.BestKnownBlock)
	if ps.LastCommonBlock == nil {
		ps.LastCommonBlock = ourTip
	}

	if ourTip != nil && ps.BestKnownBlock.ChainWork.Cmp(&ourTip.ChainWork) <= 0 {
		return nil, nil
	}

	windowEnd := ps.LastCommonBlock.Height + blockDownloadWindow
	if windowEnd > ps.BestKnownBlock.Height {
		windowEnd = ps.BestKnownBlock.Height
	}

	walkStart := ps.LastCommonBlock.Height + 1
	walkEnd := walkStart + findNextBlocksBatch
	if walkEnd > windowEnd+1 {
		walkEnd = windowEnd + 1
	}

	var vToFetch []*blockindex.BlockIndex
	for h := walkStart; h < walkEnd; h++ {
		bi := ps.BestKnownBlock.GetAncestor(h)
		if bi == nil {
			break
		}
		vToFetch = append(vToFetch, bi)
	}

	runContiguous := true
	for _, bi := range vToFetch {
		if len(toDownload) >= count {
			break
		}
		if bi.HaveData() {
			if runContiguous {
				ps.LastCommonBlock = bi
			}
			continue
		}
		runContiguous = false

		hash := *bi.GetBlockHash()
		if _, inFlight := c.inFlightByHash[hash]; inFlight {
			continue
		}
		if ps.inFlightCount()+len(toDownload) >= maxBlocksInTransitPerPeer {
			break
		}
		toDownload = append(toDownload, bi)
	}

	if len(toDownload) == 0 && len(vToFetch) > 0 && windowEnd > ps.LastCommonBlock.Height {
		blockerHash := *vToFetch[0].GetBlockHash()
		if owner, inFlight := c.inFlightByHash[blockerHash]; inFlight && owner != id {
			stallers = append(stallers, owner)
		}
	}

	return toDownload, stallers
}

// MarkBlockAsInFlight records a request sent to a peer and assigns its
// timeout: now + 500_000 * target_spacing * (4 + queued_validated_headers)
// microseconds, per the spec's download-timeout formula.
func (c *Coordinator) MarkBlockAsInFlight(id collaborate.PeerID, bi *blockindex.BlockIndex) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	ps, ok := c.peers[id]
	if !ok {
		return false
	}
	hash := *bi.GetBlockHash()
	if _, exists := c.inFlightByHash[hash]; exists {
		return false
	}

	targetSpacing := int64(chainparams.ActiveNetParams.TargetTimePerBlock)
	timeout := util.GetMicrosTime() + 500000*targetSpacing*(4+int64(c.queuedValidatedHeaders))

	qb := &QueuedBlock{Hash: hash, Index: bi, TimeoutAt: timeout}
	ps.BlocksInFlight = append(ps.BlocksInFlight, qb)
	c.inFlightByHash[hash] = id
	return true
}

// MarkBlockAsReceived clears a block's in-flight bookkeeping once the block
// (or a NOTFOUND for it) has arrived.
func (c *Coordinator) MarkBlockAsReceived(id collaborate.PeerID, hash util.Hash) {
	c.lock.Lock()
	defer c.lock.Unlock()

	ps, ok := c.peers[id]
	if !ok {
		return
	}
	for i, qb := range ps.BlocksInFlight {
		if qb.Hash.IsEqual(&hash) {
			ps.BlocksInFlight = append(ps.BlocksInFlight[:i], ps.BlocksInFlight[i+1:]...)
			break
		}
	}
	delete(c.inFlightByHash, hash)
}

// SetStallingSince records or clears the time a peer's front in-flight
// request started stalling; pass 0 to clear it once progress resumes.
func (c *Coordinator) SetStallingSince(id collaborate.PeerID, since int64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if ps, ok := c.peers[id]; ok {
		ps.StallingSince = since
	}
}

// SweepStalledPeers disconnects every peer whose stalling_since has aged
// past blockStallingTimeoutSeconds, and re-tightens the front in-flight
// block's timeout for everyone else. Intended to run on every scheduling
// tick, mirroring the spec's per-tick timeout refresh.
func (c *Coordinator) SweepStalledPeers(net collaborate.IPeerNet, clock collaborate.Clock) {
	c.lock.Lock()
	now := clock.NowSeconds()
	var toDisconnect []collaborate.PeerID
	for id, ps := range c.peers {
		if ps.StallingSince != 0 && now-ps.StallingSince > blockStallingTimeoutSeconds {
			toDisconnect = append(toDisconnect, id)
			continue
		}
		if len(ps.BlocksInFlight) > 0 {
			targetSpacing := int64(chainparams.ActiveNetParams.TargetTimePerBlock)
			ps.BlocksInFlight[0].TimeoutAt = clock.NowMicros() +
				500000*targetSpacing*(4+int64(c.queuedValidatedHeaders))
		}
	}
	c.lock.Unlock()

	for _, id := range toDisconnect {
		net.Misbehaving(id, 0, "block download stalling timeout")
		net.Disconnect(id)
		c.RemovePeer(id)
	}
}

// SetQueuedValidatedHeaders updates the global counter used in the in-flight
// timeout formula; the header pipeline increments/decrements it as headers
// move through validation.
func (c *Coordinator) SetQueuedValidatedHeaders(n int32) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.queuedValidatedHeaders = n
}

// PreferredDownloadCount reports how many connected peers are eligible
// download sources (full nodes, not pruned/limited).
func (c *Coordinator) PreferredDownloadCount() int32 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.preferredDownloadCount
}
