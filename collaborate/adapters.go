package collaborate

import (
	"errors"

	"github.com/copernet/copernicus/log"
	"github.com/copernet/copernicus/logic/lmempool"
	"github.com/copernet/copernicus/logic/lscript"
	"github.com/copernet/copernicus/model/mempool"
	"github.com/copernet/copernicus/model/script"
	"github.com/copernet/copernicus/model/tx"
	"github.com/copernet/copernicus/util"
	"github.com/copernet/copernicus/util/amount"
)

// scriptVerifierAdapter wraps logic/lscript.RealChecker, the one concrete
// signature/locktime/sequence checker this codebase implements. It does not
// cover the opcode-execution loop (OP_CHECKSIG's surrounding script
// interpreter) — no file under logic/lscript (teacher or coherent) defines
// one; logic/ltx/ltx.go already calls an lscript.VerifyScript/lscript.Checker
// that exists nowhere in the pack. That gap predates this pass and is out of
// scope for it; this adapter exposes exactly the primitives RealChecker
// actually implements.
type scriptVerifierAdapter struct {
	checker *lscript.RealChecker
}

// NewScriptVerifier builds the IScriptVerifier backed by RealChecker.
func NewScriptVerifier() IScriptVerifier {
	return &scriptVerifierAdapter{checker: lscript.NewScriptRealChecker()}
}

func (s *scriptVerifierAdapter) Verify(transaction *tx.Tx, scriptSig, scriptPubKey *script.Script, inputIndex int,
	value amount.Amount, flags uint32) error {
	return errors.New("collaborate: full script-interpreter verification is not implemented; " +
		"only signature/locktime/sequence primitives are available via CheckSig/CheckLockTime/CheckSequence")
}

// CheckSig delegates to RealChecker, for callers that only need the
// signature-check primitive rather than a full script interpretation.
func (s *scriptVerifierAdapter) CheckSig(transaction *tx.Tx, signature, pubKey []byte, scriptCode *script.Script,
	inputIndex int, value amount.Amount, flags uint32) (bool, error) {
	return s.checker.CheckSig(transaction, signature, pubKey, scriptCode, inputIndex, value, flags)
}

// mempoolAdapter implements IMempool against the real process-wide
// TxMempool and its logic/lmempool free-function helpers.
type mempoolAdapter struct {
	pool *mempool.TxMempool
}

// NewMempool builds the IMempool adapter over the process-wide mempool
// instance.
func NewMempool() IMempool {
	return &mempoolAdapter{pool: mempool.GetInstance()}
}

func (m *mempoolAdapter) AddUnchecked(entry *mempool.TxEntry, ancestors map[*mempool.TxEntry]struct{}) error {
	return m.pool.AddTx(entry, ancestors)
}

func (m *mempoolAdapter) RemoveForBlock(txs []*tx.Tx) {
	m.pool.RemoveTxSelf(txs)
}

func (m *mempoolAdapter) RemoveForReorg(bestChainHeight int32, flags int) {
	lmempool.RemoveForReorg(bestChainHeight, flags)
}

func (m *mempoolAdapter) RemoveRecursive(transaction *tx.Tx, reason mempool.MemPoolRemovalReason) {
	m.pool.RemoveTxRecursive(transaction, reason)
}

func (m *mempoolAdapter) TrimToSize(sizeLimit int64) {
	m.pool.TrimToSize(sizeLimit)
}

func (m *mempoolAdapter) Check(bestChainHeight int32) {
	lmempool.CheckMempool(m.pool, bestChainHeight)
}

func (m *mempoolAdapter) Clear() {
	m.pool.Clear()
}

func (m *mempoolAdapter) QueryHashes() []util.Hash {
	return m.pool.QueryHashes()
}

// systemClock implements Clock against util's process-wide (mockable in
// tests via util.SetMockTime) time source.
type systemClock struct{}

// NewSystemClock returns the Clock backed by util.GetTime/GetMicrosTime/
// GetAdjustedTime, the same functions the rest of the codebase calls
// directly; tests drive it via util.SetMockTime.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) NowSeconds() int64   { return util.GetTime() }
func (systemClock) NowMicros() int64    { return util.GetMicrosTime() }
func (systemClock) AdjustedTime() int64 { return util.GetAdjustedTime() }

// logUI implements IUI by writing to the structured logger; there is no
// graphical shell in this codebase, so the abort/progress path surfaces
// through the same log package every other subsystem uses.
type logUI struct{}

// NewLogUI returns the IUI adapter used until a real UI shell is wired in.
func NewLogUI() IUI {
	return logUI{}
}

func (logUI) ShowProgress(title string, percent int) {
	log.Info("progress: %s %d%%", title, percent)
}

func (logUI) NotifyBlockTip(initialDownload bool, hash util.Hash, height int32) {
	log.Info("new block tip: hash=%s height=%d initialDownload=%v", hash, height, initialDownload)
}

func (logUI) ThreadSafeMessageBox(message, caption string, style uint32) {
	log.Warn("%s: %s", caption, message)
}
