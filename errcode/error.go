package errcode

import (
	"fmt"
)

const (
	MempoolErrorBase = iota * 1000
	ScriptErrorBase
	TxErrorBase
	TxOutErrorBase
	ChainErrorBase
	BlockErrorBase
	BlockIndexErrorBase
	CoinErrorBase
	MessageErrorBase
	NetErrorBase
	PeerErrorBase
	ServiceErrorBase
	PersistErrorBase
	CryptoErrorBase
	ConsensusErrorBase
	DiskErrorBase
)

// ProjectError is the module-scoped error taxonomy used everywhere in the
// engine instead of ad hoc string errors, so callers can dispatch on a
// numeric code without parsing messages.
type ProjectError struct {
	Module string
	Code   int
	Desc   string
}

func (e ProjectError) Error() string {
	return fmt.Sprintf("module: %s, global errcode: %v,  desc: %s", e.Module, e.Code, e.Desc)
}

func getCodeAndName(errCode fmt.Stringer) (int, string) {
	switch t := errCode.(type) {
	case MemPoolErr:
		return int(t), "mempool"
	case ChainErr:
		return int(t), "chain"
	case DiskErr:
		return int(t), "disk"
	case ScriptErr:
		return int(t), "script"
	case TxErr:
		return int(t), "transaction"
	case TxOutErr:
		return int(t), "transaction"
	case RejectCode:
		return int(t), "reject"
	default:
		return 0, ""
	}
}

// IsErrorCode reports whether err is a ProjectError carrying errCode.
func IsErrorCode(err error, errCode fmt.Stringer) bool {
	e, ok := err.(ProjectError)
	icode, _ := getCodeAndName(errCode)
	return ok && icode == e.Code
}

// New wraps errCode into a ProjectError, using errCode's own String() as the
// description.
func New(errCode fmt.Stringer) error {
	code, name := getCodeAndName(errCode)
	return ProjectError{Module: name, Code: code, Desc: errCode.String()}
}

// NewError wraps errCode into a ProjectError with an explicit description,
// used by validation call sites that want to attach the specific rule that
// failed (e.g. "bad-txns-vout-toolarge") rather than the code's generic name.
func NewError(errCode fmt.Stringer, desc string) error {
	code, name := getCodeAndName(errCode)
	if desc == "" {
		desc = errCode.String()
	}
	return ProjectError{Module: name, Code: code, Desc: desc}
}

// HasRejectCode reports whether err carries a BIP61 RejectCode, returning it
// if so. Used by the header/block pipelines to translate a ProjectError into
// the wire reject message sent back to a misbehaving peer.
func HasRejectCode(err error) (RejectCode, bool) {
	e, ok := err.(ProjectError)
	if !ok || e.Module != "reject" {
		return 0, false
	}
	return RejectCode(e.Code), true
}
