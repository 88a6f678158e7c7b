package errcode

// DoSForRejectCode returns the peer misbehavior score charged for a given
// BIP61 reject code, matching the point table used by the reference node
// this engine's validation rules were distilled from. Header/block pipeline
// callers add this to a peer's ban score when a received header or block
// fails a rule attributable to that peer (never for corruption-possible or
// purely local failures).
func DoSForRejectCode(code RejectCode) int {
	switch code {
	case RejectMalformed:
		return 100
	case RejectInvalid:
		return 100
	case RejectObsolete:
		return 0
	case RejectDuplicate:
		return 0
	case RejectNonstandard:
		return 0
	case RejectDust:
		return 0
	case RejectInsufficientFee:
		return 0
	case RejectCheckpoint:
		return 100
	default:
		return 0
	}
}

// Named DoS point constants for rules that carry a different weight than the
// generic reject-code table above (spam-resistant rules get the full 100;
// bandwidth/relay-policy rules get 0 since the sender hasn't violated
// consensus, only local relay policy).
const (
	DoSBadBlockHeader        = 100
	DoSBadBlockMerkleRoot    = 100
	DoSBadBlockDuplicateTx   = 100
	DoSBadCoinbaseMissing    = 100
	DoSBadTxnsInputsSpent    = 100
	DoSInvalidProofOfWork    = 100
	DoSTimestampTooFarFuture = 10
	DoSBadVersion            = 0
)
