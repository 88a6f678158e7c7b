package crypto

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/copernet/copernicus/log"
	"github.com/pkg/errors"
)

const (
	SigHashAll          = 1
	SigHashNone         = 2
	SigHashSingle       = 3
	SigHashForkID       = 0x40
	SigHashAnyoneCanpay = 0x80

	// SigHashMask defines the number of bits of the hash type which is used
	// to identify which outputs are signed.
	SigHashMask = 0x1f
)

/** Script verification flags consumed by CheckSignatureEncoding. */
const (
	SCRIPT_VERIFY_STRICTENC = 1 << 1
	SCRIPT_VERIFY_DERSIG    = 1 << 2
	SCRIPT_VERIFY_LOW_S     = 1 << 3
)

// Signature wraps a parsed ECDSA signature over secp256k1.
type Signature struct {
	sig *ecdsa.Signature
}

func (sig *Signature) Serialize() []byte {
	return sig.sig.Serialize()
}

func (sig *Signature) Verify(hash []byte, pubKey *PublicKey) bool {
	return sig.sig.Verify(hash, pubKey.SecpPubKey)
}

// EcdsaNormalize rewrites sig in place to use the low-S form required by
// BIP62 rule 5, returning false only when sig has not been parsed.
func (sig *Signature) EcdsaNormalize() bool {
	if sig.sig == nil {
		return false
	}
	r := sig.sig.R()
	s := sig.sig.S()
	if s.IsOverHalfOrder() {
		s.Negate()
	}
	sig.sig = ecdsa.NewSignature(&r, &s)
	return true
}

func ParseDERSignature(signature []byte) (*Signature, error) {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return nil, err
	}
	return &Signature{sig: sig}, nil
}

func CheckLowS(vchSig []byte) bool {
	sig, err := ParseDERSignature(vchSig)
	if err != nil {
		log.Debug("ParseDERSignature failed, sig:%s", hex.EncodeToString(vchSig))
		return false
	}
	s := sig.sig.S()
	return !s.IsOverHalfOrder()
}

// IsLowDERSignature reports whether vchSig, already known to be valid DER,
// encodes a low-S signature as required by BIP62 rule 5.
func IsLowDERSignature(vchSig []byte) (bool, error) {
	sig, err := ParseDERSignature(vchSig)
	if err != nil {
		return false, errors.Wrap(err, "invalid signature encoding")
	}
	s := sig.sig.S()
	return !s.IsOverHalfOrder(), nil
}

// CheckSignatureEncoding validates a script signature against the encoding
// rules selected by flags (BIP66 strict DER, BIP62 low-S, strict hashtype).
func CheckSignatureEncoding(vchSig []byte, flags uint32) (bool, error) {
	if len(vchSig) == 0 {
		return true, nil
	}
	if (flags&(SCRIPT_VERIFY_DERSIG|SCRIPT_VERIFY_LOW_S|SCRIPT_VERIFY_STRICTENC)) != 0 &&
		!IsValidSignatureEncoding(vchSig) {
		return false, errors.New("invalid signature encoding")
	}
	if (flags & SCRIPT_VERIFY_LOW_S) != 0 {
		ret, err := IsLowDERSignature(vchSig)
		if err != nil || !ret {
			return false, err
		}
	}
	if (flags & SCRIPT_VERIFY_STRICTENC) != 0 {
		if !IsDefineHashtypeSignature(vchSig) {
			return false, errors.New("invalid signature hashtype")
		}
	}
	return true, nil
}

/**
 * IsValidSignatureEncoding  A canonical signature exists of: <30> <total len> <02> <len R> <R> <02> <len S> <S> <hashtype>
 * Where R and S are not negative (their first byte has its highest bit not set), and not
 * excessively padded (do not start with a 0 byte, unless an otherwise negative number follows,
 * in which case a single 0 byte is necessary and even required).
 *
 * See https://bitcointalk.org/index.php?topic=8392.msg127623#msg127623
 *
 * This function is consensus-critical since BIP66.
 */

func IsValidSignatureEncoding(signs []byte) bool {
	// Format: 0x30 [total-length] 0x02 [R-length] [R] 0x02 [S-length] [S] [sigHash]
	// * total-length: 1-byte length descriptor of everything that follows,
	//   excluding the sigHash byte.
	// * R-length: 1-byte length descriptor of the R value that follows.
	// * R: arbitrary-length big-endian encoded R value. It must use the shortest
	//   possible encoding for a positive integers (which means no null bytes at
	//   the start, except a single one when the next byte has its highest bit set).
	// * S-length: 1-byte length descriptor of the S value that follows.
	// * S: arbitrary-length big-endian encoded S value. The same rules apply.
	// * sigHash: 1-byte value indicating what data is hashed (not part of the DER
	//   signature)
	signsLen := len(signs)
	if signsLen < 9 {
		return false
	}
	if signsLen > 73 {
		return false
	}
	if signs[0] != 0x30 {
		return false
	}
	if int(signs[1]) != (signsLen - 3) {
		return false
	}
	if signs[2] != 0x02 {
		return false
	}

	lenR := signs[3]

	if lenR == 0 {
		return false
	}

	if (signs[4] & 0x80) != 0 {
		return false
	}

	if int(lenR) > signsLen-7 {
		return false
	}

	if lenR > 1 && (signs[4] == 0x00) && (signs[5]&0x80) == 0 {
		return false
	}

	startS := int(lenR) + 4

	if signs[startS] != 0x02 {
		return false
	}

	lenS := signs[startS+1]

	if lenS == 0 {
		return false
	}

	if signs[startS+2]&0x80 != 0 {
		return false
	}

	if startS+int(lenS)+3 != signsLen {
		return false
	}

	if (lenS > 1) && (signs[startS+2] == 0x00) && (signs[startS+3]&0x80) == 0 {
		return false
	}
	//
	//if int(5+lenR) >= signsLen {
	//	return false
	//}
	//if int(lenR+lenS+7) != signsLen {
	//	return false
	//}
	//if signs[lenR+4] != 0x02 {
	//	return false
	//}
	//if signs[lenR+6]&0x80 != 0 {
	//	return false
	//}
	//if lenS > 1 && (signs[lenR+6] == 0x00) && (signs[lenR+7]&0x80) == 0 {
	//	return false
	//}
	return true

}

func IsDefineHashtypeSignature(vchSig []byte) bool {
	if len(vchSig) == 0 {
		return false
	}
	nHashType := vchSig[len(vchSig)-1] & (^byte(SigHashAnyoneCanpay | SigHashForkID))
	if nHashType < SigHashAll || nHashType > SigHashSingle {
		return false
	}
	return true
}
