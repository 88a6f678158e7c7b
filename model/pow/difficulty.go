package pow

import (
	"math/big"

	"github.com/copernet/copernicus/model/blockindex"
	"github.com/copernet/copernicus/model/chainparams"
	"github.com/copernet/copernicus/util"
)

// oneLsh256 is 2^256, used by GetBlockProof to compute the work a target
// implies; big.Int keeps the division exact.
var oneLsh256 = new(big.Int).Lsh(big.NewInt(1), 256)

// CompactToBig decodes the 32-bit "nBits" compact representation (top byte
// exponent, low three bytes mantissa, sign bit in the mantissa's MSB) into
// the target it represents.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := compact >> 24

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, uint(8*(exponent-3)))
	}

	if isNegative {
		bn = bn.Neg(bn)
	}
	return bn
}

// BigToCompact encodes a target as the 32-bit compact ("nBits")
// representation CompactToBig decodes.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(n.Bytes()))
	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	// The mantissa's high bit doubles as a sign bit, so a mantissa with
	// that bit already set needs an extra byte of exponent shifted in to
	// keep the encoding unambiguous.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}

// HashToBig interprets a hash as a big-endian big.Int after reversing its
// (little-endian, internal) byte order, matching how block hashes compare
// against a target.
func HashToBig(hash *util.Hash) *big.Int {
	buf := *hash
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// GetBlockProof returns the expected number of hashes it took to produce
// the given block's header: 2^256 / (target+1), computed directly with
// big.Int; a zero, negative or >= 2^256 target gives 0. Chain-work accumulates this value block by
// block; the candidate-tip comparator (component C) orders by the result.
func GetBlockProof(index *blockindex.BlockIndex) *big.Int {
	target := CompactToBig(index.Header.Bits)
	if target.Sign() <= 0 || target.Cmp(oneLsh256) >= 0 {
		return big.NewInt(0)
	}
	denominator := new(big.Int).Add(target, big.NewInt(1))
	work := new(big.Int).Div(oneLsh256, denominator)
	return work
}

// GetBlockProofEquivalentTime converts the chain-work difference between
// "to" and "from" into a time difference, expressed in seconds, using the
// tip's proof-of-work rate as the conversion factor: it answers "how much
// wall-clock time would the network, working at the tip's current rate,
// have needed to produce that much extra work". The assumevalid fast path
// (component J) and warning-bits unknown-version alert use this to judge
// whether a competing chain's extra work is plausible for its age.
func GetBlockProofEquivalentTime(to, from, tip *blockindex.BlockIndex, params *chainparams.BitcoinParams) int64 {
	sign := int64(1)
	var work *big.Int
	if to.ChainWork.Cmp(&from.ChainWork) > 0 {
		work = new(big.Int).Sub(&to.ChainWork, &from.ChainWork)
	} else {
		work = new(big.Int).Sub(&from.ChainWork, &to.ChainWork)
		sign = -1
	}
	work.Mul(work, big.NewInt(int64(params.TargetTimePerBlock)))
	tipProof := GetBlockProof(tip)
	if tipProof.Sign() == 0 {
		return 0
	}
	work.Div(work, tipProof)

	if work.BitLen() > 63 {
		if sign < 0 {
			return -9223372036854775807
		}
		return 9223372036854775807
	}
	return sign * work.Int64()
}
