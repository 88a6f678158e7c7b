package util

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/copernet/copernicus/util/amount"
)

// FeeRate expresses a fee in satoshis per 1000 bytes, the unit the engine
// uses for dust thresholds and relay-fee comparisons.
type FeeRate struct {
	SataoshisPerK int64
}

func NewFeeRate(satoshisPerK int64) *FeeRate {
	return &FeeRate{SataoshisPerK: satoshisPerK}
}

func NewFeeRateWithSize(feePaid int64, bytes int) *FeeRate {
	if bytes > math.MaxInt64 {
		panic("bytes is greater than MaxInt64")
	}
	size := int64(bytes)
	if size > 0 {
		return NewFeeRate(feePaid * 1000 / size)
	}
	return NewFeeRate(0)
}

func (feeRate *FeeRate) GetFee(bytes int) int64 {
	if bytes > math.MaxInt64 {
		panic("bytes is greater than MaxInt64")
	}
	size := int64(bytes)
	fee := feeRate.SataoshisPerK * size / 1000
	if fee == 0 && size != 0 {
		if feeRate.SataoshisPerK > 0 {
			fee = 1
		}
		if feeRate.SataoshisPerK < 0 {
			fee = -1
		}
	}
	return fee
}

func (feeRate *FeeRate) String() string {
	return fmt.Sprintf("%d.%08d %s/kB",
		feeRate.SataoshisPerK/int64(amount.COIN),
		feeRate.SataoshisPerK%int64(amount.COIN),
		amount.CurrencyUnit)
}

func (feeRate *FeeRate) SerializeSize() int {
	return 8
}

func (feeRate *FeeRate) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, feeRate.SataoshisPerK)
}

func DeserializeFeeRate(r io.Reader) (*FeeRate, error) {
	feeRate := new(FeeRate)
	var satoshisPerK int64
	if err := binary.Read(r, binary.LittleEndian, &satoshisPerK); err != nil {
		return feeRate, err
	}
	feeRate.SataoshisPerK = satoshisPerK
	return feeRate, nil
}
