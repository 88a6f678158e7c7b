package util

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/astaxie/beego/logs"
)

const (
	// MaxAllowedOffsetSecs bounds how far the network median may be
	// trusted to correct the local clock (spec §6 Clock collaborator).
	MaxAllowedOffsetSecs = 70 * 60
	SimilarTimeSecs      = 5 * 60
)

// MaxMedianTimeRetries caps the number of peer time samples retained; older
// samples are dropped once the ring fills.
var MaxMedianTimeRetries = 200

// MedianTimeSource is the interface the engine's Clock collaborator
// implements: local wall-clock time adjusted by the median offset reported
// by connected peers, used everywhere a header/block timestamp is checked
// against "now".
type MedianTimeSource interface {
	AdjustedTime() time.Time
	AddTimeSample(sourceID string, timeVal time.Time)
	Offset() time.Duration
}

type int64Sorter []int64

func (s int64Sorter) Len() int           { return len(s) }
func (s int64Sorter) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s int64Sorter) Less(i, j int) bool { return s[i] < s[j] }

// medianTime is the default MedianTimeSource: it keeps a bounded ring of
// (sourceID, offset) samples and derives a single correction offset from
// their median, refusing corrections that look implausible.
type medianTime struct {
	lock               sync.Mutex
	knownIDs           map[string]struct{}
	offsets            []int64
	offsetSecs         int64
	invalidTimeChecked bool
}

func (m *medianTime) AdjustedTime() time.Time {
	m.lock.Lock()
	defer m.lock.Unlock()
	now := time.Unix(time.Now().Unix(), 0)
	return now.Add(time.Duration(m.offsetSecs) * time.Second)
}

func (m *medianTime) AddTimeSample(sourceID string, timeVal time.Time) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, exists := m.knownIDs[sourceID]; exists {
		return
	}
	m.knownIDs[sourceID] = struct{}{}

	now := time.Unix(time.Now().Unix(), 0)
	offsetSecs := int64(timeVal.Sub(now).Seconds())
	numOffsets := len(m.offsets)
	if numOffsets == MaxMedianTimeRetries && MaxMedianTimeRetries > 0 {
		m.offsets = m.offsets[1:]
		numOffsets--
	}
	m.offsets = append(m.offsets, offsetSecs)
	numOffsets++
	sorted := make([]int64, numOffsets)
	copy(sorted, m.offsets)
	sort.Sort(int64Sorter(sorted))
	logs.Debug("added time sample of %v (total:%v)", time.Duration(offsetSecs)*time.Second, numOffsets)

	if numOffsets < 5 || numOffsets&0x01 != 1 {
		return
	}
	median := sorted[numOffsets/2]
	if math.Abs(float64(median)) < MaxAllowedOffsetSecs {
		m.offsetSecs = median
		return
	}
	m.offsetSecs = 0
	if m.invalidTimeChecked {
		return
	}
	m.invalidTimeChecked = true
	for _, offset := range sorted {
		if math.Abs(float64(offset)) < SimilarTimeSecs {
			return
		}
	}
	logs.Warn("multiple peers report a time far from ours; check the local clock")
}

func (m *medianTime) Offset() time.Duration {
	m.lock.Lock()
	defer m.lock.Unlock()
	return time.Duration(m.offsetSecs) * time.Second
}

// NewMedianTimeSource builds a MedianTimeSource with an empty sample set.
func NewMedianTimeSource() MedianTimeSource {
	return &medianTime{
		knownIDs: make(map[string]struct{}),
		offsets:  make([]int64, 0, MaxMedianTimeRetries),
	}
}

var (
	timeSourceOnce sync.Once
	timeSource     MedianTimeSource
)

// GetTimeSource returns the process-wide MedianTimeSource, lazily
// constructed on first use. GetAdjustedTime/GetTimeOffset read through it;
// the engine (spec §9) may override it entirely by injecting its own Clock.
func GetTimeSource() MedianTimeSource {
	timeSourceOnce.Do(func() {
		timeSource = NewMedianTimeSource()
	})
	return timeSource
}

// GetMedianTimeSource is an alias kept for callers that spell it out fully;
// it returns the same singleton as GetTimeSource.
func GetMedianTimeSource() MedianTimeSource {
	return GetTimeSource()
}

// SetTimeSource overrides the process-wide MedianTimeSource, used by tests
// that need deterministic offsets.
func SetTimeSource(ts MedianTimeSource) {
	timeSourceOnce.Do(func() {})
	timeSource = ts
}
