package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AdsCreated     uint64
	AdsCopied      uint64
	AdsUpdated     uint64
	AdsDeleted     uint64
	ClicksRecorded uint64
	VideosStored   uint64
	VideosDetached uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	adsCreated     uint64
	adsCopied      uint64
	adsUpdated     uint64
	adsDeleted     uint64
	clicksRecorded uint64
	videosStored   uint64
	videosDetached uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		AdsCreated:     atomic.LoadUint64(&m.adsCreated),
		AdsCopied:      atomic.LoadUint64(&m.adsCopied),
		AdsUpdated:     atomic.LoadUint64(&m.adsUpdated),
		AdsDeleted:     atomic.LoadUint64(&m.adsDeleted),
		ClicksRecorded: atomic.LoadUint64(&m.clicksRecorded),
		VideosStored:   atomic.LoadUint64(&m.videosStored),
		VideosDetached: atomic.LoadUint64(&m.videosDetached),
	}
}

// IncAdCreated increments the created counter.
func (m *InMemoryRecorder) IncAdCreated() {
	atomic.AddUint64(&m.adsCreated, 1)
}

// IncAdCopied increments the copied counter.
func (m *InMemoryRecorder) IncAdCopied() {
	atomic.AddUint64(&m.adsCopied, 1)
}

// IncAdUpdated increments the updated counter.
func (m *InMemoryRecorder) IncAdUpdated() {
	atomic.AddUint64(&m.adsUpdated, 1)
}

// IncAdDeleted increments the deleted counter.
func (m *InMemoryRecorder) IncAdDeleted() {
	atomic.AddUint64(&m.adsDeleted, 1)
}

// IncClickRecorded increments the click counter.
func (m *InMemoryRecorder) IncClickRecorded() {
	atomic.AddUint64(&m.clicksRecorded, 1)
}

// IncVideoStored increments the stored-video counter.
func (m *InMemoryRecorder) IncVideoStored() {
	atomic.AddUint64(&m.videosStored, 1)
}

// IncVideoDetached increments the detached-video counter.
func (m *InMemoryRecorder) IncVideoDetached() {
	atomic.AddUint64(&m.videosDetached, 1)
}
