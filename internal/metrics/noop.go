package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncAdCreated is a no-op.
func (n *NoopRecorder) IncAdCreated() {}

// IncAdCopied is a no-op.
func (n *NoopRecorder) IncAdCopied() {}

// IncAdUpdated is a no-op.
func (n *NoopRecorder) IncAdUpdated() {}

// IncAdDeleted is a no-op.
func (n *NoopRecorder) IncAdDeleted() {}

// IncClickRecorded is a no-op.
func (n *NoopRecorder) IncClickRecorded() {}

// IncVideoStored is a no-op.
func (n *NoopRecorder) IncVideoStored() {}

// IncVideoDetached is a no-op.
func (n *NoopRecorder) IncVideoDetached() {}
