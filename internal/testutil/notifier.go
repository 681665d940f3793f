package testutil

import (
	"context"
	"sync"

	"spawnkit/internal/spawn"
)

// RecordingNotifier records the change kinds it is notified about.
type RecordingNotifier struct {
	mu    sync.Mutex
	kinds []spawn.ChangeKind
}

var _ spawn.Notifier = (*RecordingNotifier)(nil)

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) NotifyChanged(_ context.Context, kind spawn.ChangeKind) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	return nil
}

// Kinds returns a copy of the recorded change kinds in order.
func (n *RecordingNotifier) Kinds() []spawn.ChangeKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]spawn.ChangeKind, len(n.kinds))
	copy(out, n.kinds)
	return out
}

// Reset clears the recorded kinds.
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = nil
}
