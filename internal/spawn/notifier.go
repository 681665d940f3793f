package spawn

import "context"

// ChangeKind tags a "changed" notification with the entity family that
// mutated.
type ChangeKind string

const (
	ChangedAssets   ChangeKind = "assets"
	ChangedProfiles ChangeKind = "profiles"
	ChangedSettings ChangeKind = "settings"
)

// Notifier delivers best-effort change notifications to external
// observers (the overlay runtime). Delivery failure never fails the
// mutation that triggered it; callers log and continue.
type Notifier interface {
	NotifyChanged(ctx context.Context, kind ChangeKind) error
}

// NopNotifier discards all notifications. Use in tests or when no
// notification endpoint is configured.
type NopNotifier struct{}

func NewNopNotifier() *NopNotifier { return &NopNotifier{} }

func (*NopNotifier) NotifyChanged(context.Context, ChangeKind) error { return nil }
