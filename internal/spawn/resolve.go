package spawn

import "spawnkit/internal/model"

// Property resolution: pure layering of playback properties for one
// placement. Three tiers, highest precedence last:
//
//  1. spawn-level defaults, only for fields explicitly toggled on
//  2. asset-level stored defaults
//  3. per-placement overrides
//
// Everything merges onto a fully-populated baseline, so the result never
// has gaps. No side effects; safe to call repeatedly and concurrently.

// ResolveEffectiveProperties computes the effective playback properties
// for a placement inside the given spawn. asset may be nil when the
// asset-level tier is not modeled for the call site.
func ResolveEffectiveProperties(sp *model.Spawn, asset *model.MediaAsset, overrides model.PartialProperties) model.EffectiveProperties {
	out := model.BaselineProperties()
	applyToggled(&out, sp.DefaultProperties)
	if asset != nil {
		applyPartial(&out, asset.Properties)
	}
	applyPartial(&out, overrides)
	return out
}

// ResolveDuration resolves a placement's duration independently of the
// property layers: the placement override wins, else the spawn duration.
func ResolveDuration(sp *model.Spawn, overrides model.Overrides) int64 {
	if overrides.Duration != nil {
		return *overrides.Duration
	}
	return sp.Duration
}

// applyToggled merges spawn defaults, honoring the per-field toggles.
// A stored value whose toggle is off contributes nothing.
func applyToggled(out *model.EffectiveProperties, d model.DefaultProperties) {
	p := d.Properties
	if d.IsEnabled(model.PropWidth) && p.Width != nil {
		out.Width = *p.Width
	}
	if d.IsEnabled(model.PropHeight) && p.Height != nil {
		out.Height = *p.Height
	}
	if d.IsEnabled(model.PropX) && p.X != nil {
		out.X = *p.X
	}
	if d.IsEnabled(model.PropY) && p.Y != nil {
		out.Y = *p.Y
	}
	if d.IsEnabled(model.PropScale) && p.Scale != nil {
		out.Scale = *p.Scale
	}
	if d.IsEnabled(model.PropPositionMode) && p.PositionMode != nil {
		out.PositionMode = *p.PositionMode
	}
	if d.IsEnabled(model.PropVolume) && p.Volume != nil {
		out.Volume = *p.Volume
	}
	if d.IsEnabled(model.PropLoop) && p.Loop != nil {
		out.Loop = *p.Loop
	}
	if d.IsEnabled(model.PropAutoplay) && p.Autoplay != nil {
		out.Autoplay = *p.Autoplay
	}
	if d.IsEnabled(model.PropMuted) && p.Muted != nil {
		out.Muted = *p.Muted
	}
}

// applyPartial merges every set field of p over out.
func applyPartial(out *model.EffectiveProperties, p model.PartialProperties) {
	if p.Width != nil {
		out.Width = *p.Width
	}
	if p.Height != nil {
		out.Height = *p.Height
	}
	if p.X != nil {
		out.X = *p.X
	}
	if p.Y != nil {
		out.Y = *p.Y
	}
	if p.Scale != nil {
		out.Scale = *p.Scale
	}
	if p.PositionMode != nil {
		out.PositionMode = *p.PositionMode
	}
	if p.Volume != nil {
		out.Volume = *p.Volume
	}
	if p.Loop != nil {
		out.Loop = *p.Loop
	}
	if p.Autoplay != nil {
		out.Autoplay = *p.Autoplay
	}
	if p.Muted != nil {
		out.Muted = *p.Muted
	}
}
