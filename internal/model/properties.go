package model

// Property field names used in DefaultProperties toggles and resolution.
const (
	PropWidth        = "width"
	PropHeight       = "height"
	PropX            = "x"
	PropY            = "y"
	PropScale        = "scale"
	PropPositionMode = "positionMode"
	PropVolume       = "volume"
	PropLoop         = "loop"
	PropAutoplay     = "autoplay"
	PropMuted        = "muted"
)

// PartialProperties is a sparse set of playback properties. A nil field
// contributes nothing when layered.
type PartialProperties struct {
	Width        *int     `json:"width,omitempty"`
	Height       *int     `json:"height,omitempty"`
	X            *int     `json:"x,omitempty"`
	Y            *int     `json:"y,omitempty"`
	Scale        *float64 `json:"scale,omitempty"`
	PositionMode *string  `json:"positionMode,omitempty"`
	Volume       *float64 `json:"volume,omitempty"`
	Loop         *bool    `json:"loop,omitempty"`
	Autoplay     *bool    `json:"autoplay,omitempty"`
	Muted        *bool    `json:"muted,omitempty"`
}

// IsZero reports whether no field is set.
func (p PartialProperties) IsZero() bool {
	return p.Width == nil && p.Height == nil && p.X == nil && p.Y == nil &&
		p.Scale == nil && p.PositionMode == nil && p.Volume == nil &&
		p.Loop == nil && p.Autoplay == nil && p.Muted == nil
}

// DefaultProperties are spawn-level opt-in defaults. Values live in
// Properties, but a field only contributes to resolution when its name is
// toggled on in Enabled. Toggle state is authoritative: a stored value
// with no toggle contributes nothing.
type DefaultProperties struct {
	Properties PartialProperties `json:"properties"`
	Enabled    map[string]bool   `json:"enabled,omitempty"`
}

// IsEnabled reports whether the named field is toggled on.
func (d DefaultProperties) IsEnabled(field string) bool {
	return d.Enabled[field]
}

// EffectiveProperties is a fully-populated set of playback properties.
// Every field always has a concrete value; resolution never produces gaps.
type EffectiveProperties struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	X            int     `json:"x"`
	Y            int     `json:"y"`
	Scale        float64 `json:"scale"`
	PositionMode string  `json:"positionMode"`
	Volume       float64 `json:"volume"`
	Loop         bool    `json:"loop"`
	Autoplay     bool    `json:"autoplay"`
	Muted        bool    `json:"muted"`
}

// BaselineProperties returns the bottom layer of property resolution.
// Width/height of zero mean "natural size".
func BaselineProperties() EffectiveProperties {
	return EffectiveProperties{
		Scale:        1.0,
		PositionMode: "absolute",
		Volume:       0.5,
		Autoplay:     true,
	}
}
