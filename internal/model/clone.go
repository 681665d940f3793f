package model

// Deep-copy helpers. Repositories hand decoded collections to a shared
// cache, so everything returned to callers and everything mutated must
// be an independent copy.

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt64Ptr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBoolPtr(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns an independent copy.
func (p PartialProperties) Clone() PartialProperties {
	return PartialProperties{
		Width:        cloneIntPtr(p.Width),
		Height:       cloneIntPtr(p.Height),
		X:            cloneIntPtr(p.X),
		Y:            cloneIntPtr(p.Y),
		Scale:        cloneFloatPtr(p.Scale),
		PositionMode: cloneStringPtr(p.PositionMode),
		Volume:       cloneFloatPtr(p.Volume),
		Loop:         cloneBoolPtr(p.Loop),
		Autoplay:     cloneBoolPtr(p.Autoplay),
		Muted:        cloneBoolPtr(p.Muted),
	}
}

// Clone returns an independent copy.
func (d DefaultProperties) Clone() DefaultProperties {
	out := DefaultProperties{Properties: d.Properties.Clone()}
	if d.Enabled != nil {
		out.Enabled = make(map[string]bool, len(d.Enabled))
		for k, v := range d.Enabled {
			out.Enabled[k] = v
		}
	}
	return out
}

// Clone returns an independent copy.
func (o Overrides) Clone() Overrides {
	return Overrides{
		Duration:   cloneInt64Ptr(o.Duration),
		Properties: o.Properties.Clone(),
	}
}

// Clone returns an independent copy.
func (sa SpawnAsset) Clone() SpawnAsset {
	out := sa
	out.Overrides = sa.Overrides.Clone()
	return out
}

// Clone returns an independent copy.
func (t Trigger) Clone() Trigger {
	out := Trigger{Type: t.Type}
	if t.Config != nil {
		out.Config = append([]byte(nil), t.Config...)
	}
	return out
}

// Clone returns an independent copy.
func (s Spawn) Clone() Spawn {
	out := s
	out.Trigger = s.Trigger.Clone()
	out.DefaultProperties = s.DefaultProperties.Clone()
	out.Assets = CloneSpawnAssets(s.Assets)
	return out
}

// Clone returns an independent copy.
func (a MediaAsset) Clone() MediaAsset {
	out := a
	out.Properties = a.Properties.Clone()
	return out
}

// Clone returns an independent copy.
func (p SpawnProfile) Clone() SpawnProfile {
	out := p
	out.Spawns = CloneSpawns(p.Spawns)
	return out
}

// CloneSpawnAssets deep-copies a placement list, preserving nil.
func CloneSpawnAssets(in []SpawnAsset) []SpawnAsset {
	if in == nil {
		return nil
	}
	out := make([]SpawnAsset, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// CloneSpawns deep-copies a spawn list, preserving nil.
func CloneSpawns(in []Spawn) []Spawn {
	if in == nil {
		return nil
	}
	out := make([]Spawn, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// CloneAssets deep-copies an asset list, preserving nil.
func CloneAssets(in []MediaAsset) []MediaAsset {
	if in == nil {
		return nil
	}
	out := make([]MediaAsset, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// CloneProfiles deep-copies a profile list, preserving nil.
func CloneProfiles(in []SpawnProfile) []SpawnProfile {
	if in == nil {
		return nil
	}
	out := make([]SpawnProfile, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
