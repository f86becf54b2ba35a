package theme

import (
	"slices"
)

// ColorMode selects between categorical and continuous node coloring.
type ColorMode string

const (
	// ColorModePalette hashes a profile field into a fixed palette.
	ColorModePalette ColorMode = "palette"
	// ColorModeScale maps a compound key through a two-color gradient.
	ColorModeScale ColorMode = "scale"
)

// GlowTier selects the glow intensity multiplier.
type GlowTier string

const (
	GlowLow  GlowTier = "low"
	GlowMed  GlowTier = "med"
	GlowHigh GlowTier = "high"
)

// ThicknessScale selects linear or logarithmic edge thickness mapping.
type ThicknessScale string

const (
	ThicknessLinear ThicknessScale = "linear"
	ThicknessLog    ThicknessScale = "log"
)

// EdgeColorMode selects how edges are colored.
type EdgeColorMode string

const (
	// EdgeColorType hashes the connection kind into the palette.
	EdgeColorType EdgeColorMode = "type"
	// EdgeColorSentiment maps sentiment (-1..1) through a red-green gradient.
	EdgeColorSentiment EdgeColorMode = "sentiment"
	// EdgeColorHybrid uses the type hue, brightness-tinted by sentiment.
	EdgeColorHybrid EdgeColorMode = "hybrid"
)

// LabelStrategy selects what text a node carries.
type LabelStrategy string

const (
	LabelNone     LabelStrategy = "none"
	LabelName     LabelStrategy = "name"
	LabelNameKind LabelStrategy = "name_kind"
)

// ColorChannel configures node coloring. ProfileField is used in palette
// mode; Key/From/To in scale mode.
type ColorChannel struct {
	Mode         ColorMode
	ProfileField string
	Key          CompoundKey
	From         uint32
	To           uint32
}

// GlowChannel configures node glow. Negative polarity glows on negated
// values so a theme can highlight adverse signals.
type GlowChannel struct {
	Key              CompoundKey
	NegativePolarity bool
	Tier             GlowTier
}

// DriftChannel configures the per-node jitter vector.
type DriftChannel struct {
	Key        CompoundKey
	WindowDays int
}

// ConnectionStyle configures edge channels. Kinds not listed in Include
// are silently dropped from the scene.
type ConnectionStyle struct {
	Include   []string
	Thickness FieldChain
	Scale     ThicknessScale
	Color     EdgeColorMode
	Dashed    bool
	Animated  bool
}

// Background describes the scene backdrop.
type Background struct {
	Color   uint32  `json:"color"`
	Ambient float64 `json:"ambient"`
}

// Theme is one declarative visualization lens: a mapping from entity and
// connection attribute domains onto visual channels. Themes are static
// configuration; operators add lenses here without touching the pipeline.
type Theme struct {
	ID          string
	Name        string
	Description string

	PositionX CompoundKey
	PositionY CompoundKey
	PositionZ CompoundKey
	Size      CompoundKey
	Color     ColorChannel
	Glow      GlowChannel
	Drift     DriftChannel
	Labels    LabelStrategy

	Connections ConnectionStyle
	Background  Background
}

// MetricKeys returns the metric fields this theme's channels reference.
// The resolution adapter fetches exactly these, bounding aggregate-query
// cost to the channel count rather than every known metric.
func (t Theme) MetricKeys() []string {
	return t.domainFields(DomainMetric)
}

// IndexKeys returns the index fields this theme's channels reference.
func (t Theme) IndexKeys() []string {
	return t.domainFields(DomainIndex)
}

func (t Theme) domainFields(domain Domain) []string {
	var fields []string
	for _, key := range t.compoundKeys() {
		for _, ref := range key {
			if ref.Domain == domain && !slices.Contains(fields, ref.Field) {
				fields = append(fields, ref.Field)
			}
		}
	}
	slices.Sort(fields)
	return fields
}

func (t Theme) compoundKeys() []CompoundKey {
	keys := []CompoundKey{t.PositionX, t.PositionY, t.PositionZ, t.Size, t.Glow.Key, t.Drift.Key}
	if t.Color.Mode == ColorModeScale {
		keys = append(keys, t.Color.Key)
	}
	return keys
}
