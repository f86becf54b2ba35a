package theme

import (
	"slices"
	"strings"
)

// DefaultThemeID is substituted for unknown theme ids. Visualization is
// best-effort; an unknown lens never fails a request.
const DefaultThemeID = "market-landscape"

// Catalog holds the built-in themes.
type Catalog struct {
	themes map[string]Theme
}

// NewCatalog returns the built-in theme catalog.
func NewCatalog() *Catalog {
	c := &Catalog{themes: make(map[string]Theme)}
	for _, t := range builtins() {
		c.themes[t.ID] = t
	}
	return c
}

// Lookup returns the theme for id, or the default theme when id is
// unknown. The second return reports whether id itself was found, so the
// boundary can log the substitution.
func (c *Catalog) Lookup(id string) (Theme, bool) {
	if t, ok := c.themes[id]; ok {
		return t, true
	}
	return c.themes[DefaultThemeID], false
}

// List returns all themes ordered by id.
func (c *Catalog) List() []Theme {
	themes := make([]Theme, 0, len(c.themes))
	for _, t := range c.themes {
		themes = append(themes, t)
	}
	slices.SortFunc(themes, func(a, b Theme) int {
		return strings.Compare(a.ID, b.ID)
	})
	return themes
}

func builtins() []Theme {
	return []Theme{
		{
			ID:          "market-landscape",
			Name:        "Market Landscape",
			Description: "Companies plotted by scale, growth and reach, colored by industry.",
			PositionX:   mustKey("metric.market_cap|metric.revenue"),
			PositionY:   mustKey("index.growth|metric.revenue_growth"),
			PositionZ:   mustKey("metric.traffic|metric.headcount"),
			Size:        mustKey("metric.market_cap|metric.revenue"),
			Color: ColorChannel{
				Mode:         ColorModePalette,
				ProfileField: "industry",
			},
			Glow: GlowChannel{
				Key:  mustKey("signal.total_magnitude"),
				Tier: GlowLow,
			},
			Drift: DriftChannel{
				Key:        mustKey("signal.net_sentiment"),
				WindowDays: 30,
			},
			Labels: LabelName,
			Connections: ConnectionStyle{
				Include:   []string{"partnership", "competitor", "ownership"},
				Thickness: mustChain("strength"),
				Scale:     ThicknessLinear,
				Color:     EdgeColorType,
			},
			Background: Background{Color: 0x0B1020, Ambient: 0.35},
		},
		{
			ID:          "sentiment-pulse",
			Name:        "Sentiment Pulse",
			Description: "Recent signal activity: who is being talked about, and how.",
			PositionX:   mustKey("signal.net_sentiment"),
			PositionY:   mustKey("signal.total_magnitude"),
			PositionZ:   mustKey("index.sentiment_trend|signal.positive_count"),
			Size:        mustKey("signal.total_magnitude"),
			Color: ColorChannel{
				Mode: ColorModeScale,
				Key:  mustKey("signal.net_sentiment"),
				From: 0xD64545,
				To:   0x3FA34D,
			},
			Glow: GlowChannel{
				Key:              mustKey("signal.negative_count"),
				NegativePolarity: true,
				Tier:             GlowHigh,
			},
			Drift: DriftChannel{
				Key:        mustKey("signal.total_magnitude"),
				WindowDays: 7,
			},
			Labels: LabelName,
			Connections: ConnectionStyle{
				Include:   []string{"partnership", "competitor", "legal"},
				Thickness: mustChain("strength"),
				Scale:     ThicknessLinear,
				Color:     EdgeColorSentiment,
				Animated:  true,
			},
			Background: Background{Color: 0x101018, Ambient: 0.25},
		},
		{
			ID:          "rivalry-web",
			Name:        "Rivalry Web",
			Description: "Competitive and legal entanglements, weighted by overlap.",
			PositionX:   mustKey("metric.market_share|metric.revenue"),
			PositionY:   mustKey("index.threat|signal.negative_count"),
			PositionZ:   mustKey("metric.traffic"),
			Size:        mustKey("metric.market_share|metric.revenue"),
			Color: ColorChannel{
				Mode:         ColorModePalette,
				ProfileField: "segment",
			},
			Glow: GlowChannel{
				Key:  mustKey("index.threat|signal.negative_count"),
				Tier: GlowMed,
			},
			Drift: DriftChannel{
				Key:        mustKey("signal.negative_count"),
				WindowDays: 30,
			},
			Labels: LabelNameKind,
			Connections: ConnectionStyle{
				Include:   []string{"competitor", "legal"},
				Thickness: mustChain("overlap_score|strength"),
				Scale:     ThicknessLog,
				Color:     EdgeColorHybrid,
				Dashed:    true,
				Animated:  true,
			},
			Background: Background{Color: 0x160A0A, Ambient: 0.2},
		},
		{
			ID:          "momentum-field",
			Name:        "Momentum Field",
			Description: "Composite momentum, growth and volatility indices.",
			PositionX:   mustKey("index.momentum"),
			PositionY:   mustKey("index.growth"),
			PositionZ:   mustKey("index.volatility"),
			Size:        mustKey("metric.revenue|metric.market_cap"),
			Color: ColorChannel{
				Mode: ColorModeScale,
				Key:  mustKey("index.momentum"),
				From: 0x2C5F8A,
				To:   0xE58E26,
			},
			Glow: GlowChannel{
				Key:  mustKey("index.momentum"),
				Tier: GlowMed,
			},
			Drift: DriftChannel{
				Key:        mustKey("index.volatility"),
				WindowDays: 90,
			},
			Labels: LabelName,
			Connections: ConnectionStyle{
				Include:   []string{"partnership", "investor"},
				Thickness: mustChain("deal_value|strength"),
				Scale:     ThicknessLog,
				Color:     EdgeColorType,
			},
			Background: Background{Color: 0x0A1416, Ambient: 0.3},
		},
	}
}
