package scene

import (
	"slices"

	"github.com/lumenintel/orrery/backend/pkg/viz/theme"
)

// Node is one renderable entity. Position components lie in [-0.5, 0.5],
// Size and Glow in [0, 1]. Entity carries the source attribute bag for
// downstream tooltips.
type Node struct {
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
	Size     float64    `json:"size"`
	Color    uint32     `json:"color"`
	Glow     float64    `json:"glow"`
	Drift    [3]float64 `json:"drift"`
	Label    string     `json:"label,omitempty"`
	Entity   EntityBag  `json:"entity"`
}

// Edge is one renderable connection with normalized thickness.
type Edge struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Kind      string  `json:"kind"`
	Thickness float64 `json:"thickness"`
	Color     uint32  `json:"color"`
	Dashed    bool    `json:"dashed"`
	Animated  bool    `json:"animated"`
}

// Scene is the pipeline's output: everything a renderer needs for one frame.
type Scene struct {
	Nodes      []Node           `json:"nodes"`
	Edges      []Edge           `json:"edges"`
	Background theme.Background `json:"background"`
}

const (
	// driftScale bounds jitter magnitude to a visually negligible fraction
	// of the position cube.
	driftScale = 0.02

	// competitorKind is the connection kind eligible for dashed rendering.
	competitorKind = "competitor"

	sentimentLow  = 0xD64545
	sentimentHigh = 0x3FA34D
)

// Apply maps entity and connection attribute bags onto a scene using the
// given theme. Pure and synchronous: no I/O, no clock, no randomness —
// identical inputs produce identical output.
func Apply(t theme.Theme, entities []EntityBag, connections []ConnectionBag) Scene {
	return Scene{
		Nodes:      buildNodes(t, entities),
		Edges:      buildEdges(t, connections),
		Background: t.Background,
	}
}

type axisValues struct {
	values  []float64
	present []bool
	span    span
}

func resolveAxis(entities []EntityBag, key theme.CompoundKey, compress func(float64) float64) axisValues {
	ax := axisValues{
		values:  make([]float64, len(entities)),
		present: make([]bool, len(entities)),
	}
	for i, bag := range entities {
		v, ok := resolveCompound(bag, key)
		if !ok {
			continue
		}
		if compress != nil {
			v = compress(v)
		}
		ax.values[i] = v
		ax.present[i] = true
		ax.span.observe(v)
	}
	return ax
}

// normAt returns the normalized value for entity i, or fallback if absent.
func (ax axisValues) normAt(i int, fallback float64) float64 {
	if !ax.present[i] {
		return fallback
	}
	return ax.span.norm(ax.values[i])
}

func buildNodes(t theme.Theme, entities []EntityBag) []Node {
	xs := resolveAxis(entities, t.PositionX, nil)
	ys := resolveAxis(entities, t.PositionY, nil)
	zs := resolveAxis(entities, t.PositionZ, nil)
	sizes := resolveAxis(entities, t.Size, sizeCompress)

	var colorSpan span
	colorValues := make([]float64, len(entities))
	colorPresent := make([]bool, len(entities))
	if t.Color.Mode == theme.ColorModeScale {
		for i, bag := range entities {
			if v, ok := resolveCompound(bag, t.Color.Key); ok {
				colorValues[i] = v
				colorPresent[i] = true
				colorSpan.observe(v)
			}
		}
	}

	nodes := make([]Node, 0, len(entities))
	for i, bag := range entities {
		// Absent position components center the node; absent size shrinks
		// it to the minimum rather than inventing a magnitude.
		node := Node{
			ID: bag.ID,
			Position: [3]float64{
				xs.normAt(i, 0.5) - 0.5,
				ys.normAt(i, 0.5) - 0.5,
				zs.normAt(i, 0.5) - 0.5,
			},
			Size:   0,
			Label:  label(t.Labels, bag),
			Entity: bag,
		}
		if sizes.present[i] {
			node.Size = sizes.span.norm(sizes.values[i])
		}

		node.Color = nodeColor(t.Color, bag, colorValues[i], colorPresent[i], &colorSpan)
		node.Glow = nodeGlow(t.Glow, bag)
		node.Drift = nodeDrift(t.Drift, bag)

		nodes = append(nodes, node)
	}
	return nodes
}

func nodeColor(ch theme.ColorChannel, bag EntityBag, value float64, present bool, sp *span) uint32 {
	if ch.Mode == theme.ColorModeScale {
		if !present {
			return lerpColor(ch.From, ch.To, 0.5)
		}
		return lerpColor(ch.From, ch.To, sp.norm(value))
	}

	field := bag.Industry
	switch ch.ProfileField {
	case "segment":
		field = bag.Segment
	case "region":
		field = bag.Region
	case "kind":
		field = bag.Kind
	}
	return paletteColor(field)
}

func nodeGlow(ch theme.GlowChannel, bag EntityBag) float64 {
	v, ok := resolveCompound(bag, ch.Key)
	if !ok {
		return 0
	}
	if ch.NegativePolarity {
		v = -v
	}
	return clamp01(v) * glowMultiplier(string(ch.Tier))
}

func nodeDrift(ch theme.DriftChannel, bag EntityBag) [3]float64 {
	v, ok := resolveCompound(bag, ch.Key)
	if !ok {
		return [3]float64{}
	}
	magnitude := clamp01(v) * driftScale
	dir := jitterDirection(bag.ID)

	var drift [3]float64
	for i := range drift {
		drift[i] = dir[i] * magnitude
	}
	return drift
}

func label(strategy theme.LabelStrategy, bag EntityBag) string {
	switch strategy {
	case theme.LabelName:
		return bag.Name
	case theme.LabelNameKind:
		return bag.Name + " (" + bag.Kind + ")"
	}
	return ""
}

func buildEdges(t theme.Theme, connections []ConnectionBag) []Edge {
	style := t.Connections

	edges := make([]Edge, 0, len(connections))
	for _, conn := range connections {
		if !slices.Contains(style.Include, conn.Kind) {
			continue
		}

		edge := Edge{
			Source:   conn.Source,
			Target:   conn.Target,
			Kind:     conn.Kind,
			Dashed:   style.Dashed && conn.Kind == competitorKind,
			Animated: style.Animated,
		}

		if v, ok := resolveChain(conn.Values, style.Thickness); ok {
			if style.Scale == theme.ThicknessLog {
				edge.Thickness = logThickness(v)
			} else {
				edge.Thickness = clamp01(v)
			}
		}

		edge.Color = edgeColor(style.Color, conn)
		edges = append(edges, edge)
	}
	return edges
}

func edgeColor(mode theme.EdgeColorMode, conn ConnectionBag) uint32 {
	sentiment := remapSentiment(conn.Values["sentiment"])
	switch mode {
	case theme.EdgeColorSentiment:
		return lerpColor(sentimentLow, sentimentHigh, sentiment)
	case theme.EdgeColorHybrid:
		return scaleBrightness(paletteColor(conn.Kind), 0.55+0.45*sentiment)
	default:
		return paletteColor(conn.Kind)
	}
}
