package scene

import "hash/fnv"

// palette is the fixed categorical palette. Colors are packed 0xRRGGBB.
var palette = [12]uint32{
	0x4E79A7, 0xF28E2B, 0xE15759, 0x76B7B2,
	0x59A14F, 0xEDC948, 0xB07AA1, 0xFF9DA7,
	0x9C755F, 0xBAB0AC, 0x86BCB6, 0xD37295,
}

// paletteColor maps a string into the palette. FNV keeps the mapping
// stable across runs: the same input always yields the same color.
func paletteColor(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return palette[h.Sum32()%uint32(len(palette))]
}

// lerpColor interpolates per-channel between two packed colors, t in [0,1].
func lerpColor(from, to uint32, t float64) uint32 {
	t = clamp01(t)
	r := lerpChannel(from>>16&0xFF, to>>16&0xFF, t)
	g := lerpChannel(from>>8&0xFF, to>>8&0xFF, t)
	b := lerpChannel(from&0xFF, to&0xFF, t)
	return r<<16 | g<<8 | b
}

func lerpChannel(from, to uint32, t float64) uint32 {
	v := float64(from) + (float64(to)-float64(from))*t
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint32(v)
}

// scaleBrightness multiplies each channel by factor in [0,1].
func scaleBrightness(color uint32, factor float64) uint32 {
	factor = clamp01(factor)
	r := uint32(float64(color>>16&0xFF) * factor)
	g := uint32(float64(color>>8&0xFF) * factor)
	b := uint32(float64(color&0xFF) * factor)
	return r<<16 | g<<8 | b
}

// jitterDirection derives a deterministic per-axis direction in [-1,1]
// from an identifier. No wall-clock randomness: the same entity always
// drifts the same way for the same inputs.
func jitterDirection(id string) [3]float64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	sum := h.Sum64()

	var dir [3]float64
	for i := range dir {
		b := float64(sum >> (i * 8) & 0xFF)
		dir[i] = b/127.5 - 1
	}
	return dir
}
