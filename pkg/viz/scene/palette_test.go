package scene

import (
	"slices"
	"testing"
)

func TestPaletteColorStable(t *testing.T) {
	first := paletteColor("software")
	for range 10 {
		if got := paletteColor("software"); got != first {
			t.Fatalf("paletteColor not stable: %06x != %06x", got, first)
		}
	}
	if !slices.Contains(palette[:], first) {
		t.Fatalf("paletteColor returned %06x, not in palette", first)
	}
}

func TestLerpColorEndpoints(t *testing.T) {
	from, to := uint32(0xD64545), uint32(0x3FA34D)
	if got := lerpColor(from, to, 0); got != from {
		t.Fatalf("lerp at 0 = %06x, want %06x", got, from)
	}
	if got := lerpColor(from, to, 1); got != to {
		t.Fatalf("lerp at 1 = %06x, want %06x", got, to)
	}
	if got := lerpColor(from, to, -2); got != from {
		t.Fatalf("lerp below range = %06x, want %06x", got, from)
	}
}

func TestScaleBrightness(t *testing.T) {
	if got := scaleBrightness(0xFFFFFF, 0); got != 0 {
		t.Fatalf("brightness 0 = %06x, want 000000", got)
	}
	if got := scaleBrightness(0x4E79A7, 1); got != 0x4E79A7 {
		t.Fatalf("brightness 1 = %06x, want 4E79A7", got)
	}
}

func TestJitterDirectionDeterministicAndBounded(t *testing.T) {
	a := jitterDirection("entity-a")
	b := jitterDirection("entity-a")
	if a != b {
		t.Fatalf("jitterDirection not deterministic: %v != %v", a, b)
	}
	for i, v := range a {
		if v < -1 || v > 1 {
			t.Fatalf("component %d out of [-1,1]: %v", i, v)
		}
	}
}
