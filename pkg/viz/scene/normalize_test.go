package scene

import (
	"math"
	"testing"
)

func TestClamp01(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{2, 1},
		{math.NaN(), 0},
	}
	for _, c := range cases {
		if got := clamp01(c.in); got != c.want {
			t.Fatalf("clamp01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSpanNorm(t *testing.T) {
	var s span
	s.observe(10)
	s.observe(20)
	s.observe(15)

	if got := s.norm(10); got != 0 {
		t.Fatalf("norm at min = %v, want 0", got)
	}
	if got := s.norm(20); got != 1 {
		t.Fatalf("norm at max = %v, want 1", got)
	}
	if got := s.norm(15); got != 0.5 {
		t.Fatalf("norm at midpoint = %v, want 0.5", got)
	}
}

func TestSpanNormDegenerate(t *testing.T) {
	var empty span
	if got := empty.norm(42); got != 0.5 {
		t.Fatalf("empty span norm = %v, want 0.5", got)
	}

	var single span
	single.observe(7)
	if got := single.norm(7); got != 0.5 {
		t.Fatalf("single-value span norm = %v, want 0.5", got)
	}
}

func TestLogThicknessBoundsAndMonotone(t *testing.T) {
	if got := logThickness(0); got != 0 {
		t.Fatalf("logThickness(0) = %v, want 0", got)
	}
	if got := logThickness(-5); got != 0 {
		t.Fatalf("logThickness(-5) = %v, want 0", got)
	}
	if got := logThickness(thicknessMax); got != 1 {
		t.Fatalf("logThickness(max) = %v, want 1", got)
	}
	if got := logThickness(thicknessMax * 10); got != 1 {
		t.Fatalf("logThickness above max = %v, want 1", got)
	}

	prev := 0.0
	for _, v := range []float64{0.5, 1, 5, 10, 100, 500, 999} {
		cur := logThickness(v)
		if cur <= prev {
			t.Fatalf("logThickness not increasing at %v: %v <= %v", v, cur, prev)
		}
		if cur < 0 || cur > 1 {
			t.Fatalf("logThickness(%v) = %v out of [0,1]", v, cur)
		}
		prev = cur
	}
}

func TestRemapSentiment(t *testing.T) {
	if got := remapSentiment(-1); got != 0 {
		t.Fatalf("remapSentiment(-1) = %v, want 0", got)
	}
	if got := remapSentiment(0); got != 0.5 {
		t.Fatalf("remapSentiment(0) = %v, want 0.5", got)
	}
	if got := remapSentiment(1); got != 1 {
		t.Fatalf("remapSentiment(1) = %v, want 1", got)
	}
	if got := remapSentiment(-3); got != 0 {
		t.Fatalf("remapSentiment below range = %v, want 0", got)
	}
}

func TestGlowMultiplier(t *testing.T) {
	if got := glowMultiplier("low"); got != 0.35 {
		t.Fatalf("low tier = %v", got)
	}
	if got := glowMultiplier("med"); got != 0.65 {
		t.Fatalf("med tier = %v", got)
	}
	if got := glowMultiplier("high"); got != 1.0 {
		t.Fatalf("high tier = %v", got)
	}
	if got := glowMultiplier(""); got != 0.35 {
		t.Fatalf("default tier = %v", got)
	}
}
