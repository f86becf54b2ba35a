package theme

import (
	"testing"
)

func TestParseCompoundKeyFallbackChain(t *testing.T) {
	key, err := ParseCompoundKey("metric.market_cap|index.momentum|signal.total_magnitude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(key) != 3 {
		t.Fatalf("expected 3 references, got %d", len(key))
	}

	expected := []KeyRef{
		{Domain: DomainMetric, Field: "market_cap"},
		{Domain: DomainIndex, Field: "momentum"},
		{Domain: DomainSignal, Field: "total_magnitude"},
	}
	for i, ref := range expected {
		if key[i] != ref {
			t.Fatalf("reference %d: expected %+v, got %+v", i, ref, key[i])
		}
	}
}

func TestParseCompoundKeySingleReference(t *testing.T) {
	key, err := ParseCompoundKey("index.growth")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(key) != 1 || key[0].Domain != DomainIndex || key[0].Field != "growth" {
		t.Fatalf("unexpected key: %+v", key)
	}
}

func TestParseCompoundKeyRejectsProfileDomain(t *testing.T) {
	_, err := ParseCompoundKey("profile.industry")
	if err == nil {
		t.Fatal("expected error for profile domain")
	}

	_, err = ParseCompoundKey("metric.revenue|profile.industry")
	if err == nil {
		t.Fatal("expected error for profile domain inside a chain")
	}
}

func TestParseCompoundKeyRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"market_cap",
		"metric.",
		"weather.temperature",
		"metric.revenue|",
	}
	for _, expr := range cases {
		if _, err := ParseCompoundKey(expr); err == nil {
			t.Fatalf("expected error for %q", expr)
		}
	}
}

func TestCompoundKeyString(t *testing.T) {
	key, err := ParseCompoundKey("metric.revenue|signal.net_sentiment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := key.String(); got != "metric.revenue|signal.net_sentiment" {
		t.Fatalf("unexpected round trip: %q", got)
	}
}

func TestParseFieldChain(t *testing.T) {
	chain, err := ParseFieldChain("deal_value|strength")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain) != 2 || chain[0] != "deal_value" || chain[1] != "strength" {
		t.Fatalf("unexpected chain: %+v", chain)
	}

	if _, err := ParseFieldChain(""); err == nil {
		t.Fatal("expected error for empty expression")
	}
	if _, err := ParseFieldChain("strength||overlap"); err == nil {
		t.Fatal("expected error for empty chain element")
	}
}
