package theme

import (
	"fmt"
	"strings"
)

// Domain identifies the attribute domain a key reference reads from.
// The profile domain is deliberately not representable here: profile
// attributes are non-numeric and never feed a numeric channel.
type Domain int

const (
	DomainMetric Domain = iota
	DomainIndex
	DomainSignal
)

func (d Domain) String() string {
	switch d {
	case DomainMetric:
		return "metric"
	case DomainIndex:
		return "index"
	case DomainSignal:
		return "signal"
	}
	return "unknown"
}

// KeyRef is a single domain.field reference.
type KeyRef struct {
	Domain Domain
	Field  string
}

// CompoundKey is an ordered fallback chain of key references. Resolution
// returns the first reference whose value is a finite number.
type CompoundKey []KeyRef

// FallbackDelimiter separates references inside a compound key expression.
const FallbackDelimiter = "|"

// ParseCompoundKey parses an expression like "metric.market_cap|index.momentum"
// into a compound key. Expressions are parsed once at theme load, never per
// entity per request.
func ParseCompoundKey(expr string) (CompoundKey, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty compound key expression")
	}

	parts := strings.Split(expr, FallbackDelimiter)
	key := make(CompoundKey, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		domainName, field, found := strings.Cut(part, ".")
		if !found || field == "" {
			return nil, fmt.Errorf("malformed key reference %q: want domain.field", part)
		}

		var domain Domain
		switch domainName {
		case "metric":
			domain = DomainMetric
		case "index":
			domain = DomainIndex
		case "signal":
			domain = DomainSignal
		case "profile":
			return nil, fmt.Errorf("key reference %q: profile attributes are not numeric", part)
		default:
			return nil, fmt.Errorf("key reference %q: unknown domain %q", part, domainName)
		}

		key = append(key, KeyRef{Domain: domain, Field: field})
	}
	return key, nil
}

// mustKey parses a compound key expression for the built-in catalog.
// Catalog expressions are static; a malformed one is a programming error.
func mustKey(expr string) CompoundKey {
	key, err := ParseCompoundKey(expr)
	if err != nil {
		panic(err)
	}
	return key
}

func (k CompoundKey) String() string {
	parts := make([]string, len(k))
	for i, ref := range k {
		parts[i] = ref.Domain.String() + "." + ref.Field
	}
	return strings.Join(parts, FallbackDelimiter)
}

// FieldChain is the connection-side analogue of a compound key: an ordered
// fallback chain of fields resolved against a connection's flat numeric
// attribute bag (strength, sentiment and free-form attributes).
type FieldChain []string

// ParseFieldChain parses an expression like "deal_value|strength".
func ParseFieldChain(expr string) (FieldChain, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty field chain expression")
	}
	parts := strings.Split(expr, FallbackDelimiter)
	chain := make(FieldChain, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("malformed field chain %q", expr)
		}
		chain = append(chain, part)
	}
	return chain, nil
}

func mustChain(expr string) FieldChain {
	chain, err := ParseFieldChain(expr)
	if err != nil {
		panic(err)
	}
	return chain
}
