package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type ScopeKind string

const (
	ScopeGeneral  ScopeKind = "GENERAL"
	ScopeProvider ScopeKind = "PROVIDER"
)

// RateScope says whether a rate applies to all providers or overrides the
// price for one specific provider.
type RateScope struct {
	Kind       ScopeKind
	ProviderID uuid.UUID
}

func GeneralScope() RateScope {
	return RateScope{Kind: ScopeGeneral}
}

func ProviderScope(providerID uuid.UUID) RateScope {
	return RateScope{Kind: ScopeProvider, ProviderID: providerID}
}

// ParseRateScope decodes the stored form: "general" or "provider:<uuid>".
// Unknown scope text is an error, never a silent fallback to general.
func ParseRateScope(raw string) (RateScope, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "general") {
		return GeneralScope(), nil
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(raw), "provider:"); ok {
		id, err := uuid.Parse(strings.TrimSpace(rest))
		if err != nil {
			return RateScope{}, fmt.Errorf("invalid provider scope %q: %w", raw, err)
		}
		return ProviderScope(id), nil
	}
	return RateScope{}, fmt.Errorf("unknown rate scope %q", raw)
}

func (s RateScope) String() string {
	switch s.Kind {
	case ScopeProvider:
		return "provider:" + s.ProviderID.String()
	default:
		return "general"
	}
}

// Rate prices one product within one scope. UnitPrice is in currency minor
// units per kilogram; money math stays integral end to end.
type Rate struct {
	ProductID string
	Scope     RateScope
	UnitPrice int64
}
