package directory

import (
	"context"
	"fmt"
	"sort"
)

// Static is an in-memory directory populated once at startup.
type Static struct {
	tenants map[string]Tenant
}

// NewStatic validates every record and rejects duplicate identifiers.
func NewStatic(records []Record, defaultTimezone string) (*Static, error) {
	tenants := make(map[string]Tenant, len(records))
	for i, rec := range records {
		tenant, err := NewTenant(rec, defaultTimezone)
		if err != nil {
			return nil, fmt.Errorf("tenant #%d: %w", i, err)
		}
		if _, dup := tenants[tenant.ID()]; dup {
			return nil, fmt.Errorf("directory: duplicate tenant id %q", tenant.ID())
		}
		tenants[tenant.ID()] = tenant
	}
	return &Static{tenants: tenants}, nil
}

// Resolve returns the tenant or ErrTenantNotFound. Matching is case-sensitive.
func (s *Static) Resolve(_ context.Context, tenantID string) (Tenant, error) {
	if s == nil {
		return Tenant{}, ErrTenantNotFound
	}
	tenant, ok := s.tenants[tenantID]
	if !ok {
		return Tenant{}, ErrTenantNotFound
	}
	return tenant, nil
}

// IDs lists the configured tenant identifiers in sorted order.
func (s *Static) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.tenants))
	for id := range s.tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Tenants returns every tenant, sorted by id.
func (s *Static) Tenants() []Tenant {
	ids := s.IDs()
	out := make([]Tenant, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.tenants[id])
	}
	return out
}

// Len reports the number of tenants.
func (s *Static) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tenants)
}
