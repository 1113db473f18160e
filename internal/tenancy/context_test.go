package tenancy

import (
	"context"
	"testing"
)

func TestWithTenantIDAndTenantIDFromContext(t *testing.T) {
	ctx := WithTenantID(context.Background(), "agent_123")

	got, ok := TenantIDFromContext(ctx)
	if !ok {
		t.Fatalf("expected tenant id to be present")
	}
	if got != "agent_123" {
		t.Fatalf("expected agent_123, got %s", got)
	}
}

func TestTenantIDFromContext_EmptyOrMissing(t *testing.T) {
	ctx := context.Background()
	if _, ok := TenantIDFromContext(ctx); ok {
		t.Fatalf("expected missing tenant id to return false")
	}

	ctx = context.WithValue(ctx, tenantKey, 42)
	if _, ok := TenantIDFromContext(ctx); ok {
		t.Fatalf("expected non-string tenant id to return false")
	}

	ctx = WithTenantID(context.Background(), "")
	if _, ok := TenantIDFromContext(ctx); ok {
		t.Fatalf("expected empty tenant id to return false")
	}
}
