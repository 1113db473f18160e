package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis resolves tenants stored as JSON records. Webhook handling only reads;
// Put exists for provisioning tools.
type Redis struct {
	redis           *redis.Client
	defaultTimezone string
}

// NewRedis creates a Redis-backed directory.
func NewRedis(client *redis.Client, defaultTimezone string) *Redis {
	return &Redis{redis: client, defaultTimezone: defaultTimezone}
}

func (d *Redis) key(tenantID string) string {
	return fmt.Sprintf("tenant:config:%s", tenantID)
}

// Resolve loads and validates the tenant record on every call.
func (d *Redis) Resolve(ctx context.Context, tenantID string) (Tenant, error) {
	if tenantID == "" {
		return Tenant{}, ErrTenantNotFound
	}
	data, err := d.redis.Get(ctx, d.key(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Tenant{}, ErrTenantNotFound
	}
	if err != nil {
		return Tenant{}, fmt.Errorf("directory: get tenant: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Tenant{}, fmt.Errorf("directory: unmarshal tenant: %w", err)
	}
	if rec.ID != tenantID {
		return Tenant{}, fmt.Errorf("directory: record under %s carries id %q", tenantID, rec.ID)
	}
	return NewTenant(rec, d.defaultTimezone)
}

// Put validates and stores a tenant record.
func (d *Redis) Put(ctx context.Context, rec Record) error {
	tenant, err := NewTenant(rec, d.defaultTimezone)
	if err != nil {
		return err
	}
	data, err := json.Marshal(tenant.Record())
	if err != nil {
		return fmt.Errorf("directory: marshal tenant: %w", err)
	}
	if err := d.redis.Set(ctx, d.key(tenant.ID()), data, 0).Err(); err != nil {
		return fmt.Errorf("directory: set tenant: %w", err)
	}
	return nil
}
