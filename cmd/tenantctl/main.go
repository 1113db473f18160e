// tenantctl validates tenant directory files and seeds them into Redis.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wolfman30/retell-calcom-bridge/internal/app/bootstrap"
	appconfig "github.com/wolfman30/retell-calcom-bridge/internal/config"
	"github.com/wolfman30/retell-calcom-bridge/internal/directory"
	"github.com/wolfman30/retell-calcom-bridge/pkg/logging"
)

func main() {
	if err := newRootCmd(appconfig.Load()).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *appconfig.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tenantctl",
		Short:         "Manage the tenant directory used by the scheduling webhook",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfg.DefaultTimezone, "default-timezone", cfg.DefaultTimezone, "Timezone for tenants that omit one")

	rootCmd.AddCommand(validateCmd(cfg))
	rootCmd.AddCommand(seedCmd(cfg))
	rootCmd.AddCommand(showCmd(cfg))
	return rootCmd
}

func validateCmd(cfg *appconfig.Config) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a tenant directory file (JSON or YAML)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := runValidate(cmd.OutOrStdout(), file, cfg.DefaultTimezone)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", cfg.TenantDirectoryPath, "Path to the tenant directory file")
	return cmd
}

func seedCmd(cfg *appconfig.Config) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate a tenant directory file and write every tenant to Redis",
		Long: `Seed writes each tenant to tenant:config:<id> so deployments running
with TENANT_SOURCE=redis pick them up on the next call.

Examples:
  REDIS_ADDR=localhost:6379 tenantctl seed --file tenants.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := runValidate(io.Discard, file, cfg.DefaultTimezone)
			if err != nil {
				return err
			}
			store, closeFn, err := openRedisDirectory(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()
			return runSeed(cmd.Context(), cmd.OutOrStdout(), store, records)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", cfg.TenantDirectoryPath, "Path to the tenant directory file")
	cmd.Flags().StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address (defaults to REDIS_ADDR)")
	return cmd
}

func showCmd(cfg *appconfig.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <tenant-id>",
		Short: "Print a tenant stored in Redis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openRedisDirectory(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()
			return runShow(cmd.Context(), cmd.OutOrStdout(), store, args[0])
		},
	}
	cmd.Flags().StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address (defaults to REDIS_ADDR)")
	return cmd
}

func openRedisDirectory(ctx context.Context, cfg *appconfig.Config) (*directory.Redis, func(), error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil, nil, errors.New("redis address is required (set REDIS_ADDR or --redis-addr)")
	}
	client := bootstrap.BuildRedisClient(ctx, cfg, logging.New("error"), true)
	if client == nil {
		return nil, nil, fmt.Errorf("redis not reachable at %s", cfg.RedisAddr)
	}
	return directory.NewRedis(client, cfg.DefaultTimezone), func() { _ = client.Close() }, nil
}

func runValidate(out io.Writer, path, defaultTimezone string) ([]directory.Record, error) {
	records, err := directory.ReadRecords(path)
	if err != nil {
		return nil, err
	}
	dir, err := directory.NewStatic(records, defaultTimezone)
	if err != nil {
		return nil, err
	}
	for _, tenant := range dir.Tenants() {
		fmt.Fprintf(out, "%s\t%s\t%s\n", tenant.ID(), tenant.Timezone(), strings.Join(tenant.AppointmentTypes(), ","))
	}
	fmt.Fprintf(out, "%d tenant(s) valid\n", dir.Len())
	return records, nil
}

type tenantWriter interface {
	Put(ctx context.Context, rec directory.Record) error
}

func runSeed(ctx context.Context, out io.Writer, store tenantWriter, records []directory.Record) error {
	for _, rec := range records {
		if err := store.Put(ctx, rec); err != nil {
			return fmt.Errorf("seed %s: %w", rec.ID, err)
		}
		fmt.Fprintf(out, "seeded %s\n", rec.ID)
	}
	return nil
}

func runShow(ctx context.Context, out io.Writer, dir directory.Directory, tenantID string) error {
	tenant, err := dir.Resolve(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", tenantID, err)
	}
	rec := tenant.Record()
	rec.CalAPIKey = maskKey(rec.CalAPIKey)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
