package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dithermask/pkg/cache"
	"github.com/matzehuels/dithermask/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the mask cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached mask and artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := c.openCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				printInfo("Cache backend %q holds nothing to clear", c.cfg().Cache.Backend)
				return nil
			}
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Location: %s", cacheLocation(c.cfg().Cache))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(cacheLocation(c.cfg().Cache))
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the file
// cache, the server otherwise. Credentials are never printed.
func cacheLocation(cfg config.CacheConfig) string {
	switch cfg.Backend {
	case "", cache.BackendFile:
		if cfg.Dir != "" {
			return cfg.Dir
		}
		dir, err := config.DefaultCacheDir()
		if err != nil {
			return "(unknown)"
		}
		return dir
	case cache.BackendRedis:
		addr := cfg.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		return fmt.Sprintf("redis://%s/%d", addr, cfg.RedisDB)
	case cache.BackendMongo:
		db := cfg.MongoDatabase
		if db == "" {
			db = cache.DefaultMongoDatabase
		}
		return "mongo database " + db
	}
	return cfg.Backend
}
