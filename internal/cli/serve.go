package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dithermask/pkg/api"
	"github.com/matzehuels/dithermask/pkg/cache"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		maxPixels int
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mask generator over HTTP",
		Long: `Serve the mask generator over HTTP.

POST /v1/masks?format=png with a JSON body such as {"dims": [64, 64]}
returns the encoded mask. Masks and artifacts go through the configured
cache, so a shared redis or mongo backend serves repeated requests from
any instance.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := c.cfg().Server
			if !cmd.Flags().Changed("addr") && srv.Addr != "" {
				addr = srv.Addr
			}
			if !cmd.Flags().Changed("max-pixels") && srv.MaxPixels > 0 {
				maxPixels = srv.MaxPixels
			}
			return c.runServe(cmd.Context(), addr, maxPixels, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&maxPixels, "max-pixels", api.DefaultMaxPixels, "largest grid a request may ask for")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, maxPixels int, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	s := api.New(runner,
		api.WithLogger(c.Logger),
		api.WithMaxPixels(maxPixels))

	printInfo("Serving on %s", StyleHighlight.Render(addr))
	backend := c.cfg().Cache.Backend
	if noCache {
		backend = cache.BackendNone
	}
	printDetail("Cache: %s", backend)
	return s.ListenAndServe(ctx, addr)
}
