package root

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"habitquest/internal/httpapi"
	"habitquest/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			added, err := a.svc.SeedCatalog(ctx)
			if err != nil {
				return err
			}
			a.logger.Info("catalog ready", "added", added)

			gen, err := a.generator(ctx)
			if err != nil {
				return err
			}
			defer gen.Close()

			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			h := httpapi.NewHandler(a.svc, gen, a.cfg.MaxVariations, a.logger)
			srv := &http.Server{
				Addr:              addr,
				Handler:           server.NewRouter("hq", h.RegisterRoutes),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return server.Run(ctx, srv, a.logger, a.cfg.ShutdownGrace)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides HQ_HTTP_ADDR)")
	return cmd
}
