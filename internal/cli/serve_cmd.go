package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/civic/internal/api"
	"github.com/alexanderramin/civic/internal/service"
	"github.com/alexanderramin/civic/internal/supervisor"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine and catalog over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			var engine service.ActionEngine
			if app.Engine != nil {
				engine = app.Engine
			}
			srv := api.NewServer(engine, app.Catalog, app.Metrics, app.logger(), api.Options{
				CORSOrigins: cfg.Server.CORSOrigins,
				RateLimit:   cfg.Server.RateLimit,
				RateWindow:  cfg.Server.RateWindow,
				PoolLimit:   cfg.Engine.PoolLimit,
			})
			httpServer := &http.Server{
				Handler:           srv.Router(),
				ReadTimeout:       cfg.Server.ReadTimeout,
				ReadHeaderTimeout: cfg.Server.ReadTimeout,
				WriteTimeout:      cfg.Server.WriteTimeout,
			}

			tree := supervisor.NewTree(app.logger(), supervisor.DefaultTreeConfig())
			if app.Flusher != nil {
				tree.AddDataService(app.Flusher)
			}
			httpService := supervisor.NewHTTPServerService(httpServer, addr, cfg.Server.ShutdownTimeout)
			tree.AddAPIService(httpService)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			go func() {
				select {
				case a := <-httpService.Ready():
					fmt.Fprintf(out, "Listening on http://%s\n", a)
				case <-ctx.Done():
				}
			}()

			err := tree.Serve(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")

	return cmd
}
