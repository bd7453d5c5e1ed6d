package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/factortree/pkg/api"
	"github.com/matzehuels/factortree/pkg/store"
)

func newServeCmd(cfg *Config) *cobra.Command {
	var (
		addr     string
		mongoURI string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			if mongoURI == "" {
				mongoURI = cfg.Store.MongoURI
			}

			var runStore store.Store = store.NewMemoryStore()
			if mongoURI != "" {
				connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				ms, err := store.NewMongoStore(connectCtx, store.MongoConfig{URI: mongoURI})
				cancel()
				if err != nil {
					logger.Warn("mongo unavailable, archiving runs in memory", "err", err)
				} else {
					runStore = ms
					defer func() {
						closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
						defer cancel()
						_ = ms.Close(closeCtx)
					}()
				}
			}

			server := api.NewServer(runStore, logger)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: server.Router(),
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = httpServer.Shutdown(shutdownCtx)
			}()

			logger.Info("serving", "addr", addr)
			err := httpServer.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI for archiving runs")
	return cmd
}
