package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lalibi/rodi-kremastos/handlers"
	"github.com/lalibi/rodi-kremastos/logging"
	"github.com/lalibi/rodi-kremastos/media"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		lib := newLibrary(cfg)
		cache := media.NewCache(lib, cfg.CacheTTL)

		router, err := handlers.SetupRouter(cfg, lib, cache)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Watch {
			go func() {
				if err := cache.Watch(ctx); err != nil {
					logging.Warn("media watcher stopped", "err", err)
				}
			}()
		}

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		logging.Info("Starting server", "url", "http://localhost:"+cfg.Port+cfg.Href("/"), "target", cfg.Target)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "9010", "Port to run the server on")
	serveCmd.Flags().Bool("watch", false, "Reload galleries when the media directory changes")

	v := loader.Viper()
	_ = v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = v.BindPFlag("watch", serveCmd.Flags().Lookup("watch"))
}
