package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/statescript/internal/presentation/tui"
	httpAdapter "github.com/aretw0/statescript/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the editor HTTP API",
		Long:  `Serves the node catalog, graph build reports, validation and change events over HTTP.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetString("port")
			dir, _ := cmd.Flags().GetString("dir")

			promReg := prometheus.NewRegistry()
			promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			eng, closeStore, err := newEngine(cmd, withMetrics(promReg))
			if err != nil {
				return err
			}
			defer closeStore()

			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           httpAdapter.NewHandler(eng, httpAdapter.WithLogger(logger), httpAdapter.WithMetrics(promReg)),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				if term.IsTerminal(int(os.Stderr.Fd())) {
					tui.PrintBanner(os.Stderr)
				}
				fmt.Fprintf(os.Stderr, "Starting Statescript Server on %s\n", srv.Addr)
				fmt.Fprintf(os.Stderr, "Serving graphs from: %s\n", dir)
				serverErrors <- srv.ListenAndServe()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)

			case <-ctx.Done():
				fmt.Fprintln(os.Stderr, "\nStart shutdown...")

				// Give outstanding requests a deadline for completion.
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					srv.Close()
					return fmt.Errorf("graceful shutdown did not complete in %v: %w", 5*time.Second, err)
				}
				fmt.Fprintln(os.Stderr, "Statescript Server stopped gracefully")
				return nil
			}
		},
	}
	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	return cmd
}
