// Package serve handles the HTTP upload server command
package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inmova/bank-import/cmd/root"
	"inmova/bank-import/internal/api"
	"inmova/bank-import/internal/logging"

	"github.com/spf13/cobra"
)

// ShutdownTimeout bounds how long in-flight uploads may take to finish.
const ShutdownTimeout = 10 * time.Second

// Addr overrides server.addr from the configuration.
var Addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the statement import API over HTTP",
	Long: `Start an HTTP server accepting statement uploads. Statements resolved to
a single company are stored when a database is configured.`,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&Addr, "addr", "", "Listen address (default from server.addr)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}
	cfg := c.GetConfig()

	addr := cfg.Server.Addr
	if Addr != "" {
		addr = Addr
	}

	server := api.NewServer(c.GetPipeline(), c.GetCompanyDirectory(), c.GetStatementSink(), cfg.MaxUploadBytes(), c.GetLogger())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Run(ctx, ln, server.NewRouter(), c.GetLogger())
}

// Run serves handler on ln until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, ln net.Listener, handler http.Handler, logger logging.Logger) error {
	logger = logging.OrDefault(logger)
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", logging.Field{Key: "addr", Value: ln.Addr().String()})
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
