package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/artifactengine/mce/internal/api"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve [host:port]",
	Short: "Start the managed computation engine's HTTP API server",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	host, port := "0.0.0.0", 8085
	if len(args) == 1 {
		if h, p, ok := splitHostPort(args[0]); ok {
			host, port = h, p
		}
	}
	if serveHost != "" {
		host = serveHost
	}
	if servePort > 0 {
		port = servePort
	}

	srv := api.NewServer(e)

	ctx, cancel := context.WithCancel(context.Background())
	e.Start(ctx)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[cli] shutdown error: %v", err)
		}
	}()

	fmt.Printf("mce serving on http://%s\n", addr)
	if e.Config.MetricsEnabled {
		fmt.Printf("  metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// splitHostPort parses "host:port" without relying on net.SplitHostPort's
// IPv6-bracket handling, which this simple positional argument never needs.
func splitHostPort(s string) (host string, port int, ok bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			h := s[:i]
			var p int
			if _, err := fmt.Sscanf(s[i+1:], "%d", &p); err != nil {
				return "", 0, false
			}
			return h, p, true
		}
	}
	return "", 0, false
}
