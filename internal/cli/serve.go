package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/canopy"
	httpAdapter "github.com/aretw0/canopy/pkg/adapters/http"
	"github.com/aretw0/canopy/pkg/adapters/mcp"
	"golang.org/x/sync/errgroup"
)

// ServeOptions contains the configuration for the serve and mcp commands.
type ServeOptions struct {
	ConfigPath string
	Tree       string
	Addr       string
	LogLevel   string
	// Ready is called with the bound address once the listener is up.
	Ready func(addr string)
}

func (o ServeOptions) app(ctx context.Context, stderr io.Writer, streams bool) (*App, error) {
	cfg, err := LoadConfig(o.ConfigPath, o.Tree, nil)
	if err != nil {
		return nil, err
	}
	if o.Addr != "" {
		cfg.HTTP.Addr = o.Addr
	}
	logger, err := NewLogger(stderr, cfg.Log, o.LogLevel)
	if err != nil {
		return nil, err
	}
	return NewApp(ctx, cfg, logger, AppOptions{Streams: streams})
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions, stderr io.Writer) error {
	app, err := opts.app(ctx, stderr, true)
	if err != nil {
		return err
	}
	defer app.Close()

	handler := httpAdapter.NewHandler(app.Finder,
		httpAdapter.WithLogger(app.Logger),
		httpAdapter.WithVersion(canopy.Version),
		httpAdapter.WithMetrics(app.Registry, app.Metrics),
		httpAdapter.WithStreams(app.Streams),
	)

	ln, err := net.Listen("tcp", app.Config.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", app.Config.HTTP.Addr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info("Starting canopy server", "addr", ln.Addr().String(), "version", canopy.Version)
		if opts.Ready != nil {
			opts.Ready(ln.Addr().String())
		}
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("Graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		app.Logger.Info("Canopy server stopped gracefully")
		return nil
	})
	return g.Wait()
}

// MCPOptions selects the MCP transport.
type MCPOptions struct {
	ServeOptions
	Transport string
	Port      int
}

// ServeMCP exposes the Finder to MCP clients until ctx is cancelled (SSE) or
// stdin is closed (stdio).
func ServeMCP(ctx context.Context, opts MCPOptions, stderr io.Writer) error {
	app, err := opts.app(ctx, stderr, false)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := mcp.NewServer(app.Finder, canopy.Version, app.Logger)
	switch opts.Transport {
	case "", "stdio":
		app.Logger.Info("Starting canopy MCP Server (Stdio)...")
		return srv.ServeStdio()
	case "sse":
		app.Logger.Info("Starting canopy MCP Server (SSE)", "port", opts.Port)
		return srv.ServeSSE(ctx, opts.Port)
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}
}
