package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// Finder is the slice of canopy.Finder exposed as tools.
type Finder interface {
	Run(ctx context.Context, root string) (*domain.Report, error)
	Categories(ctx context.Context) ([]string, error)
	Report(ctx context.Context, id string) (*domain.Report, error)
	Reports(ctx context.Context) ([]string, error)
}

// CategoriesResponse is the structured output of list_categories.
type CategoriesResponse struct {
	Categories []string `json:"categories" jsonschema_description:"Names of the root categories, in menu order"`
}

// FindResponse is the structured output of find_leaf.
type FindResponse struct {
	Report *domain.Report `json:"report" jsonschema_description:"The run report: kind is found or exhausted"`
}

// Server exposes a Finder as an MCP Server.
type Server struct {
	finder    Finder
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(finder Finder, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		finder:    finder,
		logger:    logger,
		mcpServer: server.NewMCPServer("canopy-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on the given port using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: find_leaf
	findTool := mcp.NewTool("find_leaf",
		mcp.WithDescription("Search the menu for a populated leaf, starting from a root category. "+
			"An exhausted result means the budgets ran out; it is not an error."),
		mcp.WithString("root", mcp.Required(), mcp.Description("Name of the root category to start from")),
		mcp.WithOutputSchema[FindResponse](),
	)
	s.mcpServer.AddTool(findTool, mcp.NewStructuredToolHandler(s.handleFindLeaf))

	// TOOL: list_categories
	listTool := mcp.NewTool("list_categories",
		mcp.WithDescription("List the root categories of the menu."),
		mcp.WithOutputSchema[CategoriesResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListCategories))

	// TOOL: get_report
	s.mcpServer.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Fetch the report of a previous run by ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Run ID returned by find_leaf")),
	), s.handleGetReport)
}

func (s *Server) handleFindLeaf(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FindResponse, error) {
	root, _ := args["root"].(string)
	root = strings.TrimSpace(root)
	if root == "" {
		return FindResponse{}, errors.New("root is required")
	}

	report, err := s.finder.Run(ctx, root)
	if err != nil {
		s.logger.Error("MCP find_leaf failed", "root", root, "error", err)
		return FindResponse{}, fmt.Errorf("search failed: %w", err)
	}
	return FindResponse{Report: report}, nil
}

func (s *Server) handleListCategories(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CategoriesResponse, error) {
	roots, err := s.finder.Categories(ctx)
	if err != nil {
		return CategoriesResponse{}, fmt.Errorf("list categories failed: %w", err)
	}
	return CategoriesResponse{Categories: roots}, nil
}

func (s *Server) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(request.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	report, err := s.finder.Report(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("run %s not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	jsonBytes, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: canopy://reports
	s.mcpServer.AddResource(mcp.NewResource("canopy://reports", "Stored run reports",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.finder.Reports(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "canopy://reports",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
