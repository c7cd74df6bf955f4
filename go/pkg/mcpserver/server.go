// Package mcpserver wires the toydb operations into an MCP server.
//
// Tools map one-to-one onto toydb.Service operations, resources onto the
// views renderers, and prompts onto the views templates. This package only
// adapts arguments and results; it holds no business logic.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/example/toydb/go/pkg/toydb"
)

const shutdownTimeout = 5 * time.Second

// Server is an MCP server backed by a toydb.Service.
type Server struct {
	svc   *toydb.Service
	log   *zap.Logger
	mcp   *server.MCPServer
	tools []tool
}

// New creates the MCP server with every tool, resource template and prompt
// registered.
func New(svc *toydb.Service, name, version string, log *zap.Logger) *Server {
	s := &Server{
		svc: svc,
		log: log,
		mcp: server.NewMCPServer(
			name,
			version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithPromptCapabilities(false),
			server.WithRecovery(),
			server.WithInstructions(instructions),
		),
	}

	s.tools = s.toolTable()
	for _, t := range s.tools {
		s.mcp.AddTool(t.def, s.instrument(t.def.Name, t.handle))
	}
	s.registerResources()
	s.registerPrompts()
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// LogCatalogue logs the registered tools grouped by area.
func (s *Server) LogCatalogue(name string) {
	s.log.Info("toy database MCP server started", zap.String("name", name))
	for _, area := range Areas {
		var names []string
		for _, e := range s.Catalogue() {
			if e.Area == area {
				names = append(names, e.Name)
			}
		}
		s.log.Info("available tools", zap.String("area", area), zap.Strings("tools", names))
	}
}

// ServeStdio serves MCP over in and out until ctx is cancelled or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.log.Named("stdio")))
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// ServeHTTP serves MCP over streamable HTTP at addr under /mcp until ctx is
// cancelled.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", s.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("MCP listening", zap.String("transport", "http"), zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("mcp http transport: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mcp http shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp http transport: %w", err)
	}
	return nil
}

const instructions = `Toy database with users, products and orders.

Look up users with get_user_by_id, get_users_by_city or search_users, and
products with get_product_by_id or get_products_by_category. create_order
checks that the user and product exist and that enough stock remains; it
fails without changing anything otherwise. Use get_sales_by_category and
get_user_statistics for aggregates, and the generate_user_report and
generate_sales_summary prompts for written reports.`
