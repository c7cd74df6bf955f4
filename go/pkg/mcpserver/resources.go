package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/example/toydb/go/pkg/views"
)

func (s *Server) registerResources() {
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(views.UserURITemplate, "user",
			mcp.WithTemplateDescription("Get user data as a resource"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.readUser,
	)
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(views.CatalogURITemplate, "catalog",
			mcp.WithTemplateDescription("Get product catalog by category"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.readCatalog,
	)
}

func (s *Server) readUser(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, ok := views.ParseUserURI(req.Params.URI)
	if !ok {
		return nil, fmt.Errorf("invalid user resource uri %q", req.Params.URI)
	}

	text, found := views.UserResource(s.svc, id)
	mime := "application/json"
	if !found {
		mime = "text/plain"
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: req.Params.URI, MIMEType: mime, Text: text},
	}, nil
}

func (s *Server) readCatalog(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	category, ok := views.ParseCatalogURI(req.Params.URI)
	if !ok {
		return nil, fmt.Errorf("invalid catalog resource uri %q", req.Params.URI)
	}
	text, err := views.CatalogResource(s.svc, category)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: text},
	}, nil
}
