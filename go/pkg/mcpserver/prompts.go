package mcpserver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/example/toydb/go/pkg/views"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(
		mcp.NewPrompt(views.UserReportPromptName,
			mcp.WithPromptDescription("Generate a comprehensive report for a user"),
			mcp.WithArgument("user_id",
				mcp.RequiredArgument(),
				mcp.ArgumentDescription("ID of the user to report on"),
			),
		),
		s.userReport,
	)
	s.mcp.AddPrompt(
		mcp.NewPrompt(views.SalesSummaryPromptName,
			mcp.WithPromptDescription("Generate a sales summary report"),
		),
		s.salesSummary,
	)
}

func (s *Server) userReport(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	raw, ok := req.Params.Arguments["user_id"]
	if !ok {
		return nil, fmt.Errorf("user_id is required")
	}
	userID, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("user_id must be an integer, got %q", raw)
	}
	return promptResult("Comprehensive user report", views.UserReportPrompt(userID)), nil
}

func (s *Server) salesSummary(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return promptResult("Sales summary report", views.SalesSummaryPrompt()), nil
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}
