package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seo-optimizer/seoscore/analyzer"
	"github.com/seo-optimizer/seoscore/errs"
)

// NewMCPServer exposes a as the analyze_page tool.
func NewMCPServer(a Analyzer, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"seoscore",
		version,
		server.WithToolCapabilities(false),
	)

	analyzeTool := mcp.NewTool("analyze_page",
		mcp.WithDescription("Analyze a single web page for on-page SEO. Returns an overall score, eight dimension scores and prioritized recommendations. Falls back to a headless browser when the page blocks plain HTTP clients."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The page to analyze; https:// is assumed when no scheme is given"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'json' (default, the full report) or 'summary' (plain text)"),
			mcp.Enum("json", "summary"),
		),
	)

	s.AddTool(analyzeTool, handleAnalyzePage(a))
	return s
}

func handleAnalyzePage(a Analyzer) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		report, err := a.Analyze(ctx, url)
		if err != nil {
			return mcp.NewToolResultError(toolErrorText(errs.From(err))), nil
		}

		if request.GetString("format", "json") == "summary" {
			var b strings.Builder
			if err := analyzer.WriteSummary(&b, report); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to format report: %v", err)), nil
			}
			return mcp.NewToolResultText(b.String()), nil
		}

		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal report: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func toolErrorText(e *errs.Error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Message)
	if e.Details != "" {
		fmt.Fprintf(&b, "\n%s", e.Details)
	}
	for _, s := range e.Suggestions {
		fmt.Fprintf(&b, "\n- %s", s)
	}
	return b.String()
}
