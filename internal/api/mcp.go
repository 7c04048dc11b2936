package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/dayboard/internal/planner"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store Datastore
	Clock planner.Clock // optional
}

func (d MCPDeps) plannerOpts() []planner.Option {
	if d.Clock == nil {
		return nil
	}
	return []planner.Option{planner.WithClock(d.Clock)}
}

// NewMCPServer creates an MCP server with all dayboard tools and resources registered.
func NewMCPServer(deps MCPDeps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"dayboard",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("dayboard: personal journal, daily and weekly plans, and six-week goals."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("get_dashboard",
			mcp.WithDescription("Return today's tasks with progress, the current six-week goals, and this week's plan."),
		),
		mcpGetDashboard(deps),
	)

	s.AddTool(
		mcp.NewTool("toggle_task",
			mcp.WithDescription("Flip the completion state of one of today's tasks."),
			mcp.WithString("id", mcp.Description("Task ID as returned by get_dashboard"), mcp.Required()),
		),
		mcpToggleTask(deps),
	)

	s.AddTool(
		mcp.NewTool("add_journal_entry",
			mcp.WithDescription("Append a new journal entry."),
			mcp.WithString("content", mcp.Description("Entry text"), mcp.Required()),
		),
		mcpAddJournalEntry(deps),
	)

	s.AddTool(
		mcp.NewTool("journal_prompt",
			mcp.WithDescription("Return a random journaling prompt."),
		),
		mcpJournalPrompt,
	)

	s.AddTool(
		mcp.NewTool("set_six_week_goals",
			mcp.WithDescription("Record a new list of six-week goals. Earlier lists are kept as history."),
			mcp.WithArray("goals", mcp.Description("Goal texts"), mcp.Required()),
		),
		mcpSetGoals(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"dayboard://daily-plan",
			"Daily Plan",
			mcp.WithResourceDescription("Today's plan: top tasks, additional tasks, and notes"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceDailyPlan(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"dayboard://six-week-goals",
			"Six-Week Goals",
			mcp.WithResourceDescription("The most recent six-week goals"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceGoals(deps),
	)

	return s
}

func mcpGetDashboard(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		agg := planner.NewAggregator(deps.Store, deps.plannerOpts()...)
		agg.Refresh(ctx)

		b, err := json.Marshal(agg.View())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal dashboard: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpToggleTask(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		agg := planner.NewAggregator(deps.Store, deps.plannerOpts()...)
		agg.Refresh(ctx)
		if err := agg.Toggle(ctx, id); err != nil {
			if errors.Is(err, planner.ErrTaskNotFound) {
				return mcpError(fmt.Sprintf("task %s not found", id)), nil
			}
			return mcpError(agg.Err()), nil
		}

		v := agg.View()
		for _, t := range v.Tasks {
			if t.ID == id {
				state := "not completed"
				if t.Completed {
					state = "completed"
				}
				return mcpText(fmt.Sprintf("Task %q marked %s (%d of %d done)", t.Text, state, v.Completed, v.Total)), nil
			}
		}
		return mcpText("Task updated"), nil
	}
}

func mcpAddJournalEntry(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}

		c := planner.NewComposer(deps.Store, deps.plannerOpts()...)
		c.SetDraft(content)
		e, err := c.Save(ctx)
		if err != nil {
			return mcpError(c.Message()), nil
		}
		return mcpText(fmt.Sprintf("Stored journal entry %s", e.ID)), nil
	}
}

func mcpJournalPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcpText(planner.RandomPrompt()), nil
}

func mcpSetGoals(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		goals := req.GetStringSlice("goals", nil)
		if goals == nil {
			return mcpError("goals is required"), nil
		}

		ed := planner.NewGoalsEditor(deps.Store, deps.plannerOpts()...)
		ed.SetDraft(goals)
		if err := ed.Save(ctx); err != nil {
			return mcpError(ed.Err()), nil
		}
		return mcpText(fmt.Sprintf("Saved %d six-week goals", len(goals))), nil
	}
}

func mcpResourceDailyPlan(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ed := planner.NewDailyEditor(deps.Store, deps.plannerOpts()...)
		if err := ed.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to get daily plan: %w", err)
		}
		return jsonResource(req.Params.URI, ed.Draft())
	}
}

func mcpResourceGoals(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ed := planner.NewGoalsEditor(deps.Store, deps.plannerOpts()...)
		if err := ed.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to get six-week goals: %w", err)
		}
		return jsonResource(req.Params.URI, GoalsBody{Goals: ed.Goals()})
	}
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
