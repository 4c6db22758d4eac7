package dashboard

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/dashclone/kit"
	"github.com/hazyhaar/dashclone/runlog"
)

// RunsRequest filters the run journal.
type RunsRequest struct {
	Operation string `json:"operation"`
	Limit     int    `json:"limit"`
}

// RegisterMCP registers the dashboard tools on an MCP server. Every editing
// tool is logged and journaled in j; a nil j disables the journal and the
// dashclone_runs tool reports no runs.
func (e *Editor) RegisterMCP(srv *mcp.Server, j *runlog.Journal) {
	mw := kit.Chain(kit.Logging(e.logger), kit.Journaled(j))
	eps := e.Endpoints()

	bulkProps := func(extra map[string]any) map[string]any {
		extra["line_area_only"] = map[string]any{"type": "boolean", "description": "Only line and area charts"}
		return extra
	}

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        OpOpenEdit,
		Description: "Wait for the dashboard frame and switch the dashboard to edit mode.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, mw(eps[OpOpenEdit]), func(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        OpClone,
		Description: "Clone the last N dashboard components: add N new ones, copy size and position shifted down by spacing, and retitle them.",
		InputSchema: inputSchema(map[string]any{
			"count":   map[string]any{"type": "integer", "minimum": 1, "description": "Number of components to clone"},
			"spacing": map[string]any{"type": "integer", "description": "Pixels added to each clone's top"},
			"find":    map[string]any{"type": "string", "description": "Text replaced in the upper-cased title (first occurrence)"},
			"replace": map[string]any{"type": "string", "description": "Replacement text"},
		}, []string{"count"}),
	}, mw(eps[OpClone]), kit.DecodeJSON[CloneRequest]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        OpSelect,
		Description: "List dashboard components with their title, position and size styles.",
		InputSchema: inputSchema(bulkProps(map[string]any{}), nil),
	}, mw(eps[OpSelect]), kit.DecodeJSON[BulkRequest]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        OpResize,
		Description: "Set width and height, in pixels, of the selected components.",
		InputSchema: inputSchema(bulkProps(map[string]any{
			"width":  map[string]any{"type": "integer", "description": "Width in pixels"},
			"height": map[string]any{"type": "integer", "description": "Height in pixels"},
		}), []string{"width", "height"}),
	}, mw(eps[OpResize]), kit.DecodeJSON[ResizeRequest]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        OpMove,
		Description: "Shift the selected components down and right. Both increments must be greater than 0.",
		InputSchema: inputSchema(bulkProps(map[string]any{
			"top":  map[string]any{"type": "integer", "minimum": 1, "description": "Pixels added to top"},
			"left": map[string]any{"type": "integer", "minimum": 1, "description": "Pixels added to left"},
		}), []string{"top", "left"}),
	}, mw(eps[OpMove]), kit.DecodeJSON[MoveRequest]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        OpRuns,
		Description: "List recent dashboard edit runs, newest first.",
		InputSchema: inputSchema(map[string]any{
			"operation": map[string]any{"type": "string", "description": "Filter by operation name"},
			"limit":     map[string]any{"type": "integer", "description": "Max runs (default 20)"},
		}, nil),
	}, func(ctx context.Context, req any) (any, error) {
		r := req.(*RunsRequest)
		runs, err := j.Recent(ctx, r.Operation, r.Limit)
		if err != nil {
			return nil, err
		}
		if runs == nil {
			runs = []runlog.Entry{}
		}
		return map[string]any{"runs": runs}, nil
	}, kit.DecodeJSON[RunsRequest]())
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}
