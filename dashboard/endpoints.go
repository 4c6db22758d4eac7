package dashboard

import (
	"context"
	"fmt"

	"github.com/hazyhaar/dashclone/kit"
)

// Operation names, shared by the CLI, the MCP tools and the run journal.
const (
	OpOpenEdit = "dashclone_open_edit"
	OpClone    = "dashclone_clone"
	OpSelect   = "dashclone_select"
	OpResize   = "dashclone_resize"
	OpMove     = "dashclone_move"
	OpRuns     = "dashclone_runs"
)

// ResizeRequest sets the size of the selected components.
type ResizeRequest struct {
	Width        int  `json:"width"`
	Height       int  `json:"height"`
	LineAreaOnly bool `json:"line_area_only"`
}

// MoveRequest shifts the selected components.
type MoveRequest struct {
	Top          int  `json:"top"`
	Left         int  `json:"left"`
	LineAreaOnly bool `json:"line_area_only"`
}

// OpenEditResult reports OpenEditMode.
type OpenEditResult struct {
	Toggled bool `json:"toggled_edit_mode"`
}

// SelectResult lists components.
type SelectResult struct {
	Count      int         `json:"count"`
	Components []Component `json:"components"`
}

// Endpoints returns the editor's operations keyed by operation name. Each
// endpoint takes a pointer to its request type (*CloneRequest,
// *BulkRequest, *ResizeRequest, *MoveRequest; OpOpenEdit takes nil).
func (e *Editor) Endpoints() map[string]kit.Endpoint {
	return map[string]kit.Endpoint{
		OpOpenEdit: func(ctx context.Context, _ any) (any, error) {
			sess, err := e.OpenEditMode(ctx)
			if err != nil {
				return nil, err
			}
			return &OpenEditResult{Toggled: sess.Toggled}, nil
		},
		OpClone: func(ctx context.Context, req any) (any, error) {
			r, err := as[CloneRequest](req)
			if err != nil {
				return nil, err
			}
			return e.CloneComponents(ctx, *r)
		},
		OpSelect: func(ctx context.Context, req any) (any, error) {
			r, err := as[BulkRequest](req)
			if err != nil {
				return nil, err
			}
			comps, err := e.Inventory(ctx, *r)
			if err != nil {
				return nil, err
			}
			return &SelectResult{Count: len(comps), Components: comps}, nil
		},
		OpResize: func(ctx context.Context, req any) (any, error) {
			r, err := as[ResizeRequest](req)
			if err != nil {
				return nil, err
			}
			return e.Resize(ctx, BulkRequest{LineAreaOnly: r.LineAreaOnly}, r.Width, r.Height)
		},
		OpMove: func(ctx context.Context, req any) (any, error) {
			r, err := as[MoveRequest](req)
			if err != nil {
				return nil, err
			}
			return e.Move(ctx, BulkRequest{LineAreaOnly: r.LineAreaOnly}, r.Top, r.Left)
		},
	}
}

// as accepts *T, T, or nil (the zero T).
func as[T any](req any) (*T, error) {
	switch r := req.(type) {
	case *T:
		if r == nil {
			return new(T), nil
		}
		return r, nil
	case T:
		return &r, nil
	case nil:
		return new(T), nil
	}
	return nil, fmt.Errorf("dashboard: unexpected request type %T", req)
}
