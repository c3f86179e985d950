// Package mcpserver exposes restructuring as MCP tools so an assistant can
// read the current layout, preview a new one and apply it.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/outline"
	"github.com/nikbrunner/bmr/internal/restructure"
	"github.com/nikbrunner/bmr/internal/tree"
)

// Restructurer plans and applies target layouts.
type Restructurer interface {
	Simulate(ctx context.Context, text string) (*restructure.Plan, error)
	Execute(ctx context.Context, text string) model.Result
}

// Snapshots lists and restores stored copies of the tree.
type Snapshots interface {
	List(ctx context.Context) ([]model.Snapshot, error)
	Restore(ctx context.Context, id string) (bool, error)
}

// Options configures the server.
type Options struct {
	Version      string
	RootParentID string
	// ReadOnly leaves out every tool that changes the tree.
	ReadOnly bool
}

type GetOutlineInput struct {
	ParentID string `json:"parentId,omitempty" jsonschema:"Folder id to render. Default: the configured root folder"`
}

type LayoutInput struct {
	Text string `json:"text" jsonschema:"Target layout as an indented outline. Folders end with /, bookmarks are 'title url'"`
}

type SearchInput struct {
	Query string `json:"query" jsonschema:"Fuzzy title query"`
}

type RestoreInput struct {
	ID string `json:"id" jsonschema:"Snapshot id from list_snapshots"`
}

type ListSnapshotsInput struct{}

type handlers struct {
	svc          tree.Service
	restructurer Restructurer
	snapshots    Snapshots
	rootParentID string

	// mu serializes tools that change the tree.
	mu sync.Mutex
}

// New creates the MCP server with all tools registered.
func New(svc tree.Service, r Restructurer, snapshots Snapshots, opts Options) *mcp.Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.RootParentID == "" {
		opts.RootParentID = model.DefaultParentID
	}

	srv := mcp.NewServer(&mcp.Implementation{Name: "bmr", Version: opts.Version}, nil)
	h := &handlers{svc: svc, restructurer: r, snapshots: snapshots, rootParentID: opts.RootParentID}

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_outline",
		Description: "Get the current bookmark layout of a folder as an indented outline. Edit this text and pass it to simulate_restructure or restructure.",
	}, h.GetOutline)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "simulate_restructure",
		Description: "Preview the folder creations and moves needed to reach a target layout. Changes nothing.",
	}, h.Simulate)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_bookmarks",
		Description: "Fuzzy search bookmarks and folders by title.",
	}, h.Search)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_snapshots",
		Description: "List stored snapshots of the bookmark tree, newest first.",
	}, h.ListSnapshots)

	if opts.ReadOnly {
		return srv
	}

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "restructure",
		Description: "Apply a target layout. A snapshot is taken first and restored automatically if any step fails.",
	}, h.Restructure)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "restore_snapshot",
		Description: "Restore the bookmark tree to a stored snapshot. The current state is snapshotted first.",
	}, h.RestoreSnapshot)

	return srv
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

func jsonTextResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func (h *handlers) GetOutline(ctx context.Context, _ *mcp.CallToolRequest, input GetOutlineInput) (*mcp.CallToolResult, any, error) {
	parentID := input.ParentID
	if parentID == "" {
		parentID = h.rootParentID
	}

	roots, err := h.svc.GetTree(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read tree: %w", err)
	}
	parent := model.Find(roots, parentID)
	if parent == nil || !parent.IsFolder() {
		return errorResult(fmt.Sprintf("folder %s not found", parentID)), nil, nil
	}

	text := outline.Render(parent.Children)
	if text == "" {
		text = "(empty folder)"
	}
	return textResult(text), nil, nil
}

func (h *handlers) Simulate(ctx context.Context, _ *mcp.CallToolRequest, input LayoutInput) (*mcp.CallToolResult, any, error) {
	plan, err := h.restructurer.Simulate(ctx, input.Text)
	if err != nil {
		return nil, nil, err
	}
	if len(plan.Operations) == 0 && len(plan.Warnings) == 0 {
		return textResult("Nothing to do: bookmarks already match the layout"), nil, nil
	}

	var b strings.Builder
	creates, moves := model.CountOperations(plan.Operations)
	fmt.Fprintf(&b, "%d folders to create, %d items to place\n", creates, moves)
	b.WriteString(plan.Describe())
	for _, w := range plan.Warnings {
		fmt.Fprintf(&b, "warning: %s: %s\n", w.Title, w.Message)
	}
	return textResult(b.String()), nil, nil
}

func (h *handlers) Restructure(ctx context.Context, _ *mcp.CallToolRequest, input LayoutInput) (*mcp.CallToolResult, any, error) {
	h.mu.Lock()
	res := h.restructurer.Execute(ctx, input.Text)
	h.mu.Unlock()
	out, err := jsonTextResult(res)
	if err != nil {
		return nil, nil, err
	}
	out.IsError = !res.Success
	return out, nil, nil
}

func (h *handlers) Search(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
	nodes, err := h.svc.Search(ctx, input.Query)
	if err != nil {
		return nil, nil, err
	}
	if len(nodes) == 0 {
		return textResult(fmt.Sprintf("No bookmarks found for %q", input.Query)), nil, nil
	}
	res, err := jsonTextResult(nodes)
	return res, nil, err
}

type snapshotSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
}

func (h *handlers) ListSnapshots(ctx context.Context, _ *mcp.CallToolRequest, _ ListSnapshotsInput) (*mcp.CallToolResult, any, error) {
	snaps, err := h.snapshots.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	out := make([]snapshotSummary, len(snaps))
	for i, s := range snaps {
		out[i] = snapshotSummary{ID: s.ID, Name: s.Name, Timestamp: s.Timestamp.Format(time.RFC3339)}
	}
	res, err := jsonTextResult(out)
	return res, nil, err
}

func (h *handlers) RestoreSnapshot(ctx context.Context, _ *mcp.CallToolRequest, input RestoreInput) (*mcp.CallToolResult, any, error) {
	h.mu.Lock()
	ok, err := h.snapshots.Restore(context.WithoutCancel(ctx), input.ID)
	h.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return errorResult(fmt.Sprintf("snapshot %s not found", input.ID)), nil, nil
	}
	return textResult(fmt.Sprintf("Restored snapshot %s", input.ID)), nil, nil
}
