package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"campaigner/internal/intervention"
	mcpserver "campaigner/internal/mcp"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, seed uint64) *mcpserver.Server {
	t.Helper()
	f, err := intervention.NewBuiltinFactory()
	if err != nil {
		t.Fatalf("NewBuiltinFactory: %v", err)
	}
	return mcpserver.NewServer(f, seed)
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcpserver.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callToolE(ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) (map[string]any, error) {
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("CallTool(%s): %w", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				return nil, fmt.Errorf("CallTool(%s) error: %s", name, tc.Text)
			}
		}
		return nil, fmt.Errorf("CallTool(%s) returned error", name)
	}
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			result := make(map[string]any)
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				return nil, fmt.Errorf("unmarshal %s result: %w", name, err)
			}
			return result, nil
		}
	}
	return nil, fmt.Errorf("no text content in %s result", name)
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	out, err := callToolE(ctx, session, name, args)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestServer_ToolDiscovery(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t, 0))

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	want := map[string]bool{
		"list_presets":     false,
		"compose_campaign": false,
		"render_cascade":   false,
	}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %q not found in ListTools", name)
		}
	}
}

func TestServer_ListPresets(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t, 0))

	out := callTool(t, ctx, session, "list_presets", map[string]any{})
	list, _ := out["presets"].([]any)
	if len(list) != 6 {
		t.Fatalf("want 6 presets, got %v", out["presets"])
	}
	first, _ := list[0].(map[string]any)
	if first["name"] != "fmda" || first["description"] == "" {
		t.Errorf("first preset: got %v", first)
	}
}

func TestServer_ComposePreset(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t, 0))

	out := callTool(t, ctx, session, "compose_campaign", map[string]any{"preset": "msat-triggered", "seed": 5})
	if out["events"] != float64(2) || out["seed"] != float64(5) {
		t.Errorf("compose: got events %v seed %v", out["events"], out["seed"])
	}
	var doc struct {
		Events []map[string]any `json:"Events"`
	}
	if err := json.Unmarshal([]byte(out["campaign"].(string)), &doc); err != nil {
		t.Fatalf("campaign json: %v", err)
	}
	if len(doc.Events) != 2 {
		t.Errorf("campaign events: want 2, got %d", len(doc.Events))
	}
	custom, _ := out["custom_events"].([]any)
	if len(custom) != 2 {
		t.Errorf("custom events: want the two diagnostic tethers, got %v", custom)
	}
}

func TestServer_ComposeInlineIsSeeded(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t, 99))

	inline := `{"name":"inline","entries":[{"drug":{"type":"fMDA","drug_code":"AL","start_days":[5],"radius":"hh"}}]}`
	a := callTool(t, ctx, session, "compose_campaign", map[string]any{"plan": inline})
	b := callTool(t, ctx, session, "compose_campaign", map[string]any{"plan": inline})
	if a["seed"] != float64(99) {
		t.Errorf("server seed not applied: got %v", a["seed"])
	}
	if a["campaign"] != b["campaign"] {
		t.Error("same seed produced different documents")
	}
}

func TestServer_ComposeErrors(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t, 1))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "nothing", args: map[string]any{}, want: "preset or plan is required"},
		{name: "both", args: map[string]any{"preset": "mda", "plan": "name: x"}, want: "not both"},
		{name: "unknown preset", args: map[string]any{"preset": "nope"}, want: "unknown preset"},
		{name: "bad radius", args: map[string]any{"plan": "entries:\n  - drug: {type: fMDA, drug_code: AL, start_days: [1], radius: ring}\n"}, want: "radius"},
		{name: "unknown type", args: map[string]any{"plan": "entries:\n  - drug: {type: IRS, drug_code: AL, start_days: [1]}\n"}, want: "IRS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := callToolE(ctx, session, "compose_campaign", tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("want error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestServer_RenderCascade(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t, 3))

	out := callTool(t, ctx, session, "render_cascade", map[string]any{"preset": "rfmsat-snowball"})
	diagram, _ := out["diagram"].(string)
	if out["format"] != "mermaid" || !strings.HasPrefix(diagram, "graph LR") {
		t.Errorf("mermaid: got %v", out)
	}
	if !strings.Contains(diagram, "Diagnostic_Survey_2") {
		t.Errorf("diagram lacks the last snowball tether:\n%s", diagram)
	}

	out = callTool(t, ctx, session, "render_cascade", map[string]any{"preset": "mda", "format": "markdown"})
	if table, _ := out["diagram"].(string); !strings.Contains(table, "| E0 ") {
		t.Errorf("markdown table: got\n%s", table)
	}

	if _, err := callToolE(ctx, session, "render_cascade", map[string]any{"preset": "mda", "format": "svg"}); err == nil {
		t.Error("svg: want error")
	}
}

func TestWatchParent_StopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mcpserver.WatchParent(ctx, cancel, 10*time.Millisecond)
	cancel()
	time.Sleep(30 * time.Millisecond)
	if ctx.Err() == nil {
		t.Fatal("context should be canceled")
	}
}
