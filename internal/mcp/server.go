// Package mcp exposes campaign composition as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"campaigner/internal/cascade"
	"campaigner/internal/drugcampaign"
	"campaigner/internal/format"
	"campaigner/internal/intervention"
	"campaigner/internal/logging"
	"campaigner/internal/plan"
	"campaigner/internal/presets"
)

// Version is reported to clients in the server implementation info.
var Version = "dev"

// Server wraps the MCP SDK server around a plan builder.
type Server struct {
	MCPServer *sdkmcp.Server

	builder *plan.Builder
	// seed applies to calls that give none; 0 draws one per call.
	seed uint64
	log  *slog.Logger
}

// NewServer creates an MCP server whose tools build leaves with f.
func NewServer(f *intervention.Factory, seed uint64) *Server {
	s := &Server{
		builder: plan.NewBuilder(f),
		seed:    seed,
		log:     logging.New("mcp"),
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "campaigner", Version: Version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves over stdin/stdout until ctx is done or the client leaves.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_presets",
		Description: "List the shipped campaign plans by name with a one-line description.",
	}, s.handleListPresets)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "compose_campaign",
		Description: "Build a campaign document from a preset name or an inline YAML/JSON plan. Returns the document JSON, the custom events to declare and one summary per plan entry.",
	}, s.handleCompose)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "render_cascade",
		Description: "Build a plan and render its signal cascade as a Mermaid flowchart or a table of events.",
	}, s.handleRender)
}

// --- Tool input/output types ---

type planInput struct {
	Preset string `json:"preset,omitempty" jsonschema:"name of a shipped plan (see list_presets)"`
	Plan   string `json:"plan,omitempty" jsonschema:"inline plan as YAML or JSON text"`
	Seed   uint64 `json:"seed,omitempty" jsonschema:"tether seed; 0 uses the server seed or a random one"`
}

type listPresetsInput struct{}

type listPresetsOutput struct {
	Presets []presets.Preset `json:"presets"`
}

type composeOutput struct {
	Name         string                    `json:"name"`
	Seed         uint64                    `json:"seed"`
	Events       int                       `json:"events"`
	CustomEvents []string                  `json:"custom_events,omitempty"`
	Summaries    []drugcampaign.Descriptor `json:"summaries"`
	Campaign     string                    `json:"campaign"`
}

type renderInput struct {
	Preset string `json:"preset,omitempty" jsonschema:"name of a shipped plan (see list_presets)"`
	Plan   string `json:"plan,omitempty" jsonschema:"inline plan as YAML or JSON text"`
	Seed   uint64 `json:"seed,omitempty" jsonschema:"tether seed; 0 uses the server seed or a random one"`
	Format string `json:"format,omitempty" jsonschema:"mermaid (default), ascii or markdown"`
}

type renderOutput struct {
	Name    string `json:"name"`
	Format  string `json:"format"`
	Diagram string `json:"diagram"`
}

// --- Tool handlers ---

func (s *Server) handleListPresets(_ context.Context, _ *sdkmcp.CallToolRequest, _ listPresetsInput) (*sdkmcp.CallToolResult, listPresetsOutput, error) {
	list, err := presets.List()
	if err != nil {
		return nil, listPresetsOutput{}, err
	}
	return nil, listPresetsOutput{Presets: list}, nil
}

func (s *Server) handleCompose(_ context.Context, _ *sdkmcp.CallToolRequest, input planInput) (*sdkmcp.CallToolResult, composeOutput, error) {
	res, err := s.build(input)
	if err != nil {
		return nil, composeOutput{}, err
	}
	doc, err := res.Document.MarshalJSON()
	if err != nil {
		return nil, composeOutput{}, fmt.Errorf("encode campaign: %w", err)
	}
	return nil, composeOutput{
		Name:         res.Name,
		Seed:         res.Seed,
		Events:       res.Document.Len(),
		CustomEvents: res.Document.CustomEvents(),
		Summaries:    res.Summaries,
		Campaign:     string(doc),
	}, nil
}

func (s *Server) handleRender(_ context.Context, _ *sdkmcp.CallToolRequest, input renderInput) (*sdkmcp.CallToolResult, renderOutput, error) {
	kind := strings.ToLower(input.Format)
	if kind == "" {
		kind = "mermaid"
	}
	var mode format.Mode
	if kind != "mermaid" {
		m, err := format.ParseMode(kind)
		if err != nil {
			return nil, renderOutput{}, err
		}
		mode = m
	}
	res, err := s.build(planInput{Preset: input.Preset, Plan: input.Plan, Seed: input.Seed})
	if err != nil {
		return nil, renderOutput{}, err
	}
	out := renderOutput{Name: res.Name, Format: kind}
	if kind == "mermaid" {
		out.Diagram = cascade.Render(res.Graph)
	} else {
		out.Diagram = format.Cascade(cascade.Rows(res.Graph), mode)
	}
	return nil, out, nil
}

func (s *Server) build(input planInput) (*plan.Result, error) {
	var (
		p   *plan.Plan
		err error
	)
	switch {
	case input.Preset != "" && input.Plan != "":
		return nil, errors.New("give either preset or plan, not both")
	case input.Preset != "":
		p, err = presets.Load(input.Preset)
	case input.Plan != "":
		p, err = plan.Load([]byte(input.Plan), "")
	default:
		return nil, errors.New("preset or plan is required")
	}
	if err != nil {
		return nil, err
	}
	seed := input.Seed
	if seed == 0 {
		seed = s.seed
	}
	res, err := s.builder.Build(p, seed)
	if err != nil {
		s.log.Warn("build rejected", "plan", p.Name, "error", err)
		return nil, err
	}
	return res, nil
}
