// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the billios field-test formulae and report evaluation as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/billios/internal/core"
	"github.com/valter-silva-au/billios/internal/observability"
	"github.com/valter-silva-au/billios/pkg/fieldtest"
	"github.com/valter-silva-au/billios/pkg/models"
)

// Server wraps billios services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	runner      core.FormulaRunner
	reportMgr   core.ReportManager
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server. reportMgr and metricsCalc may be nil,
// in which case the tools that need them report an error.
func NewServer(runner core.FormulaRunner, reportMgr core.ReportManager, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		runner:      runner,
		reportMgr:   reportMgr,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "billios", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves over stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type sandUsedInput struct {
	ConePreTest  float64  `json:"cone_pre_test" jsonschema:"cone and sand weight before the test"`
	ConePostTest float64  `json:"cone_post_test" jsonschema:"cone and sand weight after the test"`
	SandInCone   *float64 `json:"sand_in_cone,omitempty" jsonschema:"weight of sand filling the cone, defaults to the configured calibration"`
}

type wetDensityInput struct {
	Soil float64 `json:"soil" jsonschema:"weight of soil removed from the test hole"`
	// SandUsed, when set, is used as is. Otherwise it is computed from the
	// cone weights.
	SandUsed     *float64 `json:"sand_used,omitempty" jsonschema:"known sand used weight; when omitted it is computed from cone_pre_test and cone_post_test"`
	ConePreTest  float64  `json:"cone_pre_test,omitempty" jsonschema:"cone and sand weight before the test"`
	ConePostTest float64  `json:"cone_post_test,omitempty" jsonschema:"cone and sand weight after the test"`
	SandInCone   *float64 `json:"sand_in_cone,omitempty" jsonschema:"weight of sand filling the cone"`
	SandDensity  *float64 `json:"sand_density,omitempty" jsonschema:"bulk density of the calibrated sand"`
}

type moistureContentInput struct {
	WetWeight float64 `json:"wet_weight" jsonschema:"sample weight before drying, including the pan"`
	DryWeight float64 `json:"dry_weight" jsonschema:"sample weight after drying, including the pan"`
	TarePan   float64 `json:"tare_pan" jsonschema:"weight of the empty pan"`
}

type dryDensityInput struct {
	WetDensity      *float64 `json:"wet_density,omitempty" jsonschema:"known wet density; when omitted it is computed from soil and the cone weights"`
	Soil            float64  `json:"soil,omitempty"`
	ConePreTest     float64  `json:"cone_pre_test,omitempty"`
	ConePostTest    float64  `json:"cone_post_test,omitempty"`
	SandInCone      *float64 `json:"sand_in_cone,omitempty"`
	SandDensity     *float64 `json:"sand_density,omitempty"`
	MoistureContent *float64 `json:"moisture_content,omitempty" jsonschema:"known moisture content ratio; when omitted it is computed from the sample weights"`
	WetWeight       float64  `json:"wet_weight,omitempty"`
	DryWeight       float64  `json:"dry_weight,omitempty"`
	TarePan         float64  `json:"tare_pan,omitempty"`
}

type compactionInput struct {
	DryDensity float64 `json:"dry_density" jsonschema:"field dry density"`
	LabMax     float64 `json:"lab_max" jsonschema:"laboratory maximum dry density"`
}

type rockCorrectionInput struct {
	LeftOnSieveWeight float64 `json:"left_on_sieve_weight" jsonschema:"weight retained on the sieve"`
	PreSieveWeight    float64 `json:"pre_sieve_weight" jsonschema:"total weight before sieving"`
}

type labMaxCorrectionInput struct {
	RockCorrection    *float64 `json:"rock_correction,omitempty" jsonschema:"known rock correction fraction; when omitted it is computed from the sieve weights"`
	LeftOnSieveWeight float64  `json:"left_on_sieve_weight,omitempty"`
	PreSieveWeight    float64  `json:"pre_sieve_weight,omitempty"`
	LabMax            float64  `json:"lab_max" jsonschema:"laboratory maximum dry density"`
	SpecificGravity   *float64 `json:"specific_gravity,omitempty" jsonschema:"specific gravity of the oversize material"`
}

type resultOutput struct {
	Formula string  `json:"formula"`
	Result  float64 `json:"result"`
}

type evaluateReportInput struct {
	ReportID string `json:"report_id" jsonschema:"the report identifier (e.g. FT-00001)"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	Calculations      int            `json:"calculations"`
	ByFormula         map[string]int `json:"by_formula"`
	NonFinite         int            `json:"non_finite"`
	ReportsAdded      int            `json:"reports_added"`
	ReportsEvaluated  int            `json:"reports_evaluated"`
	ReportsPassed     int            `json:"reports_passed"`
	ReportsFailed     int            `json:"reports_failed"`
	ReportsUnjudged   int            `json:"reports_unjudged"`
	AverageCompaction float64        `json:"average_compaction"`
	EventCount        int            `json:"event_count"`
	OldestEvent       string         `json:"oldest_event,omitempty"`
	NewestEvent       string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "sand_used",
		Description: "Weight of sand used by a sand-cone test: pre - (post + sand_in_cone), rounded to 2 decimals.",
	}, s.handleSandUsed)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wet_density",
		Description: "In-place wet density: soil / sand_used * sand_density, rounded to 4 decimals. sand_used may be given or computed from the cone weights.",
	}, s.handleWetDensity)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "moisture_content",
		Description: "Moisture content ratio: (wet - dry) / (dry - tare), rounded to 8 decimals.",
	}, s.handleMoistureContent)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "dry_density",
		Description: "Dry density: wet_density / (1 + moisture_content), rounded to a whole number. Either input may be given or computed from raw weights.",
	}, s.handleDryDensity)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "compaction",
		Description: "Relative compaction percent: dry_density / lab_max * 100, rounded to 1 decimal.",
	}, s.handleCompaction)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "rock_correction",
		Description: "Oversize fraction: left_on_sieve_weight / pre_sieve_weight, rounded to 1 decimal.",
	}, s.handleRockCorrection)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "lab_max_correction",
		Description: "Lab maximum dry density corrected for oversize material, rounded to 1 decimal.",
	}, s.handleLabMaxCorrection)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "evaluate_report",
		Description: "Run the full calculation chain for a stored field report and record whether it meets the required compaction.",
	}, s.handleEvaluateReport)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log: calculations by formula, reports evaluated, pass rate inputs.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleSandUsed(_ context.Context, _ *gomcp.CallToolRequest, input sandUsedInput) (*gomcp.CallToolResult, resultOutput, error) {
	calc := s.sandUsed(input.ConePreTest, input.ConePostTest, input.SandInCone)
	return s.run("sand_used", map[string]float64{
		"cone_pre_test":  input.ConePreTest,
		"cone_post_test": input.ConePostTest,
		"sand_in_cone":   calc.SandInCone(),
	}, calc)
}

func (s *Server) handleWetDensity(_ context.Context, _ *gomcp.CallToolRequest, input wetDensityInput) (*gomcp.CallToolResult, resultOutput, error) {
	calc := s.wetDensity(input.Soil, input.SandUsed, input.ConePreTest, input.ConePostTest, input.SandInCone, input.SandDensity)
	return s.run("wet_density", map[string]float64{
		"soil":         input.Soil,
		"sand_used":    calc.SandUsed(),
		"sand_density": calc.SandDensity(),
	}, calc)
}

func (s *Server) handleMoistureContent(_ context.Context, _ *gomcp.CallToolRequest, input moistureContentInput) (*gomcp.CallToolResult, resultOutput, error) {
	calc := fieldtest.NewMoistureContent(input.WetWeight, input.DryWeight, input.TarePan)
	return s.run("moisture_content", map[string]float64{
		"wet_weight": input.WetWeight,
		"dry_weight": input.DryWeight,
		"tare_pan":   input.TarePan,
	}, calc)
}

func (s *Server) handleDryDensity(_ context.Context, _ *gomcp.CallToolRequest, input dryDensityInput) (*gomcp.CallToolResult, resultOutput, error) {
	var wet fieldtest.WetDensityChoice
	if input.WetDensity != nil {
		wet = fieldtest.WetDensityValue(*input.WetDensity)
	} else {
		wet = fieldtest.WetDensityOf(s.wetDensity(input.Soil, nil, input.ConePreTest, input.ConePostTest, input.SandInCone, input.SandDensity))
	}

	var moisture fieldtest.MoistureContentChoice
	if input.MoistureContent != nil {
		moisture = fieldtest.MoistureContentValue(*input.MoistureContent)
	} else {
		moisture = fieldtest.MoistureContentOf(fieldtest.NewMoistureContent(input.WetWeight, input.DryWeight, input.TarePan))
	}

	calc := fieldtest.NewDryDensity(wet, moisture)
	return s.run("dry_density", map[string]float64{
		"wet_density":      calc.WetDensity(),
		"moisture_content": calc.MoistureContent(),
	}, calc)
}

func (s *Server) handleCompaction(_ context.Context, _ *gomcp.CallToolRequest, input compactionInput) (*gomcp.CallToolResult, resultOutput, error) {
	calc := fieldtest.NewCompaction(fieldtest.DryDensityValue(input.DryDensity), input.LabMax)
	return s.run("compaction", map[string]float64{
		"dry_density": input.DryDensity,
		"lab_max":     input.LabMax,
	}, calc)
}

func (s *Server) handleRockCorrection(_ context.Context, _ *gomcp.CallToolRequest, input rockCorrectionInput) (*gomcp.CallToolResult, resultOutput, error) {
	calc := fieldtest.NewRockCorrection(input.LeftOnSieveWeight, input.PreSieveWeight)
	return s.run("rock_correction", map[string]float64{
		"left_on_sieve_weight": input.LeftOnSieveWeight,
		"pre_sieve_weight":     input.PreSieveWeight,
	}, calc)
}

func (s *Server) handleLabMaxCorrection(_ context.Context, _ *gomcp.CallToolRequest, input labMaxCorrectionInput) (*gomcp.CallToolResult, resultOutput, error) {
	var rock fieldtest.RockCorrectionChoice
	if input.RockCorrection != nil {
		rock = fieldtest.RockCorrectionValue(*input.RockCorrection)
	} else {
		rock = fieldtest.RockCorrectionOf(fieldtest.NewRockCorrection(input.LeftOnSieveWeight, input.PreSieveWeight))
	}

	opts := []fieldtest.Option{fieldtest.WithCalibration(s.runner.Calibration())}
	if input.SpecificGravity != nil {
		opts = append(opts, fieldtest.WithSpecificGravity(*input.SpecificGravity))
	}

	calc := fieldtest.NewLabMaxCorrection(rock, input.LabMax, opts...)
	return s.run("lab_max_correction", map[string]float64{
		"rock_correction":  calc.RockCorrection(),
		"lab_max":          input.LabMax,
		"specific_gravity": calc.SpecificGravity(),
	}, calc)
}

func (s *Server) handleEvaluateReport(_ context.Context, _ *gomcp.CallToolRequest, input evaluateReportInput) (*gomcp.CallToolResult, models.ReportResult, error) {
	if input.ReportID == "" {
		return errorResult("report_id is required"), models.ReportResult{}, nil
	}
	if s.reportMgr == nil {
		return errorResult("report manager not available"), models.ReportResult{}, nil
	}

	result, err := s.reportMgr.EvaluateReport(input.ReportID)
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating report %s: %s", input.ReportID, err)), models.ReportResult{}, nil
	}
	return nil, *result, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available"), emptyMetricsOutput(), nil
	}

	sinceTime, err := observability.ParseSince(input.Since, time.Now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	m, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		Calculations:      m.Calculations,
		ByFormula:         m.ByFormula,
		NonFinite:         m.NonFinite,
		ReportsAdded:      m.ReportsAdded,
		ReportsEvaluated:  m.ReportsEvaluated,
		ReportsPassed:     m.ReportsPassed,
		ReportsFailed:     m.ReportsFailed,
		ReportsUnjudged:   m.ReportsUnjudged,
		AverageCompaction: m.AverageCompaction,
		EventCount:        m.EventCount,
	}
	if m.OldestEvent != nil {
		out.OldestEvent = m.OldestEvent.Format(time.RFC3339)
	}
	if m.NewestEvent != nil {
		out.NewestEvent = m.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func (s *Server) sandUsed(pre, post float64, sandInCone *float64) fieldtest.SandUsed {
	opts := []fieldtest.Option{fieldtest.WithCalibration(s.runner.Calibration())}
	if sandInCone != nil {
		opts = append(opts, fieldtest.WithSandInCone(*sandInCone))
	}
	return fieldtest.NewSandUsed(pre, post, opts...)
}

func (s *Server) wetDensity(soil float64, sandUsed *float64, pre, post float64, sandInCone, sandDensity *float64) fieldtest.WetDensity {
	var choice fieldtest.SandUsedChoice
	if sandUsed != nil {
		choice = fieldtest.SandUsedValue(*sandUsed)
	} else {
		choice = fieldtest.SandUsedOf(s.sandUsed(pre, post, sandInCone))
	}

	opts := []fieldtest.Option{fieldtest.WithCalibration(s.runner.Calibration())}
	if sandDensity != nil {
		opts = append(opts, fieldtest.WithSandDensity(*sandDensity))
	}
	return fieldtest.NewWetDensity(soil, choice, opts...)
}

// run evaluates c through the formula runner. Results that are not finite
// are always reported as tool errors since JSON cannot encode them.
func (s *Server) run(name string, inputs map[string]float64, c fieldtest.Calculator) (*gomcp.CallToolResult, resultOutput, error) {
	result, err := s.runner.Run(name, inputs, c)
	if err == nil {
		_, err = fieldtest.Check(name, result)
	}
	if err != nil {
		return errorResult(fmt.Sprintf("calculating %s: %s", name, err)), resultOutput{Formula: name}, nil
	}
	return nil, resultOutput{Formula: name, Result: result}, nil
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{ByFormula: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
