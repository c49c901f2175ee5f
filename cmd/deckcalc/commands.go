package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/piwi3910/DeckCalc/internal/engine"
	"github.com/piwi3910/DeckCalc/internal/export"
	"github.com/piwi3910/DeckCalc/internal/importer"
	"github.com/piwi3910/DeckCalc/internal/model"
	"github.com/piwi3910/DeckCalc/internal/project"
	"github.com/piwi3910/DeckCalc/internal/server"
)

// inputFlags are shared by estimate and compare.
type inputFlags struct {
	config    string
	plan      string
	dxf       string
	dxfScale  float64
	outline   string
	stairs    string
	mode      string
	cutPlan   bool
	direction float64
	width     float64
	fastening string
	savePlan  string

	set map[string]bool
}

func (in *inputFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&in.config, "config", "", "config file (default $DECKCALC_CONFIG or ~/.deckcalc/config.json)")
	fs.StringVar(&in.plan, "plan", "", "plan request JSON file")
	fs.StringVar(&in.dxf, "dxf", "", "DXF drawing holding the deck outline")
	fs.Float64Var(&in.dxfScale, "dxf-scale", 1, "millimeters per DXF drawing unit")
	fs.StringVar(&in.outline, "outline", "", "outline vertices as CSV or XLSX")
	fs.StringVar(&in.stairs, "stairs", "", "stair flights as CSV or XLSX")
	fs.StringVar(&in.mode, "mode", "", "computation mode: consumer or pro")
	fs.BoolVar(&in.cutPlan, "cut-plan", false, "build a cut plan (pro mode)")
	fs.Float64Var(&in.direction, "direction", 0, "decking direction in degrees")
	fs.Float64Var(&in.width, "width", 0, "board width in mm")
	fs.StringVar(&in.fastening, "fastening", "", "fastening mode: clip or screw")
	fs.StringVar(&in.savePlan, "save-plan", "", "write the resolved request to this JSON file")
}

// parse parses args and records which flags were given explicitly.
func (in *inputFlags) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	in.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { in.set[f.Name] = true })
	return nil
}

func configPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("DECKCALC_CONFIG"); env != "" {
		return env
	}
	return project.DefaultConfigPath()
}

// load builds the estimate request from the input flags and returns it
// with the config it was resolved against.
func (in *inputFlags) load() (model.EstimateRequest, model.AppConfig, string, error) {
	cfgPath := configPath(in.config)
	cfg, err := project.LoadAppConfig(cfgPath)
	if err != nil {
		return model.EstimateRequest{}, cfg, cfgPath, fmt.Errorf("load config: %w", err)
	}

	var req model.EstimateRequest
	switch {
	case in.plan != "":
		req, err = project.LoadPlan(in.plan)
		if err != nil {
			return req, cfg, cfgPath, err
		}
	case in.dxf != "":
		res := importer.ImportPlanDXF(in.dxf, importer.DXFOptions{Scale: in.dxfScale, Normalize: true})
		if err := importErr(in.dxf, res.Errors, res.Warnings); err != nil {
			return req, cfg, cfgPath, err
		}
		req.Plan = model.Plan{Unit: model.UnitMM, Polygon: res.Polygon}
		req.Name = strings.TrimSuffix(filepath.Base(in.dxf), filepath.Ext(in.dxf))
	case in.outline != "":
		var res importer.PlanImportResult
		if isExcel(in.outline) {
			res = importer.ImportOutlineExcel(in.outline)
		} else {
			res = importer.ImportOutlineCSV(in.outline)
		}
		if err := importErr(in.outline, res.Errors, res.Warnings); err != nil {
			return req, cfg, cfgPath, err
		}
		req.Plan = model.Plan{Unit: model.UnitMM, Polygon: res.Polygon}
	default:
		return req, cfg, cfgPath, fmt.Errorf("one of -plan, -dxf or -outline is required")
	}

	if in.stairs != "" {
		var res importer.StairImportResult
		if isExcel(in.stairs) {
			res = importer.ImportStairsExcel(in.stairs)
		} else {
			res = importer.ImportStairsCSV(in.stairs)
		}
		if err := importErr(in.stairs, res.Errors, res.Warnings); err != nil {
			return req, cfg, cfgPath, err
		}
		if req.Plan.Stairs == nil {
			req.Plan.Stairs = &model.StairSettings{}
		}
		req.Plan.Stairs.Enabled = true
		req.Plan.Stairs.Items = append(req.Plan.Stairs.Items, res.Stairs...)
	}

	in.applyOverrides(&req, cfg)
	return req, cfg, cfgPath, nil
}

// applyOverrides lets explicit flags win over the request file.
func (in *inputFlags) applyOverrides(req *model.EstimateRequest, cfg model.AppConfig) {
	if in.set["direction"] {
		req.Plan.DeckingDirectionDeg = in.direction
	}
	if in.set["width"] {
		req.Plan.BoardWidthMm = in.width
	}
	if in.set["fastening"] {
		req.Fastening = model.FasteningMode(in.fastening)
	}
	if in.set["mode"] || in.set["cut-plan"] {
		rs := cfg.DefaultRuleset
		if req.Ruleset != nil {
			rs = *req.Ruleset
		}
		if in.set["mode"] {
			rs.Mode = model.Mode(in.mode)
		}
		if in.set["cut-plan"] {
			rs.EnableCutPlan = in.cutPlan
		}
		req.Ruleset = &rs
	}
}

// save writes the request when -save-plan is given and records it as a
// recent plan in the config.
func (in *inputFlags) save(req model.EstimateRequest, cfg model.AppConfig, cfgPath string) error {
	if in.savePlan == "" {
		return nil
	}
	if err := project.SavePlan(in.savePlan, req); err != nil {
		return err
	}
	cfg.AddRecentPlan(in.savePlan)
	if err := project.SaveAppConfig(cfgPath, cfg); err != nil {
		return fmt.Errorf("update recent plans: %w", err)
	}
	log.Printf("saved plan to %s", in.savePlan)
	return nil
}

func importErr(path string, errs, warnings []string) error {
	for _, w := range warnings {
		log.Printf("%s: %s", filepath.Base(path), w)
	}
	if len(errs) > 0 {
		return fmt.Errorf("import %s: %s", path, strings.Join(errs, "; "))
	}
	return nil
}

func isExcel(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".xlsx" || ext == ".xlsm"
}

func runEstimate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	var in inputFlags
	in.register(fs)
	pdfPath := fs.String("pdf", "", "write a PDF report")
	xlsxPath := fs.String("xlsx", "", "write an Excel workbook")
	labelsPath := fs.String("labels", "", "write QR cut labels (needs a cut plan)")
	if err := in.parse(fs, args); err != nil {
		return err
	}

	req, cfg, cfgPath, err := in.load()
	if err != nil {
		return err
	}
	plan, product, rs, fastening := cfg.Resolve(req)

	calc := engine.New(product, rs)
	q, err := calc.Quantities(plan, fastening)
	if err != nil {
		return err
	}
	for _, w := range q.Warnings {
		log.Printf("warning: %s", w.Message)
	}

	report := export.Report{
		Title:      req.Name,
		Plan:       plan,
		Product:    product,
		Fastening:  fastening,
		Quantities: q,
	}
	if calc.Mode() == model.ModePro {
		report.Rows = calc.Rows(plan)
	}
	if *pdfPath != "" {
		if err := export.ExportPDF(*pdfPath, report); err != nil {
			return fmt.Errorf("export PDF: %w", err)
		}
		log.Printf("wrote %s", *pdfPath)
	}
	if *xlsxPath != "" {
		if err := export.ExportXLSX(*xlsxPath, report); err != nil {
			return fmt.Errorf("export XLSX: %w", err)
		}
		log.Printf("wrote %s", *xlsxPath)
	}
	if *labelsPath != "" {
		if q.CutPlan == nil {
			return fmt.Errorf("-labels needs a cut plan: use -mode pro -cut-plan")
		}
		if err := export.ExportLabels(*labelsPath, *q.CutPlan, product.Name); err != nil {
			return fmt.Errorf("export labels: %w", err)
		}
		log.Printf("wrote %s", *labelsPath)
	}

	if err := in.save(req, cfg, cfgPath); err != nil {
		return err
	}
	return printJSON(stdout, q)
}

func runCompare(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	var in inputFlags
	in.register(fs)
	dirs := fs.String("dirs", "", "comma separated extra directions in degrees")
	if err := in.parse(fs, args); err != nil {
		return err
	}

	req, cfg, _, err := in.load()
	if err != nil {
		return err
	}
	extra, err := parseDirections(*dirs)
	if err != nil {
		return err
	}
	if len(extra) == 0 {
		extra = req.Directions
	}
	if len(extra) == 0 {
		extra = cfg.DefaultDirectionsDeg
	}

	plan, product, rs, fastening := cfg.Resolve(req)
	results := engine.CompareScenarios(engine.BuildDefaultScenarios(plan, rs, extra...), plan, product, fastening)

	w := newTabWriter(stdout)
	fmt.Fprintln(w, "SCENARIO\tDIRECTION\tMODE\tBOARDS\tLOSS\tWASTE (m)\t")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t%.0f\t%s\t-\t-\t-\t%v\n", r.Scenario.Name, r.Scenario.DirectionDeg, r.Scenario.Ruleset.Mode, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.0f\t%s\t%d\t%.1f%%\t%.2f\t\n",
			r.Scenario.Name, r.Scenario.DirectionDeg, r.Scenario.Ruleset.Mode, r.Boards, r.LossRate*100, r.WasteM)
	}
	return w.Flush()
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfgFlag := fs.String("config", "", "config file (default $DECKCALC_CONFIG or ~/.deckcalc/config.json)")
	addr := fs.String("addr", "", "listen address (default $DECKCALC_ADDR or the config listen_addr)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := project.LoadAppConfig(configPath(*cfgFlag))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	listen := *addr
	if listen == "" {
		listen = os.Getenv("DECKCALC_ADDR")
	}
	if listen == "" {
		listen = cfg.ListenAddr
	}
	return server.New(cfg).ListenAndServe(listen)
}

func parseDirections(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var dirs []float64
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid direction %q: %w", part, err)
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
