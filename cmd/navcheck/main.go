// Command navcheck builds a building definition offline, prints what the
// server would report about it and optionally plans one route.
//
//	navcheck [-floors G,1,2] [-from "Lab A" -to Library] [-json] [-strict] building.yaml
//
// -from-floor and -to-floor pin a room name to one floor when the same
// display name exists on several.
//
// Exit status is 1 when the definition cannot be built, 2 when -strict is set
// and an error diagnostic was reported, and 3 when the requested route does
// not exist.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"indoornav/internal/builder"
	"indoornav/internal/config"
	"indoornav/internal/domain"
	"indoornav/internal/floorplan"
	"indoornav/internal/geometry"
	"indoornav/internal/pathfind"
	"indoornav/internal/service"
)

const (
	exitOK = iota
	exitBuild
	exitStrict
	exitNoRoute
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// Report is the -json output
type Report struct {
	GraphID     string                 `json:"graph_id"`
	Source      string                 `json:"source"`
	Nodes       int                    `json:"nodes"`
	Edges       int                    `json:"edges"`
	Rooms       int                    `json:"rooms"`
	Floors      []domain.FloorInfo     `json:"floors"`
	Counts      map[string]int         `json:"counts"`
	Diagnostics []domain.Diagnostic    `json:"diagnostics"`
	Route       *service.RouteResponse `json:"route,omitempty"`
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("navcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	floors := fs.String("floors", "", "comma separated floor order, lowest first")
	from := fs.String("from", "", "start room name")
	to := fs.String("to", "", "destination room name")
	fromFloor := fs.String("from-floor", "", "floor of the start room")
	toFloor := fs.String("to-floor", "", "floor of the destination room")
	asJSON := fs.Bool("json", false, "print a JSON report")
	strict := fs.Bool("strict", false, "fail on error diagnostics")
	verbose := fs.Bool("v", false, "log build progress to stderr")
	factor := fs.Int("iteration-factor", pathfind.DefaultIterationFactor, "search iteration bound per node")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: navcheck [flags] building.yaml")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitBuild
	}
	if fs.NArg() != 1 || (*from == "") != (*to == "") {
		fs.Usage()
		return exitBuild
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := config.LogConfig{Level: level, Format: "text"}.NewLogger(stderr)

	var order domain.FloorOrder
	for _, f := range strings.Split(*floors, ",") {
		if f = strings.TrimSpace(f); f != "" {
			order = append(order, domain.FloorID(f))
		}
	}

	nav := service.NewNavigator(service.Options{
		Definition:      fs.Arg(0),
		Order:           order,
		Params:          builder.DefaultParams(),
		Plan:            floorplan.Options{CurveSteps: geometry.DefaultCurveSteps},
		IterationFactor: *factor,
	}, service.WithLogger(logger))

	ctx := context.Background()
	snap, err := nav.Rebuild(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "navcheck: %v\n", err)
		return exitBuild
	}

	report := Report{
		GraphID:     snap.GraphID(),
		Source:      snap.Source,
		Nodes:       snap.Graph.Len(),
		Edges:       snap.Graph.EdgeCount(),
		Rooms:       snap.Catalog.Len(),
		Floors:      snap.Floors,
		Counts:      make(map[string]int),
		Diagnostics: snap.Diagnostics,
	}
	hasErrors := false
	for _, d := range snap.Diagnostics {
		report.Counts[string(d.Code)]++
		if d.Severity == domain.SeverityError {
			hasErrors = true
		}
	}

	code := exitOK
	if *from != "" {
		resp, err := nav.Route(ctx, *from, *to,
			service.FromFloor(domain.FloorID(*fromFloor)),
			service.ToFloor(domain.FloorID(*toFloor)))
		if err != nil {
			fmt.Fprintf(stderr, "navcheck: %v\n", err)
			return exitNoRoute
		}
		report.Route = resp
		if !resp.Found() {
			code = exitNoRoute
		}
	}
	if *strict && hasErrors && code == exitOK {
		code = exitStrict
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Error("failed to encode report", slog.Any("error", err))
			return exitBuild
		}
		return code
	}

	printReport(stdout, report, snap)
	return code
}

func printReport(w io.Writer, r Report, snap *service.Snapshot) {
	fmt.Fprintf(w, "graph %s from %s\n", r.GraphID, r.Source)
	fmt.Fprintf(w, "  %d nodes, %d edges, %d rooms\n", r.Nodes, r.Edges, r.Rooms)
	fmt.Fprintf(w, "  floors: %s\n", snap.Stats)
	for _, f := range r.Floors {
		fmt.Fprintf(w, "    %-4d %-8s %s\n", f.Rank, f.ID, f.Name)
	}

	if len(r.Diagnostics) > 0 {
		codes := make([]string, 0, len(r.Counts))
		for c := range r.Counts {
			codes = append(codes, c)
		}
		slices.Sort(codes)
		fmt.Fprintf(w, "diagnostics (%d)\n", len(r.Diagnostics))
		for _, c := range codes {
			fmt.Fprintf(w, "  %-22s %d\n", c, r.Counts[c])
		}
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "  [%s] %s\n", d.Severity, d.Message)
		}
	}

	if r.Route == nil {
		return
	}
	if !r.Route.Found() {
		fmt.Fprintf(w, "route %s -> %s: %s after %d iterations\n",
			r.Route.From.Name, r.Route.To.Name, r.Route.Status, r.Route.Iterations)
		return
	}
	fmt.Fprintf(w, "route %s -> %s: %.1f units, %d nodes\n",
		r.Route.From.Name, r.Route.To.Name, r.Route.Distance, len(r.Route.Route))
	for _, seg := range r.Route.Segments {
		fmt.Fprintf(w, "  floor %s: %s\n", seg.Floor, strings.Join(seg.NodeIDs, " "))
	}
	for _, t := range r.Route.Transitions {
		fmt.Fprintf(w, "  %s -> %s via %s\n", t.FromFloor, t.ToFloor, t.Via)
	}
}
