package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/canopy/internal/presentation/graph"
	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/domain"
)

// Validate checks a tree file and prints every finding.
// Warnings are printed but only errors fail the command.
func Validate(path string, w io.Writer) error {
	doc, err := file.ReadDocument(path)
	if err != nil {
		return err
	}

	issues := doc.Validate()
	for _, issue := range issues {
		fmt.Fprintln(w, issue.String())
	}
	if err := issues.Err(); err != nil {
		return err
	}

	s := doc.Tree().Summarize()
	fmt.Fprintf(w, "ok: %d categories, %d nodes, depth %d, %d populated / %d empty leaves\n",
		s.Roots, s.Nodes, s.MaxDepth, len(s.PopulatedLeaves), s.EmptyLeaves)
	return nil
}

// GraphOptions selects the tree and the optional run to overlay.
type GraphOptions struct {
	ConfigPath string
	Tree       string
	ReportID   string
}

// Graph writes the Mermaid diagram of a tree, overlaid with a stored run
// when ReportID is set.
func Graph(ctx context.Context, opts GraphOptions, w io.Writer) error {
	cfg, err := LoadConfig(opts.ConfigPath, opts.Tree, nil)
	if err != nil {
		return err
	}
	cfg.Browser.URL = ""

	logger, err := NewLogger(io.Discard, cfg.Log, "")
	if err != nil {
		return err
	}
	app, err := NewApp(ctx, cfg, logger, AppOptions{})
	if err != nil {
		return err
	}
	defer app.Close()

	var overlay *graph.Overlay
	if opts.ReportID != "" {
		report, err := app.Finder.Report(ctx, opts.ReportID)
		if err != nil {
			return fmt.Errorf("load run %s: %w", opts.ReportID, err)
		}
		overlay = graph.OverlayFromReport(report)
	}

	_, err = fmt.Fprint(w, graph.GenerateMermaid(app.Tree.Nodes(), overlay))
	return err
}

// Reports prints the IDs of stored runs, most recent first.
func Reports(ctx context.Context, configPath string, w io.Writer) error {
	cfg, err := LoadConfig(configPath, "", nil)
	if err != nil {
		return err
	}
	logger, err := NewLogger(io.Discard, cfg.Log, "")
	if err != nil {
		return err
	}

	app := &App{Config: cfg, Logger: logger}
	defer app.Close()
	store, _, err := app.persistence(ctx, cfg)
	if err != nil {
		return err
	}
	ids, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		r, err := store.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "%s\t?\n", id)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.FinishedAt.Format("2006-01-02 15:04:05"), r.Root, status(r))
	}
	return nil
}

func status(r *domain.Report) string {
	if r.Failed() {
		return "failed"
	}
	return string(r.Kind)
}
