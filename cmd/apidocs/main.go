package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/LembergThe/apidocs"
	"github.com/LembergThe/apidocs/internal/cli"
	"github.com/LembergThe/apidocs/internal/transformer"
)

func main() {
	var (
		inPath      string
		specPath    string
		fixturesDir string
		htmlOut     bool
		noBackup    bool
		debug       bool
	)
	flag.StringVar(&inPath, "in", "", "Input page or directory of .api.md pages")
	flag.StringVar(&specPath, "spec", "zulip.yaml", "OpenAPI spec file")
	flag.StringVar(&fixturesDir, "fixtures", "fixtures", "Directory of example response fixtures")
	flag.BoolVar(&htmlOut, "html", false, "Render pages to HTML instead of markdown")
	flag.BoolVar(&noBackup, "no-backup", false, "Do not back up existing output files")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	if debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if inPath == "" {
		fmt.Println("Please provide an input page or directory with -in")
		os.Exit(1)
	}

	spec, err := apidocs.LoadAPISpec(specPath)
	if err != nil {
		fmt.Printf("Error loading spec: %v\n", err)
		os.Exit(1)
	}

	expander := apidocs.NewExpander(spec, apidocs.NewFixtureStore(fixturesDir))

	mode := apidocs.ModeMarkdown
	if htmlOut {
		mode = apidocs.ModeHTML
	}

	opts := transformer.TransformOptions{
		WriterMode: mode,
		NoBackup:   noBackup,
	}
	slog.Debug("running with options", "opts", opts.Pretty())

	processor := cli.NewProcessor(expander, opts)
	results, err := processor.ProcessPath(inPath)
	if err != nil {
		fmt.Printf("Error rendering pages: %v\n", err)
		os.Exit(1)
	}

	for _, r := range results {
		fmt.Printf("Rendered %s to %s\n", r.Path, r.OutPath)
	}
}
