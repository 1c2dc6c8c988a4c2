package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/LembergThe/apidocs"
	"github.com/LembergThe/apidocs/internal/lsp/server"
	"github.com/sourcegraph/jsonrpc2"
)

// getLogFile returns a log file for the lsp server to write to.
//
// During development (-debug flag) uses persistent log for easy access.
func getLogFile(debug bool) (*os.File, error) {
	if debug {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		logDir := filepath.Join(homeDir, ".apidocs")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, err
		}
		return os.OpenFile(filepath.Join(logDir, "apidocs-ls.log"),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	}

	return os.CreateTemp("", "apidocs-ls-*.log")
}

// stdioStream carries jsonrpc2 traffic over the process's stdin/stdout, the
// transport editors spawn language servers with. Closing it only closes
// stdout; stdin stays owned by the runtime.
type stdioStream struct{}

func (stdioStream) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioStream) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioStream) Close() error                { return os.Stdout.Close() }

func main() {
	var (
		specPath    string
		fixturesDir string
		debug       bool
	)
	flag.StringVar(&specPath, "spec", "zulip.yaml", "OpenAPI spec file")
	flag.StringVar(&fixturesDir, "fixtures", "fixtures", "Directory of example response fixtures")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	logFile, err := getLogFile(debug)
	if err != nil {
		slog.Error("failed to setup logging", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	var handler slog.Handler
	if debug {
		handler = slog.NewTextHandler(io.MultiWriter(os.Stderr, logFile), &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: true,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("starting apidocs-ls", "logfile", logFile.Name())

	spec, err := apidocs.LoadAPISpec(specPath)
	if err != nil {
		slog.Error("failed to load spec", "error", err)
		os.Exit(1)
	}

	expander := apidocs.NewExpander(spec, apidocs.NewFixtureStore(fixturesDir))

	s, err := server.NewServer(expander, server.DefaultServerOptions)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		return
	}

	ctx := context.Background()

	<-jsonrpc2.NewConn(
		ctx,
		jsonrpc2.NewBufferedStream(stdioStream{}, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(s.Handle),
	).DisconnectNotify()
}
