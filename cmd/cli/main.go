// Package main provides the marko command line tool. It runs the same
// submit pipeline as the server's sessions, one command per submission.
//
// Run with: go run ./cmd/cli analyze report.pdf
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Takita08/Marko-Docu-Ai/internal/app"
	"github.com/Takita08/Marko-Docu-Ai/internal/viewstate"
)

// errFailed marks a run that ended in the Failed phase. The state has
// already been printed, so main only sets the exit code.
var errFailed = errors.New("analysis failed")

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// rootCmd creates the root command. Cobra builds a tree of commands:
// marko analyze report.pdf
// marko predict NVDA --output json
func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "marko",
		Short: "Document analysis and market prediction from the terminal",
		// main prints errors itself; a Failed analysis has already been rendered.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(analyzeCmd(), predictCmd(), usageCmd())
	return root
}

func analyzeCmd() *cobra.Command {
	var (
		mimeType string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a document (PDF, text or image)",
		Args:  cobra.ExactArgs(1),
		// RunE returns an error (vs Run which doesn't).
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], mimeType, output)
		},
	}

	cmd.Flags().StringVar(&mimeType, "mime", "", "Document mime type (detected from content when empty)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json")
	return cmd
}

func predictCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "predict <symbol>",
		Short: "Predict the market trend for a ticker symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json")
	return cmd
}

func usageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show how many AI calls have been made",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsage(cmd)
		},
	}
}

// setup loads config and builds the app. The CLI always logs in
// development mode to stderr so stdout stays clean for --output json.
func setup() (*app.App, func(), error) {
	cfg, err := app.LoadConfig(os.Getenv(app.ConfigPathEnv))
	if err != nil {
		return nil, nil, err
	}

	logCfg := zap.NewDevelopmentConfig()
	logCfg.OutputPaths = []string{"stderr"}
	if cfg.Log.Level != "debug" {
		logCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		_ = a.Close()
		_ = logger.Sync()
	}
	return a, cleanup, nil
}

// signalContext is cancelled on Ctrl+C so a slow AI call can be abandoned.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runAnalyze(cmd *cobra.Command, path, mimeType, output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}

	doc, err := openDocument(path, mimeType)
	if err != nil {
		return err
	}
	defer doc.Close()

	a, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signalContext()
	defer cancel()

	ctrl := viewstate.NewController(a.Analyzer, viewstate.ModeDoc, a.Logger)
	s, err := ctrl.SubmitDocument(ctx, doc.Name, doc.File, doc.MIMEType)
	if err != nil {
		return err
	}
	return printState(cmd.OutOrStdout(), s, output)
}

func runPredict(cmd *cobra.Command, symbol, output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}

	a, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signalContext()
	defer cancel()

	ctrl := viewstate.NewController(a.Analyzer, viewstate.ModeStock, a.Logger)
	s, err := ctrl.SubmitTicker(ctx, symbol)
	if err != nil {
		return err
	}
	return printState(cmd.OutOrStdout(), s, output)
}

func runUsage(cmd *cobra.Command) error {
	a, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	usage, err := a.Calls.Usage(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "total:     %d\ndocuments: %d\nmarkets:   %d\nfailed:    %d\n",
		usage.Total, usage.Documents, usage.Markets, usage.Failed)
	return nil
}
