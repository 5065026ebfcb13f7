package root

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/elex-project/dokkaebi/pkg/logging"
	"github.com/elex-project/dokkaebi/pkg/paths"
)

type rootFlags struct {
	enableOtel   bool
	debugMode    bool
	logFilePath  string
	logMaxSize   string
	logMaxBytes  int64
	logBackups   int
	trackingID   string
	endpoint     string
	logFile      io.Closer
	otelShutdown func(context.Context) error
}

func NewRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "dokkaebi",
		Short: "dokkaebi - Measurement Protocol tracker",
		Long:  "dokkaebi sends application analytics hits to a Measurement Protocol endpoint and runs a local collector to inspect them",
		Example: `  dokkaebi config set tracking_id UA-12345678-1
  dokkaebi send app-start MyApp 1.0.0 com.example.myapp
  dokkaebi send screen Home
  dokkaebi serve`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			maxBytes, err := units.RAMInBytes(flags.logMaxSize)
			if err != nil || maxBytes <= 0 {
				return fmt.Errorf("invalid --log-max-size %q", flags.logMaxSize)
			}
			flags.logMaxBytes = maxBytes
			if flags.logBackups < 0 {
				return fmt.Errorf("invalid --log-backups %d", flags.logBackups)
			}

			if err := flags.setupLogging(); err != nil {
				// If logging setup fails, fall back to stderr so we still get logs
				slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})))
				slog.Warn("Failed to open debug log file", "error", err)
			}

			if flags.enableOtel {
				shutdown, err := initOTelSDK(cmd.Context())
				if err != nil {
					slog.Warn("Failed to initialize OpenTelemetry SDK", "error", err)
				} else {
					flags.otelShutdown = shutdown
					slog.Debug("OpenTelemetry SDK initialized successfully")
				}
			}

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if flags.otelShutdown != nil {
				if err := flags.otelShutdown(context.WithoutCancel(cmd.Context())); err != nil {
					slog.Error("Failed to shut down OpenTelemetry SDK", "error", err)
				}
			}
			if flags.logFile != nil {
				if err := flags.logFile.Close(); err != nil {
					slog.Error("Failed to close log file", "error", err)
				}
			}
			return nil
		},
		// If no subcommand is specified, show help
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.debugMode, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flags.enableOtel, "otel", "o", false, "Enable OpenTelemetry tracing")
	cmd.PersistentFlags().StringVar(&flags.logFilePath, "log-file", "", "Path to debug log file (default: ~/.dokkaebi/dokkaebi.debug.log; only used with --debug)")
	cmd.PersistentFlags().StringVar(&flags.logMaxSize, "log-max-size", units.BytesSize(float64(logging.DefaultMaxSize)), "Rotate the debug log file once it grows past this size")
	cmd.PersistentFlags().IntVar(&flags.logBackups, "log-backups", logging.DefaultMaxBackups, "Number of rotated debug log files to keep")
	cmd.PersistentFlags().StringVar(&flags.trackingID, "tracking-id", "", "Tracking ID of the destination property (usually UA-XXXX-Y), overrides the config file")
	cmd.PersistentFlags().StringVar(&flags.endpoint, "endpoint", "", "Collection endpoint, overrides the config file")

	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "advanced", Title: "Advanced Commands:"})

	cmd.AddCommand(newSendCmd(&flags))
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func Execute(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args ...string) error {
	rootCmd := NewRootCmd()
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return processErr(ctx, err, stderr, rootCmd)
	}
	return nil
}

func processErr(ctx context.Context, err error, stderr io.Writer, rootCmd *cobra.Command) error {
	if ctx.Err() != nil {
		return ctx.Err()
	} else if _, ok := errors.AsType[RuntimeError](err); ok {
		// Runtime errors have already been printed by the command itself
	} else {
		// Command line usage errors - show the error and usage
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr)
		if strings.HasPrefix(err.Error(), "unknown command ") || strings.HasPrefix(err.Error(), "accepts ") {
			_ = rootCmd.Usage()
		}
	}

	return err
}

// setupLogging configures slog logging behavior.
// When --debug is enabled, logs are written to a rotating file <dataDir>/dokkaebi.debug.log,
// or to the file specified by --log-file.
func (f *rootFlags) setupLogging() error {
	if !f.debugMode {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return nil
	}

	path := cmp.Or(strings.TrimSpace(f.logFilePath), filepath.Join(paths.GetDataDir(), "dokkaebi.debug.log"))

	logFile, err := logging.NewRotatingFile(paths.ExpandHome(path), logging.WithMaxSize(f.logMaxBytes), logging.WithMaxBackups(f.logBackups))
	if err != nil {
		return err
	}
	f.logFile = logFile

	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})))

	return nil
}

// RuntimeError wraps runtime errors to distinguish them from usage errors
type RuntimeError struct {
	Err error
}

func (e RuntimeError) Error() string {
	return e.Err.Error()
}

func (e RuntimeError) Unwrap() error {
	return e.Err
}
