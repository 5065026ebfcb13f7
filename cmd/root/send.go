package root

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/elex-project/dokkaebi/pkg/cli"
	"github.com/elex-project/dokkaebi/pkg/protocol"
	"github.com/elex-project/dokkaebi/pkg/tracker"
	"github.com/elex-project/dokkaebi/pkg/userconfig"
)

const defaultSendWait = 10 * time.Second

type sendFlags struct {
	root *rootFlags

	dryRun      bool
	wait        time.Duration
	installerID string
	resolution  sizeValue
	viewport    sizeValue
	label       string
	value       int64
	fatal       bool
}

// sendFunc reports one hit through t. cfg is the loaded user config.
type sendFunc func(ctx context.Context, cmd *cobra.Command, args []string, t *tracker.Tracker, cfg *userconfig.Config) error

func newSendCmd(root *rootFlags) *cobra.Command {
	f := &sendFlags{root: root}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a hit",
		Long:  "Build a hit, send it to the collection endpoint and wait for the outcome",
		Example: `  dokkaebi send app-start MyApp 1.0.0 com.example.myapp --resolution 1920x1080
  dokkaebi send event video play --label intro --value 42
  dokkaebi send timing render layout 42ms
  dokkaebi send --dry-run exception "NullPointerException" --fatal`,
		GroupID: "core",
	}

	cmd.PersistentFlags().BoolVar(&f.dryRun, "dry-run", false, "Print the hit and its validation instead of sending it")
	cmd.PersistentFlags().DurationVar(&f.wait, "wait", defaultSendWait, "How long to wait for delivery")

	cmd.AddCommand(f.newAppStartCmd())
	cmd.AddCommand(f.newAppEndCmd())
	cmd.AddCommand(f.newScreenCmd())
	cmd.AddCommand(f.newEventCmd())
	cmd.AddCommand(f.newTimingCmd())
	cmd.AddCommand(f.newExceptionCmd())

	return cmd
}

func (f *sendFlags) newAppStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app-start [NAME VERSION ID]",
		Short: "Report an application start and open a session",
		Long:  "Report an application start. Without arguments the app name, version and id come from the config file.",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return fmt.Errorf("accepts 0 or 3 arg(s), received %d", len(args))
			}
			return nil
		},
		RunE: f.runE(func(ctx context.Context, _ *cobra.Command, args []string, t *tracker.Tracker, cfg *userconfig.Config) error {
			name, appVersion, id := cfg.App.Name, cfg.App.Version, cfg.App.ID
			if len(args) == 3 {
				name, appVersion, id = args[0], args[1], args[2]
			}

			if f.installerID != "" {
				t.SetAppInstallerID(f.installerID)
			}
			if f.resolution.set {
				t.SetScreenResolution(f.resolution.width, f.resolution.height)
			}
			if f.viewport.set {
				t.SetViewportSize(f.viewport.width, f.viewport.height)
			}

			return t.AppStart(ctx, name, appVersion, id)
		}),
	}

	cmd.Flags().StringVar(&f.installerID, "installer-id", "", "Installer id, e.g. the store the app came from")
	cmd.Flags().Var(&f.resolution, "resolution", "Screen resolution, e.g. 1920x1080")
	cmd.Flags().Var(&f.viewport, "viewport", "Viewport size, e.g. 1280x720")

	return cmd
}

func (f *sendFlags) newAppEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "app-end",
		Short: "Report an application exit and close the session",
		Args:  cobra.NoArgs,
		RunE: f.runE(func(ctx context.Context, _ *cobra.Command, _ []string, t *tracker.Tracker, _ *userconfig.Config) error {
			return t.AppEnd(ctx)
		}),
	}
}

func (f *sendFlags) newScreenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "screen NAME",
		Short: "Report a screen view",
		Args:  cobra.ExactArgs(1),
		RunE: f.runE(func(ctx context.Context, _ *cobra.Command, args []string, t *tracker.Tracker, _ *userconfig.Config) error {
			return t.TrackScreen(ctx, args[0])
		}),
	}
}

func (f *sendFlags) newEventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event CATEGORY ACTION",
		Short: "Report an event",
		Args:  cobra.ExactArgs(2),
		RunE: f.runE(func(ctx context.Context, cmd *cobra.Command, args []string, t *tracker.Tracker, _ *userconfig.Config) error {
			if cmd.Flags().Changed("value") {
				return t.TrackEventValue(ctx, args[0], args[1], f.label, f.value)
			}
			if f.label != "" {
				return errors.New("--label requires --value")
			}
			return t.TrackEvent(ctx, args[0], args[1])
		}),
	}

	cmd.Flags().StringVar(&f.label, "label", "", "Event label (requires --value)")
	cmd.Flags().Int64Var(&f.value, "value", 0, "Event value")

	return cmd
}

func (f *sendFlags) newTimingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timing CATEGORY VARIABLE TIME",
		Short: "Report a user timing",
		Long:  "Report a user timing. TIME is a number of milliseconds or a duration such as 1.5s.",
		Args:  cobra.ExactArgs(3),
		RunE: f.runE(func(ctx context.Context, _ *cobra.Command, args []string, t *tracker.Tracker, _ *userconfig.Config) error {
			timing, err := parseTiming(args[2])
			if err != nil {
				return err
			}
			return t.TrackTiming(ctx, args[0], args[1], f.label, timing)
		}),
	}

	cmd.Flags().StringVar(&f.label, "label", "", "Timing label")

	return cmd
}

func (f *sendFlags) newExceptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exception DESCRIPTION",
		Short: "Report an exception",
		Args:  cobra.ExactArgs(1),
		RunE: f.runE(func(ctx context.Context, cmd *cobra.Command, args []string, t *tracker.Tracker, _ *userconfig.Config) error {
			if cmd.Flags().Changed("fatal") {
				return t.TrackExceptionFatal(ctx, args[0], f.fatal)
			}
			return t.TrackException(ctx, args[0])
		}),
	}

	cmd.Flags().BoolVar(&f.fatal, "fatal", false, "Whether the exception was fatal (omitted unless given)")

	return cmd
}

func (f *sendFlags) runE(send sendFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return f.run(cmd, args, send)
	}
}

// run builds a tracker from the config file and flags, reports one hit
// through send and waits for it to be delivered.
func (f *sendFlags) run(cmd *cobra.Command, args []string, send sendFunc) error {
	ctx := cmd.Context()
	out := cli.NewPrinter(cmd.OutOrStdout())

	cfg, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	trackingID := cmp.Or(f.root.trackingID, cfg.TrackingID)
	if trackingID == "" {
		return errors.New("no tracking ID: pass --tracking-id or run 'dokkaebi config set tracking_id UA-XXXX-Y'")
	}

	clientID, created := cfg.EnsureClientID()
	if created && !f.dryRun {
		if err := cfg.Save(); err != nil {
			slog.Warn("Failed to persist client ID", "error", err)
		} else {
			slog.Debug("Generated client ID", "client_id", clientID, "path", userconfig.Path())
		}
	}

	var (
		mu      sync.Mutex
		results []tracker.Result
	)
	opts := []tracker.Option{
		tracker.WithEndpoint(cmp.Or(f.root.endpoint, cfg.Endpoint)),
		tracker.WithEnvironment(hostEnvironment()),
		tracker.WithLogger(slog.Default()),
		tracker.WithResultHook(func(res tracker.Result) {
			mu.Lock()
			defer mu.Unlock()
			results = append(results, res)
		}),
	}
	if f.dryRun {
		opts = append(opts, tracker.WithHTTPClient(&dryRunClient{out: out}))
	}

	t, err := tracker.New(trackingID, clientID, opts...)
	if err != nil {
		return err
	}

	// A one-shot process starts from the app identity in the config file
	t.SetAppName(cfg.App.Name)
	t.SetAppVersion(cfg.App.Version)
	t.SetAppID(cfg.App.ID)
	t.SetAppInstallerID(cfg.App.InstallerID)

	if err := send(ctx, cmd, args, t, cfg); err != nil {
		_ = t.Close(ctx)
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, f.wait)
	defer cancel()
	if err := t.Close(waitCtx); err != nil {
		out.PrintError(err)
		return RuntimeError{Err: err}
	}

	mu.Lock()
	defer mu.Unlock()

	var failed error
	for _, res := range results {
		if !f.dryRun {
			out.PrintResult(res)
		}
		if res.Err != nil && failed == nil {
			failed = res.Err
		}
	}
	if failed != nil {
		return RuntimeError{Err: failed}
	}
	return nil
}

// dryRunClient answers every request itself and prints the hit it carries
// along with its validation.
type dryRunClient struct {
	mu  sync.Mutex
	out *cli.Printer
}

func (c *dryRunClient) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, err
	}

	hit, err := protocol.Decode(string(body))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.out.PrintHit(hit)
	c.out.PrintProblems(protocol.Validate(hit))
	c.mu.Unlock()

	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     make(http.Header),
		Body:       http.NoBody,
		Request:    req,
	}, nil
}
