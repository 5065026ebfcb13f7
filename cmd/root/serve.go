package root

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/elex-project/dokkaebi/pkg/cli"
	"github.com/elex-project/dokkaebi/pkg/collector"
)

type serveFlags struct {
	listenAddr string
	ttl        time.Duration
	quiet      bool
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local collector",
		Long: `Run a local Measurement Protocol collector. Point a tracker at
http://<addr>/collect to inspect its hits, or POST a payload to
/debug/collect to validate it.`,
		Example: `  dokkaebi serve --listen :8089
  dokkaebi send --endpoint http://localhost:8089/collect screen Home`,
		GroupID: "advanced",
		Args:    cobra.NoArgs,
		RunE:    flags.runServeCommand,
	}

	cmd.Flags().StringVarP(&flags.listenAddr, "listen", "l", ":8089", "Address to listen on")
	cmd.Flags().DurationVar(&flags.ttl, "ttl", collector.DefaultTTL, "How long received hits are kept")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Don't print received hits")

	return cmd
}

func (f *serveFlags) runServeCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cli.NewPrinter(cmd.OutOrStdout())

	opts := []collector.Option{
		collector.WithStore(collector.NewStore(f.ttl)),
		collector.WithLogger(slog.Default()),
	}
	if !f.quiet {
		var mu sync.Mutex
		opts = append(opts, collector.WithObserver(func(h collector.StoredHit) {
			mu.Lock()
			defer mu.Unlock()
			out.Printf("\n#%d from %s\n", h.Seq, h.UserAgent)
			out.PrintHit(h.Hit)
			out.PrintProblems(h.Problems)
		}))
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", f.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.listenAddr, err)
	}

	out.Println("Listening on " + ln.Addr().String())
	slog.Debug("Starting collector", "addr", ln.Addr().String(), "ttl", f.ttl)

	if err := collector.New(opts...).Serve(ctx, ln); err != nil {
		return RuntimeError{Err: err}
	}
	return nil
}
