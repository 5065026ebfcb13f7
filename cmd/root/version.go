package root

import (
	"github.com/spf13/cobra"

	"github.com/elex-project/dokkaebi/pkg/cli"
	"github.com/elex-project/dokkaebi/pkg/useragent"
	"github.com/elex-project/dokkaebi/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Long:  `Display the version, commit hash and the User-Agent sent with hits`,
		Args:  cobra.NoArgs,
		Run:   runVersionCommand,
	}
}

func runVersionCommand(cmd *cobra.Command, _ []string) {
	out := cli.NewPrinter(cmd.OutOrStdout())
	out.Printf("dokkaebi version %s\n", version.Version)
	out.Printf("Commit: %s\n", version.Commit)
	out.Printf("User-Agent: %s\n", useragent.Header)
}
