// Package cli wires the auditkit commands: a long-running API server and a
// one-shot audit runner.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/auditkit/auditkit/internal/version"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "auditkit",
		Short:         "Website and repository audit toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewVersionCmd())

	cmd.SetVersionTemplate(fmt.Sprintf("%s (%s/%s)\n", version.Version, runtime.GOOS, runtime.GOARCH))
	cmd.Version = version.Version

	return cmd
}
