package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/auditkit/auditkit/internal/audit"
	"github.com/auditkit/auditkit/internal/collector"
	"github.com/auditkit/auditkit/pkg/types"
)

func NewAuditCmd() *cobra.Command {
	var typeFlag string
	var timeout time.Duration
	var compact bool

	cmd := &cobra.Command{
		Use:   "audit <url>",
		Short: "Run a single audit and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			godotenv.Load() //nolint:errcheck

			target := args[0]
			typ, err := resolveType(typeFlag, target)
			if err != nil {
				return err
			}

			// Keep stdout clean for the JSON result; progress goes to stderr.
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			slog.SetDefault(logger)

			client := collector.NewWithCredentials(collector.Credentials{
				PSIKey:      os.Getenv("PAGESPEED_API_KEY"),
				GitHubToken: os.Getenv("GITHUB_TOKEN"),
			})
			runner := audit.New(client, nil)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := runner.Run(ctx, target, typ)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "auto", "Audit type: url, github, or auto (infer from the target)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall deadline for the audit")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print single-line JSON instead of indented")
	return cmd
}

// resolveType maps the --type flag to an audit type, inferring from the
// target when set to auto.
func resolveType(flag, target string) (types.AuditType, error) {
	switch flag {
	case "url":
		return types.AuditTypeURL, nil
	case "github":
		return types.AuditTypeGitHub, nil
	case "auto", "":
		if strings.Contains(target, "github.com/") {
			return types.AuditTypeGitHub, nil
		}
		return types.AuditTypeURL, nil
	default:
		return "", fmt.Errorf("unknown audit type %q: want url, github, or auto", flag)
	}
}
