// audit.go implements the "nextcloud-mcp audit" command, which prints the
// most recent entries of the local audit trail.

package core

import (
	"fmt"
	"time"

	"github.com/aitormendez/nextcloud-mcp-server/cmd"
	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type auditJSON struct {
	Time     string         `json:"time"`
	Source   string         `json:"source"`
	Action   string         `json:"action"`
	User     string         `json:"user,omitempty"`
	Path     string         `json:"path,omitempty"`
	Target   string         `json:"target,omitempty"`
	Duration int64          `json:"duration_ms"`
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
	Detail   map[string]any `json:"detail,omitempty"`
}

func newAuditCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "audit",
		Short: "Show recent operations",
		Long: `Show the most recent operations recorded in ~/.nextcloud-mcp/log/audit.db,
newest first. Server addresses are stored hashed; passwords and file
contents are never recorded.`,
		Args: cobra.NoArgs,
		RunE: runAudit,
	}
	c.Flags().IntP(extension.FlagNumber, "n", 20, "Number of entries")
	return c
}

func runAudit(c *cobra.Command, _ []string) error {
	n, _ := c.Flags().GetInt(extension.FlagNumber)
	entries, err := log.Recent(n)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("audit: %w", err))
	}

	if cmd.JSON() {
		out := make([]auditJSON, len(entries))
		for i, e := range entries {
			out[i] = auditJSON{
				Time:     time.UnixMilli(e.Start).UTC().Format(time.RFC3339),
				Source:   e.Source,
				Action:   e.Action,
				User:     e.User,
				Path:     e.Path,
				Target:   e.Target,
				Duration: e.End - e.Start,
				Success:  e.Success,
				Error:    e.Error,
				Detail:   e.Detail,
			}
		}
		return cmd.PrintJSON(out)
	}

	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "failed: " + e.Error
		}
		subject := e.Path
		if e.Target != "" {
			subject += " -> " + e.Target
		}
		fmt.Fprintf(cmd.Out(), "%-14s  %-20s  %-10s  %s  %s\n",
			humanize.Time(time.UnixMilli(e.Start)), e.Source, e.Action, subject, status)
	}
	return nil
}
