package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ontoguard/internal/audit"
)

var (
	tailLines     int
	tailAgentType string
	tailStatus    string
	tailSince     string
	tailUntil     string
	tailFormat    string
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of recent entries to show (0 = all)")
	auditTailCmd.Flags().StringVar(&tailAgentType, "agent-type", "", "Only entries for this agent type")
	auditTailCmd.Flags().StringVar(&tailStatus, "status", "", "Only entries with this status (danger|caution|error)")
	auditTailCmd.Flags().StringVar(&tailSince, "since", "", "Only entries newer than this duration (e.g. 1h)")
	auditTailCmd.Flags().StringVar(&tailUntil, "until", "", "Only entries older than this duration (e.g. 30m)")
	auditTailCmd.Flags().StringVarP(&tailFormat, "format", "f", "text", "Output format (text|json)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
	Long:  "Commands for verifying and inspecting the hash-chained decision log.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Verify hash chain integrity of an audit log",
	Long:  "Walks the JSONL audit log and validates that every entry's prev_hash\nmatches the SHA-256 of the previous entry. Exits 0 if valid, 1 if tampered.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail [path]",
	Short: "Show recent decisions",
	Long:  "Reads the JSONL audit log, applies filters and prints the last N decisions with a status summary.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuditTail,
}

func auditPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return appCfg.Audit.Path
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	result := audit.Verify(auditPath(args))
	if result.Valid {
		fmt.Printf("OK: %d entries verified\n", result.Lines)
		return nil
	}
	fmt.Fprintf(os.Stderr, "FAILED at line %d: %s\n", result.ErrorLine, result.Error)
	exitOnError(1)
	return nil
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	filter := audit.TailFilter{
		AgentType: tailAgentType,
		Status:    tailStatus,
		Limit:     tailLines,
	}
	if tailSince != "" {
		d, err := time.ParseDuration(tailSince)
		if err != nil {
			return fmt.Errorf("invalid --since %q: %w", tailSince, err)
		}
		filter.From = time.Now().UTC().Add(-d)
	}
	if tailUntil != "" {
		d, err := time.ParseDuration(tailUntil)
		if err != nil {
			return fmt.Errorf("invalid --until %q: %w", tailUntil, err)
		}
		filter.To = time.Now().UTC().Add(-d)
	}

	result, err := audit.Tail(auditPath(args), filter)
	if err != nil {
		return err
	}

	switch tailFormat {
	case "json":
		out, err := audit.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(out)
	default:
		fmt.Print(audit.FormatText(result))
	}
	return nil
}
