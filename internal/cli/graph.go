package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ontoguard/internal/client"
	"github.com/ppiankov/ontoguard/internal/model"
)

var (
	graphFormat string
	graphRemote string
)

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "text", "Output format (text|json|yaml)")
	graphCmd.Flags().StringVar(&graphRemote, "remote", "", "Read the graph from a gRPC server at this address")
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the knowledge graph",
	RunE:  runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	var snap model.Snapshot

	if graphRemote != "" {
		c, err := client.New(graphRemote)
		if err != nil {
			return err
		}
		defer c.Close()
		if snap, err = c.Snapshot(ctx); err != nil {
			return err
		}
	} else {
		rt, err := openRuntime(ctx, appCfg)
		if err != nil {
			return err
		}
		defer rt.Close()
		snap = rt.store.Snapshot()
	}

	switch graphFormat {
	case "json":
		printJSON(snap)
	case "yaml":
		out, err := yaml.Marshal(snap)
		if err != nil {
			return fmt.Errorf("marshal graph: %w", err)
		}
		fmt.Print(string(out))
	default:
		fmt.Print(formatGraphText(snap))
	}
	return nil
}

// formatGraphText renders concepts grouped by kind, then each edge by name.
func formatGraphText(snap model.Snapshot) string {
	var b strings.Builder
	for _, kind := range []model.Kind{model.KindAgentType, model.KindCapability, model.KindTool, model.KindRiskLevel} {
		var names []string
		for _, c := range snap.Concepts {
			if c.Kind == kind {
				names = append(names, c.Name)
			}
		}
		fmt.Fprintf(&b, "%-11s %d", kind+":", len(names))
		if len(names) > 0 {
			fmt.Fprintf(&b, "  %s", strings.Join(names, ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n%d instances, %d relationships\n", len(snap.Instances), len(snap.Relationships))
	for _, r := range snap.Relationships {
		src, _ := snap.NodeName(r.Source)
		dst, _ := snap.NodeName(r.Target)
		fmt.Fprintf(&b, "  %s -[%s]-> %s\n", src, r.Type, dst)
	}
	return b.String()
}
