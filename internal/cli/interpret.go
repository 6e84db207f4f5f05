package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ontoguard/internal/normalize"
	"github.com/ppiankov/ontoguard/internal/server"
)

var interpretDryRun bool

func init() {
	rootCmd.AddCommand(interpretCmd)
	interpretCmd.Flags().BoolVar(&interpretDryRun, "dry-run", false, "Print the interpretation and normalized fields without recording")
}

var interpretCmd = &cobra.Command{
	Use:   "interpret <action text>",
	Short: "Interpret free text with the oracle, then decide",
	Long: "Sends the action text to the configured chat-completions endpoint\n" +
		"(oracle.api_url), normalizes the four labeled lines of the reply and\n" +
		"records the result like `decide`.",
	Args: cobra.MinimumNArgs(1),
	RunE: runInterpret,
}

func runInterpret(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	oracle := oracleFor(appCfg)
	if oracle == nil {
		return fmt.Errorf("oracle.api_url is not configured")
	}

	ctx := context.Background()
	interpretation, err := oracle.Interpret(ctx, text)
	if err != nil {
		return err
	}

	if interpretDryRun {
		printJSON(map[string]any{
			"interpretation": interpretation,
			"fields":         normalize.Normalize(interpretation),
		})
		return nil
	}

	rt, err := openRuntime(ctx, appCfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	out, err := rt.orch.DecideText(ctx, text, interpretation)
	printJSON(server.ReplyFor(out))
	return err
}
