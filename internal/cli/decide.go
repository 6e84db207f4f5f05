package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ontoguard/internal/client"
	"github.com/ppiankov/ontoguard/internal/ingest"
	"github.com/ppiankov/ontoguard/internal/model"
	"github.com/ppiankov/ontoguard/internal/server"
)

var (
	decideAgentType  string
	decideCapability string
	decideTool       string
	decideRiskLevel  string
	decideText       string
	decideFile       string
	decideRemote     string
)

func init() {
	rootCmd.AddCommand(decideCmd)
	decideCmd.Flags().StringVar(&decideAgentType, "agent-type", "", "Agent type performing the action")
	decideCmd.Flags().StringVar(&decideCapability, "capability", "", "Capability the action requires")
	decideCmd.Flags().StringVar(&decideTool, "tool", "", "Tool used by the action")
	decideCmd.Flags().StringVar(&decideRiskLevel, "risk-level", "", "Declared risk level (Low/Medium/High)")
	decideCmd.Flags().StringVar(&decideText, "text", "", "Original free-text action description")
	decideCmd.Flags().StringVar(&decideFile, "file", "", "Read the request from a JSON file instead of flags")
	decideCmd.Flags().StringVar(&decideRemote, "remote", "", "Send the request to a gRPC server at this address")
}

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Record one structured action and print the decision",
	Long: "Validates the four fields, records them in the knowledge graph and\n" +
		"prints the decision as JSON. With --remote the request goes to a\n" +
		"running ontoguard gRPC server instead of the local graph.",
	RunE: runDecide,
}

func runDecide(cmd *cobra.Command, args []string) error {
	req := model.ActionRequest{
		AgentType:  decideAgentType,
		Capability: decideCapability,
		Tool:       decideTool,
		RiskLevel:  decideRiskLevel,
		RawText:    decideText,
	}
	if decideFile != "" {
		var err error
		req, err = ingest.ParseFile(decideFile)
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	var reply server.CheckReply

	if decideRemote != "" {
		c, err := client.New(decideRemote)
		if err != nil {
			return err
		}
		defer c.Close()
		reply, err = c.Check(ctx, req)
		if err != nil {
			return err
		}
	} else {
		rt, err := openRuntime(ctx, appCfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		out, err := rt.orch.Decide(ctx, req)
		reply = server.ReplyFor(out)
		if err != nil {
			printJSON(reply)
			return err
		}
	}

	printJSON(reply)
	return nil
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
