package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ontoguard/internal/ingest"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the action request",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := ingest.Schema()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}
