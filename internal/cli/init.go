package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ontoguard/internal/config"
	"github.com/ppiankov/ontoguard/internal/keyword"
	"github.com/ppiankov/ontoguard/internal/policy"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config files")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap ontoguard configuration",
	Long: `Creates ~/.ontoguard/ with a runtime config, the default risk policy
and the default high-risk vocabulary. Existing files are left alone
unless --force is given.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir := config.Dir()
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	vocabContent, err := defaultVocabularyYAML()
	if err != nil {
		return fmt.Errorf("generate default vocabulary: %w", err)
	}

	files := []struct {
		name    string
		content string
	}{
		{"config.yaml", config.DefaultConfigYAML()},
		{"policy.yaml", policy.DefaultConfigYAML()},
		{"vocabulary.yaml", vocabContent},
	}

	var created []string
	for _, f := range files {
		path := filepath.Join(configDir, f.name)
		wrote, err := writeIfMissing(path, f.content)
		if err != nil {
			return err
		}
		if wrote {
			created = append(created, path)
		}
	}

	fmt.Println("ontoguard init complete.")
	fmt.Println()
	if len(created) > 0 {
		fmt.Println("Created:")
		for _, path := range created {
			fmt.Printf("  %s\n", path)
		}
		fmt.Println()
	} else {
		fmt.Println("All files already exist (use --force to overwrite).")
		fmt.Println()
	}

	fmt.Println("Try a decision:")
	fmt.Println(`  ontoguard decide --agent-type Researcher --capability Search --tool Browser --risk-level Low`)
	fmt.Println()
	fmt.Println("Start the servers:")
	fmt.Println("  ontoguard serve")

	return nil
}

// writeIfMissing writes content to path if it doesn't exist or --force is set.
// Returns true if the file was written.
func writeIfMissing(path, content string) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

// defaultVocabularyYAML generates a commented default vocabulary.yaml.
func defaultVocabularyYAML() (string, error) {
	data, err := yaml.Marshal(keyword.Terms{Terms: keyword.DefaultTerms})
	if err != nil {
		return "", err
	}
	header := "# ontoguard high-risk vocabulary.\n" +
		"# Terms are matched case-insensitively as substrings of the raw action\n" +
		"# text and of the agent type, capability and tool fields.\n" +
		"#\n" +
		"# Changes are picked up by a running server without restart.\n\n"
	return header + string(data), nil
}
