// Package cli provides the aobun command-line interface.
//
// The CLI only launches and configures the web UI; conversions happen
// through the browser.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aobun/internal/adapters/driven/config/file"
	"github.com/custodia-labs/aobun/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "aobun",
	Short: "Strip ruby and editorial notes from Aozora Bunko texts",
	Long: `aobun removes ruby readings (《…》), ruby markers (｜) and editorial
notes (［…］) from Aozora Bunko text files.

Run "aobun serve" and open the printed address to upload a .txt file or a
.zip archive of .txt files.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.aobun/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openConfigStore returns the store for --config, or the default path.
func openConfigStore() (*file.ConfigStore, error) {
	path := configPath
	if path == "" {
		p, err := file.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
		path = p
	}
	return file.NewConfigStore(path)
}
