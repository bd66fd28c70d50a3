package cli

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/aobun/internal/core/domain"
)

// ErrConfigExists is returned by "config init" when a config file is present.
var ErrConfigExists = errors.New("config file already exists")

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `View or create the aobun configuration file.

The file is TOML and lives at ~/.aobun/config.toml unless --config is given.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("getting force flag: %w", err)
	}

	store, err := openConfigStore()
	if err != nil {
		return err
	}
	if store.Exists() && !force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, store.Path())
	}

	if err := store.Save(domain.DefaultSettings()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	cmd.Printf("Wrote %s\n", store.Path())
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := openConfigStore()
	if err != nil {
		return err
	}

	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	source := store.Path()
	if !store.Exists() {
		source += " (not found, using defaults)"
	}
	cmd.Printf("# %s\n", source)
	cmd.Print(string(data))
	return nil
}
