package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configPathOnly bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, .eztask.yaml and EZTASK_*
environment variables have been applied, as YAML (or JSON with --format
json).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		out := cmd.OutOrStdout()

		if configPathOnly {
			file := ""
			if ConfigMgr != nil {
				file = ConfigMgr.ConfigFile()
			}
			if file == "" {
				file = "(none, using defaults)"
			}
			fmt.Fprintln(out, file)
			return nil
		}

		format, err := resolveFormat()
		if err != nil {
			return err
		}
		// A table has no shape for nested settings; it prints as YAML.
		if format == formatJSON {
			return writeJSON(out, Cfg)
		}
		return writeYAML(out, Cfg)
	},
}

func init() {
	configCmd.Flags().BoolVar(&configPathOnly, "path", false, "Print only the config file in use")
	rootCmd.AddCommand(configCmd)
}
