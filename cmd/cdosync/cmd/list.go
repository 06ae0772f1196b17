package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/cdosync/internal/schema"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all integrations defined in configuration",
	Long: `List displays every integration defined in the configuration file
with its entity, custom object, file marker, and effective mode.

Example:
  cdosync list --config cdosync.yaml`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := cfg.ListIntegrations()
	if len(names) == 0 {
		cmd.Printf("No integrations defined in %s\n", GetConfigFile())
		return nil
	}

	o := GetCLIOverrides()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		ic, err := cfg.GetIntegration(name)
		if err != nil {
			return err
		}
		proc := cfg.ApplyIntegrationOverrides(name, o.Mode, o.BatchSize, o.MaxAttempts)

		def, err := schema.Resolve(name, *ic)
		if err != nil {
			rows = append(rows, []string{name, ic.Entity, "-", "-", proc.Mode, errorText("invalid: " + err.Error())})
			continue
		}

		var extras string
		if def.LinkContacts {
			extras += "link "
		}
		if def.Prune {
			extras += "prune"
		}
		rows = append(rows, []string{
			name,
			def.Entity,
			fmt.Sprint(def.CustomObjectID),
			def.FileMarker,
			proc.Mode,
			extras,
		})
	}

	cmd.Printf("Integrations defined in %s:\n\n", GetConfigFile())
	cmd.Print(table([]string{"NAME", "ENTITY", "CDO", "MARKER", "MODE", "OPTIONS"}, rows))
	cmd.Printf("\nTotal: %d integration(s)\n", len(names))
	return nil
}
