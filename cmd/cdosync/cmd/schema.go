package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/cdosync/internal/schema"
)

var schemaIntegration string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the resolved field mapping of an integration",
	Long: `Schema prints the source fields, import columns, and custom object
field ids an integration uses, after merging configuration over the entity
preset.

Example:
  cdosync schema --config cdosync.yaml --integration tickets`,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaIntegration, "integration", "i", "",
		"Integration name from configuration file (required)")
	_ = schemaCmd.MarkFlagRequired("integration")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ic, err := cfg.GetIntegration(schemaIntegration)
	if err != nil {
		return err
	}
	def, err := schema.Resolve(schemaIntegration, *ic)
	if err != nil {
		return err
	}

	printDefinition(cmd, def)
	return nil
}

func printDefinition(cmd *cobra.Command, def *schema.Definition) {
	cmd.Printf("%s\n", headingText(fmt.Sprintf("%s (%s)", def.Name, def.Label)))
	cmd.Printf("Custom object:  %d\n", def.CustomObjectID)
	cmd.Printf("File marker:    %q\n", def.FileMarker)
	cmd.Printf("Key field:      %s\n", def.KeyField)
	cmd.Printf("Identifier:     %s\n", def.IdentifierField)
	if def.LinkContacts {
		cmd.Printf("Contact link:   %s\n", def.LinkColumn)
	}
	cmd.Printf("File fields:    %d\n\n", def.Schema.Width())

	rows := make([][]string, 0, def.Columns.Len())
	for el := def.Columns.Front(); el != nil; el = el.Next() {
		var marks []string
		if el.Key == def.IdentifierField {
			marks = append(marks, "identifier")
		}
		if el.Value.Source == def.KeyField {
			marks = append(marks, "key")
		}
		rows = append(rows, []string{el.Value.Source, el.Key, fmt.Sprint(el.Value.FieldID), strings.Join(marks, ",")})
	}
	cmd.Print(table([]string{"SOURCE", "COLUMN", "FIELD ID", ""}, rows))
}
