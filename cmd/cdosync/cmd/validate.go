package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/cdosync/internal/config"
	"github.com/dbsmedya/cdosync/internal/schema"
)

var validateConnections bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and optionally check connectivity",
	Long: `Validate checks the configuration file and resolves every integration
against its entity preset.

Checks performed:
  - Configuration syntax and required fields
  - Integration schemas (key field, identifier column, field mapping)
  - With --connections: Eloqua login discovery, S3 listing, and the
    summary database

Example:
  cdosync validate --config cdosync.yaml --connections`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateConnections, "connections", false,
		"Also connect to Eloqua, S3, and the summary database")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cmd.Printf("%s\n", headingText("=== Configuration Validation ==="))
	cmd.Printf("Config file: %s\n", GetConfigFile())
	cmd.Printf("Integrations found: %d\n\n", len(cfg.Integrations))

	hasErrors := false
	if err := cfg.Validate(); err != nil {
		hasErrors = true
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, e := range verrs {
				cmd.Printf("%s %s\n", statusText(false), e.Error())
			}
		} else {
			cmd.Printf("%s %v\n", statusText(false), err)
		}
		cmd.Println()
	}

	for _, name := range cfg.ListIntegrations() {
		ic, _ := cfg.GetIntegration(name)
		def, err := schema.Resolve(name, *ic)
		if err != nil {
			cmd.Printf("%s %s: %v\n", statusText(false), name, err)
			hasErrors = true
			continue
		}
		cmd.Printf("%s %s (CDO %d, %d columns, marker %q)\n",
			statusText(true), name, def.CustomObjectID, def.Columns.Len(), def.FileMarker)
	}

	if hasErrors {
		return fmt.Errorf("validation failed")
	}

	if validateConnections {
		if err := checkConnections(cmd, cfg); err != nil {
			return err
		}
	}

	cmd.Printf("\n%s\n", okText("Configuration is valid"))
	return nil
}

func checkConnections(cmd *cobra.Command, cfg *config.Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cmd.Printf("\n%s\n", headingText("=== Connections ==="))
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		cmd.Printf("%s %v\n", statusText(false), err)
		return fmt.Errorf("connection check failed")
	}
	defer a.Close()

	cmd.Printf("%s Eloqua base URL %s\n", statusText(true), a.eloqua.BaseURL())
	if a.db != nil {
		if err := a.db.Ping(ctx); err != nil {
			cmd.Printf("%s %v\n", statusText(false), err)
			return fmt.Errorf("connection check failed")
		}
		cmd.Printf("%s Summary database\n", statusText(true))
	}

	for _, name := range cfg.ListIntegrations() {
		ic, _ := cfg.GetIntegration(name)
		def, err := schema.Resolve(name, *ic)
		if err != nil {
			return err
		}
		files, err := a.store.List(ctx, def.FileMarker)
		if err != nil {
			cmd.Printf("%s S3 listing for %s: %v\n", statusText(false), name, err)
			return fmt.Errorf("connection check failed")
		}
		if len(files) == 0 {
			cmd.Printf("%s %s: no files matching %q\n", warnText("WARN"), name, def.FileMarker)
			continue
		}
		cmd.Printf("%s %s: %d file(s)\n", statusText(true), name, len(files))
	}
	return nil
}
