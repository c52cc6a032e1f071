package main

import (
	"fmt"

	"github.com/helixml/dagforge/infrastructure/bundle"
	"github.com/spf13/cobra"
)

func exportCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write templates, connections and the naming rule to a YAML bundle",
		Long: `Write templates, connections and the naming rule to a YAML bundle.
Connection passwords are never exported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := openClient(*envFile)
			if err != nil {
				return err
			}
			defer closeClient(client)

			b, err := client.Bundles.Export(cmd.Context())
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := bundle.WriteFile(b, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d templates and %d connections to %s\n",
				len(b.Templates), len(b.Connections), args[0])
			return nil
		},
	}
}

func importCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load templates, connections and the naming rule from a YAML bundle",
		Long: `Load a YAML bundle. Templates replace those with the same name, connections
whose name already exists are skipped, and a bundled naming rule becomes the
active rule.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := bundle.LoadFile(args[0])
			if err != nil {
				return err
			}

			client, _, err := openClient(*envFile)
			if err != nil {
				return err
			}
			defer closeClient(client)

			result, err := client.Bundles.Import(cmd.Context(), b)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"templates: %d created, %d updated\nconnections: %d created, %d skipped\nnaming rule saved: %t\n",
				result.TemplatesCreated, result.TemplatesUpdated,
				result.ConnectionsCreated, result.ConnectionsSkipped,
				result.NamingRuleSaved)
			return nil
		},
	}
}
