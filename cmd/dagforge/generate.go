package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/artifact"
	"github.com/spf13/cobra"
)

func generateCmd(envFile *string) *cobra.Command {
	var (
		params service.GenerateParams
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "generate MAPPING_ID...",
		Short: "Render DAG files for mappings",
		Long: `Render the template for each mapping and write one DAG file per mapping
into the output directory. A failing mapping is reported and recorded as an
Error artifact and the remaining mappings are still generated. With --strict
the command exits non-zero when any mapping failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			params.MappingIDs = ids

			client, _, err := openClient(*envFile)
			if err != nil {
				return err
			}
			defer closeClient(client)

			result, err := client.Generation.Generate(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			printBatch(cmd.OutOrStdout(), result)
			return batchErr(result, strict)
		},
	}

	cmd.Flags().Int64Var(&params.TemplateID, "template", 0, "Template ID to render (required)")
	cmd.Flags().StringVar(&params.Prefix, "prefix", "", "Prefix for generated DAG names")
	cmd.Flags().StringVar(&params.Schedule, "schedule", "", "Cron expression or preset such as @daily (default: no schedule)")
	cmd.Flags().BoolVar(&params.Catchup, "catchup", false, "Enable Airflow catchup in generated DAGs")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any mapping failed")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func printBatch(w io.Writer, result artifact.BatchResult) {
	for _, it := range result.Items {
		if it.Succeeded() {
			_, _ = fmt.Fprintf(w, "ok      %d  %s\n", it.MappingID, it.Artifact.Filename())
			continue
		}
		_, _ = fmt.Fprintf(w, "failed  %d  %s: %v\n", it.MappingID, it.Name, it.Err)
	}
	_, _ = fmt.Fprintf(w, "%d succeeded, %d failed\n", result.Succeeded(), result.Failed())
}

// batchErr reports failed mappings as an error only in strict mode. A
// partial failure is otherwise a successful run.
func batchErr(result artifact.BatchResult, strict bool) error {
	if !strict || result.Failed() == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d mappings failed", result.Failed(), len(result.Items))
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid mapping id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func ddlCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ddl MAPPING_ID",
		Short: "Print the target CREATE TABLE statement for a mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			client, _, err := openClient(*envFile)
			if err != nil {
				return err
			}
			defer closeClient(client)

			return printDDL(cmd.Context(), cmd.OutOrStdout(), client.Mappings, ids[0])
		},
	}
}

type ddlSource interface {
	DDL(ctx context.Context, id int64) (string, error)
}

func printDDL(ctx context.Context, w io.Writer, src ddlSource, id int64) error {
	stmt, err := src.DDL(ctx, id)
	if err != nil {
		return fmt.Errorf("mapping %d: %w", id, err)
	}
	_, err = fmt.Fprintln(w, stmt)
	return err
}
