package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/medvat/medvat/internal/gemini"
)

var modelsProbeFlag bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the Gemini models available to your API key",
	Long: `Models lists the generation-capable models your key can use. When
discovery fails a known-good fallback list is shown with a diagnostic.
With --probe each model is sent a tiny availability check.`,
	Run: runModels,
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsProbeFlag, "probe", false, "Send an availability probe to each model")
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	svc := newService(ctx)

	models, diag := gemini.DiscoverModels(ctx, svc)
	if diag != "" {
		fmt.Printf("Discovery problem: %s\n", diag)
		fmt.Println("Showing known-good fallback models instead.")
		fmt.Println()
	}

	preferred := gemini.PreferredModel(models)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := table.Row{"Model", "Preferred"}
	if modelsProbeFlag {
		header = append(header, "Probe")
	}
	tw.AppendHeader(header)

	for _, model := range models {
		mark := ""
		if model == preferred {
			mark = "*"
		}
		row := table.Row{model, mark}
		if modelsProbeFlag {
			if err := gemini.ProbeModel(ctx, svc, model); err != nil {
				row = append(row, fmt.Sprintf("unavailable: %v", err))
			} else {
				row = append(row, "ok")
			}
		}
		tw.AppendRow(row)
	}
	fmt.Println(tw.Render())
	fmt.Printf("\n%d model(s). * = used by default.\n", len(models))
}
