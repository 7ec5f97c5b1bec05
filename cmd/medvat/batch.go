package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/medvat/medvat/internal/assess"
	"github.com/medvat/medvat/internal/batch"
	"github.com/medvat/medvat/internal/report"
	"github.com/medvat/medvat/internal/rubric"
)

var (
	batchRubricFlag  string
	batchModelFlag   string
	batchArchiveFlag bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [videos...]",
	Short: "Assess multiple videos one after another",
	Long: `Batch runs the full assessment for each video in order, one at a time,
writing a PDF report next to each. A failed video is recorded and the run
continues with the next one. With no arguments a multi-file picker opens.

With --archive the run's reports are also bundled into a single
zstd-compressed ZIP.`,
	Run: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchRubricFlag, "rubric", "r", rubric.KeyAutoDetect, "Rubric key applied to every video")
	batchCmd.Flags().StringVarP(&batchModelFlag, "model", "m", "", "Gemini model to use")
	batchCmd.Flags().BoolVar(&batchArchiveFlag, "archive", false, "Bundle the run's reports into a ZIP")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) {
	videos := args
	if len(videos) == 0 {
		selected, err := zenity.SelectFileMultiple(
			zenity.Title("Select videos to assess"),
			zenity.FileFilters{
				{Name: "Video files", Patterns: []string{"*.mp4", "*.mov", "*.avi", "*.mkv", "*.webm"}},
			},
		)
		if err != nil {
			if errors.Is(err, zenity.ErrCanceled) {
				fmt.Println("No videos selected.")
				return
			}
			log.Fatal().Err(err).Msg("File picker failed")
		}
		videos = selected
	}
	if len(videos) == 0 {
		fmt.Println("Nothing to do.")
		return
	}

	ctx := context.Background()
	store := rubric.Builtin()
	rb := resolveRubric(store, batchRubricFlag)
	model := resolveModel(batchModelFlag)
	svc := newService(ctx)
	orch := assess.New(svc, store)

	fmt.Println("============================================")
	fmt.Println("MedVAT Batch Assessment")
	fmt.Println("============================================")
	fmt.Printf("Videos: %d\n", len(videos))
	fmt.Printf("Rubric: %s\n", rb.Title)
	fmt.Printf("Model:  %s\n", model)
	fmt.Println("--------------------------------------------")

	process := func(ctx context.Context, videoPath string) (string, error) {
		eval, err := orch.Run(ctx, videoPath, rb, assess.Options{Model: model}, nil)
		if err != nil {
			return "", err
		}
		pdfPath := report.TargetPath(videoPath)
		if err := report.Render(report.FromEvaluation(eval, videoPath), pdfPath); err != nil {
			return "", err
		}
		return pdfPath, nil
	}

	events := make(chan batch.Event, 4*len(videos))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			fmt.Printf("  [%d/%d] %s (ok: %d, failed: %d)\n",
				ev.Completed, ev.Total, ev.Message, ev.Succeeded, ev.Failed)
		}
	}()

	summary := batch.New(process).Run(ctx, videos, events)
	close(events)
	<-done

	printBatchSummary(summary)

	if batchArchiveFlag {
		archiveRun(summary, videos[0])
	}
}

func printBatchSummary(summary *batch.Summary) {
	fmt.Println()
	fmt.Println("============================================")
	fmt.Println("Batch Complete")
	fmt.Println("============================================")

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Video", "Result", "Report / Cause"})
	for _, o := range summary.Outcomes {
		result := "OK"
		detail := o.ReportPath
		if !o.Succeeded {
			result = "FAILED"
			detail = o.ErrorSummary
		}
		tw.AppendRow(table.Row{o.VideoName, result, detail})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
	})
	fmt.Println(tw.Render())

	failed := summary.Failures()
	fmt.Printf("\nSuccessful: %d/%d", summary.Succeeded, summary.Attempted)
	if len(failed) > 0 {
		fmt.Printf(" | Failed: %d\n", len(failed))
		fmt.Println("\nTIP: Failed videos can be processed individually. Check error messages for specific issues.")
	} else {
		fmt.Println()
	}
	if summary.Succeeded == 0 && summary.Attempted > 0 {
		fmt.Println(`
All videos failed. Please check:
1. Your API key is valid
2. Video files are accessible
3. Internet connection is stable
4. Try processing one video individually to diagnose the issue`)
	}
}

// archiveRun bundles the run's report PDFs into a ZIP next to the first video.
func archiveRun(summary *batch.Summary, firstVideo string) {
	var paths []string
	for _, o := range summary.Outcomes {
		if o.Succeeded && o.ReportPath != "" {
			paths = append(paths, o.ReportPath)
		}
	}
	if len(paths) == 0 {
		fmt.Println("No reports to archive.")
		return
	}

	runTag := summary.RunID
	if len(runTag) > 8 {
		runTag = runTag[:8]
	}
	zipPath := filepath.Join(filepath.Dir(firstVideo), fmt.Sprintf("medvat-reports-%s.zip", runTag))
	if err := report.Archive(zipPath, paths); err != nil {
		log.Error().Err(err).Msg("Failed to create report archive")
		return
	}
	fmt.Printf("Archive written: %s\n", zipPath)
}
