package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/medvat/medvat/internal/assess"
	"github.com/medvat/medvat/internal/faults"
	"github.com/medvat/medvat/internal/report"
	"github.com/medvat/medvat/internal/rubric"
)

var (
	assessRubricFlag string
	assessModelFlag  string
	assessNoPDFFlag  bool
)

var assessCmd = &cobra.Command{
	Use:   "assess [video]",
	Short: "Assess a single recorded performance against a rubric",
	Long: `Assess uploads one video to Gemini, evaluates it against the chosen
rubric, and writes a PDF report next to the video. With no argument a file
picker opens.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAssess,
}

func init() {
	assessCmd.Flags().StringVarP(&assessRubricFlag, "rubric", "r", rubric.KeyAutoDetect, "Rubric key (pass an unknown key to list available rubrics)")
	assessCmd.Flags().StringVarP(&assessModelFlag, "model", "m", "", "Gemini model to use (default: configured or "+defaultModelHint+")")
	assessCmd.Flags().BoolVar(&assessNoPDFFlag, "no-pdf", false, "Print the result without writing a PDF report")
	rootCmd.AddCommand(assessCmd)
}

const defaultModelHint = "gemini-2.5-flash"

func runAssess(cmd *cobra.Command, args []string) {
	videoPath := ""
	if len(args) == 1 {
		videoPath = args[0]
	} else {
		selected, err := zenity.SelectFile(
			zenity.Title("Select a video to assess"),
			zenity.FileFilters{
				{Name: "Video files", Patterns: []string{"*.mp4", "*.mov", "*.avi", "*.mkv", "*.webm"}},
			},
		)
		if err != nil {
			if errors.Is(err, zenity.ErrCanceled) {
				fmt.Println("No video selected.")
				return
			}
			log.Fatal().Err(err).Msg("File picker failed")
		}
		videoPath = selected
	}

	ctx := context.Background()
	store := rubric.Builtin()
	rb := resolveRubric(store, assessRubricFlag)
	model := resolveModel(assessModelFlag)
	svc := newService(ctx)
	orch := assess.New(svc, store)

	fmt.Println("============================================")
	fmt.Println("MedVAT Assessment")
	fmt.Println("============================================")
	fmt.Printf("Video:  %s\n", videoPath)
	fmt.Printf("Rubric: %s\n", rb.Title)
	fmt.Printf("Model:  %s\n", model)
	fmt.Println("--------------------------------------------")

	eval, err := runWithRetry(ctx, orch, videoPath, rb, assess.Options{Model: model})
	if err != nil {
		printFailure(err)
		os.Exit(1)
	}

	printEvaluation(eval)

	if assessNoPDFFlag {
		return
	}
	pdfPath := report.TargetPath(videoPath)
	if err := report.Render(report.FromEvaluation(eval, videoPath), pdfPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to write PDF report")
	}
	fmt.Printf("\nReport written: %s\n", pdfPath)
}

// runWithRetry runs one assessment and, on a recoverable failure, offers a
// single yes/no retry. Fatal failures never prompt.
func runWithRetry(ctx context.Context, orch *assess.Orchestrator, videoPath string, rb *rubric.Rubric, opts assess.Options) (*assess.Evaluation, error) {
	for {
		progress := make(chan assess.Progress, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for p := range progress {
				fmt.Printf("  [%3.0f%%] %s\n", p.Fraction*100, p.Message)
			}
		}()

		eval, err := orch.Run(ctx, videoPath, rb, opts, progress)
		close(progress)
		<-done
		if err == nil {
			return eval, nil
		}

		var f *faults.Failure
		if !errors.As(err, &f) || f.Fatal {
			return nil, err
		}

		fmt.Println()
		fmt.Println(f.Format())
		fmt.Print("This error may be temporary. Try again? (y/N): ")
		reader := bufio.NewReader(os.Stdin)
		input, readErr := reader.ReadString('\n')
		if readErr != nil || !isYes(input) {
			return nil, err
		}
		fmt.Println("Retrying...")
	}
}

func isYes(input string) bool {
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func printEvaluation(eval *assess.Evaluation) {
	fmt.Println()
	fmt.Println("============================================")
	fmt.Println("Assessment Results")
	fmt.Println("============================================")

	var byName map[string]*rubric.Criterion
	if eval.Rubric != nil {
		byName = make(map[string]*rubric.Criterion, len(eval.Rubric.Items))
		for i := range eval.Rubric.Items {
			byName[eval.Rubric.Items[i].Name] = &eval.Rubric.Items[i]
		}
	}
	for _, res := range eval.Assessments {
		score := fmt.Sprintf("%d", res.Score)
		if crit, ok := byName[res.Name]; ok {
			score = crit.DisplayScore(res.Score)
		}
		fmt.Printf("  %-45s %s\n", res.Name, score)
		if res.Advice != "" {
			fmt.Printf("      %s\n", res.Advice)
		}
	}
	fmt.Println("--------------------------------------------")
	fmt.Printf("Summative: %s\n", eval.SummativeComment)

	if missing := eval.MissingTimestamps(); len(missing) > 0 {
		fmt.Printf("\nNote: no timestamp references in advice for: %s\n", strings.Join(missing, ", "))
	}
}

func printFailure(err error) {
	var f *faults.Failure
	if errors.As(err, &f) {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, f.Format())
		return
	}
	fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
}
