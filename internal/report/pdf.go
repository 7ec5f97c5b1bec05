package report

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"

	"github.com/medvat/medvat/internal/assess"
	"github.com/medvat/medvat/internal/rubric"
)

// Row is one printed line of the criteria table.
type Row struct {
	Criterion string
	Score     string
	Feedback  string
}

// Document is the printable form of one assessed video.
type Document struct {
	Title   string
	Date    time.Time
	Source  string
	Rows    []Row
	Summary string
}

// FromEvaluation flattens an evaluation into printable rows. Scores display
// per the rubric's criterion kind (Yes/No for checklist items, N/5 for
// scales); results the rubric doesn't know print the raw number.
func FromEvaluation(eval *assess.Evaluation, videoPath string) *Document {
	var byName map[string]*rubric.Criterion
	if eval.Rubric != nil {
		byName = make(map[string]*rubric.Criterion, len(eval.Rubric.Items))
		for i := range eval.Rubric.Items {
			byName[eval.Rubric.Items[i].Name] = &eval.Rubric.Items[i]
		}
	}

	doc := &Document{
		Date:    time.Now(),
		Source:  filepath.Base(videoPath),
		Summary: eval.SummativeComment,
	}
	if eval.Rubric != nil {
		doc.Title = eval.Rubric.Title
	}

	for _, res := range eval.Assessments {
		score := strconv.Itoa(res.Score)
		if crit, ok := byName[res.Name]; ok {
			score = crit.DisplayScore(res.Score)
		}
		doc.Rows = append(doc.Rows, Row{
			Criterion: res.Name,
			Score:     score,
			Feedback:  res.Advice,
		})
	}
	return doc
}

// Table layout in mm on a Letter page (usable width ~196 with 10 mm margins).
const (
	colCriterion = 60.0
	colScore     = 21.0
	colFeedback  = 115.0
	lineHeight   = 5.0
	pageBreakY   = 260.0
)

// Render writes the document as a single PDF at path.
func Render(doc *Document, path string) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, doc.Title, "", "C", false)
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Date: %s", doc.Date.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("File: %s", doc.Source), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Table header
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(0, 0, 139)
	pdf.SetTextColor(245, 245, 245)
	tableRow(pdf, Row{"Criterion", "Score", "AI Assessment & Advice"}, true)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range doc.Rows {
		tableRow(pdf, row, true)
	}
	pdf.Ln(8)

	// Summative section
	if pdf.GetY() > pageBreakY-20 {
		pdf.AddPage()
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Holistic Summative Comment:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, doc.Summary, "", "L", false)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write PDF %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("criteria", len(doc.Rows)).Msg("PDF report written")
	return nil
}

// tableRow draws one bordered row, sizing its height to the tallest wrapped
// cell and breaking the page when the row would not fit.
func tableRow(pdf *fpdf.Fpdf, row Row, fill bool) {
	widths := [3]float64{colCriterion, colScore, colFeedback}
	cells := [3]string{row.Criterion, row.Score, row.Feedback}

	lines := 1
	for i, txt := range cells {
		if n := len(pdf.SplitText(txt, widths[i]-2)); n > lines {
			lines = n
		}
	}
	height := float64(lines) * lineHeight

	left, _, _, _ := pdf.GetMargins()
	if pdf.GetY()+height > pageBreakY {
		pdf.AddPage()
	}
	x := left
	y := pdf.GetY()
	for i, txt := range cells {
		if fill {
			pdf.Rect(x, y, widths[i], height, "F")
		}
		pdf.Rect(x, y, widths[i], height, "D")
		pdf.SetXY(x+1, y)
		pdf.MultiCell(widths[i]-2, lineHeight, txt, "", "L", false)
		x += widths[i]
	}
	pdf.SetXY(left, y+height)
}
