package transcript

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

// RenderOptions describes the rendered document. IntervalSeconds is the
// timestamp grouping interval used by BuildBlocks.
type RenderOptions struct {
	Title           string
	Subtitle        string
	IntervalSeconds int
}

// Layout constants, in points. Letter pages with generous margins and a
// narrow timestamp gutter to the left of the body text.
const (
	sideMargin     = 0.85 * 72
	verticalMargin = 0.75 * 72
	gutterWidth    = 0.9 * 72
	bodyLeading    = 15
	blockSpacing   = 5
)

// RenderPDF writes blocks as a two-column document: bold grey timestamps
// in the left gutter, cleaned text in the body column.
func RenderPDF(blocks []Block, outPath string, opts RenderOptions) error {
	title := opts.Title
	if title == "" {
		title = "Lecture Transcript"
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("chalktalk", true)
	pdf.SetMargins(sideMargin, verticalMargin, sideMargin)
	pdf.SetAutoPageBreak(true, verticalMargin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, pageHeight := pdf.GetPageSize()
	bodyWidth := pageWidth - 2*sideMargin - gutterWidth
	breakAt := pageHeight - verticalMargin

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(pageWidth-2*sideMargin, 22, tr(title), "", "L", false)
	pdf.SetY(pdf.GetY() + 10)

	if opts.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 10.5)
		pdf.SetTextColor(128, 128, 128)
		pdf.MultiCell(pageWidth-2*sideMargin, 14, tr(opts.Subtitle), "", "L", false)
		pdf.SetY(pdf.GetY() + 18)
	}

	for _, b := range blocks {
		if pdf.GetY()+bodyLeading > breakAt {
			pdf.AddPage()
		}
		y := pdf.GetY()

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(128, 128, 128)
		pdf.SetXY(sideMargin, y)
		pdf.CellFormat(gutterWidth, bodyLeading, FormatTimestamp(b.Start), "", 0, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(sideMargin+gutterWidth, y)
		pdf.MultiCell(bodyWidth, bodyLeading, tr(b.Text), "", "L", false)

		sep := pdf.GetY() + 1
		pdf.SetDrawColor(245, 245, 245)
		pdf.SetLineWidth(0.25)
		pdf.Line(sideMargin, sep, pageWidth-sideMargin, sep)
		pdf.SetXY(sideMargin, sep+blockSpacing)
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}
