package reports

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/readinglog"
)

const (
	pageWidth   = 190.0
	labelWidth  = 45.0
	displayDate = "02 Jan 2006"
)

// BookCardData is everything printed on a single book card.
type BookCardData struct {
	Book        catalog.BookView
	AddedAt     *time.Time
	GeneratedAt time.Time
}

// CollectionGrowthData lists the books added to a collection in a period.
type CollectionGrowthData struct {
	Owner       string
	From        time.Time
	To          time.Time
	Books       []readinglog.AddedBook
	GeneratedAt time.Time
}

func newDocument(title string, generatedAt time.Time) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetTitle(title, true)
	pdf.SetCreator("bookshelf", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(pageWidth, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(pageWidth, 6, fmt.Sprintf("Generated: %s UTC", generatedAt.UTC().Format("02 Jan 2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	return pdf, tr
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderBookCard draws a one-page summary of a book in the user's collection.
func RenderBookCard(data BookCardData) ([]byte, error) {
	book := data.Book
	pdf, tr := newDocument(book.Title, data.GeneratedAt)

	row := func(label, value string) {
		if value == "" {
			value = "-"
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(labelWidth, 7, tr(label), "1", 0, "L", true, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(pageWidth-labelWidth, 7, tr(value), "1", 1, "L", false, 0, "")
	}

	pdf.SetFillColor(240, 240, 240)
	row("Authors", authorNames(book.Authors))
	if book.Publisher != nil {
		row("Publisher", book.Publisher.Name)
	} else {
		row("Publisher", "")
	}
	if book.Published != nil {
		row("Published", fmt.Sprintf("%d", *book.Published))
	} else {
		row("Published", "")
	}
	row("Genres", genreNames(book.Genres))

	if current := book.CurrentStatus; current != nil {
		row("Status", current.Status.Name)
		row("Started", displayOptional(readinglog.FormatDate(current.StartDate)))
		row("Finished", displayOptional(readinglog.FormatDate(current.EndDate)))
		if current.PagesRead != nil {
			row("Pages read", fmt.Sprintf("%d", *current.PagesRead))
		}
	} else {
		row("Status", "")
	}
	if data.AddedAt != nil {
		row("Added", data.AddedAt.UTC().Format(displayDate))
	}

	if strings.TrimSpace(book.Description) != "" {
		pdf.Ln(5)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(pageWidth, 8, "Description", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(pageWidth, 6, tr(book.Description), "1", "L", false)
	}

	return output(pdf)
}

// RenderCollectionGrowth draws a table of books added in the period.
func RenderCollectionGrowth(data CollectionGrowthData) ([]byte, error) {
	pdf, tr := newDocument("Collection Growth", data.GeneratedAt)

	pdf.SetFont("Arial", "", 11)
	if data.Owner != "" {
		pdf.CellFormat(pageWidth, 7, tr("Collection of "+data.Owner), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(pageWidth, 7, fmt.Sprintf("Period: %s - %s",
		data.From.Format(readinglog.DateLayout), data.To.Format(readinglog.DateLayout)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(12, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(28, 7, "Added", "1", 0, "C", true, 0, "")
	pdf.CellFormat(90, 7, "Title", "1", 0, "C", true, 0, "")
	pdf.CellFormat(60, 7, "Authors", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i, added := range data.Books {
		pdf.CellFormat(12, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 6, added.AddedAt.UTC().Format(readinglog.DateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(90, 6, tr(clip(added.Book.Title, 48)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, tr(clip(authorNames(added.Book.Authors), 32)), "1", 1, "L", false, 0, "")
	}
	if len(data.Books) == 0 {
		pdf.CellFormat(pageWidth, 6, "No books were added in this period.", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(pageWidth, 8, fmt.Sprintf("Total books added: %d", len(data.Books)), "", 1, "R", false, 0, "")

	return output(pdf)
}

func authorNames(authors []entities.Author) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.DisplayName()
	}
	return strings.Join(names, ", ")
}

func genreNames(genres []entities.Genre) string {
	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

func displayOptional(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
