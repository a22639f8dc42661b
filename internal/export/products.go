// Package export renders catalog data as spreadsheets for the back office.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"storefront/internal/models"
)

// ProductsSheet is the name of the worksheet holding one row per product.
const ProductsSheet = "Products"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var productColumns = []struct {
	header string
	width  float64
}{
	{"ID", 8},
	{"Name", 30},
	{"Brand", 18},
	{"Category", 18},
	{"Price", 12},
	{"Status", 12},
	{"Active", 8},
	{"Rating", 8},
	{"Reviews", 10},
	{"Tags", 30},
	{"Images", 40},
	{"Published At", 22},
	{"Created By", 16},
	{"Updated At", 22},
}

// WriteProducts writes an xlsx workbook listing products to w.
func WriteProducts(w io.Writer, products []models.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProductsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range productColumns {
		if err := writeHeader(f, i+1, col.header, col.width, headerStyle); err != nil {
			return err
		}
	}

	for r, p := range products {
		row := []interface{}{
			p.ID,
			p.Name,
			p.Brand,
			p.Category,
			p.Price,
			string(p.Status),
			p.IsActive,
			p.Rating,
			p.ReviewCount,
			strings.Join(p.Tags, ", "),
			strings.Join(p.Images, "\n"),
			formatTime(p.PublishedAt),
			p.CreatedBy,
			p.UpdatedAt.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("failed to address product %d: %w", p.ID, err)
		}
		if err := f.SetSheetRow(ProductsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write product %d: %w", p.ID, err)
		}
	}

	if err := f.SetPanes(ProductsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeHeader writes the header cell of column col and sizes the column.
func writeHeader(f *excelize.File, col int, header string, width float64, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, 1)
	if err != nil {
		return fmt.Errorf("failed to address header %q: %w", header, err)
	}
	if err := f.SetCellValue(ProductsSheet, cell, header); err != nil {
		return fmt.Errorf("failed to write header %q: %w", header, err)
	}
	if err := f.SetCellStyle(ProductsSheet, cell, cell, style); err != nil {
		return fmt.Errorf("failed to style header %q: %w", header, err)
	}
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return fmt.Errorf("failed to name column %d: %w", col, err)
	}
	if err := f.SetColWidth(ProductsSheet, name, name, width); err != nil {
		return fmt.Errorf("failed to size column %s: %w", name, err)
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
