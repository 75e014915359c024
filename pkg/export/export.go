package export

import "fmt"

// Format identifies an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// Validate rejects datasets that cannot be laid out as a table.
func (d Dataset) Validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("dataset %q has no headers", d.Title)
	}
	return nil
}

// Records lays the rows out in header order. Missing cells are empty.
func (d Dataset) Records() [][]string {
	out := make([][]string, len(d.Rows))
	for r, row := range d.Rows {
		record := make([]string, len(d.Headers))
		for c, header := range d.Headers {
			record[c] = row[header]
		}
		out[r] = record
	}
	return out
}

// Renderer turns a dataset into encoded bytes.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// ParseFormat validates a user supplied format, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// NewRenderer returns the renderer for a format.
func NewRenderer(f Format) Renderer {
	switch f {
	case FormatPDF:
		return NewPDFExporter()
	case FormatXLSX:
		return NewXLSXExporter()
	default:
		return NewCSVExporter()
	}
}
