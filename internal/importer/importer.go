package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV files with the header
// id,name,description,price,image_url and upserts one product per row.
// A blank id lets the database assign one.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may omit trailing optional columns
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

// Run parses all rows and returns how many products were written. It stops at the first
// invalid row; rows before it stay imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"name", "price"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing %q column", required)
		}
	}

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		if blank(record) {
			continue
		}
		line, _ := i.reader.FieldPos(0)

		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := i.productRepo.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
		imported++
	}

	return imported, nil
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	id := pick(record, index, "id")
	name := pick(record, index, "name")
	priceStr := pick(record, index, "price")

	if name == "" {
		return domain.Product{}, errors.New("name is required")
	}
	if id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return domain.Product{}, fmt.Errorf("invalid id %q: %w", id, err)
		}
		id = parsed.String()
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid price %q for %q", priceStr, name)
	}
	if price.IsNegative() {
		return domain.Product{}, fmt.Errorf("negative price %s for %q", price, name)
	}

	return domain.Product{
		ID:          id,
		Name:        name,
		Description: optional(pick(record, index, "description")),
		Price:       price,
		ImageURL:    optional(pick(record, index, "image_url")),
	}, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
