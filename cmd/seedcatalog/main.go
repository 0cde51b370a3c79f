// Command seedcatalog converts a catalog workbook into a SQL seed file.
// Reads the "products" sheet (sku, barcode, name) and the "aliases" sheet
// (platform, alias_value, sku). Row 1 of each sheet is a header.
// Usage: go run ./cmd/seedcatalog [catalog.xlsx] [db/seeds/catalog.sql]
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

const batchSize = 500

const (
	productsSheet = "products"
	aliasesSheet  = "aliases"
)

type productRow struct {
	sku     string
	barcode string // empty = NULL
	name    string
}

type aliasRow struct {
	platform   string
	aliasValue string
	sku        string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := "catalog.xlsx"
	outPath := "db/seeds/catalog.sql"
	if len(os.Args) > 1 {
		xlsxPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	products, aliases, err := readCatalog(f)
	if err != nil {
		return err
	}
	log.Printf("products sheet: %d rows, aliases sheet: %d rows", len(products), len(aliases))

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := writeSeed(out, products, aliases); err != nil {
		return err
	}

	log.Printf("Generated seed for %d products and %d aliases in %s", len(products), len(aliases), outPath)
	return nil
}

// readCatalog parses both sheets. Values are kept exactly as typed because
// identifier lookup is exact; only rows with an empty key are skipped.
func readCatalog(f *excelize.File) ([]productRow, []aliasRow, error) {
	rows, err := f.GetRows(productsSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s sheet: %w", productsSheet, err)
	}

	seenSKU := make(map[string]bool)
	seenBarcode := make(map[string]bool)
	var products []productRow
	for i := 1; i < len(rows); i++ {
		p := productRow{sku: cellVal(rows[i], 0), barcode: cellVal(rows[i], 1), name: cellVal(rows[i], 2)}
		if p.sku == "" {
			continue
		}
		if seenSKU[p.sku] {
			log.Printf("WARN: products row %d: duplicate sku %q skipped", i+1, p.sku)
			continue
		}
		if p.barcode != "" && seenBarcode[p.barcode] {
			log.Printf("WARN: products row %d: duplicate barcode %q dropped", i+1, p.barcode)
			p.barcode = ""
		}
		seenSKU[p.sku] = true
		if p.barcode != "" {
			seenBarcode[p.barcode] = true
		}
		products = append(products, p)
	}

	// The aliases sheet is optional.
	if idx, _ := f.GetSheetIndex(aliasesSheet); idx < 0 {
		return products, nil, nil
	}
	rows, err = f.GetRows(aliasesSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s sheet: %w", aliasesSheet, err)
	}

	seenAlias := make(map[string]bool)
	var aliases []aliasRow
	for i := 1; i < len(rows); i++ {
		a := aliasRow{platform: strings.ToLower(cellVal(rows[i], 0)), aliasValue: cellVal(rows[i], 1), sku: cellVal(rows[i], 2)}
		if a.platform == "" || a.aliasValue == "" || a.sku == "" {
			continue
		}
		key := a.platform + "|" + a.aliasValue
		if seenAlias[key] {
			log.Printf("WARN: aliases row %d: duplicate alias %q for %s skipped", i+1, a.aliasValue, a.platform)
			continue
		}
		seenAlias[key] = true
		aliases = append(aliases, a)
	}
	return products, aliases, nil
}

func writeSeed(out io.Writer, products []productRow, aliases []aliasRow) error {
	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Catalog seed data generated from Excel.",
		fmt.Sprintf("-- %d products, %d aliases in batches of %d.", len(products), len(aliases), batchSize),
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(products); i += batchSize {
		end := min(i+batchSize, len(products))
		if err := writeProductBatch(out, products[i:end]); err != nil {
			return fmt.Errorf("write product batch at offset %d: %w", i, err)
		}
	}
	for i := 0; i < len(aliases); i += batchSize {
		end := min(i+batchSize, len(aliases))
		if err := writeAliasBatch(out, aliases[i:end]); err != nil {
			return fmt.Errorf("write alias batch at offset %d: %w", i, err)
		}
	}

	for _, line := range []string{"", "COMMIT;"} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write footer: %w", werr)
		}
	}
	return nil
}

func writeProductBatch(out io.Writer, batch []productRow) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO products (sku, barcode, name) VALUES\n")
	for i := range batch {
		p := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		barcodeVal := "NULL"
		if p.barcode != "" {
			barcodeVal = quote(p.barcode)
		}
		fmt.Fprintf(&b, "  (%s, %s, %s)", quote(p.sku), barcodeVal, quote(p.name))
	}
	b.WriteString("\nON CONFLICT (sku) DO NOTHING;\n")

	_, err := io.WriteString(out, b.String())
	return err
}

// writeAliasBatch resolves product ids by sku inside the INSERT so aliases
// for skus missing from the table are dropped rather than failing the load.
func writeAliasBatch(out io.Writer, batch []aliasRow) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO product_aliases (platform, alias_value, product_id)\nSELECT v.platform, v.alias_value, p.id\nFROM (VALUES\n")
	for i := range batch {
		a := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  (%s, %s, %s)", quote(a.platform), quote(a.aliasValue), quote(a.sku))
	}
	b.WriteString("\n) AS v(platform, alias_value, sku)\nJOIN products p ON p.sku = v.sku\nON CONFLICT (platform, alias_value) DO NOTHING;\n")

	_, err := io.WriteString(out, b.String())
	return err
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
