// Command parsedump parses a local shipment document and prints the
// diagnostic export as JSON. With a catalog workbook (same layout as
// seedcatalog) the rows are also resolved, ingested into an in-memory queue
// and aggregated into a pick list.
// Usage: go run ./cmd/parsedump <file> [platform] [catalog.xlsx]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"

	"packslip/internal/config"
	"packslip/internal/domain"
	"packslip/internal/identifier"
	"packslip/internal/parser"
	"packslip/internal/pipeline"
	"packslip/internal/repository/memory"
	"packslip/internal/service"
	"packslip/internal/textlayer"
)

type dump struct {
	Diagnostic  *domain.DocumentDiagnostic `json:"diagnostic"`
	Resolutions []domain.Resolution        `json:"resolutions,omitempty"`
	Ingest      *domain.IngestResult       `json:"ingest,omitempty"`
	PickList    []domain.PickListAggregate `json:"pick_list,omitempty"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return errors.New("usage: parsedump <file> [platform] [catalog.xlsx]")
	}
	path := os.Args[1]
	var platform domain.Platform
	if len(os.Args) > 2 {
		platform = domain.Platform(os.Args[2])
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	profiles := parser.DefaultProfiles()
	if cfg.Parser.ProfilesPath != "" {
		if profiles, err = parser.LoadProfiles(cfg.Parser.ProfilesPath); err != nil {
			return fmt.Errorf("loading profiles: %w", err)
		}
	}

	pc := pipeline.DefaultConfig()
	pc.YTolerance = cfg.Parser.YTolerance
	pc.EdgeMargin = cfg.Parser.EdgeMargin
	pc.Tolerances = parser.Tolerances{
		RowEpsilon:    cfg.Parser.RowEpsilon,
		WrapTolerance: cfg.Parser.WrapTolerance,
		BoundaryPad:   cfg.Parser.BoundaryPad,
	}
	pipe := pipeline.New(textlayer.NewMux(), nil, profiles, pc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := pipe.Parse(ctx, pipeline.ParseInput{
		Data:        data,
		ContentType: http.DetectContentType(data),
		Platform:    platform,
		FileRef:     path,
	})
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	out := dump{Diagnostic: result.Diagnostic}

	if len(os.Args) > 3 {
		if err := ingest(ctx, os.Args[3], profiles, result, path, &out); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func ingest(ctx context.Context, catalogPath string, profiles *parser.Profiles, result *pipeline.ParseResult, fileRef string, out *dump) error {
	catalogRepo := memory.NewCatalogRepo()
	queueRepo := memory.NewOrderQueueRepo()
	if err := loadCatalog(ctx, catalogPath, service.NewCatalogService(catalogRepo, queueRepo)); err != nil {
		return err
	}

	platform := result.Profile.Platform
	ids := make([]string, len(result.Rows))
	for i := range result.Rows {
		ids[i] = result.Rows[i].MarketplaceIdentifier
	}
	resolutions, err := identifier.NewResolver(catalogRepo).ResolveAll(ctx, ids, platform)
	if err != nil {
		return fmt.Errorf("resolving identifiers: %w", err)
	}
	out.Resolutions = resolutions

	out.Ingest, err = service.NewIngestionService(queueRepo, profiles).Ingest(ctx, service.IngestInput{
		Platform:    platform,
		Rows:        result.Rows,
		Resolutions: resolutions,
		FileRef:     fileRef,
	})
	if err != nil {
		return fmt.Errorf("ingesting rows: %w", err)
	}

	out.PickList, err = service.NewOrderQueueService(queueRepo).PickList(ctx, platform)
	if err != nil {
		return fmt.Errorf("building pick list: %w", err)
	}
	return nil
}

// loadCatalog reads the "products" and optional "aliases" sheets. Rows the
// catalog rejects are logged and skipped.
func loadCatalog(ctx context.Context, path string, catalog service.CatalogService) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open catalog workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("products")
	if err != nil {
		return fmt.Errorf("read products sheet: %w", err)
	}
	for i := 1; i < len(rows); i++ {
		in := service.CreateProductInput{SKU: cellVal(rows[i], 0), Barcode: cellVal(rows[i], 1), Name: cellVal(rows[i], 2)}
		if _, err := catalog.CreateProduct(ctx, in); err != nil {
			log.Printf("WARN: products row %d: %v", i+1, err)
		}
	}

	if idx, _ := f.GetSheetIndex("aliases"); idx < 0 {
		return nil
	}
	rows, err = f.GetRows("aliases")
	if err != nil {
		return fmt.Errorf("read aliases sheet: %w", err)
	}
	for i := 1; i < len(rows); i++ {
		in := service.CreateAliasInput{
			Platform:   domain.Platform(cellVal(rows[i], 0)),
			AliasValue: cellVal(rows[i], 1),
			SKU:        cellVal(rows[i], 2),
		}
		if _, err := catalog.CreateAlias(ctx, in); err != nil {
			log.Printf("WARN: aliases row %d: %v", i+1, err)
		}
	}
	return nil
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
