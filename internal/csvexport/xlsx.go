package csvexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"packslip/internal/domain"
)

// PickListSheet is the sheet name of the xlsx export.
const PickListSheet = "Pick List"

// WritePickListXLSX writes the pick list as a single-sheet workbook.
func WritePickListXLSX(w io.Writer, aggs []domain.PickListAggregate) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), PickListSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(PickListSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range aggs {
		row := aggregateToRow(&aggs[i])
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		// Quantity and order count stay numeric in the workbook.
		cells[4] = aggs[i].TotalQuantity
		cells[5] = len(aggs[i].ContributingOrderIDs)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(PickListSheet, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
