package inventory

import (
	"encoding/csv"
	"fmt"
	"io"

	"nebula/core/utils"
	"nebula/feature/inventory/models"

	"github.com/xuri/excelize/v2"
)

// Export file names and content types.
const (
	CSVFileName  = "nebula_inventory.csv"
	XLSXFileName = "nebula_inventory.xlsx"
	CSVMime      = "text/csv"
	XLSXMime     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// exportSheet is the worksheet name of the XLSX export.
const exportSheet = "Inventory"

// ExportHeader is the first row of every export.
var ExportHeader = []string{
	"Server Name", "Server IP", "Service Name", "VM ID", "Service IP",
	"VLAN", "CPU", "RAM (GB)", "Storage (GB)", "Description",
}

// exportRecord renders a row as text, nulls as empty cells.
func exportRecord(r models.ExportRow) []string {
	return []string{
		r.ServerName,
		r.ServerIP,
		r.Name,
		optional(r.VMID),
		r.IP,
		optional(r.VLAN),
		optional(r.CPU),
		optional(r.RAM),
		optional(r.Storage),
		r.Description,
	}
}

func optional[T int | float64](v *T) string {
	if v == nil {
		return ""
	}
	return utils.ToString(*v)
}

// WriteCSV writes the header followed by one line per row.
func WriteCSV(w io.Writer, rows []models.ExportRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ExportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write(exportRecord(r)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the rows as a single-sheet workbook. Numeric columns keep their type.
func WriteXLSX(w io.Writer, rows []models.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.ServerName, r.ServerIP, r.Name, cellValue(r.VMID), r.IP,
			cellValue(r.VLAN), cellValue(r.CPU), cellValue(r.RAM), cellValue(r.Storage), r.Description,
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.AutoFilter(exportSheet, fmt.Sprintf("A1:J%d", len(rows)+1), nil); err != nil {
		return fmt.Errorf("failed to add filter: %w", err)
	}

	_, err = f.WriteTo(w)
	return err
}

func cellValue[T int | float64](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
