package utils

import (
	"bytes"
	"fmt"

	"food-distribution-backend/dtos"

	"github.com/xuri/excelize/v2"
)

const ReportSheetName = "Distributed Packages"

var DistributedReportHeader = []string{
	"Token",
	"CNIC",
	"Beneficiary",
	"Distribution Center",
	"Pickup Date",
	"Pickup Time",
	"Distributed At",
	"Distributed By",
}

var distributedReportWidths = []float64{12, 18, 28, 26, 14, 12, 22, 24}

// GenerateDistributedReport renders report rows into an xlsx workbook with a
// styled, frozen header row.
func GenerateDistributedReport(rows []dtos.DistributedReportRow) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(ReportSheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E2EFDA"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range DistributedReportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(ReportSheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(ReportSheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(ReportSheetName, colName, colName, distributedReportWidths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, r := range rows {
		distributedAt := ""
		if r.DistributedAt != nil {
			distributedAt = r.DistributedAt.Local().Format("2006-01-02 15:04:05")
		}
		values := []interface{}{
			r.Token,
			r.CNIC,
			r.BeneficiaryName,
			r.DistributionCenter,
			r.PickupDate,
			r.PickupTime,
			distributedAt,
			r.DistributedByName,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		// CNICs are written as strings so leading zeros survive.
		if err := f.SetSheetRow(ReportSheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(ReportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return buf.Bytes(), nil
}
