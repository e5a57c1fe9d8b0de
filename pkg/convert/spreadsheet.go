package convert

import (
	"context"
	"encoding/csv"
	"os"

	"codeberg.org/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/swiftconvert/server/pkg/constants"
	"github.com/swiftconvert/server/pkg/utils"
)

const sheetName = "Sheet1"

// CSVToXLSX writes the CSV rows into the first sheet of a new workbook.
func (c *Converter) CSVToXLSX(ctx context.Context, inputPath, outputPath string) (string, error) {
	records, err := readCSV(inputPath)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return "", utils.NewConversionError("failed to address worksheet cell", err)
		}
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return "", utils.NewConversionError("failed to write worksheet row", err)
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", utils.NewConversionError("failed to save workbook", err).WithContext("output", outputPath)
	}
	c.log.Info().Str("output", outputPath).Msg("CSV to XLSX conversion successful")
	return outputPath, nil
}

// XLSXToCSV exports the first sheet of the workbook as CSV.
func (c *Converter) XLSXToCSV(ctx context.Context, inputPath, outputPath string) (string, error) {
	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return "", utils.NewConversionError("failed to open workbook", err).WithContext("input", inputPath)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return "", utils.NewConversionError("failed to read worksheet rows", err)
	}

	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.DefaultFilePermission)
	if err != nil {
		return "", utils.NewIOError("failed to create CSV file", err).WithContext("output", outputPath)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.WriteAll(rows); err != nil {
		return "", utils.NewIOError("failed to write CSV rows", err)
	}
	c.log.Info().Str("output", outputPath).Msg("XLSX to CSV conversion successful")
	return outputPath, nil
}

// CSVToPDF renders the CSV as a landscape table grid with a shaded header
// row. Long tables flow across pages via the auto page break.
func (c *Converter) CSVToPDF(ctx context.Context, inputPath, outputPath string) (string, error) {
	records, err := readCSV(inputPath)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", utils.NewValidationError("CSV file is empty", nil).WithContext("input", inputPath)
	}

	pdf := fpdf.New("L", "pt", "Letter", "")
	pdf.SetMargins(constants.PDFMargin, constants.PDFMargin, constants.PDFMargin)
	pdf.SetAutoPageBreak(true, constants.PDFMargin)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	colW := (pageW - 2*constants.PDFMargin) / float64(len(records[0]))

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(255, 255, 255)
	for _, name := range records[0] {
		pdf.CellFormat(colW, 24, name, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(245, 245, 220)
	pdf.SetTextColor(0, 0, 0)
	for _, record := range records[1:] {
		for _, v := range record {
			pdf.CellFormat(colW, 20, v, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return "", utils.NewConversionError("failed to write PDF", err).WithContext("output", outputPath)
	}
	c.log.Info().Str("output", outputPath).Msg("CSV to PDF conversion successful")
	return outputPath, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.NewIOError("failed to open CSV file", err).WithContext("input", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, utils.NewConversionError("failed to parse CSV", err).WithContext("input", path)
	}
	return records, nil
}
