package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stockroom/internal/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Inventory"

var headers = []string{"Code", "Name", "Price", "Quantity", "Reorder Level", "Status", "Value"}

// WriteXLSX writes the inventory value report into dir and returns the file path.
func WriteXLSX(inv models.Inventory, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	lowStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 2})

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}
	_ = f.SetCellStyle(SheetName, "A1", "G1", headerStyle)

	row := 2
	for _, it := range inv.Items {
		values := []interface{}{
			it.Code,
			it.Name,
			float64(it.Price),
			float64(it.Quantity),
			it.ReorderLevel,
			it.Status,
			it.Value.InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		priceCell, _ := excelize.CoordinatesToCellName(3, row)
		valueCell, _ := excelize.CoordinatesToCellName(7, row)
		_ = f.SetCellStyle(SheetName, priceCell, priceCell, moneyStyle)
		_ = f.SetCellStyle(SheetName, valueCell, valueCell, moneyStyle)
		if it.Status == models.StatusLow {
			first, _ := excelize.CoordinatesToCellName(1, row)
			_ = f.SetCellStyle(SheetName, first, first, lowStyle)
		}
		row++
	}

	labelCell, _ := excelize.CoordinatesToCellName(6, row)
	totalCell, _ := excelize.CoordinatesToCellName(7, row)
	_ = f.SetCellValue(SheetName, labelCell, "Total")
	_ = f.SetCellValue(SheetName, totalCell, inv.TotalValue.InexactFloat64())
	_ = f.SetCellStyle(SheetName, labelCell, totalCell, totalStyle)

	_ = f.SetColWidth(SheetName, "A", "A", 14)
	_ = f.SetColWidth(SheetName, "B", "B", 40)
	_ = f.SetColWidth(SheetName, "C", "G", 14)

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("inventory_%s.xlsx", now.Format("2006-01-02_150405"))
	filePath := filepath.Join(dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return filePath, nil
}
