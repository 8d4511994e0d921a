package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"winefit/domain/report"
)

// excel rejects sheet names longer than 31 runes
const maxSheetNameLen = 31

// WriteWorkbook saves every table block of the document as its own
// worksheet. Cells that parse as numbers are written numerically so the
// workbook sorts and charts without retyping.
func WriteWorkbook(doc *report.Document, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	tables := doc.Tables()
	if len(tables) == 0 {
		return fmt.Errorf("document has no tables to write")
	}

	seen := make(map[string]int)
	for i, tb := range tables {
		name := sheetName(tb.Title, i, seen)

		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("renaming first sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("creating sheet %q: %w", name, err)
			}
		}

		for c, h := range tb.Columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			if err := f.SetCellValue(name, cell, h); err != nil {
				return err
			}
		}
		for r, row := range tb.Rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
				if err := f.SetCellValue(name, cell, cellValue(v)); err != nil {
					return err
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// cellValue upgrades clean numeric strings to float64.
func cellValue(s string) interface{} {
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return v
	}
	return s
}

// sheetName produces a legal, unique worksheet name from a table title.
func sheetName(title string, index int, seen map[string]int) string {
	name := title
	if name == "" {
		name = fmt.Sprintf("Table %d", index+1)
	}
	for _, bad := range []string{":", "\\", "/", "?", "*", "[", "]"} {
		name = strings.ReplaceAll(name, bad, " ")
	}
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > maxSheetNameLen {
		name = string(runes[:maxSheetNameLen])
	}

	if n, dup := seen[name]; dup {
		seen[name] = n + 1
		suffix := fmt.Sprintf(" (%d)", n+1)
		runes := []rune(name)
		if len(runes)+len(suffix) > maxSheetNameLen {
			runes = runes[:maxSheetNameLen-len(suffix)]
		}
		name = string(runes) + suffix
	} else {
		seen[name] = 1
	}
	return name
}
