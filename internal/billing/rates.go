package billing

import (
	"bytes"
	"strconv"

	"github.com/xuri/excelize/v2"

	"weighstation/internal/errs"
)

// ParseRatesWorkbook reads an XLSX with columns Product, Rate, Scope. It
// validates an uploaded workbook and returns the rows that replace the rate
// table; the stored artifact and what GET /rates serves back is always the
// uploaded bytes unmodified, never a regenerated workbook.
// Scope "ALL" maps to a nil (global) scope; any other value must parse as a
// provider id.
func ParseRatesWorkbook(data []byte) ([]Rate, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errs.NewValidation("bad rates workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errs.NewValidation("bad rates workbook: %v", err)
	}
	if len(rows) == 0 {
		return nil, errs.NewValidation("rates workbook has no rows")
	}

	header := rows[0]
	productCol, rateCol, scopeCol := -1, -1, -1
	for i, h := range header {
		switch h {
		case "Product":
			productCol = i
		case "Rate":
			rateCol = i
		case "Scope":
			scopeCol = i
		}
	}
	if productCol < 0 || rateCol < 0 || scopeCol < 0 {
		return nil, errs.NewValidation("rates workbook must have Product, Rate, Scope columns")
	}

	var out []Rate
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		product := cell(row, productCol)
		if product == "" {
			continue
		}
		rate, err := strconv.Atoi(cell(row, rateCol))
		if err != nil {
			return nil, errs.NewValidation("rates workbook: bad rate for product %q", product)
		}
		scopeRaw := cell(row, scopeCol)
		var scope *int64
		if scopeRaw != "ALL" {
			id, err := strconv.ParseInt(scopeRaw, 10, 64)
			if err != nil {
				return nil, errs.NewValidation("rates workbook: bad scope for product %q", product)
			}
			scope = &id
		}
		out = append(out, Rate{Product: product, Rate: rate, Scope: scope})
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
