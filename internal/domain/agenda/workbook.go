package agenda

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrWorkbookUnreadable signals that the uploaded bytes are not a spreadsheet
// we can open. Nothing is persisted from a failed read.
var ErrWorkbookUnreadable = errors.New("workbook unreadable")

// DecodeWorkbook opens the uploaded spreadsheet and returns the raw cell grid
// of its first sheet. Cell values come back as displayed strings; all layout
// interpretation is left to the parser.
func DecodeWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbookUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", ErrWorkbookUnreadable)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbookUnreadable, err)
	}
	return rows, nil
}
