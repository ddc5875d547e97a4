// Package sheet reads listing URLs from an Excel workbook.
package sheet

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"listingscraper/pkg/errors"
)

// DefaultPath is the workbook read when no path is given
const DefaultPath = "urls.xlsx"

// Options controls which cells are read
type Options struct {
	// Sheet selects a worksheet by name; empty means the first sheet
	Sheet string
	// SkipHeader drops the first row
	SkipHeader bool
}

// ReadURLs returns the first-column values of the workbook at path, in row
// order. Values are trimmed and blank cells skipped, nothing else is checked.
func ReadURLs(path string, opts Options) ([]string, error) {
	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrorTypeNotFound, fs.ErrNotExist, "input file %q", path)
		}
		return nil, errors.Wrap(errors.ErrorTypeFilesystem, err, "stat input file %q", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, err, "open workbook %q", path)
	}
	defer f.Close()

	name := opts.Sheet
	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New(errors.ErrorTypeConfig, "workbook %q has no sheets", path)
		}
		name = sheets[0]
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, err, "read sheet %q", name)
	}

	if opts.SkipHeader && len(rows) > 0 {
		rows = rows[1:]
	}

	urls := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(row[0])
		if v == "" {
			continue
		}
		urls = append(urls, v)
	}

	return urls, nil
}

// Write stores urls in the first column of a new workbook
func Write(path string, urls []string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, u := range urls {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell for row %d: %w", i+1, err)
		}
		if err := f.SetCellValue(sheet, cell, u); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(errors.ErrorTypeFilesystem, err, "save workbook %q", path)
	}
	return nil
}
