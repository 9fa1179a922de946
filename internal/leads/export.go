package leads

import (
	"context"
	"encoding/csv"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// exportHeader is the column order of exported files.
var exportHeader = []string{"firstName", "lastName", "companyName", "email", "listId"}

// ExportResult summarizes one export run.
type ExportResult struct {
	BatchID         string `json:"batch_id"`
	File            string `json:"file"`
	Exported        int    `json:"exported"`
	SkippedExported int    `json:"skipped_exported"`
	SkippedInvalid  int    `json:"skipped_invalid"`
}

// Export writes every valid, not-yet-exported lead to path in the given
// format ("csv" or "xlsx"), de-duplicated by email and sorted for stable
// output, then marks the written leads as exported in the ledger under a
// fresh batch ID.
func Export(ctx context.Context, cache Lister, ledger *Ledger, path, format string) (*ExportResult, error) {
	records, err := cache.ListAll(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "leads: export unavailable")
	}

	result := &ExportResult{
		BatchID: uuid.New().String(),
		File:    path,
	}

	emails := make([]string, 0, len(records))
	for email := range records {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	var rows [][]string
	var exported []string
	for _, email := range emails {
		rec := records[email]
		if rec.Status != model.StatusValid {
			result.SkippedInvalid++
			continue
		}
		already, err := ledger.IsExported(ctx, email)
		if err != nil {
			return nil, err
		}
		if already {
			result.SkippedExported++
			continue
		}
		rows = append(rows, []string{rec.FirstName, rec.LastName, rec.CompanyName, email, rec.ListID})
		exported = append(exported, email)
	}

	switch strings.ToLower(format) {
	case "", "csv":
		err = writeCSV(path, rows)
	case "xlsx":
		err = writeXLSX(path, rows)
	default:
		return nil, eris.Errorf("leads: unsupported export format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if err := ledger.MarkExported(ctx, exported, result.BatchID); err != nil {
		return nil, err
	}
	result.Exported = len(exported)

	zap.L().Info("leads: export complete",
		zap.String("batch_id", result.BatchID),
		zap.String("file", path),
		zap.Int("exported", result.Exported),
		zap.Int("skipped_exported", result.SkippedExported),
		zap.Int("skipped_invalid", result.SkippedInvalid),
	)
	return result, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "leads: create export file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return eris.Wrap(err, "leads: write csv header")
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "leads: write csv row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "leads: flush csv")
}

func writeXLSX(path string, rows [][]string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "leads: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range exportHeader {
		header.AddCell().Value = col
	}
	for _, row := range rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().Value = cell
		}
	}

	return eris.Wrap(f.Save(path), "leads: save xlsx")
}
