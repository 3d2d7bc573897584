package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"faopulse/internal/config"
	apperrors "faopulse/internal/errors"
	"faopulse/pkg/contracts/domain"
)

// requiredColumns must all be present in a snapshot header. The two stock
// futures columns are absent from older report eras and are handled
// separately.
var requiredColumns = []string{
	config.ColClientType,
	config.ColFutureIndexLong,
	config.ColFutureIndexShort,
	config.ColOptionIndexCallLong,
	config.ColOptionIndexPutLong,
	config.ColOptionIndexCallShort,
	config.ColOptionIndexPutShort,
}

// columnIndex maps trimmed header names to their position in a record.
type columnIndex map[string]int

// lookup returns the column position for a header name, or -1 when the file
// does not carry that column.
func (ci columnIndex) lookup(name string) int {
	if idx, ok := ci[name]; ok {
		return idx
	}
	return -1
}

// ParseSnapshot loads one raw snapshot file into an immutable Snapshot for
// the given trading date.
//
// The file layout is a disclaimer row, then the real header, then one row per
// participant category. Header cells are whitespace-trimmed before matching.
// The optional Future Stock Long/Short columns default to zero when the file
// predates them. Rows whose category is unrecognized (such as the TOTAL
// footer) or whose required numeric cells do not parse are dropped. A file
// that yields no participant rows at all is a load failure.
func ParseSnapshot(data []byte, date time.Time) (domain.Snapshot, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return domain.Snapshot{}, apperrors.NewLoadError(date, err)
	}
	if len(rows) < 3 {
		return domain.Snapshot{}, apperrors.NewLoadError(date,
			fmt.Errorf("file has %d rows, need disclaimer, header and at least one record", len(rows)))
	}

	// Row 0 is the disclaimer, row 1 the header.
	cols, err := indexColumns(rows[1])
	if err != nil {
		return domain.Snapshot{}, apperrors.NewLoadError(date, err)
	}

	records := make(map[domain.Participant]domain.ParticipantRecord)
	for _, row := range rows[2:] {
		if emptyRow(row) {
			continue
		}

		participant, err := domain.ParseParticipant(cell(row, cols.lookup(config.ColClientType)))
		if err != nil {
			// TOTAL footer and any other unrecognized category.
			continue
		}

		rec, ok := parseRecord(row, cols)
		if !ok {
			continue
		}
		records[participant] = rec
	}

	if len(records) == 0 {
		return domain.Snapshot{}, apperrors.NewLoadError(date,
			fmt.Errorf("no usable participant rows"))
	}

	return domain.NewSnapshot(date, records), nil
}

// indexColumns builds the header index from the trimmed header row and
// verifies every required column is present.
func indexColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return cols, nil
}

// parseRecord reads one participant row. Required numeric cells that fail to
// parse drop the whole row; the optional stock columns fall back to zero.
func parseRecord(row []string, cols columnIndex) (domain.ParticipantRecord, bool) {
	var rec domain.ParticipantRecord
	required := []struct {
		col  string
		dest *int64
	}{
		{config.ColFutureIndexLong, &rec.FutureIndexLong},
		{config.ColFutureIndexShort, &rec.FutureIndexShort},
		{config.ColOptionIndexCallLong, &rec.OptionIndexCallLong},
		{config.ColOptionIndexPutLong, &rec.OptionIndexPutLong},
		{config.ColOptionIndexCallShort, &rec.OptionIndexCallShort},
		{config.ColOptionIndexPutShort, &rec.OptionIndexPutShort},
	}
	for _, field := range required {
		v, err := parseContracts(cell(row, cols.lookup(field.col)))
		if err != nil {
			return domain.ParticipantRecord{}, false
		}
		*field.dest = v
	}

	rec.FutureStockLong = parseOptionalContracts(row, cols, config.ColFutureStockLong)
	rec.FutureStockShort = parseOptionalContracts(row, cols, config.ColFutureStockShort)
	return rec, true
}

// parseOptionalContracts reads a column that may be missing from older files.
// Absent column or unparseable cell both yield zero.
func parseOptionalContracts(row []string, cols columnIndex, name string) int64 {
	idx := cols.lookup(name)
	if idx < 0 {
		return 0
	}
	v, err := parseContracts(cell(row, idx))
	if err != nil {
		return 0
	}
	return v
}

// parseContracts converts a raw contract-count cell to an integer. Upstream
// files occasionally carry thousands separators.
func parseContracts(raw string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty numeric cell")
	}
	return strconv.ParseInt(cleaned, 10, 64)
}

// cell returns the trimmed value at idx, or "" when the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// emptyRow reports whether every cell in the row is blank.
func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
