// Package frame provides a lightweight tabular view over JSON-derived
// records, with the post-processing passes the REST endpoints need:
// re-keying rows by one or more columns and best-effort coercion of
// date/time columns.
package frame

import (
	"sort"
	"time"
)

// standardDateColumns are the column names treated as calendar dates.
var standardDateColumns = []string{
	"consensusEndDate",
	"consensusStartDate",
	"DailyListTimestamp",
	"date",
	"datetime",
	"declaredDate",
	"EPSReportDate",
	"endDate",
	"exDate",
	"expectedDate",
	"expirationDate",
	"fiscalEndDate",
	"latestTime",
	"lastTradeDate",
	"lastUpdated",
	"paymentDate",
	"processedTime",
	"recordDate",
	"RecordUpdateTime",
	"reportDate",
	"settlementDate",
	"startDate",
}

// standardTimeColumns are the column names treated as epoch-millisecond
// timestamps.
var standardTimeColumns = []string{
	"closeTime",
	"close.time",
	"delayedPriceTime",
	"extendedPriceTime",
	"highTime",
	"iexCloseTime",
	"iexLastUpdated",
	"iexOpenTime",
	"lastTradeTime",
	"lastUpdated",
	"latestTime",
	"latestUpdate",
	"lowTime",
	"oddLotDelayedPriceTime",
	"openTime",
	"open.time",
	"processedTime",
	"report_date",
	"reportDate",
	"time",
	"timestamp",
	"updated",
}

// dateFormats are tried in order when auto-detecting a date column's format.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"January 2, 2006",
}

// Table is an ordered collection of rows keyed by column name.
type Table struct {
	cols  []string
	index []string
	rows  []map[string]interface{}
}

// FromRecords builds a Table from JSON-derived records. Column order is
// the sorted union of the record keys.
func FromRecords(records []map[string]interface{}) *Table {
	seen := map[string]bool{}
	cols := []string{}
	for _, r := range records {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return &Table{cols: cols, rows: records}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the non-index column names.
func (t *Table) Columns() []string {
	return t.cols
}

// Index returns the index column names, if any.
func (t *Table) Index() []string {
	return t.index
}

// Row returns the i-th row.
func (t *Table) Row(i int) map[string]interface{} {
	return t.rows[i]
}

// Column returns the values of the named column in row order, or nil if
// the column does not exist.
func (t *Table) Column(name string) []interface{} {
	if !t.hasColumn(name) {
		return nil
	}
	values := make([]interface{}, len(t.rows))
	for i, r := range t.rows {
		values[i] = r[name]
	}
	return values
}

func (t *Table) hasColumn(name string) bool {
	for _, c := range t.cols {
		if c == name {
			return true
		}
	}
	for _, c := range t.index {
		if c == name {
			return true
		}
	}
	return false
}

// Reindex makes the named columns the row key if all of them are present.
// Missing columns make this a no-op, never an error.
func (t *Table) Reindex(cols ...string) *Table {
	for _, c := range cols {
		if !t.hasColumn(c) {
			return t
		}
	}
	remaining := make([]string, 0, len(t.cols))
	for _, c := range t.cols {
		indexed := false
		for _, ic := range cols {
			if c == ic {
				indexed = true
				break
			}
		}
		if !indexed {
			remaining = append(remaining, c)
		}
	}
	t.cols = remaining
	t.index = append([]string{}, cols...)
	return t
}

// CoerceTemporal converts the standard date columns (plus extraDateCols)
// to time.Time via format auto-detection, and the standard time columns
// (plus extraTimeCols) from epoch milliseconds. This is a best-effort
// enrichment pass: a column is only converted when every non-nil value
// parses, and one that doesn't is left unmodified.
func (t *Table) CoerceTemporal(extraDateCols, extraTimeCols []string) *Table {
	for _, col := range append(append([]string{}, extraDateCols...), standardDateColumns...) {
		t.coerceColumn(col, parseDateValue)
	}
	for _, col := range append(append([]string{}, extraTimeCols...), standardTimeColumns...) {
		t.coerceColumn(col, parseMillisValue)
	}
	return t
}

func (t *Table) coerceColumn(col string, parse func(interface{}) (time.Time, bool)) {
	if !t.hasColumn(col) {
		return
	}
	converted := make([]interface{}, len(t.rows))
	for i, r := range t.rows {
		v := r[col]
		if v == nil {
			converted[i] = nil
			continue
		}
		ts, ok := parse(v)
		if !ok {
			return
		}
		converted[i] = ts
	}
	for i, r := range t.rows {
		r[col] = converted[i]
	}
}

func parseDateValue(v interface{}) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		for _, layout := range dateFormats {
			if ts, err := time.Parse(layout, d); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func parseMillisValue(v interface{}) (time.Time, bool) {
	switch ms := v.(type) {
	case time.Time:
		return ms, true
	case float64:
		return time.UnixMilli(int64(ms)).UTC(), true
	case int64:
		return time.UnixMilli(ms).UTC(), true
	case int:
		return time.UnixMilli(int64(ms)).UTC(), true
	default:
		return time.Time{}, false
	}
}
