package timeseries

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions describes the fixed layout of an input file. The loader is
// strict: a missing column, an unparseable field, or out-of-order
// timestamps is a fatal load error, never a skippable condition.
type CSVOptions struct {
	DateColumn   string // column holding the observation date
	ValueColumn  string // column holding the observation value
	FilterColumn string // optional column selecting one subject among many
	FilterValue  string // subject to select when FilterColumn is set
	DateFormat   string // date layout (default: "2006-01-02")
	Delimiter    rune   // field delimiter (default: ',')
}

// DefaultCSVOptions returns the default input layout.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn:  "date",
		ValueColumn: "value",
		DateFormat:  "2006-01-02",
		Delimiter:   ',',
	}
}

// LoadCSV loads a time series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	s, err := LoadCSVFromReader(file, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	return s, nil
}

func (o *CSVOptions) normalized() *CSVOptions {
	out := *o
	if out.DateFormat == "" {
		out.DateFormat = "2006-01-02"
	}
	if out.Delimiter == 0 {
		out.Delimiter = ','
	}
	return &out
}

// LoadCSVFromReader loads a time series from an io.Reader. The first row
// must be a header naming the configured columns. Rows not matching the
// subject filter are excluded; every remaining row must parse.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	opts = opts.normalized()

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	dateIdx, valueIdx, filterIdx := -1, -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case opts.DateColumn:
			dateIdx = i
		case opts.ValueColumn:
			valueIdx = i
		case opts.FilterColumn:
			if opts.FilterColumn != "" {
				filterIdx = i
			}
		}
	}
	if dateIdx == -1 {
		return nil, fmt.Errorf("date column %q not found in header", opts.DateColumn)
	}
	if valueIdx == -1 {
		return nil, fmt.Errorf("value column %q not found in header", opts.ValueColumn)
	}
	if opts.FilterColumn != "" && filterIdx == -1 {
		return nil, fmt.Errorf("filter column %q not found in header", opts.FilterColumn)
	}

	var values []float64
	var timestamps []time.Time

	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		row++

		if filterIdx >= 0 && strings.TrimSpace(record[filterIdx]) != opts.FilterValue {
			continue
		}

		ts, err := time.Parse(opts.DateFormat, strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date %q: %w", row, record[dateIdx], err)
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(record[valueIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse value %q: %w", row, record[valueIdx], err)
		}

		if len(timestamps) > 0 && !ts.After(timestamps[len(timestamps)-1]) {
			return nil, fmt.Errorf("row %d: %w", row, ErrNotChronological)
		}

		timestamps = append(timestamps, ts)
		values = append(values, val)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("no observations after filtering")
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// SaveCSV writes the series as date,value rows. Undefined observations are
// written as NaN so an inspection artifact never hides them.
func SaveCSV(s *Series, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	if _, err := writer.WriteString("date,value\n"); err != nil {
		return err
	}
	for i, v := range s.Values {
		writer.WriteString(s.Timestamps[i].Format("2006-01-02"))
		writer.WriteString(",")
		writer.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		writer.WriteString("\n")
	}

	return writer.Flush()
}
