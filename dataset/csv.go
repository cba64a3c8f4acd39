package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ar90n/eiforest/linalg"
	"github.com/cockroachdb/errors"
)

// CSVOptions selects how rows of a delimited file become feature vectors.
type CSVOptions struct {
	// Columns are the zero based indices of the numeric columns. All columns are used when empty.
	Columns []int

	// SkipHeader drops the first record.
	SkipHeader bool

	// Comma is the field delimiter, ',' when zero.
	Comma rune
}

// ParseColumns parses a comma separated list of column indices such as "1,2,3".
func ParseColumns(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	fields := strings.Split(s, ",")
	columns := make([]int, len(fields))
	for i, f := range fields {
		c, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || c < 0 {
			return nil, errors.Newf("invalid column index %q", f)
		}
		columns[i] = c
	}

	return columns, nil
}

func ReadCSVFile[T linalg.Float](path string, opts CSVOptions) ([][]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV[T](file, opts)
}

// ReadCSV reads every record of r as one feature vector. Every vector has the same dimension.
func ReadCSV[T linalg.Float](r io.Reader, opts CSVOptions) ([][]T, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true

	bits := linalg.BitSize[T]()

	ret := make([][]T, 0)
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read record %d", line)
		}
		if line == 1 && opts.SkipHeader {
			continue
		}

		columns := opts.Columns
		if len(columns) == 0 {
			columns = make([]int, len(record))
			for i := range columns {
				columns[i] = i
			}
		}

		feature := make([]T, len(columns))
		for i, c := range columns {
			if len(record) <= c {
				return nil, errors.Newf("record %d has no column %d", line, c)
			}
			val, err := strconv.ParseFloat(strings.TrimSpace(record[c]), bits)
			if err != nil {
				return nil, errors.Wrapf(err, "record %d column %d", line, c)
			}
			feature[i] = T(val)
		}
		if 0 < len(ret) && len(ret[0]) != len(feature) {
			return nil, errors.Newf("record %d has %d values, want %d", line, len(feature), len(ret[0]))
		}
		ret = append(ret, feature)
	}

	return ret, nil
}
