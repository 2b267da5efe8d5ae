// Package presenter renders the ranking dataset for readers.
package presenter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/uranai/internal/domain/model"
	"github.com/okian/uranai/internal/domain/ranking"
)

// Content types of the rendered encodings.
const (
	ContentTypeJSONP = "application/javascript"
	ContentTypeCSV   = "text/csv"
)

// DefaultCallback is used when the caller names none.
const DefaultCallback = "callback"

// MaxCallbackLen bounds the callback name.
const MaxCallbackLen = 64

// CSVHeader is the first CSV record.
var CSVHeader = append([]string{"year", "month", "day"}, ranking.SignCodes[:]...)

// ValidCallback reports whether name matches [A-Za-z_][A-Za-z0-9_]* and fits MaxCallbackLen.
func ValidCallback(name string) bool {
	if name == "" || len(name) > MaxCallbackLen {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// WriteJSONP writes callback(<dataset as nested arrays>).
func WriteJSONP(w io.Writer, callback string, ds model.Dataset) error {
	if !ValidCallback(callback) {
		return fmt.Errorf("%w: %q", ErrInvalidCallback, callback)
	}
	if ds == nil {
		ds = model.Dataset{}
	}
	body, err := json.Marshal(ds)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, callback+"("); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	_, err = io.WriteString(w, ")")
	return err
}

// WriteCSV writes the header line then one line per row, LF terminated.
func WriteCSV(w io.Writer, ds model.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	record := make([]string, model.FieldCount)
	for _, row := range ds {
		for i, v := range row.Fields() {
			record[i] = strconv.Itoa(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
