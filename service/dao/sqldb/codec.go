package sqldb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// fixed width keeps lexical and chronological order aligned
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(text string) (time.Time, error) {
	ret, err := time.Parse(timeLayout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", text, err)
	}
	return ret, nil
}

func parseTimePtr(text sql.NullString) (*time.Time, error) {
	if !text.Valid || text.String == "" {
		return nil, nil
	}
	ret, err := parseTime(text.String)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func parseAmount(text string) (decimal.Decimal, error) {
	ret, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	return ret, nil
}

func nullString(text string) sql.NullString {
	return sql.NullString{String: text, Valid: text != ""}
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// decoder accumulates the first conversion error so that row mapping code
// stays linear.
type decoder struct {
	err error
}

func (d *decoder) amount(text string) decimal.Decimal {
	if d.err != nil {
		return decimal.Zero
	}
	ret, err := parseAmount(text)
	d.err = err
	return ret
}

func (d *decoder) time(text string) time.Time {
	if d.err != nil {
		return time.Time{}
	}
	ret, err := parseTime(text)
	d.err = err
	return ret
}

func (d *decoder) timePtr(text sql.NullString) *time.Time {
	if d.err != nil {
		return nil
	}
	ret, err := parseTimePtr(text)
	d.err = err
	return ret
}
