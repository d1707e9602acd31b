// Package sync ingests external balance tables: it normalizes raw table
// rows into account identities plus dated amounts, and writes them through
// the stores idempotently.
package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrInvalidPayloadShape reports a payload that violates the table
	// API contract (not an array, or a row that is not an object). This
	// aborts the whole sync: a shape change means the contract changed.
	ErrInvalidPayloadShape = errors.New("table payload has unexpected shape")

	// ErrMalformedAmount reports a date value that is not representable
	// as a 32-bit integer. Fatal for the table being synced.
	ErrMalformedAmount = errors.New("amount is not a 32-bit integer")
)

// Row is one normalized table row: the account identity and every dated
// balance found on it.
type Row struct {
	ID            string
	Name          string
	Currency      string
	Description   string
	AmountsByDate map[string]int32

	// Skipped lists keys whose values were neither identity fields nor
	// numbers. They are reported as warnings and do not stop the row.
	Skipped []string
}

// DecodeTable splits the raw payload into row objects.
func DecodeTable(payload json.RawMessage) ([]map[string]json.RawMessage, error) {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayloadShape, err)
	}
	for i, row := range rows {
		if row == nil {
			return nil, fmt.Errorf("%w: row %d is not an object", ErrInvalidPayloadShape, i)
		}
	}
	return rows, nil
}

// NormalizeRow converts one table row in a single pass over its fields. The
// recognized keys are case-sensitive and fixed: id, Type, Name, Currency.
// Every other key is taken as a date string; its format is validated later
// by the snapshot layer.
func NormalizeRow(raw map[string]json.RawMessage) (Row, error) {
	row := Row{AmountsByDate: make(map[string]int32)}
	for key, val := range raw {
		switch key {
		case "id":
			if err := json.Unmarshal(val, &row.ID); err != nil {
				return Row{}, fieldNotString(key)
			}
		case "Name":
			if err := json.Unmarshal(val, &row.Name); err != nil {
				return Row{}, fieldNotString(key)
			}
		case "Currency":
			if err := json.Unmarshal(val, &row.Currency); err != nil {
				return Row{}, fieldNotString(key)
			}
		case "Type":
			if err := json.Unmarshal(val, &row.Description); err != nil {
				return Row{}, fieldNotString(key)
			}
		default:
			var num json.Number
			if err := json.Unmarshal(val, &num); err != nil {
				row.Skipped = append(row.Skipped, key)
				continue
			}
			amount, err := amountFromNumber(num)
			if err != nil {
				return Row{}, fmt.Errorf("%w: field %q = %s", ErrMalformedAmount, key, num)
			}
			row.AmountsByDate[key] = amount
		}
	}
	sort.Strings(row.Skipped)
	return row, nil
}

func amountFromNumber(num json.Number) (int32, error) {
	v, err := num.Int64()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("value %d out of range", v)
	}
	return int32(v), nil
}

func fieldNotString(key string) error {
	return fmt.Errorf("%w: field %q is not a string", ErrInvalidPayloadShape, key)
}
