package orders

import (
	"fmt"
	"strings"
)

// Column names of the orders feed
const (
	ColumnOrderNumber = "Order number"
	ColumnHead        = "Head"
	ColumnBody        = "Body"
	ColumnLegs        = "Legs"
	ColumnAddress     = "Address"
)

// RequiredColumns lists the header names every feed must carry.
var RequiredColumns = []string{
	ColumnOrderNumber,
	ColumnHead,
	ColumnBody,
	ColumnLegs,
	ColumnAddress,
}

// Row is one order record, keyed by column name. Rows are read-only once parsed.
type Row map[string]string

// OrderNumber returns the order identifier used in output file names.
func (r Row) OrderNumber() string { return r[ColumnOrderNumber] }

// Head returns the head part code.
func (r Row) Head() string { return r[ColumnHead] }

// Body returns the body part code.
func (r Row) Body() string { return r[ColumnBody] }

// Legs returns the leg part number as typed into the form.
func (r Row) Legs() string { return r[ColumnLegs] }

// Address returns the shipping address.
func (r Row) Address() string { return r[ColumnAddress] }

// Validate reports required columns that are missing or blank.
func (r Row) Validate() error {
	var missing []string
	for _, col := range RequiredColumns {
		if strings.TrimSpace(r[col]) == "" {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("order %q missing fields: %s", r.OrderNumber(), strings.Join(missing, ", "))
	}
	return nil
}
