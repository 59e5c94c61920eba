// Package csvreplay implements the CSV boundary format documented for
// external replay tooling: parsing only. Driving a replay end-to-end
// (reading a file and feeding a producer loop) is an external collaborator
// concern, not part of the core — this package exists so any such tool,
// in or out of this repository, parses the same format the same way.
//
// Format (header row required, '#'-prefixed and blank lines skipped):
//
//	type,order_id,trader_id,side,price,qty
//	L,1,0,B,10000,100   NewLimit  Buy  order_id=1 trader_id=0 price=10000 qty=100
//	L,2,1,S,10100,50    NewLimit  Sell
//	X,3,2,B,,75         NewMarket Buy  qty=75 (price omitted)
//	C,1,,,,             Cancel    order_id=1
//	M,2,,,75,75         Modify    order_id=2 new price=75 new qty=75
package csvreplay

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rishav/order-matching-engine/internal/types"
)

// Record is one parsed CSV row, converted into a ready-to-enqueue
// OrderEvent.
type Record struct {
	Event types.OrderEvent
}

// typeCodes maps the single-character CSV type column to an EventType.
// "X" is NewMarket and "M" is Modify — kept distinct rather than both
// collapsing to "M", since the source format note that a single-letter "M"
// "is also accepted" for market orders would make the type column
// ambiguous with Modify rows; this parser resolves that by requiring "X".
var typeCodes = map[string]types.EventType{
	"L": types.NewLimit,
	"X": types.NewMarket,
	"C": types.Cancel,
	"M": types.Modify,
}

// Parse reads CSV rows from r and returns the corresponding OrderEvents in
// file order. The first row is always treated as a header and discarded.
func Parse(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("csvreplay: reading header: %w", err)
	}

	var records []Record
	lineNum := 1
	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvreplay: line %d: %w", lineNum, err)
		}
		if len(row) == 0 || strings.HasPrefix(strings.TrimSpace(row[0]), "#") {
			continue
		}

		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("csvreplay: line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(tokens []string) (Record, error) {
	col := func(i int) string {
		if i < len(tokens) {
			return strings.TrimSpace(tokens[i])
		}
		return ""
	}

	eventType, ok := typeCodes[col(0)]
	if !ok {
		return Record{}, fmt.Errorf("unknown type column %q", col(0))
	}

	orderID, err := parseUint(col(1))
	if err != nil {
		return Record{}, fmt.Errorf("order_id: %w", err)
	}

	var traderID types.TraderID = types.InvalidTraderID
	if col(2) != "" {
		t, err := strconv.ParseUint(col(2), 10, 32)
		if err != nil {
			return Record{}, fmt.Errorf("trader_id: %w", err)
		}
		traderID = types.TraderID(t)
	}

	side := types.Buy
	if col(3) != "" {
		if strings.HasPrefix(strings.ToUpper(col(3)), "S") {
			side = types.Sell
		}
	}

	price, err := parseInt(col(4))
	if err != nil {
		return Record{}, fmt.Errorf("price: %w", err)
	}

	qty, err := parseInt(col(5))
	if err != nil {
		return Record{}, fmt.Errorf("qty: %w", err)
	}

	event := types.OrderEvent{
		Type:     eventType,
		OrderID:  types.OrderID(orderID),
		TraderID: traderID,
		Side:     side,
		Price:    types.Price(price),
		Qty:      types.Qty(qty),
	}
	return Record{Event: event}, nil
}

func parseUint(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
