package merkle

import (
	"encoding/csv"
	"fmt"
	"math/big"
	"os"

	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

// ParseEntryCSV reads the user balance sheet: a header row followed by one row
// per user, first column the account identifier, then one balance column per
// tracked asset in deployment order. The column count is shape-dependent, so
// rows are read positionally rather than through struct tags.
func ParseEntryCSV(path string, shape utils.Shape) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open entry csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 1 + shape.AssetCount
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse entry csv %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("entry csv %s holds no user rows", path)
	}

	entries := make([]Entry, 0, len(rows)-1)
	for n, row := range rows[1:] {
		balances := make([]*big.Int, shape.AssetCount)
		for i := 0; i < shape.AssetCount; i++ {
			balances[i], err = utils.ParseAmount(row[1+i], shape)
			if err != nil {
				return nil, fmt.Errorf("entry csv row %d: %w", n+2, err)
			}
		}
		entry, err := NewEntry(row[0], balances, shape)
		if err != nil {
			return nil, fmt.Errorf("entry csv row %d: %w", n+2, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// NewInMemoryTreeFromCSV builds a tree straight from a balance sheet file.
func NewInMemoryTreeFromCSV(path string, shape utils.Shape) (*InMemoryTree, error) {
	entries, err := ParseEntryCSV(path, shape)
	if err != nil {
		return nil, err
	}
	return NewInMemoryTree(shape, entries)
}
