package utils

import (
	"fmt"
	"math/big"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// AssetInfo is one externally attested reserve descriptor, as published
// alongside the tree commitment.
type AssetInfo struct {
	Chain  string
	Name   string
	Amount *big.Int
}

type assetRecord struct {
	Chain  string `csv:"chain"`
	Name   string `csv:"asset_name"`
	Amount string `csv:"amount"`
}

// ParseAssetCSV loads exactly shape.AssetCount attested asset descriptors from
// a csv file with header "chain,asset_name,amount". A row count or amount that
// does not match the shape is a configuration error.
func ParseAssetCSV(path string, shape Shape) ([]AssetInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open asset csv: %w", err)
	}
	defer f.Close()

	var records []*assetRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("parse asset csv %s: %w", path, err)
	}
	if len(records) != shape.AssetCount {
		return nil, fmt.Errorf("asset csv %s holds %d assets, shape requires %d", path, len(records), shape.AssetCount)
	}

	assets := make([]AssetInfo, len(records))
	for i, r := range records {
		amount, err := ParseAmount(r.Amount, shape)
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", r.Name, err)
		}
		assets[i] = AssetInfo{Chain: r.Chain, Name: r.Name, Amount: amount}
	}
	return assets, nil
}

// ParseAmount parses a csv amount cell into a non-negative integer bounded by
// the shape's balance width. Decimal notation is accepted as long as the value
// is integral.
func ParseAmount(s string, shape Shape) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", s, err)
	}
	if !d.Equal(d.Truncate(0)) {
		return nil, fmt.Errorf("amount %q is not an integer", s)
	}
	v := d.BigInt()
	if v.Sign() < 0 {
		return nil, fmt.Errorf("amount %q is negative", s)
	}
	if v.Cmp(shape.MaxBalance()) > 0 {
		return nil, fmt.Errorf("amount %q exceeds %d bytes", s, shape.BalanceBytes)
	}
	return v, nil
}
