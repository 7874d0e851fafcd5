package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAssetCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseAssetCSV(t *testing.T) {
	shape := Shape{Levels: 4, AssetCount: 2, BalanceBytes: 14}
	path := writeAssetCSV(t, "chain,asset_name,amount\n"+
		"ethereum,ETH,1000000\n"+
		"ethereum,USDT,25000000\n")

	assets, err := ParseAssetCSV(path, shape)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "ETH", assets[0].Name)
	assert.Equal(t, "ethereum", assets[0].Chain)
	assert.Equal(t, int64(1000000), assets[0].Amount.Int64())
	assert.Equal(t, int64(25000000), assets[1].Amount.Int64())
}

func TestParseAssetCSVRowCountMustMatchShape(t *testing.T) {
	shape := Shape{Levels: 4, AssetCount: 2, BalanceBytes: 14}
	path := writeAssetCSV(t, "chain,asset_name,amount\nethereum,ETH,1000\n")
	_, err := ParseAssetCSV(path, shape)
	assert.Error(t, err)
}
