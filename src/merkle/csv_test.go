package merkle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entries.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseEntryCSV(t *testing.T) {
	shape := testShape()
	path := writeCSV(t, "account,eth,usdt\n"+
		"alice,1500,250000\n"+
		"bob,0,99\n"+
		"carol,42,0\n")

	entries, err := ParseEntryCSV(path, shape)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "alice", entries[0].Account)
	assert.Equal(t, int64(1500), entries[0].Balances[0].Int64())
	assert.Equal(t, int64(250000), entries[0].Balances[1].Int64())
	assert.Equal(t, int64(0), entries[1].Balances[0].Int64())
}

func TestParseEntryCSVRejectsBadRows(t *testing.T) {
	shape := testShape()

	_, err := ParseEntryCSV(writeCSV(t, "account,eth,usdt\n"), shape)
	assert.Error(t, err, "no user rows")

	_, err = ParseEntryCSV(writeCSV(t, "account,eth\nalice,1\n"), shape)
	assert.Error(t, err, "column count below the shape")

	_, err = ParseEntryCSV(writeCSV(t, "account,eth,usdt\nalice,-5,1\n"), shape)
	assert.Error(t, err, "negative balance cell")

	_, err = ParseEntryCSV(writeCSV(t, "account,eth,usdt\nalice,1.5,1\n"), shape)
	assert.Error(t, err, "fractional balance cell")

	_, err = ParseEntryCSV(writeCSV(t, "account,eth,usdt\nalice,abc,1\n"), shape)
	assert.Error(t, err, "non-numeric balance cell")
}

func TestNewInMemoryTreeFromCSV(t *testing.T) {
	shape := testShape()
	path := writeCSV(t, "account,eth,usdt\n"+
		"alice,10,20\n"+
		"bob,30,40\n")

	tree, err := NewInMemoryTreeFromCSV(path, shape)
	require.NoError(t, err)
	assert.Equal(t, 2, tree.LeafCount())
	words := tree.Root().BalanceWords()
	assert.Equal(t, int64(40), words[0].Int64())
	assert.Equal(t, int64(60), words[1].Int64())
}
