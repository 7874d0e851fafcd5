package merkle

import (
	"fmt"
	"math/big"
	"strings"

	"gorm.io/gorm"

	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

// EntryModel archives one leaf's entry for a round, keyed by the round
// timestamp and leaf index. Rebuilding from the archive reproduces the exact
// tree (same root) because construction is deterministic in entry order.
type EntryModel struct {
	ID        uint   `gorm:"primarykey"`
	Timestamp uint64 `gorm:"uniqueIndex:idx_entry_ts_leaf"`
	LeafIndex int    `gorm:"uniqueIndex:idx_entry_ts_leaf"`
	Account   string `gorm:"type:varchar(64)"`
	Balances  string `gorm:"type:text"`
}

func (EntryModel) TableName() string { return "tree_entry" }

// EntryStore persists and reloads the entry sets behind PersistedTree.
type EntryStore struct {
	db    *gorm.DB
	shape utils.Shape
}

func NewEntryStore(db *gorm.DB, shape utils.Shape) (*EntryStore, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&EntryModel{}); err != nil {
		return nil, fmt.Errorf("migrate tree_entry: %w", err)
	}
	return &EntryStore{db: db, shape: shape}, nil
}

func (s *EntryStore) SaveEntries(timestamp uint64, entries []Entry) error {
	models := make([]EntryModel, len(entries))
	for i, e := range entries {
		balances := make([]string, len(e.Balances))
		for j, b := range e.Balances {
			balances[j] = b.String()
		}
		models[i] = EntryModel{
			Timestamp: timestamp,
			LeafIndex: i,
			Account:   e.Account,
			Balances:  strings.Join(balances, ","),
		}
	}
	if err := s.db.CreateInBatches(models, 500).Error; err != nil {
		return fmt.Errorf("save entries for round %d: %w", timestamp, err)
	}
	return nil
}

func (s *EntryStore) LoadEntries(timestamp uint64) ([]Entry, error) {
	var models []EntryModel
	err := s.db.Where("timestamp = ?", timestamp).Order("leaf_index asc").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("load entries for round %d: %w", timestamp, err)
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no entries archived for round %d", timestamp)
	}
	entries := make([]Entry, len(models))
	for i, m := range models {
		parts := strings.Split(m.Balances, ",")
		if len(parts) != s.shape.AssetCount {
			return nil, fmt.Errorf("round %d leaf %d: %d balances, shape requires %d", timestamp, m.LeafIndex, len(parts), s.shape.AssetCount)
		}
		balances := make([]*big.Int, len(parts))
		for j, p := range parts {
			v, ok := new(big.Int).SetString(p, 10)
			if !ok {
				return nil, fmt.Errorf("round %d leaf %d: malformed balance %q", timestamp, m.LeafIndex, p)
			}
			balances[j] = v
		}
		entries[i], err = NewEntry(m.Account, balances, s.shape)
		if err != nil {
			return nil, fmt.Errorf("round %d leaf %d: %w", timestamp, m.LeafIndex, err)
		}
	}
	return entries, nil
}

// PersistedTree is the archived backing-store variant of Tree: identical
// query behavior, entries durably stored per round.
type PersistedTree struct {
	*InMemoryTree
	timestamp uint64
}

// NewPersistedTree archives the entry set and builds the tree over it.
func NewPersistedTree(store *EntryStore, timestamp uint64, entries []Entry) (*PersistedTree, error) {
	tree, err := NewInMemoryTree(store.shape, entries)
	if err != nil {
		return nil, err
	}
	if err := store.SaveEntries(timestamp, entries); err != nil {
		return nil, err
	}
	return &PersistedTree{InMemoryTree: tree, timestamp: timestamp}, nil
}

// OpenPersistedTree rebuilds a round's tree from the archive.
func OpenPersistedTree(store *EntryStore, timestamp uint64) (*PersistedTree, error) {
	entries, err := store.LoadEntries(timestamp)
	if err != nil {
		return nil, err
	}
	tree, err := NewInMemoryTree(store.shape, entries)
	if err != nil {
		return nil, err
	}
	return &PersistedTree{InMemoryTree: tree, timestamp: timestamp}, nil
}

func (t *PersistedTree) Timestamp() uint64 { return t.timestamp }
