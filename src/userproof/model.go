package userproof

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/openreserve/zk-proof-of-solvency/src/round"
)

// UserProofModel stores one user's portable inclusion proof for one round, so
// proofs are generated once per round and served on demand.
type UserProofModel struct {
	ID           uint   `gorm:"primarykey"`
	Timestamp    uint64 `gorm:"uniqueIndex:idx_proof_ts_account"`
	AccountIndex int    `gorm:"uniqueIndex:idx_proof_ts_account"`
	Account      string `gorm:"type:varchar(64)"`
	Proof        string `gorm:"type:mediumtext"`
}

func (UserProofModel) TableName() string { return "user_proof" }

// Store persists portable proofs in MySQL.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&UserProofModel{}); err != nil {
		return nil, fmt.Errorf("migrate user_proof: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Save(timestamp uint64, accountIndex int, account string, proof *round.UserProof) error {
	encoded, err := json.Marshal(proof)
	if err != nil {
		return fmt.Errorf("encode proof for account %d: %w", accountIndex, err)
	}
	model := UserProofModel{
		Timestamp:    timestamp,
		AccountIndex: accountIndex,
		Account:      account,
		Proof:        string(encoded),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return fmt.Errorf("save proof for round %d account %d: %w", timestamp, accountIndex, err)
	}
	return nil
}

func (s *Store) Get(timestamp uint64, accountIndex int) (*round.UserProof, string, error) {
	var model UserProofModel
	err := s.db.Where("timestamp = ? and account_index = ?", timestamp, accountIndex).Take(&model).Error
	if err != nil {
		return nil, "", fmt.Errorf("load proof for round %d account %d: %w", timestamp, accountIndex, err)
	}
	var proof round.UserProof
	if err := json.Unmarshal([]byte(model.Proof), &proof); err != nil {
		return nil, "", fmt.Errorf("decode proof for round %d account %d: %w", timestamp, accountIndex, err)
	}
	return &proof, model.Account, nil
}
