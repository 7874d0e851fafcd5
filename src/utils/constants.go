package utils

import (
	"math/big"
)

const (
	// Default shape of the reference deployment: 16 leaves, two tracked
	// assets, balances bounded by 14 bytes.
	DefaultTreeLevels   = 4
	DefaultAssetCount   = 2
	DefaultBalanceBytes = 14

	// MaxAccountBytes bounds the utf-8 length of an account identifier so
	// that it embeds into a single BN254 field element.
	MaxAccountBytes = 31

	RedisLockKey = "proofgen_mutex_key"

	BatchProofWorkers = 8
)

var (
	ZeroBigInt = new(big.Int)
	OneBigInt  = new(big.Int).SetInt64(1)
)
