package main

import (
	"context"
	"crypto/ecdsa"
	"flag"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/go-redis/redis/v8"
	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/openreserve/zk-proof-of-solvency/src/config"
	"github.com/openreserve/zk-proof-of-solvency/src/merkle"
	"github.com/openreserve/zk-proof-of-solvency/src/prover"
	"github.com/openreserve/zk-proof-of-solvency/src/round"
	"github.com/openreserve/zk-proof-of-solvency/src/signer"
	"github.com/openreserve/zk-proof-of-solvency/src/userproof"
)

// proofgen runs one full round: archive the balance sheet, build the tree,
// dispatch the on-chain commitment and persist every user's inclusion proof.
func main() {
	var configPath string
	var timestamp uint64
	var skipDispatch bool
	flag.StringVar(&configPath, "config", "config.json", "config file path")
	flag.Uint64Var(&timestamp, "timestamp", uint64(time.Now().Unix()), "round timestamp")
	flag.BoolVar(&skipDispatch, "skip-dispatch", false, "generate proofs without submitting the commitment")
	flag.Parse()

	c := config.MustLoad(configPath)
	ctx := context.Background()

	db, err := gorm.Open(mysql.Open(c.MysqlDataSource), &gorm.Config{})
	if err != nil {
		fatalf("open mysql: %v", err)
	}
	entryStore, err := merkle.NewEntryStore(db, c.Shape)
	if err != nil {
		fatalf("entry store: %v", err)
	}
	proofStore, err := userproof.NewStore(db)
	if err != nil {
		fatalf("proof store: %v", err)
	}
	redisClient := redis.NewClient(&redis.Options{Addr: c.RedisAddr})

	entries, err := merkle.ParseEntryCSV(c.EntryCSV, c.Shape)
	if err != nil {
		fatalf("parse entries: %v", err)
	}
	tree, err := merkle.NewPersistedTree(entryStore, timestamp, entries)
	if err != nil {
		fatalf("build tree: %v", err)
	}
	rootHash := tree.Root().Hash
	logx.Infof("round %d: tree built over %d entries, root=%s",
		timestamp, tree.LeafCount(), rootHash.String())

	key := loadSignerKey(ctx, c)
	chainSigner, err := signer.NewEthSigner(ctx, c.Chain.RpcUrl, common.HexToAddress(c.Chain.ContractAddress), key)
	if err != nil {
		fatalf("signer: %v", err)
	}
	source, err := prover.NewFileParamsSource(c.ParamsPath)
	if err != nil {
		fatalf("params source: %v", err)
	}
	r, err := round.BuildRound(chainSigner, tree, c.AssetCSV, source, timestamp)
	if err != nil {
		fatalf("build round: %v", err)
	}

	if !skipDispatch {
		if err := r.DispatchCommitment(ctx); err != nil {
			// The snapshot stays valid; rerun to retry the dispatch.
			fatalf("dispatch: %v", err)
		}
	}

	generator := userproof.NewBatchGenerator(r, proofStore, redisClient)
	if err := generator.Run(ctx); err != nil {
		fatalf("generate proofs: %v", err)
	}
}

func loadSignerKey(ctx context.Context, c *config.Config) *ecdsa.PrivateKey {
	if c.Chain.KeySecretName != "" {
		key, err := signer.PrivateKeyFromSecret(ctx, c.Chain.KeySecretName)
		if err != nil {
			fatalf("signer key from secrets manager: %v", err)
		}
		return key
	}
	key, err := ethcrypto.HexToECDSA(c.Chain.PrivateKey)
	if err != nil {
		fatalf("signer key from config: %v", err)
	}
	return key
}

func fatalf(format string, args ...interface{}) {
	logx.Errorf(format, args...)
	os.Exit(1)
}
