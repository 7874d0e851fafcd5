package userproof

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"

	"github.com/openreserve/zk-proof-of-solvency/src/round"
	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

// ErrLockHeld means another generator instance is already producing proofs
// for this deployment.
var ErrLockHeld = errors.New("userproof: generation lock held by another instance")

const lockTTL = 30 * time.Minute

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// BatchGenerator produces and persists the portable proof of every populated
// leaf of a round. Workers share the snapshot's read-only setup artifacts; a
// Redis lease serializes batch runs across generator instances.
type BatchGenerator struct {
	round   *round.Round
	store   *Store
	redis   *redis.Client
	workers int
}

func NewBatchGenerator(r *round.Round, store *Store, redisClient *redis.Client) *BatchGenerator {
	return &BatchGenerator{
		round:   r,
		store:   store,
		redis:   redisClient,
		workers: utils.BatchProofWorkers,
	}
}

func (g *BatchGenerator) Run(ctx context.Context) error {
	lease := uuid.NewString()
	ok, err := g.redis.SetNX(ctx, utils.RedisLockKey, lease, lockTTL).Result()
	if err != nil {
		return fmt.Errorf("acquire generation lock: %w", err)
	}
	if !ok {
		return ErrLockHeld
	}
	defer func() {
		if _, err := releaseScript.Run(context.Background(), g.redis, []string{utils.RedisLockKey}, lease).Result(); err != nil {
			logx.Errorf("release generation lock: %v", err)
		}
	}()

	tree := g.round.Snapshot().Tree()
	timestamp := g.round.Timestamp()
	started := time.Now()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for index := 0; index < tree.LeafCount(); index++ {
		index := index
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			proof, err := g.round.ProveInclusion(index)
			if err != nil {
				return fmt.Errorf("account %d: %w", index, err)
			}
			entry, err := tree.GetEntry(index)
			if err != nil {
				return fmt.Errorf("account %d: %w", index, err)
			}
			return g.store.Save(timestamp, index, entry.Account, proof)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	logx.Infof("round %d: generated %d proofs in %s", timestamp, tree.LeafCount(), time.Since(started))
	return nil
}
