package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

const commitmentABI = `[{
	"type": "function",
	"name": "submitCommitment",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "mstRoot", "type": "uint256"},
		{"name": "rootBalances", "type": "uint256[]"},
		{"name": "assets", "type": "tuple[]", "components": [
			{"name": "assetName", "type": "string"},
			{"name": "chain", "type": "string"},
			{"name": "amount", "type": "uint256"}
		]},
		{"name": "timestamp", "type": "uint256"}
	],
	"outputs": []
}]`

// assetArg mirrors the contract's asset tuple layout.
type assetArg struct {
	AssetName string
	Chain     string
	Amount    *big.Int
}

// EthSigner submits commitments to the verifier-registry contract through a
// JSON-RPC endpoint, signing with a fixed key under the chain's EIP-155 id.
type EthSigner struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	opts     *bind.TransactOpts
	address  common.Address
}

func NewEthSigner(ctx context.Context, rpcURL string, contractAddress common.Address, key *ecdsa.PrivateKey) (*EthSigner, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(commitmentABI))
	if err != nil {
		return nil, fmt.Errorf("parse commitment abi: %w", err)
	}
	return &EthSigner{
		client:   client,
		contract: bind.NewBoundContract(contractAddress, parsed, client, client, client),
		opts:     opts,
		address:  contractAddress,
	}, nil
}

func (s *EthSigner) SubmitCommitment(ctx context.Context, rootHash *big.Int, rootSums []*big.Int,
	assets []utils.AssetInfo, timestamp uint64) (common.Hash, error) {

	args := make([]assetArg, len(assets))
	for i, a := range assets {
		args[i] = assetArg{AssetName: a.Name, Chain: a.Chain, Amount: a.Amount}
	}

	opts := *s.opts
	opts.Context = ctx
	tx, err := s.contract.Transact(&opts, "submitCommitment",
		rootHash, rootSums, args, new(big.Int).SetUint64(timestamp))
	if err != nil {
		return common.Hash{}, fmt.Errorf("submit commitment to %s: %w", s.address.Hex(), err)
	}
	return tx.Hash(), nil
}
