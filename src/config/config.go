package config

import (
	"github.com/zeromicro/go-zero/core/conf"

	"github.com/openreserve/zk-proof-of-solvency/src/utils"
)

type ChainConfig struct {
	RpcUrl          string
	ContractAddress string
	// KeySecretName selects an AWS Secrets Manager secret holding the
	// signer key; PrivateKey is the plain-hex fallback for development.
	KeySecretName string `json:",optional"`
	PrivateKey    string `json:",optional"`
}

type Config struct {
	Shape      utils.Shape
	EntryCSV   string
	AssetCSV   string
	ParamsPath string

	MysqlDataSource string `json:",optional"`
	RedisAddr       string `json:",optional"`

	Chain ChainConfig `json:",optional"`
}

// MustLoad reads the json config file and aborts on malformed content, the
// go-zero way.
func MustLoad(path string) *Config {
	var c Config
	conf.MustLoad(path, &c)
	return &c
}
