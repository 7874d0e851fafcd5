package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/ethereum/go-ethereum/crypto"
)

// PrivateKeyFromSecret fetches the signer key from AWS Secrets Manager so
// deployments never place it in config files. The secret value is the hex
// encoded key, with or without a 0x prefix.
func PrivateKeyFromSecret(ctx context.Context, secretName string) (*ecdsa.PrivateKey, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := secretsmanager.NewFromConfig(cfg)
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch secret %s: %w", secretName, err)
	}
	keyHex := strings.TrimPrefix(strings.TrimSpace(aws.ToString(out.SecretString)), "0x")
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("secret %s does not hold a valid key: %w", secretName, err)
	}
	return key, nil
}
