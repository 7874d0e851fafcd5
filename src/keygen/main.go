package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/openreserve/zk-proof-of-solvency/src/config"
	"github.com/openreserve/zk-proof-of-solvency/src/prover"
)

// keygen compiles the deployment's inclusion circuit, runs PLONK setup from
// the universal params file and persists the proving key, the verifying key
// and the Solidity verifier contract.
func main() {
	var configPath, outputDir string
	flag.StringVar(&configPath, "config", "config.json", "config file path")
	flag.StringVar(&outputDir, "output", "keys", "output directory")
	flag.Parse()

	c := config.MustLoad(configPath)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fatalf("create %s: %v", outputDir, err)
	}

	source, err := prover.NewFileParamsSource(c.ParamsPath)
	if err != nil {
		fatalf("params source: %v", err)
	}
	system := prover.NewPlonkSystem()
	artifacts, err := system.Setup(source, c.Shape)
	if err != nil {
		fatalf("setup: %v", err)
	}
	logx.Infof("setup done: shape %s, 2^%d rows, %d constraints",
		c.Shape, artifacts.LogSize, artifacts.CCS.GetNbConstraints())

	writeKey := func(name string, key io.WriterTo) {
		f, err := os.Create(filepath.Join(outputDir, name))
		if err != nil {
			fatalf("create %s: %v", name, err)
		}
		defer f.Close()
		if _, err := key.WriteTo(f); err != nil {
			fatalf("write %s: %v", name, err)
		}
	}
	writeKey("por.pk", artifacts.ProvingKey)
	writeKey("por.vk", artifacts.VerifyingKey)

	verifierFile, err := os.Create(filepath.Join(outputDir, "Verifier.sol"))
	if err != nil {
		fatalf("create Verifier.sol: %v", err)
	}
	defer verifierFile.Close()
	if err := system.ExportVerifier(artifacts, verifierFile); err != nil {
		fatalf("export verifier: %v", err)
	}
	logx.Infof("keys and verifier written to %s", outputDir)
}

func fatalf(format string, args ...interface{}) {
	logx.Errorf(format, args...)
	os.Exit(1)
}
