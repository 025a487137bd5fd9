package main

import (
	"context"
	"flag"
	"os"
	"time"

	"raseed/internal/backend"
	"raseed/internal/cli"
	"raseed/internal/log"
	"raseed/internal/passes"
	"raseed/internal/passes/wallet"
)

func main() {
	cfg, logger := cli.Bootstrap()

	file := flag.String("file", cfg.PassSeedFile, "JSON array of generic wallet objects")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing passes")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall time limit")
	flag.Parse()

	f, err := os.Open(*file)
	if err != nil {
		logger.Error("Failed to open seed file", log.FieldError, err, "path", *file)
		os.Exit(1)
	}
	objects, err := wallet.ReadObjects(f)
	f.Close()
	if err != nil {
		logger.Error("Invalid seed file", log.FieldError, err, "path", *file)
		os.Exit(1)
	}
	logger.Info("Seed file loaded", "path", *file, log.FieldPassCount, len(objects))
	if *dryRun {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	// Seeding the memory backend from its own seed file would be a no-op.
	if bcfg.Type == backend.MemoryBackend {
		bcfg.SeedFile = ""
		logger.Warn("PASS_BACKEND is memory, passes will not outlive this process")
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to create pass backend", log.FieldError, err)
		os.Exit(1)
	}
	if res.Cleanup != nil {
		defer func() { _ = res.Cleanup() }()
	}

	n, err := passes.Seed(ctx, res.Store, objects)
	if err != nil {
		logger.Error("Seeding failed", log.FieldError, err, "written", n)
		os.Exit(1)
	}
	logger.Info("Seeding complete", "written", n, "backend", bcfg.Type)
}
