package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/certen/ledger-core/internal/authority"
	"github.com/certen/ledger-core/internal/config"
	"github.com/certen/ledger-core/internal/kvcache"
	"github.com/certen/ledger-core/internal/ledger"
	"github.com/certen/ledger-core/internal/obslog"
	"github.com/certen/ledger-core/internal/orchestrator"
	"github.com/certen/ledger-core/internal/pact"
)

// noSessionResolver rejects every token, used when a deployment has no
// Identity/Agent Session collaborator wired in yet; combined with
// RequireSession=false this is the local-development posture spec.md §9
// documents, combined with RequireSession=true it fails closed.
type noSessionResolver struct{}

func (noSessionResolver) Resolve(token string) (authority.Claims, error) {
	return authority.Claims{}, authority.ErrTokenNotFound
}

func main() {
	devMode := flag.Bool("dev", false, "relax configuration validation for local development")
	configPath := flag.String("config", "", "optional YAML overlay applied on top of environment configuration")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("ledger-core: load config: %v", err)
	}
	if err := cfg.ApplyYAMLOverlay(*configPath); err != nil {
		log.Fatalf("ledger-core: apply config overlay: %v", err)
	}

	if *devMode {
		if err := cfg.ValidateForDevelopment(); err != nil {
			log.Fatalf("ledger-core: %v", err)
		}
	} else {
		if err := cfg.Validate(); err != nil {
			log.Fatalf("ledger-core: %v", err)
		}
	}

	logger, err := obslog.New(obslog.DefaultConfig())
	if err != nil {
		log.Fatalf("ledger-core: init logger: %v", err)
	}

	store, err := ledger.Open(cfg.DatabaseURL, ledger.WithLogger(logger), ledger.WithRetries(cfg.SerialisableRetries))
	if err != nil {
		log.Fatalf("ledger-core: open store: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.MigrateUp(ctx); err != nil {
		log.Fatalf("ledger-core: migrate: %v", err)
	}

	cache, err := kvcache.Open("pact-registry", cfg.KVCachePath)
	if err != nil {
		log.Fatalf("ledger-core: open kv cache: %v", err)
	}
	defer cache.Close()

	pacts := pact.NewRegistry()
	orch := orchestrator.New(store, pacts, noSessionResolver{}, cfg.RequireSession)
	_ = orch

	logger.Info("ledger-core started",
		"require_session", cfg.RequireSession,
		"serialisable_retries", cfg.SerialisableRetries,
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("ledger-core shutting down")
}
