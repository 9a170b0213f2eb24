package main

import (
	"context"
	"os"

	bidding "auction-escrow/internal/biddingService"
	"auction-escrow/internal/config"
	"auction-escrow/internal/escrow"
	"auction-escrow/internal/events"
	"auction-escrow/internal/finalizer"
	"auction-escrow/internal/repository"
	"auction-escrow/internal/repository/postgres"
	"auction-escrow/internal/scheduler"
	"auction-escrow/internal/seed"
	"auction-escrow/internal/server"
	"auction-escrow/internal/wallet"
	"auction-escrow/utils"

	"code.cloudfoundry.org/clock"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"
	"github.com/tedsuo/ifrit/http_server"
	"github.com/tedsuo/ifrit/sigmon"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		utils.Fatal("Failed to load config", map[string]any{"error": err.Error()})
	}
	utils.SetLevel(cfg.LogLevel)

	clk := clock.NewClock()

	db, closeDB := openStore(ctx, cfg)
	defer closeDB()

	publisher := newPublisher(cfg)
	defer publisher.Close()
	emitter := events.NewEmitter(publisher, clk.Now)

	if cfg.SeedDemoData {
		if err := seed.Demo(ctx, db, clk.Now().UTC()); err != nil {
			utils.Fatal("Failed to seed demo data", map[string]any{"error": err.Error()})
		}
	}

	biddingSvc := bidding.NewBiddingService(db, clk, emitter)
	finalizerSvc := finalizer.New(db, clk, emitter, finalizer.Options{
		CommissionRate: cfg.CommissionRate,
		Workers:        cfg.FinalizerWorkers,
	})
	escrowSvc := escrow.New(db, clk, emitter, escrow.Options{AutoReleaseAfter: cfg.AutoReleaseAfter})
	walletSvc := wallet.New(db, clk)

	router := server.SetupRouter(server.Services{
		Bidding:   biddingSvc,
		Finalizer: finalizerSvc,
		Escrow:    escrowSvc,
		Wallet:    walletSvc,
	})

	leaser := newLeaser(ctx, cfg)
	finalizeTask := func(ctx context.Context) error {
		_, err := finalizerSvc.FinalizeEndedAuctions(ctx)
		return err
	}
	releaseTask := func(ctx context.Context) error {
		_, err := escrowSvc.AutoReleasePendingSales(ctx)
		return err
	}

	members := grouper.Members{
		{Name: "http-server", Runner: http_server.New(cfg.Addr(), router)},
		{Name: "auction-finalizer", Runner: scheduler.NewRunner("auction-finalizer", cfg.FinalizerInterval, clk, leaser, finalizeTask)},
		{Name: "auto-release", Runner: scheduler.NewRunner("auto-release", cfg.AutoReleaseInterval, clk, leaser, releaseTask)},
	}

	utils.Info("Starting auction escrow service", map[string]any{
		"addr":  cfg.Addr(),
		"store": cfg.StoreDriver,
	})
	process := ifrit.Invoke(sigmon.New(grouper.NewOrdered(os.Interrupt, members)))
	if err := <-process.Wait(); err != nil {
		utils.Error("Service exited with error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	utils.Info("Service stopped", nil)
}

// openStore returns the configured ledger and a func that releases it.
func openStore(ctx context.Context, cfg config.Config) (repository.LedgerDB, func()) {
	if cfg.StoreDriver != config.StorePostgres {
		return repository.NewMemoryRepo(cfg.LockTimeout), func() {}
	}

	gdb, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		utils.Fatal("Failed to connect to postgres", map[string]any{"error": err.Error()})
	}
	if cfg.RunMigrations {
		if err := postgres.RunMigrations(ctx, gdb); err != nil {
			utils.Fatal("Failed to run migrations", map[string]any{"error": err.Error()})
		}
	}
	return postgres.NewLedger(gdb, cfg.LockTimeout), func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func newPublisher(cfg config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.LogPublisher{}
	}
	pub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		utils.Fatal("Failed to create kafka publisher", map[string]any{"error": err.Error()})
	}
	return pub
}

// newLeaser returns nil when no Redis is configured, so every tick runs locally.
func newLeaser(ctx context.Context, cfg config.Config) scheduler.Leaser {
	if cfg.RedisURL == "" {
		return nil
	}
	client, err := scheduler.Connect(ctx, cfg.RedisURL)
	if err != nil {
		utils.Fatal("Failed to connect to redis", map[string]any{"error": err.Error()})
	}
	host, _ := os.Hostname()
	return scheduler.NewRedisLeaser(client, host+"/"+utils.GenerateID().String())
}

// getConfigPath returns the config file from env or defaults to configs/default.yaml
func getConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/default.yaml"
}
