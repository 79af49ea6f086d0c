package main

import (
	"context"
	"fmt"
	"log"
	"logistics-engine/internal/adapters/memory"
	"logistics-engine/internal/adapters/notify"
	"logistics-engine/internal/adapters/repositories"
	"logistics-engine/internal/adapters/worldfile"
	"logistics-engine/internal/api"
	"logistics-engine/internal/config"
	"logistics-engine/internal/platform/db"
	"logistics-engine/internal/ports"
	"logistics-engine/internal/services"
	"net/http"
	"time"
)

// store is every port the engine needs, as implemented by both the SQL and
// the in-memory adapters.
type store interface {
	ports.WorldStore
	ports.SpikeRepository
	ports.OrderRepository
	ports.DemandHistory
	ports.InventoryRepository
	ports.BalanceReader
	ports.SimulationClock
	ports.VendorRepository
	ports.AlertRepository
}

// main is the application composition root.
// It wires concrete adapters (SQL or in-memory, Redis) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	var notifier ports.AlertNotifier = notify.NopNotifier{}
	if cfg.RedisURL != "" {
		client, err := notify.Dial(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		notifier = notify.NewRedisNotifier(client)
	}

	engine, err := services.NewEngine(ctx, services.Dependencies{
		World:             st,
		Spikes:            st,
		Orders:            st,
		Inventory:         st,
		Vendors:           st,
		Alerts:            st,
		Notifier:          notifier,
		Demand:            st,
		Balances:          st,
		Clock:             st,
		LowStockThreshold: cfg.LowStockThreshold,
	})
	if err != nil {
		log.Fatal(err)
	}

	router := api.NewRouter(engine, st)

	log.Printf("Server listening addr=:%s driver=%s", cfg.Port, cfg.DBDriver)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openStore returns the configured store. A world file, when given, seeds a
// SQL database on startup and is the whole state of the in-memory store.
func openStore(ctx context.Context, cfg config.Config) (store, func(), error) {
	if cfg.DBDriver == "memory" {
		snap, err := worldfile.Load(cfg.WorldPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return memory.NewStoreFromSnapshot(snap), func() {}, nil
	}

	conn, dialect, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	closeDB := func() { _ = conn.Close() }

	if err := repositories.InitSchema(ctx, conn); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	sqlStore := repositories.NewSQLStore(conn, dialect)
	if cfg.WorldPath != "" {
		snap, err := worldfile.Load(cfg.WorldPath)
		if err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		if err := sqlStore.ImportSnapshot(ctx, snap); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		log.Printf("world imported path=%s locations=%d routes=%d spikes=%d",
			cfg.WorldPath, len(snap.Locations), len(snap.Routes), len(snap.Spikes))
	}

	return sqlStore, closeDB, nil
}
