package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appshop "github.com/kiwilliwik22/DigimonMasterOnline/internal/application/shop"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/application/warehouse"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/config"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/character"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"
	domshop "github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/shop"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/gateway"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/infrastructure/assets"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/infrastructure/memory"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/infrastructure/outbox"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/infrastructure/postgres"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithLogger(ctx, logger)

	var shopStore domshop.Store
	var characterStore character.Store
	if cfg.PgDSN != "" {
		db, err := sql.Open("pgx", cfg.PgDSN)
		if err != nil {
			logger.Fatal("postgres_open_failed", zap.Error(err))
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("postgres_ping_failed", zap.Error(err))
		}
		shopStore = postgres.NewShopStore(db)
		characterStore = postgres.NewCharacterStore(db)
		logger.Info("stores_ready", zap.String("backend", "postgres"))
	} else {
		memCharacters := memory.NewCharacterStore()
		seedDevWorld(memCharacters)
		shopStore = memory.NewShopStore()
		characterStore = memCharacters
		logger.Info("stores_ready", zap.String("backend", "memory"))
	}

	catalog := assets.NewCatalog(itemTable)
	logger.Info("item_catalog_loaded", zap.Int("definitions", catalog.Len()))

	bus := outbox.NewBus(logger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	sessions := gateway.NewSessions()

	registry := appshop.NewRegistry(shopStore)
	if err := registry.Load(ctx); err != nil {
		logger.Fatal("shop_registry_load_failed", zap.Error(err))
	}

	metrics := appshop.NewMetrics(prometheus.DefaultRegisterer)
	openService := appshop.NewOpenShopService(registry, characterStore, catalog, sessions, metrics)
	purchaseService := appshop.NewPurchaseService(registry, characterStore, catalog, sessions, bus, metrics)

	warehouseService := warehouse.NewService(characterStore, sessions)
	warehouseService.Register(bus)

	dispatcher, err := gateway.NewDispatcher(
		gateway.NewOpenShopProcessor(openService),
		gateway.NewPurchaseProcessor(purchaseService),
	)
	if err != nil {
		logger.Fatal("dispatcher_build_failed", zap.Error(err))
	}

	gw := gateway.NewServer(dispatcher, sessions, characterStore, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/ws", gw)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("gateway_listening", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("gateway_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("gateway_shutdown_error", zap.Error(err))
	} else {
		logger.Info("gateway_stopped")
	}
}

// itemTable stands in for the asset pipeline; the consignable floppies
// and cards clients trade most.
var itemTable = []item.Info{
	{ItemID: 100, Name: "Recovery Floppy", Overlap: 99},
	{ItemID: 101, Name: "Hi-Recovery Floppy", Overlap: 99},
	{ItemID: 102, Name: "Energy Floppy", Overlap: 99},
	{ItemID: 200, Name: "Evoluter", Overlap: 50},
	{ItemID: 201, Name: "Digi-Core Fragment", Overlap: 20},
	{ItemID: 300, Name: "Reinforced Cloth", Overlap: 10},
	{ItemID: 900, Name: "Starter Digivice", Overlap: 0},
}

// seedDevWorld puts a pair of tamers into the memory store so a local
// server is immediately usable.
func seedDevWorld(store *memory.CharacterStore) {
	seller := character.NewTamer(1, "Taichi")
	seller.GeneralHandler = 7001
	seller.MapID, seller.Channel = 3, 1
	seller.Inventory.AddBits(10_000)
	seller.Inventory.AddItems([]*item.Item{
		{ItemID: 100, Amount: 50, Info: &item.Info{ItemID: 100, Name: "Recovery Floppy", Overlap: 99}},
		{ItemID: 200, Amount: 10, Info: &item.Info{ItemID: 200, Name: "Evoluter", Overlap: 50}},
	})
	store.Put(seller)

	buyer := character.NewTamer(2, "Yamato")
	buyer.GeneralHandler = 7002
	buyer.MapID, buyer.Channel = 3, 1
	buyer.Inventory.AddBits(50_000)
	store.Put(buyer)
}
