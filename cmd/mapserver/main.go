package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/arena-maps/internal/api"
	"github.com/annel0/arena-maps/internal/auth"
	"github.com/annel0/arena-maps/internal/catalog"
	"github.com/annel0/arena-maps/internal/config"
	"github.com/annel0/arena-maps/internal/eventbus"
	"github.com/annel0/arena-maps/internal/logging"
	"github.com/annel0/arena-maps/internal/mapdata"
	"github.com/annel0/arena-maps/internal/metrics"
	"github.com/annel0/arena-maps/internal/observability"
	"github.com/annel0/arena-maps/internal/storage"
	"github.com/annel0/arena-maps/internal/workerpool"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $ARENA_CONFIG)")
	flag.Parse()

	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("mapserver"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	level := logging.ParseLevel(cfg.Logging.Level)
	logging.SetDefaultLevel(level)
	logging.GetLoggerManager().SetConsoleLevel(level)
	defer func() {
		if err := logging.GetLoggerManager().CloseAll(); err != nil {
			log.Printf("⚠️ %v", err)
		}
	}()

	if cfg.Server.NodeID == "" {
		host, _ := os.Hostname()
		cfg.Server.NodeID = fmt.Sprintf("%s-%d", host, os.Getpid())
	}
	logging.Info("🗺️ Запуск сервиса карт (node=%s, storage=%s)", cfg.Server.NodeID, cfg.Storage.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === TELEMETRY ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint, cfg.Telemetry.Insecure)
		if err != nil {
			logging.Warn("⚠️ OpenTelemetry не инициализирован: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Error("Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mapMetrics := metrics.New(registry)

	// === EVENT BUS ===
	var bus eventbus.EventBus
	if cfg.EventBus.URL != "" {
		jb, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream, cfg.EventBus.RetentionDuration())
		if err != nil {
			logging.Warn("⚠️ JetStream недоступен (%v), используется локальная шина", err)
			bus = eventbus.NewMemoryBus(cfg.EventBus.Buffer)
		} else {
			bus = jb
		}
	} else {
		bus = eventbus.NewMemoryBus(cfg.EventBus.Buffer)
	}
	defer bus.Close()

	if err := eventbus.StartLoggingListener(ctx, bus); err != nil {
		logging.Warn("Не удалось запустить LoggingListener: %v", err)
	}
	busExporter := eventbus.NewMetricsExporter(bus, registry)
	busExporter.Start()
	defer busExporter.Stop()

	// === STORAGE ===
	blobs, cache, err := storage.Open(cfg, mapMetrics)
	if err != nil {
		log.Fatalf("❌ Ошибка открытия хранилища: %v", err)
	}
	defer func() {
		if err := blobs.Close(); err != nil {
			logging.Error("Ошибка закрытия хранилища: %v", err)
		}
	}()
	storageLog := logging.GetStorageLogger()
	storageLog.Info("📦 Бэкенд %s, корень %q, кэш Redis: %v", cfg.Storage.Backend, cfg.Storage.Root, cache != nil)
	if cache != nil {
		if err := cache.WatchInvalidations(ctx, bus); err != nil {
			storageLog.Warn("Кэш не подписан на инвалидации: %v", err)
		}
	}

	// === CATALOG ===
	codec := catalog.Default()
	if cfg.Catalog.Path != "" {
		if err := codec.LoadYAML(cfg.Catalog.Path); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}
	if cfg.Catalog.Strict {
		strict := catalog.New(true)
		strict.Register(codec.Names()...)
		codec = strict
	}
	logging.Info("🧱 Каталог блоков: %d имён, strict=%v", len(codec.Names()), codec.Strict())

	pool := workerpool.New(cfg.Loader.Workers, cfg.Loader.QueueSize)
	defer pool.Stop()

	repo := mapdata.NewRepository[catalog.BlockState](blobs, codec, pool, mapdata.RepositoryOptions{
		Bus:     bus,
		Metrics: mapMetrics,
		NodeID:  cfg.Server.NodeID,
	})

	issuer, err := auth.NewIssuer(cfg.Auth.GetJWTSecret())
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if cfg.Auth.GetJWTSecret() == "" {
		logging.Warn("⚠️ JWT секрет не задан, используется случайный: токены не переживут перезапуск")
	}

	// === HTTP ===
	restServer := api.NewRestServer(api.Config{
		Port:        fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
		Repo:        repo,
		Blobs:       blobs,
		Catalog:     codec,
		Bus:         bus,
		Issuer:      issuer,
		Credentials: auth.NewCredentials(cfg.Auth.Users, cfg.Auth.Admins),
		TokenTTL:    cfg.Auth.TokenTTL,
		Registry:    registry,
		MapMetrics:  mapMetrics,
		Logger:      logging.GetAPILogger(),
		NodeID:      cfg.Server.NodeID,
	})
	restServer.Start()
	metricsServer := metrics.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()), registry)

	logging.Info("✅ Сервис карт запущен")
	logging.Info("   🌐 REST API: http://localhost:%d", cfg.Server.GetRESTPort())
	logging.Info("   ❤️  Health check: http://localhost:%d/health", cfg.Server.GetRESTPort())

	<-ctx.Done()
	logging.Info("📡 Получен сигнал завершения, остановка...")

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки /metrics: %v", err)
	}
	if cache != nil {
		logging.Info("📊 Доля попаданий в кэш: %.2f", cache.HitRatio())
	}
	logging.Info("👋 Сервис карт остановлен")
}
