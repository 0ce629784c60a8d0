// Package main starts the coursehub HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	courseModel "coursehub/internal/domain/course/model"
	orderModel "coursehub/internal/domain/order/model"
	userModel "coursehub/internal/domain/user/model"
	"coursehub/internal/pkg/auth"
	"coursehub/internal/pkg/config"
	"coursehub/internal/pkg/events"
	"coursehub/internal/pkg/middleware"
	"coursehub/internal/pkg/push"
	"coursehub/internal/pkg/registry"
	"coursehub/internal/pkg/uploader"
	"coursehub/internal/pkg/worker"
	"coursehub/pkg/cache"
	"coursehub/pkg/database"
	"coursehub/pkg/logger"
	"coursehub/pkg/metrics"
	"coursehub/pkg/response"

	// 模块通过 init 自动注册
	_ "coursehub/internal/domain/common"
	_ "coursehub/internal/domain/course"
	_ "coursehub/internal/domain/order"
	_ "coursehub/internal/domain/report"
	_ "coursehub/internal/domain/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		// 配置加载失败时日志尚未初始化
		logger.Fallback().Fatal("application terminated with error", zap.Error(err))
	}
}

func run() error {
	// 1. 配置与日志
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.App.Env); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. 存储
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	if cfg.Database.Driver == "sqlite" {
		// PostgreSQL 使用 cmd/migrate
		if err := migrateSQLite(db); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}
	sqlxDB, err := database.SQLX(db)
	if err != nil {
		return err
	}
	defer sqlxDB.Close()

	cacheService := openCache(ctx, cfg.Redis, log)

	// 3. 外部服务
	up, err := uploader.New(cfg.Upload)
	if err != nil {
		return fmt.Errorf("init uploader: %w", err)
	}

	pool := worker.NewWorkerPool(worker.Options{
		Workers:   cfg.Events.Workers,
		QueueSize: cfg.Events.QueueSize,
		MaxRetry:  cfg.Events.MaxRetry,
		OnDrop: func(task worker.Task, err error) {
			metrics.GetGlobalCollector().RecordDroppedTask(task.Name())
		},
	}, log)
	pool.Start()

	publisher, closeSinks := buildPublisher(cfg, pool, log)
	defer closeSinks()

	// 4. 路由与模块
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(log),
		middleware.MetricsMiddleware(metrics.GetGlobalCollector()),
		middleware.CORSMiddleware(cfg.CORS.AllowOrigins),
		middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	)

	moduleCtx := &registry.ModuleContext{
		Config:    cfg,
		DB:        db,
		SQL:       sqlxDB,
		Cache:     cacheService,
		Router:    r,
		Logger:    log,
		Uploader:  up,
		Publisher: publisher,
		Auth:      middleware.NewAuthenticator(cfg.JWT.Secret, nil, auth.NewTokenBlacklist(cacheService)),
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		return err
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, response.MsgRouteNotFound)
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", zap.String("addr", server.Addr), zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		// 等待后台事件投递完成
		pool.Stop(shutdownCtx)
		log.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}

func migrateSQLite(db *gorm.DB) error {
	// users 表由 User 定义，Creator/Buyer 只是投影
	return db.AutoMigrate(
		&userModel.User{},
		&userModel.Enrollment{},
		&courseModel.Course{},
		&orderModel.Order{},
	)
}

// openCache 优先使用 Redis，不可用时退回进程内缓存
func openCache(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) cache.CacheService {
	if cfg.Addr == "" {
		log.Info("redis not configured, using in-memory cache")
		return cache.NewMemoryCache()
	}

	client, err := database.OpenRedis(ctx, cfg)
	if err != nil {
		log.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		return cache.NewMemoryCache()
	}
	log.Info("redis connected", zap.String("addr", cfg.Addr))
	return cache.NewRedisCache(client, "coursehub:")
}

// buildPublisher wires the optional Kafka and push sinks.
func buildPublisher(cfg *config.Config, pool *worker.WorkerPool, log *zap.Logger) (events.Publisher, func()) {
	var (
		sinks   []events.Sink
		closers []func() error
	)

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := events.NewSyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.Warn("kafka unavailable, purchase events will not be streamed", zap.Error(err))
		} else {
			sink := events.NewKafkaSink(producer, cfg.Kafka.Topic)
			sinks = append(sinks, sink)
			closers = append(closers, sink.Close)
		}
	}

	pushService, err := push.NewAliyunPushService(cfg.Push)
	switch {
	case err == nil:
		sinks = append(sinks, events.NewPushSink(pushService))
	case errors.Is(err, push.ErrNotConfigured):
	default:
		log.Warn("push service unavailable", zap.Error(err))
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("close event sink", zap.Error(err))
			}
		}
	}

	if len(sinks) == 0 {
		return events.Nop{}, closeAll
	}
	d := events.NewDispatcher(pool, log, sinks...)
	log.Info("event sinks enabled", zap.Strings("sinks", d.Sinks()))
	return d, closeAll
}
