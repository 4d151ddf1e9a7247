package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	authapp "github.com/wyfcoding/loanflow/internal/auth/application"
	authmessaging "github.com/wyfcoding/loanflow/internal/auth/infrastructure/messaging"
	authmysql "github.com/wyfcoding/loanflow/internal/auth/infrastructure/persistence/mysql"
	authredis "github.com/wyfcoding/loanflow/internal/auth/infrastructure/persistence/redis"
	authhttp "github.com/wyfcoding/loanflow/internal/auth/interfaces/http"
	loanapp "github.com/wyfcoding/loanflow/internal/loan/application"
	"github.com/wyfcoding/loanflow/internal/loan/infrastructure/directory"
	loanmessaging "github.com/wyfcoding/loanflow/internal/loan/infrastructure/messaging"
	loanmysql "github.com/wyfcoding/loanflow/internal/loan/infrastructure/persistence/mysql"
	loanhttp "github.com/wyfcoding/loanflow/internal/loan/interfaces/http"
	"github.com/wyfcoding/pkg/cache"
	configpkg "github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/pkg/middleware"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/loanflow/config.toml", "config file path")

// Config 扩展配置结构。
type Config struct {
	configpkg.Config `mapstructure:",squash"`

	JWT JWTConfig `mapstructure:"jwt"`
}

// JWTConfig 令牌签发配置。
type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

func (c JWTConfig) TTL() time.Duration {
	if c.TTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.TTLHours) * time.Hour
}

func main() {
	flag.Parse()

	// 1. 配置
	var cfg Config
	if err := configpkg.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 日志
	logCfg := &logging.Config{Service: cfg.Server.Name, Level: cfg.Log.Level}
	logger := logging.NewFromConfig(logCfg)
	slog.SetDefault(logger.Logger)

	// 3. 指标
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)

	// 4. 数据库
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(&loanmysql.LoanApplicationModel{}, &authmysql.UserModel{}, &outbox.Message{}); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	// 5. Kafka & Outbox
	kafkaProducer := kafka.NewProducer(&cfg.MessageQueue.Kafka, logger, metricsImpl)
	outboxMgr := outbox.NewManager(db.RawDB(), logger.Logger)
	pusher := func(ctx context.Context, topic, key string, payload []byte) error {
		return kafkaProducer.PublishToTopic(ctx, topic, []byte(key), payload)
	}
	outboxProcessor := outbox.NewProcessor(outboxMgr, pusher, 100, 2*time.Second)

	// 6. Redis
	redisCache, err := cache.NewRedisCache(&cfg.Data.Redis, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	// 7. 仓储
	userRepo := authmysql.NewUserRepository(db.RawDB())
	sessionRepo := authredis.NewSessionRedisRepository(redisCache.GetClient())
	loanRepo := loanmysql.NewLoanRepository(db.RawDB())
	userDirectory := directory.NewUserDirectory(userRepo)

	authPublisher := authmessaging.NewOutboxPublisher(outboxMgr)
	loanPublisher := loanmessaging.NewOutboxPublisher(outboxMgr)

	// 8. 应用服务
	tokenSvc := authapp.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL())
	authCommandSvc := authapp.NewAuthCommandService(userRepo, sessionRepo, tokenSvc, authPublisher)
	authQuerySvc := authapp.NewAuthQueryService(userRepo)

	loanCommandSvc := loanapp.NewLoanCommandService(loanRepo, userDirectory, loanPublisher)
	loanQuerySvc := loanapp.NewLoanQueryService(loanRepo, userDirectory)
	statsSvc := loanapp.NewStatsService(loanRepo, userDirectory)

	// 9. 接口层
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.HTTPMetricsMiddleware(metricsImpl))
	r.Use(middleware.CORS())

	authenticator := authhttp.NewAuthenticator(tokenSvc, sessionRepo)
	api := r.Group("/api")
	authhttp.NewHandler(authCommandSvc, authQuerySvc, authenticator).RegisterRoutes(api)
	loanhttp.NewLoanHandler(loanCommandSvc, loanQuerySvc, statsSvc, authenticator).RegisterRoutes(api)

	// 10. 启动
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		outboxProcessor.Start()
		<-ctx.Done()
		outboxProcessor.Stop()
		return nil
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.HTTP.Port), Handler: r}

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down server...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
