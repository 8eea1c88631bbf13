// ZhiBan 排班约束引擎服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zhiban/zhiban/internal/config"
	"github.com/zhiban/zhiban/internal/database"
	"github.com/zhiban/zhiban/internal/handler"
	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/internal/middleware"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/scheduler/breaks"
	"github.com/zhiban/zhiban/pkg/scheduler/optimizer"
	"github.com/zhiban/zhiban/pkg/scheduler/validator"
	"github.com/zhiban/zhiban/pkg/swap"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	fmt.Printf("ZhiBan 排班约束引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	policy, err := cfg.LoadPolicy()
	if err != nil {
		logger.Error().Err(err).Msg("加载策略表失败")
		os.Exit(1)
	}

	v := validator.New()
	o := optimizer.New(v, &policy.Weights)
	recommender := swap.NewRecommender(v, o)
	enforcer := breaks.NewEnforcer(&policy.Breaks)

	scheduleHandler := handler.NewScheduleHandler(v, o, cfg.Engine.MaxIterations, cfg.Engine.DefaultTimeout)
	statsHandler := handler.NewStatsHandler(recommender, enforcer)

	// 引擎本身无状态；启用数据库后才挂载持久化端点
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database)
		if err != nil {
			logger.Error().Err(err).Msg("数据库初始化失败")
			os.Exit(1)
		}
		defer db.Close()
	}

	mux := http.NewServeMux()

	// 系统端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			if err := db.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"degraded","service":"zhiban","database":"down"}`))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok","service":"zhiban","database":"up"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"zhiban"}`))
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "ZhiBan 排班约束引擎 API v1",
			"endpoints": {
				"schedule": {
					"validate": "POST /api/v1/schedule/validate",
					"optimize": "POST /api/v1/schedule/optimize",
					"candidates": "POST /api/v1/schedule/candidates",
					"audit": "POST /api/v1/schedule/audit",
					"swap": "POST /api/v1/schedule/swap"
				},
				"constraints": {
					"library": "GET /api/v1/constraints/library"
				}
			}
		}`))
	})

	// 排班引擎 API
	mux.HandleFunc("/api/v1/schedule/validate", scheduleHandler.Validate)
	mux.HandleFunc("/api/v1/schedule/optimize", scheduleHandler.Optimize)
	mux.HandleFunc("/api/v1/schedule/candidates", scheduleHandler.Candidates)

	// 审计与换班 API
	mux.HandleFunc("/api/v1/schedule/audit", statsHandler.Audit)
	mux.HandleFunc("/api/v1/schedule/swap", statsHandler.RecommendSwap)

	// 约束库 API
	mux.HandleFunc("/api/v1/constraints/library", statsHandler.ConstraintLibrary)

	// 持久化 API（计划与主数据）
	if db != nil {
		storeHandler := handler.NewStoreHandler(db)
		mux.HandleFunc("/api/v1/schedules", storeHandler.Schedules)
		mux.HandleFunc("/api/v1/schedules/", storeHandler.ScheduleByID)
		mux.HandleFunc("/api/v1/employees", storeHandler.Employees)
		mux.HandleFunc("/api/v1/roles", storeHandler.Roles)
		mux.HandleFunc("/api/v1/constraints", storeHandler.Constraints)
	}

	// Prometheus 指标端点
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	limiter := middleware.NewRateLimiter(100)

	// 中间件执行顺序：requestID -> recovery -> rateLimit -> cors -> 安全头 -> 日志 -> handler
	root := middleware.Chain(mux,
		middleware.RequestID,
		middleware.Recovery,
		middleware.RateLimit(limiter),
		middleware.CORS,
		middleware.SecurityHeaders,
		middleware.Logging,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}
