package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jayjokeer/loyalty-api/config"
	"github.com/Jayjokeer/loyalty-api/dao"
	"github.com/Jayjokeer/loyalty-api/middleware"
	"github.com/Jayjokeer/loyalty-api/pkg/log"
	"github.com/Jayjokeer/loyalty-api/pkg/response"
	"github.com/Jayjokeer/loyalty-api/pkg/timeutil"
	"github.com/Jayjokeer/loyalty-api/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider struct {
	Config      *config.Config
	Engine      *gin.Engine
	Ledger      dao.LedgerStore
	Idempotency dao.IdempotencyStore
	Calendar    *timeutil.Calendar
}

func NewGinEngine(conf *config.Config, h *Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(CORSMiddleware())
	r.Use(middleware.RequestID(), middleware.GinZap(), gin.CustomRecovery(response.Recovery))
	r.Use(middleware.PrometheusMiddleware())
	if rl := conf.Server.RateLimit; rl != nil && rl.RPS > 0 {
		r.Use(middleware.NewRateLimiter(rl.RPS, rl.Burst).Middleware())
	}

	r.NoRoute(func(c *gin.Context) {
		response.Abort(c, response.ErrNotFound)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.Health.RegisterRouter(r)

	api := r.Group("/", middleware.Auth(conf.Auth.ApiKey))
	h.Customer.RegisterRouter(api)
	h.Points.RegisterRouter(api)
	h.Wallet.RegisterRouter(api)
	return r
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 设置 CORS 头
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, X-Requested-With, X-Api-Key, Idempotency-Key, X-Request-Id")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Idempotent-Replayed, X-Request-Id")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		// 对于 OPTIONS 请求，直接返回 204
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func Run(ctx *cli.Context, app *AppProvider) error {
	if app.Config.Debug() {
		gin.SetMode(gin.DebugMode)
	}
	log.SetDebug(app.Config.Debug())

	if err := service.RegisterLedgerMetrics(prometheus.DefaultRegisterer, app.Ledger); err != nil {
		return err
	}

	eg, groupCtx := errgroup.WithContext(ctx.Context)
	c := make(chan os.Signal, 1)
	// 终止的信号 服务要停止了
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)
	defer signal.Stop(c)

	log.L.Info("server starting",
		zap.Int("port", app.Config.Server.Http),
		zap.String("env", app.Config.App.Env),
		zap.String("timezone", app.Config.Loyalty.Timezone),
		zap.String("currency", app.Config.Loyalty.Currency),
		zap.Int64("daily_cap", app.Config.Loyalty.DailyCap),
		zap.Int64("earn_rate", app.Config.Loyalty.EarnRate),
		zap.String("storage", string(app.Config.Storage.Driver)),
		zap.String("idempotency", string(app.Config.Idempotency.Driver)),
	)

	return run(c, eg, groupCtx, app)
}

func run(c chan os.Signal, eg *errgroup.Group, ctx context.Context, app *AppProvider) error {
	serv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config.Server.Http),
		Handler:           app.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 收到信号或任一协程出错时通知其余协程退出
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	// 启动 http 服务
	eg.Go(func() error {
		err := serv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	eg.Go(func() error {
		return sweepIdempotency(ctx, app.Idempotency, app.Config.Idempotency.SweepInterval, app.Calendar.Now)
	})

	eg.Go(func() error {
		defer func() {
			stop()
			log.L.Info("server stopping")

			// 等待中断信号以优雅地关闭服务器
			timeCtx, timeCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer timeCancel()

			if err := serv.Shutdown(timeCtx); err != nil {
				log.L.Info("server stopping", zap.Error(err))
			}
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c:
			return nil
		}
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.L.Info("server stopping", zap.Error(err))
		return err
	}

	log.L.Info("server stopped")

	return nil
}

// sweepIdempotency 定期清理过期的幂等记录, interval <= 0 时不清理
func sweepIdempotency(ctx context.Context, store dao.IdempotencyStore, interval time.Duration, now func() time.Time) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := store.Sweep(ctx, now())
			if err != nil {
				log.L.Warn("idempotency sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				log.L.Debug("idempotency records expired", zap.Int64("removed", removed))
			}
		}
	}
}
