package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/velora-shop/storefront-go/config"
	"github.com/velora-shop/storefront-go/internal/api"
	"github.com/velora-shop/storefront-go/internal/cart"
	"github.com/velora-shop/storefront-go/internal/core/domain"
	"github.com/velora-shop/storefront-go/internal/notify"
	"github.com/velora-shop/storefront-go/internal/profile"
	"github.com/velora-shop/storefront-go/internal/session"
	"github.com/velora-shop/storefront-go/internal/stubapi"
	"github.com/velora-shop/storefront-go/observability"
)

func main() {
	var (
		email      = flag.String("email", "demo@velora.shop", "account email")
		password   = flag.String("password", "demo-password", "account password")
		register   = flag.Bool("register", false, "register a new account instead of logging in")
		firstName  = flag.String("first-name", "Demo", "first name (registration only)")
		lastName   = flag.String("last-name", "Shopper", "last name (registration only)")
		useStub    = flag.Bool("stub", false, "run against an embedded in-memory backend")
		productID  = flag.Int64("add-product", 0, "product id to add to the cart after login")
		listPages  = flag.Int("list", 5, "number of catalog products to print")
	)
	flag.Parse()

	// Load configuration from environment variables (with .env file support for local dev)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	logger, err := observability.NewLoggerFromConfig(cfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Client starting",
		zap.String("service", cfg.Service.Name),
		zap.String("version", cfg.Service.Version),
		zap.String("env", cfg.Service.Env),
		zap.String("api", cfg.API.BaseURL),
	)

	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		tp, err = observability.InitTracing(cfg)
		if err != nil {
			logger.Warn("Failed to initialize tracing", zap.Error(err))
		} else {
			logger.Info("Tracing initialized",
				zap.String("endpoint", cfg.Tracing.Endpoint),
				zap.Float64("sample_rate", cfg.Tracing.SampleRate),
			)
		}
	} else {
		logger.Info("Tracing disabled (TRACING_ENABLED=false)")
	}

	if cfg.Profiling.Enabled {
		if err := observability.InitProfiling(cfg); err != nil {
			logger.Warn("Failed to initialize profiling", zap.Error(err))
		} else {
			logger.Info("Profiling initialized", zap.String("endpoint", cfg.Profiling.Endpoint))
			defer observability.StopProfiling()
		}
	} else {
		logger.Info("Profiling disabled (PROFILING_ENABLED=false)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Embedded backend for trying the client without a real deployment.
	if *useStub {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			logger.Fatal("Failed to start stub backend", zap.Error(err))
		}
		stubSrv := &http.Server{Handler: stubapi.New().Router()}
		go func() {
			if err := stubSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
				logger.Error("Stub backend error", zap.Error(err))
			}
		}()
		defer stubSrv.Close()

		cfg.API.BaseURL = "http://" + ln.Addr().String()
		logger.Info("Stub backend listening", zap.String("url", cfg.API.BaseURL))
	}

	// Debug listener with health and Prometheus metrics for the outbound calls.
	if cfg.Metrics.Enabled {
		gin.SetMode(gin.ReleaseMode)
		r := gin.New()
		r.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))

		debugSrv := &http.Server{Addr: ":" + cfg.Metrics.Port, Handler: r}
		go func() {
			logger.Info("Debug listener started", zap.String("port", cfg.Metrics.Port))
			if err := debugSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Debug listener error", zap.Error(err))
			}
		}()
		defer debugSrv.Close()
	}

	client := api.New(cfg.API, logger)
	notifier := notify.Zap(logger)

	sessions := session.NewStore(client, notifier, logger)
	profiles := profile.NewStore(client, notifier, logger)
	carts := cart.NewStore(client, notifier, logger)

	unbindProfile := profiles.Bind(sessions)
	defer unbindProfile()
	unbindCart := carts.Bind(sessions)
	defer unbindCart()

	// Restore any session the cookie jar may carry. Errors are not fatal:
	// an anonymous start is a normal outcome.
	sessions.Initialize(ctx)

	if *register {
		_, err = sessions.Register(ctx, session.RegisterInput{
			Email:           *email,
			Password:        *password,
			ConfirmPassword: *password,
			FirstName:       *firstName,
			LastName:        *lastName,
			AcceptTerms:     true,
		})
	} else {
		_, err = sessions.Login(ctx, *email, *password)
	}
	if err != nil {
		logger.Fatal("Authentication failed", zap.Error(err))
	}

	if p := profiles.Profile(); p != nil {
		fmt.Printf("Signed in as %s %s <%s> (role %s)\n",
			p.User.FirstName, p.User.LastName, p.User.Email, p.User.Role)
		if addr := p.DefaultAddress(); addr != nil {
			fmt.Printf("Default address: %s, %s %s\n", addr.Line1, addr.City, addr.PostalCode)
		}
		fmt.Printf("Settings: language=%s currency=%s\n",
			p.Settings.Language, p.Settings.Currency)
	}

	if *listPages > 0 {
		page, err := client.ListProducts(ctx, domain.ProductQuery{Limit: *listPages})
		if err != nil {
			logger.Warn("Catalog listing failed", zap.Error(err))
		} else {
			fmt.Printf("Catalog (%d items total):\n", page.Pagination.TotalItems)
			for _, p := range page.Products {
				fmt.Printf("  #%d %-24s %8.2f\n", p.ID, p.Name, p.EffectivePrice())
			}
		}
	}

	if *productID > 0 {
		if err := carts.AddItem(ctx, *productID, 1); err == nil {
			if c := carts.Cart(); c != nil {
				fmt.Printf("Cart: %d line(s), subtotal %.2f\n", len(c.Items), carts.Subtotal())
			}
		}
	}

	sessions.Logout(ctx)

	if tp != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("Tracer shutdown error", zap.Error(err))
		}
	}
	logger.Info("Done")
}
