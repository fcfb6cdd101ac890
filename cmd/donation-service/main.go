package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/LavaJover/shvark-donation-service/internal/app/background"
	"github.com/LavaJover/shvark-donation-service/internal/app/setup"
	"github.com/LavaJover/shvark-donation-service/internal/config"
	"github.com/LavaJover/shvark-donation-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	logg, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v\n", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("failed to init dependencies", zap.Error(err))
	}
	defer deps.Close()

	ucs := setup.InitializeUseCases(deps)

	router, err := setup.NewRouter(deps, ucs)
	if err != nil {
		logg.Fatal("failed to init router", zap.Error(err))
	}

	sqlDB, err := deps.DB.DB()
	if err != nil {
		logg.Fatal("failed to get sql.DB", zap.Error(err))
	}
	healthHandler := grpcapi.NewHealthHandler(sqlDB, logg.Named("health"))

	var grpcServer *grpc.Server
	if cfg.GRPCServer.Port != "" {
		grpcServer = grpc.NewServer()
		healthHandler.Register(grpcServer)

		lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port))
		if err != nil {
			logg.Fatal("failed to listen", zap.Error(err))
		}
		go func() {
			logg.Info("gRPC health server started", zap.String("addr", lis.Addr().String()))
			if err := grpcServer.Serve(lis); err != nil {
				logg.Error("gRPC server stopped", zap.Error(err))
			}
		}()
	}

	tasks := background.NewBackgroundTasks(
		deps.Storage,
		healthHandler,
		deps.Metrics,
		logg.Named("background"),
		cfg.Receipts.CleanupInterval,
	)
	tasks.StartAll(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	go func() {
		logg.Info("HTTP server started",
			zap.String("addr", srv.Addr),
			zap.String("prefix", cfg.HTTPServer.PublicPrefix),
			zap.String("stripe_mode", deps.Gateway.Mode()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	healthHandler.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("HTTP shutdown failed", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}
