package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	partyv1alpha1 "github.com/KirkDiggler/rpg-party/internal/api/party/v1alpha1"
	"github.com/KirkDiggler/rpg-party/internal/config"
	"github.com/KirkDiggler/rpg-party/internal/handlers/party/v1alpha1"
	"github.com/KirkDiggler/rpg-party/internal/handlers/web"
	"github.com/KirkDiggler/rpg-party/internal/telemetry"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gRPC and HTTP servers",
	Long:  `Start the RPG Party gRPC server and the HTTP server that carries the websocket feed and audio clips.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().Int("port", 50051, "gRPC server port")
	serverCmd.Flags().String("http-addr", ":8080", "HTTP listen address")
	serverCmd.Flags().String("redis-addr", "", "Redis address; empty keeps state in memory")
	serverCmd.Flags().String("narrative", config.ProviderScripted, "narrative provider: scripted or openai")
	serverCmd.Flags().String("voice", config.ProviderNone, "voice provider: none, placeholder or openai")
	serverCmd.Flags().Bool("parallel", false, "draft DM and companion replies concurrently")
}

func runServer(cmd *cobra.Command, _ []string) error {
	v := config.New()
	for key, flag := range map[string]string{
		"server.port":        "port",
		"server.http_addr":   "http-addr",
		"redis.addr":         "redis-addr",
		"narrative.provider": "narrative",
		"voice.provider":     "voice",
		"resolver.parallel":  "parallel",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	cfg, err := config.Load(v, configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, &telemetry.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: "rpg-party",
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}

	deps, err := buildDependencies(cfg)
	if err != nil {
		return err
	}
	if deps.driver != nil {
		if err := deps.driver.Start(ctx); err != nil {
			return fmt.Errorf("failed to start companion driver: %w", err)
		}
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(interceptorLogger(logger)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(interceptorLogger(logger)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	sessionHandler, err := v1alpha1.NewSessionHandler(&v1alpha1.SessionHandlerConfig{
		SessionService: deps.sessions,
	})
	if err != nil {
		return fmt.Errorf("failed to create session handler: %w", err)
	}
	diceHandler, err := v1alpha1.NewDiceHandler(&v1alpha1.DiceHandlerConfig{
		DiceService: deps.dice,
	})
	if err != nil {
		return fmt.Errorf("failed to create dice handler: %w", err)
	}

	partyv1alpha1.RegisterSessionServiceServer(srv, sessionHandler)
	partyv1alpha1.RegisterDiceServiceServer(srv, diceHandler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(partyv1alpha1.SessionServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(partyv1alpha1.DiceServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	router, err := web.NewRouter(&web.RouterConfig{
		Hub:            deps.hub,
		Sessions:       deps.sessions,
		Clips:          deps.clips,
		OriginPatterns: cfg.Server.OriginPatterns,
	})
	if err != nil {
		return fmt.Errorf("failed to create http router: %w", err)
	}
	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 2)
	go func() {
		slog.Info("gRPC server starting", "port", cfg.Server.Port)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve grpc: %w", err)
		}
	}()
	go func() {
		slog.Info("HTTP server starting", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to serve http: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal, gracefully stopping")
	case serveErr = <-errChan:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	healthServer.Shutdown()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown failed", "error", err)
	}

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-shutdownCtx.Done():
		slog.Warn("Graceful shutdown timeout exceeded, forcing stop")
		srv.Stop()
	case <-stopped:
		slog.Info("Server stopped gracefully")
	}

	deps.close(shutdownCtx)
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Warn("Failed to flush traces", "error", err)
	}

	return serveErr
}

// interceptorLogger adapts slog to the go-grpc-middleware logging interface
func interceptorLogger(l *slog.Logger) grpc_logging.Logger {
	return grpc_logging.LoggerFunc(func(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(level), msg, fields...)
	})
}
