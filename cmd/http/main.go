package main

import (
	"context"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flokiorg/lokirent/http"
	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/service"
	"github.com/labstack/echo/v4"
)

func main() {
	logger.Logger.Info().Msg("Lokirent starting in HTTP mode")

	osSignalChannel := make(chan os.Signal, 1)
	signal.Notify(osSignalChannel, os.Interrupt, syscall.SIGTERM, syscall.SIGPIPE)

	ctx, cancel := context.WithCancel(context.Background())

	var signal os.Signal
	go func() {
		for {
			// wait for exit signal
			signal = <-osSignalChannel
			logger.Logger.Info().Interface("signal", signal).Msg("Received OS signal")

			if signal == syscall.SIGPIPE {
				logger.Logger.Warn().Interface("signal", signal).Msg("Ignoring SIGPIPE signal")
				continue
			}

			cancel()
			break
		}
	}()

	svc, err := service.NewService(ctx)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create service")
		return
	}

	env := svc.GetConfig().GetEnv()
	e := echo.New()

	httpSvc := http.NewHttpService(svc)
	httpSvc.RegisterSharedRoutes(e)

	go func() {
		logger.Logger.Info().
			Str("domain", env.Domain).
			Str("port", env.Port).
			Str("store_backend", env.StoreBackend).
			Dur("sweep_interval", env.SweepInterval).
			Bool("mock_payment", env.MockPayment).
			Bool("mock_dns", env.MockDNS).
			Msg("Accepting rental orders")
		if err := e.Start(fmt.Sprintf(":%v", env.Port)); err != nil && err != nethttp.ErrServerClosed {
			logger.Logger.Error().Err(err).Msg("echo server failed to start")
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Logger.Info().Interface("signal", signal).Msg("Context Done")
	logger.Logger.Info().Msg("No longer accepting orders, shutting down echo server...")
	// in-flight payment webhooks get the full window to finish activating rentals
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = e.Shutdown(ctx)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to shutdown echo server")
	}
	logger.Logger.Info().Msg("Echo server exited")
	svc.Shutdown()
	logger.Logger.Info().Str("store_backend", env.StoreBackend).Msg("Expiry sweeper stopped and store closed")
}
