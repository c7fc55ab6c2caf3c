package main

import (
	"fmt"
	"os"

	"github.com/nurpe/weighbridge-billing/internal/auth"
	"github.com/nurpe/weighbridge-billing/internal/billing"
	"github.com/nurpe/weighbridge-billing/internal/config"
	"github.com/nurpe/weighbridge-billing/internal/db"
	httphandler "github.com/nurpe/weighbridge-billing/internal/http"
	"github.com/nurpe/weighbridge-billing/internal/http/middleware"
	"github.com/nurpe/weighbridge-billing/internal/logger"
	"github.com/nurpe/weighbridge-billing/internal/pdf"
	"github.com/nurpe/weighbridge-billing/internal/repository"
	"github.com/nurpe/weighbridge-billing/internal/weight"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	providerRepo := repository.NewProviderRepository(database)
	truckRepo := repository.NewTruckRepository(database)
	rateRepo := repository.NewRateRepository(database)

	weightClient := weight.NewClient(cfg.Weight, log)
	billingService := billing.NewService(providerRepo, truckRepo, rateRepo, weightClient, log)
	pdfGenerator := pdf.NewGenerator()

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(billingService, providerRepo, truckRepo, rateRepo, pdfGenerator, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("weight_service", cfg.Weight.BaseURL).Msg("starting billing service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
