package main

import (
	"context"
	"log"

	_ "github.com/noah-isme/campus-placement-api/api/swagger"
	"github.com/noah-isme/campus-placement-api/internal/server"
	"github.com/noah-isme/campus-placement-api/pkg/config"
	"github.com/noah-isme/campus-placement-api/pkg/logger"
	"go.uber.org/zap"
)

// @title Campus Placement API
// @version 1.0.0
// @description Placement drives, student applications and eligibility workflow for a college placement cell.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	deps, err := server.BuildDependencies(context.Background(), cfg, logr)
	if err != nil {
		logr.Fatal("failed to build dependencies", zap.Error(err))
	}

	if err := server.New(deps).Run(); err != nil {
		logr.Fatal("server stopped with error", zap.Error(err))
	}
}
