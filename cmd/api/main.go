package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "loan-tracker/internal/adapter/http"
	"loan-tracker/internal/adapter/ingest"
	mw "loan-tracker/internal/adapter/middleware"
	"loan-tracker/internal/adapter/repository/jsonfile"
	"loan-tracker/internal/config"
	"loan-tracker/internal/infrastructure/cache"
	uc "loan-tracker/internal/usecase/loan"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	store := jsonfile.New(cfg.DataFile)
	usecase := uc.NewUsecase(store)

	if cfg.BorrowersDir != "" {
		if err := ingest.New(cfg.BorrowersDir, usecase).Seed(context.Background()); err != nil {
			log.Printf("borrower intake: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover())
	e.Renderer = httpadp.NewRenderer()

	h := httpadp.NewHandler()
	lh := httpadp.NewLoanHandler(usecase)
	pages := httpadp.NewPages(usecase)

	e.GET("/health", h.Health)

	// pages
	e.GET("/", pages.Board)
	e.GET("/digest", pages.DigestPage)
	e.GET("/add", pages.AddForm)
	e.POST("/add", pages.AddForm)
	e.GET("/loan/:loan_id", pages.Detail)
	e.GET("/loan/:loan_id/edit", pages.EditForm)
	e.POST("/loan/:loan_id/edit", pages.EditForm)
	e.POST("/loan/:loan_id/stage", pages.StageForm)
	e.POST("/loan/:loan_id/checklist", pages.ChecklistForm)
	e.POST("/loan/:loan_id/delete", pages.DeleteForm)

	// JSON API; writes are key-gated and, when redis is configured,
	// idempotent on an Idempotency-Key header.
	api := e.Group("/api")
	api.GET("/loans", lh.ListLoans)
	api.GET("/loans/:loan_id", lh.GetLoan)
	api.GET("/digest", lh.Digest)

	write := e.Group("/api", mw.RequireAPIKey(cfg.APIKey))
	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.Fatal(err)
		}
		write.Use(mw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))
	}
	write.POST("/loans", lh.CreateLoan)
	write.PUT("/loans/:loan_id", lh.UpdateLoan)
	write.DELETE("/loans/:loan_id", lh.DeleteLoan)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
