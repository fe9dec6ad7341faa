package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	webAdapter "fuppas-erp/internal/adapters/web"
	"fuppas-erp/internal/ai"
	"fuppas-erp/internal/app"
	"fuppas-erp/internal/core"
	"fuppas-erp/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	settings := core.NewSettingsService(pool)
	notifications := core.NewNotificationService(pool)
	inventory := core.NewInventoryService(pool, settings)
	transfers := core.NewTransferService(pool, inventory, notifications)
	maxBranches := 0
	if v := os.Getenv("MAX_BRANCHES"); v != "" {
		maxBranches, err = strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid MAX_BRANCHES %q: %v", v, err)
		}
	}
	branches := core.NewBranchService(pool, maxBranches)
	managers := core.NewManagerService(pool)
	receipts := core.NewReceiptService(pool)
	jobs := core.NewJobService(pool, inventory, receipts)
	sales := core.NewSaleService(pool, receipts)
	customers := core.NewCustomerService(pool)
	reporting := core.NewReportingService(pool, settings)
	backup := core.NewBackupService(pool)
	audit := core.NewAuditService(pool)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set")
	}
	agent := ai.NewAgent(apiKey)

	svc := app.NewAppService(branches, managers, inventory, transfers, notifications,
		jobs, sales, customers, reporting, backup, audit, settings, agent)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
