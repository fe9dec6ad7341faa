package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"fuppas-erp/internal/core"
	"fuppas-erp/internal/db"

	"github.com/joho/godotenv"
)

// Seeds the head office branch and an owner account so a fresh install
// has something to log into. Safe to run more than once.
func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	branches := core.NewBranchService(pool, 0)
	managers := core.NewManagerService(pool)

	existing, err := branches.ListBranches(ctx)
	if err != nil {
		log.Fatalf("list branches: %v", err)
	}
	if len(existing) == 0 {
		branch, err := branches.CreateBranch(ctx, core.Branch{
			Name:         "Head Office",
			Address:      "Main Street",
			BranchNumber: "B001",
			BranchEmail:  "headoffice@example.com",
		})
		if err != nil {
			log.Fatalf("create branch: %v", err)
		}
		fmt.Printf("Created branch %d (%s)\n", branch.ID, branch.Name)
	}

	password := os.Getenv("SEED_OWNER_PASSWORD")
	if password == "" {
		log.Fatal("SEED_OWNER_PASSWORD environment variable not set")
	}

	if _, err := managers.GetByUsername(ctx, "owner"); err == nil {
		fmt.Println("Owner account already exists, nothing to do.")
		return
	}

	owner, err := managers.CreateManager(ctx, core.Manager{
		Name:     "Owner",
		Username: "owner",
		Role:     "owner",
	}, password)
	if err != nil {
		log.Fatalf("create owner: %v", err)
	}
	fmt.Printf("Created owner account %d (username: %s)\n", owner.ID, owner.Username)
}
