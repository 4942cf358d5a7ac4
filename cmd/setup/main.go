// Command setup prepares a database for the delicioso API: it verifies the
// connection, applies the ledger schema and optionally seeds packaging stock.
//
// Usage:
//
//	setup [-seed "Box=50,Bag=100"]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"delicioso/internal/config"
	"delicioso/internal/database"
	"delicioso/internal/repository"
)

func main() {
	seed := flag.String("seed", "", `comma-separated packaging stock to add, e.g. "Box=50,Bag=100"`)
	flag.Parse()

	if err := run(*seed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(seed string) error {
	entries, err := parseSeed(seed)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return fmt.Errorf("QueryRow failed: %w", err)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		return err
	}
	fmt.Println("Schema applied: orders, order_line_items, packaging_stock")

	stockRepo := repository.NewStockRepository(pool, logger)
	for _, e := range entries {
		entry, err := stockRepo.Restock(ctx, e.name, e.quantity)
		if err != nil {
			return err
		}
		fmt.Printf("Stock %q (id %d): %d units\n", entry.Name, entry.ID, entry.Quantity)
	}

	return nil
}

type seedEntry struct {
	name     string
	quantity int
}

// parseSeed reads "name=qty" pairs separated by commas.
func parseSeed(s string) ([]seedEntry, error) {
	var entries []seedEntry
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, qty, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid seed entry %q: want name=quantity", part)
		}

		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid seed quantity in %q: must be a positive integer", part)
		}
		entries = append(entries, seedEntry{name: name, quantity: n})
	}
	return entries, nil
}
