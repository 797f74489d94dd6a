// Package main is a small debugging tool that prints a summary of the
// catalog database: category tree, product counts, tombstones, and orders.
//
// Usage:
//
//	DATA_PATH=~/Mughouse/data go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/store"
	"github.com/mughouse/mughouse-server/internal/store/sqlite"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Mughouse/data")
	}

	dbPath := filepath.Join(dataPath, "mughouse.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	// Category tree
	cats, err := st.ListCategories(ctx)
	if err != nil {
		log.Fatalf("Failed to list categories: %v", err)
	}

	children := make(map[string][]*domain.Category)
	var roots []*domain.Category
	for _, c := range cats {
		if c.IsRoot() {
			roots = append(roots, c)
		} else {
			children[c.ParentID] = append(children[c.ParentID], c)
		}
	}

	fmt.Printf("Categories: %d\n", len(cats))
	for _, root := range roots {
		printCategory(ctx, st, root, children, 1)
	}
	fmt.Println()

	// Products
	products, err := st.ListAllProducts(ctx)
	if err != nil {
		log.Fatalf("Failed to list products: %v", err)
	}

	active, hidden, tombstoned, withImage := 0, 0, 0, 0
	for _, p := range products {
		switch {
		case p.IsDeleted:
			tombstoned++
		case p.IsActive:
			active++
		default:
			hidden++
		}
		if p.ImagePath != "" {
			withImage++
		}
	}

	fmt.Printf("Products: %d (active %d, hidden %d, tombstoned %d, with image %d)\n",
		len(products), active, hidden, tombstoned, withImage)

	for _, p := range products {
		if p.IsDeleted {
			fmt.Printf("  TOMBSTONED: %s (%s) deleted by %s\n", p.Name, p.Slug, p.DeletedBy)
		}
	}
	fmt.Println()

	// Customers
	customers, err := st.ListCustomers(ctx, store.PaginationParams{Limit: 500})
	if err != nil {
		log.Fatalf("Failed to list customers: %v", err)
	}
	fmt.Printf("Customers: %d\n", customers.Total)
	fmt.Println()

	// Orders by status
	fmt.Println("Orders by status:")
	statuses := []domain.OrderStatus{
		domain.OrderPending,
		domain.OrderConfirmed,
		domain.OrderShipped,
		domain.OrderDelivered,
		domain.OrderCancelled,
	}
	total := 0
	for _, status := range statuses {
		result, err := st.ListOrders(ctx, store.OrderFilter{Status: status}, store.PaginationParams{Limit: 1})
		if err != nil {
			log.Fatalf("Failed to list %s orders: %v", status, err)
		}
		fmt.Printf("  %-10s %d\n", status, result.Total)
		total += result.Total
	}
	fmt.Printf("  %-10s %d\n", "total", total)
	fmt.Println()

	// Users
	userCount, err := st.CountUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to count users: %v", err)
	}
	fmt.Printf("Admin users: %d\n", userCount)
}

func printCategory(ctx context.Context, st store.Store, c *domain.Category, children map[string][]*domain.Category, depth int) {
	productCount, _ := st.CountProductsInCategory(ctx, c.ID)
	for range depth {
		fmt.Print("  ")
	}
	fmt.Printf("%s (%s) products=%d\n", c.Name, c.Slug, productCount)

	for _, child := range children[c.ID] {
		printCategory(ctx, st, child, children, depth+1)
	}
}
