// Package main provides a tool to seed the database with demo catalog data.
//
// This creates a small drinkware catalog with categories, products, customers
// and orders so the admin frontend has realistic data to work against.
//
// Usage:
//
//	DATA_PATH=~/Mughouse/data go run ./cmd/seed
//	DATA_PATH=~/Mughouse/data go run ./cmd/seed --orders=20
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/mughouse/mughouse-server/internal/blob"
	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/service"
	"github.com/mughouse/mughouse-server/internal/store/sqlite"
)

var orderCount = flag.Int("orders", 12, "Number of demo orders to create")

type catalogEntry struct {
	name       string
	material   string
	color      string
	capacityML int
	unitPrice  int64
}

var categorySpec = map[string][]string{
	"Drinkware":   {"Mugs", "Tumblers", "Glasses"},
	"Teaware":     {"Teapots", "Gaiwans"},
	"Accessories": {},
}

var productSpec = map[string][]catalogEntry{
	"Mugs": {
		{"Ly Sứ Trắng", "ceramic", "white", 350, 12500},
		{"Ly Sứ Men Lam", "ceramic", "blue", 300, 18000},
		{"Bát Tràng Mug", "ceramic", "brown", 400, 22000},
	},
	"Tumblers": {
		{"Stainless Tumbler 500", "stainless", "silver", 500, 35000},
		{"Bamboo Lid Tumbler", "bamboo", "natural", 450, 28000},
	},
	"Glasses": {
		{"Cold Brew Glass", "glass", "clear", 300, 9500},
		{"Double Wall Glass", "glass", "clear", 250, 15500},
	},
	"Teapots": {
		{"Tử Sa Teapot", "ceramic", "red", 200, 120000},
	},
	"Gaiwans": {
		{"Porcelain Gaiwan", "ceramic", "white", 150, 45000},
	},
}

var customerSpec = []struct {
	name   string
	phones []string
}{
	{"Lan Pham", []string{"+84912345678", "+84987654321"}},
	{"Minh Tran", []string{"+84911111111"}},
	{"Huong Nguyen", []string{"+84922222222", "+84933333333"}},
	{"Duc Le", []string{"+84944444444"}},
	{"Mai Vo", []string{"+84955555555"}},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Mughouse/data")
	}

	dbPath := filepath.Join(dataPath, "mughouse.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	// Services enforce the tree, lifecycle, and phone invariants, so the
	// seeded data is indistinguishable from data created over the API.
	categories := service.NewCategoryService(st, service.NoopIndexer{}, service.NoopEmitter{}, logger)
	products := service.NewProductService(st, blob.NewMemory(), service.NoopIndexer{}, service.NoopEmitter{}, logger)
	customers := service.NewCustomerService(st, service.NoopEmitter{}, logger)
	orders := service.NewOrderService(st, service.NoopEmitter{}, logger)

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Categories
	childIDs := make(map[string]string)
	for rootName, children := range categorySpec {
		root, err := categories.CreateCategory(ctx, service.CreateCategoryRequest{Name: rootName})
		if err != nil {
			log.Fatalf("Failed to create category %s: %v", rootName, err)
		}
		fmt.Printf("Created category: %s (%s)\n", root.Name, root.Slug)

		for _, childName := range children {
			child, err := categories.CreateCategory(ctx, service.CreateCategoryRequest{
				Name:     childName,
				ParentID: root.ID,
			})
			if err != nil {
				log.Fatalf("Failed to create category %s: %v", childName, err)
			}
			childIDs[childName] = child.ID
			fmt.Printf("  Created category: %s (%s)\n", child.Name, child.Slug)
		}
	}

	// Products
	var productIDs []string
	for categoryName, entries := range productSpec {
		categoryID, ok := childIDs[categoryName]
		if !ok {
			log.Fatalf("No category seeded for %s", categoryName)
		}
		for _, entry := range entries {
			p, err := products.CreateProduct(ctx, service.CreateProductRequest{
				Name:       entry.name,
				CategoryID: categoryID,
				Material:   entry.material,
				Color:      entry.color,
				CapacityML: entry.capacityML,
				UnitPrice:  entry.unitPrice,
			})
			if err != nil {
				log.Fatalf("Failed to create product %s: %v", entry.name, err)
			}
			productIDs = append(productIDs, p.ID)
			fmt.Printf("Created product: %s (%s)\n", p.Name, p.Slug)
		}
	}

	// Customers with phone books
	var customerIDs []string
	for _, spec := range customerSpec {
		phones := make([]service.PhoneInput, len(spec.phones))
		for i, value := range spec.phones {
			phones[i] = service.PhoneInput{Value: value}
		}
		c, err := customers.CreateCustomer(ctx, service.CreateCustomerRequest{
			FullName: spec.name,
			Phones:   phones,
		})
		if err != nil {
			log.Fatalf("Failed to create customer %s: %v", spec.name, err)
		}
		customerIDs = append(customerIDs, c.ID)
		fmt.Printf("Created customer: %s (%d phones)\n", c.FullName, len(c.Phones))
	}

	// Orders in assorted fulfillment states
	created := 0
	for range *orderCount {
		customerID := customerIDs[rng.Intn(len(customerIDs))]

		numItems := 1 + rng.Intn(3)
		items := make([]service.OrderItemInput, numItems)
		for i := range items {
			items[i] = service.OrderItemInput{
				ProductID: productIDs[rng.Intn(len(productIDs))],
				Quantity:  1 + rng.Intn(4),
			}
		}

		o, err := orders.CreateOrder(ctx, service.CreateOrderRequest{
			CustomerID: customerID,
			Items:      items,
		})
		if err != nil {
			log.Printf("Failed to create order: %v", err)
			continue
		}

		// Walk a random number of steps along the fulfillment path.
		path := []domain.OrderStatus{domain.OrderConfirmed, domain.OrderShipped, domain.OrderDelivered}
		steps := rng.Intn(len(path) + 1)
		for _, status := range path[:steps] {
			if o, err = orders.UpdateOrderStatus(ctx, o.ID, status); err != nil {
				log.Printf("Failed to advance order %s: %v", o.ID, err)
				break
			}
		}

		created++
		fmt.Printf("Created order: %s (%d items, %s, total %d)\n", o.ID, len(o.Items), o.Status, o.Total())
	}

	fmt.Printf("\nSeeding complete: %d orders created.\n", created)
}
