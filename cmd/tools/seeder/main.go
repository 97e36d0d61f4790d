package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/catalog"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/config"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/coupon"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
)

func main() {
	cfg := config.MustLoad()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	catalogSvc := &catalog.Service{
		Store: &catalog.PGStore{Pool: pool},
		Rates: cfg.Rates,
	}
	seedProducts(ctx, catalogSvc)
	seedCoupons(ctx, &coupon.PGStore{Pool: pool})

	log.Println("seeding completed")
}

func seedProducts(ctx context.Context, svc *catalog.Service) {
	products := []catalog.ProductInput{
		{
			Slug:          "wireless-earbuds",
			Title:         "Wireless Earbuds",
			Category:      "electronics",
			Description:   "Bluetooth 5.3 earbuds with charging case.",
			InputCurrency: currency.CNY,
			BasePrice:     decimal.RequireFromString("85"),
			Tiers: []catalog.TierInput{
				{MinQty: 10, MaxQty: 49, Price: decimal.RequireFromString("78")},
				{MinQty: 50, Price: decimal.RequireFromString("70")},
			},
			Colors: []string{"black", "white"},
			Active: true,
		},
		{
			Slug:          "denim-jacket",
			Title:         "Denim Jacket",
			Category:      "apparel",
			Description:   "Classic fit denim jacket.",
			InputCurrency: currency.USD,
			BasePrice:     decimal.RequireFromString("24.50"),
			Tiers: []catalog.TierInput{
				{MinQty: 20, Price: decimal.RequireFromString("21")},
			},
			Colors: []string{"blue", "black"},
			Sizes:  []string{"S", "M", "L", "XL"},
			Active: true,
		},
		{
			Slug:          "stainless-water-bottle",
			Title:         "Stainless Water Bottle 750ml",
			Category:      "home",
			InputCurrency: currency.CNY,
			BasePrice:     decimal.RequireFromString("32"),
			Active:        true,
		},
	}
	for _, in := range products {
		if _, err := svc.Upsert(ctx, in); err != nil {
			log.Fatalf("seed product %s: %v", in.Slug, err)
		}
		log.Printf("seeded product %s", in.Slug)
	}
}

func seedCoupons(ctx context.Context, store *coupon.PGStore) {
	rules := []coupon.Rule{
		{Code: "SAVE5", RateBps: 500, Active: true},
		{Code: "LAUNCH10", RateBps: 1000, Active: true},
	}
	for _, r := range rules {
		rule := r
		if err := store.Upsert(ctx, &rule); err != nil {
			log.Fatalf("seed coupon %s: %v", r.Code, err)
		}
		log.Printf("seeded coupon %s", r.Code)
	}
}
