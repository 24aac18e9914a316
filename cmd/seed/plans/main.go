package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sexystyle/storefront/internal/config"
	"github.com/sexystyle/storefront/internal/domain"
	"github.com/sexystyle/storefront/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds a small catalog for local development, so the Mini App has
// something to render without a supplier access code. Wholesale prices
// are in dollars; retail is derived by NewPlan.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	repo := repository.NewMongoPlanRepository(db)

	plans := []domain.Plan{
		domain.NewPlan("KZ-1GB-7D", "Kazakhstan 1GB", "1GB", "7 days", 2.50, []string{"KZ"}, "Data-only eSIM for Kazakhstan", []string{"4G/LTE", "Hotspot"}),
		domain.NewPlan("KZ-3GB-30D", "Kazakhstan 3GB", "3GB", "30 days", 6.00, []string{"KZ"}, "Data-only eSIM for Kazakhstan", []string{"4G/LTE", "Hotspot"}),
		domain.NewPlan("KG-1GB-7D", "Kyrgyzstan 1GB", "1GB", "7 days", 3.20, []string{"KG"}, "Data-only eSIM for Kyrgyzstan", []string{"4G/LTE"}),
		domain.NewPlan("UZ-3GB-30D", "Uzbekistan 3GB", "3GB", "30 days", 8.40, []string{"UZ"}, "Data-only eSIM for Uzbekistan", []string{"4G/LTE", "Hotspot"}),
		domain.NewPlan("AM-5GB-30D", "Armenia 5GB", "5GB", "30 days", 11.00, []string{"AM"}, "Data-only eSIM for Armenia", []string{"4G/LTE", "Hotspot"}),
		domain.NewPlan("KR-5GB-15D", "South Korea 5GB", "5GB", "15 days", 14.50, []string{"KR"}, "Data-only eSIM for South Korea", []string{"5G", "Hotspot"}),
		domain.NewPlan("KH-3GB-15D", "Cambodia 3GB", "3GB", "15 days", 9.80, []string{"KH"}, "Data-only eSIM for Cambodia", []string{"4G/LTE"}),
		domain.NewPlan("CA-10GB-30D", "Canada 10GB", "10GB", "30 days", 22.00, []string{"CA"}, "Data-only eSIM for Canada", []string{"5G", "Hotspot"}),
		domain.NewPlan("QA-5GB-15D", "Qatar 5GB", "5GB", "15 days", 18.30, []string{"QA"}, "Data-only eSIM for Qatar", []string{"5G"}),
		domain.NewPlan("KW-5GB-15D", "Kuwait 5GB", "5GB", "15 days", 21.40, []string{"KW"}, "Data-only eSIM for Kuwait", []string{"4G/LTE"}),
		domain.NewPlan("DO-3GB-30D", "Dominican Republic 3GB", "3GB", "30 days", 12.60, []string{"DO"}, "Data-only eSIM for the Dominican Republic", []string{"4G/LTE"}),
		domain.NewPlan("JE-1GB-7D", "Jersey 1GB", "1GB", "7 days", 4.90, []string{"JE"}, "Data-only eSIM for Jersey", []string{"4G/LTE"}),
		domain.NewPlan("ASIA-10GB-30D", "Asia Regional 10GB", "10GB", "30 days", 35.00, []string{"KZ", "KG", "UZ", "KR", "KH"}, "Regional eSIM covering Central and East Asia", []string{"4G/LTE", "Hotspot", "Multi-country"}),
		domain.NewPlan("GLOBAL-20GB-30D", "Global 20GB", "20GB", "30 days", 62.00, []string{"KZ", "KG", "UZ", "AM", "KR", "KH", "CA", "QA", "KW", "DO", "JE"}, "Global eSIM for frequent travellers", []string{"4G/LTE", "Hotspot", "Multi-country"}),
	}

	var seeded int
	for _, p := range plans {
		if err := repo.Upsert(ctx, &p); err != nil {
			log.Printf("Failed to seed plan %s: %v", p.ID, err)
			continue
		}
		fmt.Printf("✓ %s  wholesale $%.2f → retail $%.2f\n", p.ID, p.WholesalePrice, p.RetailPrice)
		seeded++
	}

	fmt.Printf("\nSeeded %d/%d plans into %s\n", seeded, len(plans), cfg.MongoDB.Database)
}
