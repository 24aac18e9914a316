package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sexystyle/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Command line flags
	mongoURI := flag.String("mongo", "mongodb://localhost:27017", "MongoDB connection URI")
	dbName := flag.String("db", "storefront", "Database name")
	dryRun := flag.Bool("dry-run", false, "Show what would be done without making changes")
	flag.Parse()

	fmt.Println("This script re-derives retail prices from stored wholesale prices.")
	fmt.Println("Run it after changing the markup table so the catalog reflects the new brackets.")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	plansCol := client.Database(*dbName).Collection("plans")

	cursor, err := plansCol.Find(ctx, bson.M{})
	if err != nil {
		log.Fatalf("Failed to query plans: %v", err)
	}
	defer cursor.Close(ctx)

	var plans []domain.Plan
	if err := cursor.All(ctx, &plans); err != nil {
		log.Fatalf("Failed to decode plans: %v", err)
	}

	fmt.Printf("📋 Found %d plans\n\n", len(plans))

	if len(plans) == 0 {
		fmt.Println("No plans found. Seed the catalog first.")
		os.Exit(0)
	}

	var updated, unchanged int
	for _, plan := range plans {
		oldRetail := plan.RetailPrice
		plan.Reprice()

		if plan.RetailPrice == oldRetail {
			unchanged++
			continue
		}

		fmt.Printf("💰 %s: wholesale $%.2f, retail $%.2f → $%.2f\n",
			plan.ID, plan.WholesalePrice, oldRetail, plan.RetailPrice)

		if *dryRun {
			updated++
			continue
		}

		_, err := plansCol.UpdateOne(ctx,
			bson.M{"_id": plan.ID},
			bson.M{"$set": bson.M{
				"retail_price": plan.RetailPrice,
				"updated_at":   time.Now(),
			}},
		)
		if err != nil {
			fmt.Printf("   ❌ Failed to update: %v\n", err)
			continue
		}
		updated++
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✅ Summary:\n")
	fmt.Printf("   Plans checked: %d\n", len(plans))
	fmt.Printf("   Repriced: %d\n", updated)
	fmt.Printf("   Unchanged: %d\n", unchanged)

	if *dryRun {
		fmt.Println("\n⚠️  This was a dry run. No changes were made.")
		fmt.Println("   Run without -dry-run to apply changes.")
	}
}
