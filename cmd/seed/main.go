package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/evdataworks/ev-chatbot/internal/store"
)

// Seeds the cars table from a CSV export. Run migrations first.
func main() {
	ctx := context.Background()

	csvPath := getEnv("DATASET_CSV_PATH", "data/cars.csv")

	config := store.PostgresConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		Database: getEnv("DB_NAME", "ev_chatbot"),
		Username: getEnv("DB_USER", "ev_chatbot"),
		Password: getEnv("DB_PASSWORD", "changeme"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	fmt.Println("=== Seeding Car Database ===")
	fmt.Printf("CSV: %s\n", csvPath)
	fmt.Printf("Database: %s@%s:%s/%s\n", config.Username, config.Host, config.Port, config.Database)

	table, err := store.LoadCSV(csvPath)
	if err != nil {
		log.Fatalf("Failed to load CSV: %v", err)
	}
	fmt.Printf("✓ Loaded %d records across %d brands\n", table.Len(), len(table.Brands()))

	pg, err := store.NewPostgres(config)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()
	fmt.Println("✓ Database connection established")

	inserted := 0
	for _, rec := range table.Records() {
		if err := pg.InsertRecord(ctx, rec); err != nil {
			log.Fatalf("Failed to insert %s %s: %v", rec.Brand, rec.Model, err)
		}
		inserted++
	}
	fmt.Printf("✓ Upserted %d cars\n", inserted)

	count, err := pg.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count cars: %v", err)
	}
	fmt.Printf("✓ Database now holds %d cars\n", count)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
