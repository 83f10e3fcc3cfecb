package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
)

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	SSLMode  string
}

// Postgres reads and seeds the cars table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a pooled connection to the car database.
func NewPostgres(config PostgresConfig) (*Postgres, error) {
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.Username, config.Password, config.Database, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// Ping tests the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// LoadTable reads every car row and returns the normalized table.
func (p *Postgres) LoadTable(ctx context.Context) (*Table, error) {
	query := `
		SELECT brand, model, price_usd, range_km, accel_0_100_s, top_speed_kmh,
		       battery_kwh, efficiency_wh_per_km, seats, towing_capacity_kg
		FROM cars
		ORDER BY brand, model
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var price, towing sql.NullFloat64

		err := rows.Scan(
			&rec.Brand,
			&rec.Model,
			&price,
			&rec.RangeKM,
			&rec.Accel0To100,
			&rec.TopSpeedKMH,
			&rec.BatteryKWH,
			&rec.EfficiencyWhKM,
			&rec.Seats,
			&towing,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car row: %w", err)
		}

		// NULL price stays zero, which the record model reads as unknown.
		if price.Valid {
			rec.PriceUSD = price.Float64
		}
		if towing.Valid {
			rec.TowingKG = towing.Float64
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating car rows: %w", err)
	}

	return NewTable(records), nil
}

// InsertRecord inserts or updates one car row, keyed by (brand, model).
func (p *Postgres) InsertRecord(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO cars (id, brand, model, price_usd, range_km, accel_0_100_s,
		                  top_speed_kmh, battery_kwh, efficiency_wh_per_km, seats,
		                  towing_capacity_kg, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		ON CONFLICT (brand, model) DO UPDATE SET
			price_usd = EXCLUDED.price_usd,
			range_km = EXCLUDED.range_km,
			accel_0_100_s = EXCLUDED.accel_0_100_s,
			top_speed_kmh = EXCLUDED.top_speed_kmh,
			battery_kwh = EXCLUDED.battery_kwh,
			efficiency_wh_per_km = EXCLUDED.efficiency_wh_per_km,
			seats = EXCLUDED.seats,
			towing_capacity_kg = EXCLUDED.towing_capacity_kg,
			updated_at = EXCLUDED.updated_at
	`

	_, err := p.db.ExecContext(ctx, query,
		uuid.New().String(),
		rec.Brand,
		rec.Model,
		nullableFloat(rec.PriceUSD),
		rec.RangeKM,
		rec.Accel0To100,
		rec.TopSpeedKMH,
		rec.BatteryKWH,
		rec.EfficiencyWhKM,
		rec.Seats,
		nullableFloat(rec.TowingKG),
		time.Now(),
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique violation
			return fmt.Errorf("car already exists: %s %s", rec.Brand, rec.Model)
		}
		return fmt.Errorf("failed to insert car: %w", err)
	}

	return nil
}

// Count returns the number of car rows.
func (p *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cars").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cars: %w", err)
	}
	return count, nil
}

func nullableFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v > 0}
}
