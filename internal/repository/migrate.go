package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/carestaff/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	all, err := migrations.All()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	for _, m := range all {
		for _, stmt := range m.Statements {
			if _, err := db.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply %s: %w", m.Name, err)
			}
		}
		log.Printf("applied migration %s", m.Name)
	}
	return nil
}
