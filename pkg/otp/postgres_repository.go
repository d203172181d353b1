package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores OTP records in the otp_codes table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Replace(ctx context.Context, rec Record) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM otp_codes WHERE email = $1`, rec.Email); err != nil {
		return fmt.Errorf("failed to delete otp records: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO otp_codes (email, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`,
		rec.Email, rec.CodeHash, rec.ExpiresAt, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert otp record: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) FindActive(ctx context.Context, email, codeHash string, now time.Time) (Record, error) {
	var rec Record
	err := r.db.QueryRow(ctx, `
		SELECT email, code_hash, expires_at, created_at
		FROM otp_codes
		WHERE email = $1 AND code_hash = $2 AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1`,
		email, codeHash, now,
	).Scan(&rec.Email, &rec.CodeHash, &rec.ExpiresAt, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to query otp record: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context, email string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM otp_codes WHERE email = $1`, email); err != nil {
		return fmt.Errorf("failed to delete otp records: %w", err)
	}
	return nil
}
