package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"}

	tests := []struct {
		name       string
		err        error
		constraint string
		expected   bool
	}{
		{"Any constraint", dup, "", true},
		{"Named constraint", dup, "users_email_key", true},
		{"Other constraint", dup, "orders_order_number_key", false},
		{"Wrapped", fmt.Errorf("failed to insert: %w", dup), "users_email_key", true},
		{"Foreign key violation", &pgconn.PgError{Code: "23503"}, "", false},
		{"Plain error", errors.New("boom"), "", false},
		{"Nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isUniqueViolation(tt.err, tt.constraint))
		})
	}
}

func TestNonNil(t *testing.T) {
	var images []string
	assert.NotNil(t, nonNil(images))
	assert.Empty(t, nonNil(images))
	assert.Equal(t, []string{"a.png"}, nonNil([]string{"a.png"}))
}

func TestUniqueViolation_FromDatabase(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insert := `INSERT INTO users (id, name, email, password_hash, role) VALUES (gen_random_uuid(), 'A', 'dup@example.com', 'x', 'customer')`

	_, err := pool.Exec(ctx, insert)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, insert)
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err, "users_email_key"))
}

func TestBeginTx_Rollback(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	tx, err := beginTx(ctx, pool, zerolog.Nop())
	require.NoError(t, err)

	_, err = tx.Exec(ctx, `INSERT INTO categories (id, name, slug) VALUES (gen_random_uuid(), 'Spices', 'spices')`)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count))
	assert.Zero(t, count)
}
