//go:build integration

package storefront

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "storefront",
			"POSTGRES_PASSWORD": "storefront",
			"POSTGRES_DB":       "storefront",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := pg.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://storefront:storefront@%s:%s/storefront?sslmode=disable", host, port.Port())
	db, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestPostgresStoreContract(t *testing.T) {
	db := startPostgres(t)
	require.NoError(t, NewPostgresStore(db).Migrate(t.Context()))

	runStoreContract(t, func(t *testing.T) Store {
		_, err := db.ExecContext(t.Context(),
			`TRUNCATE users, categories, sellers, products, cart_items, orders, order_items RESTART IDENTITY`)
		require.NoError(t, err)

		s := NewPostgresStore(db)
		s.bcryptCost = bcrypt.MinCost
		require.NoError(t, s.Seed(t.Context()))
		return s
	})
}

func TestPostgresStore_MigrateAndSeedAreIdempotent(t *testing.T) {
	db := startPostgres(t)
	s := NewPostgresStore(db)

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Migrate(t.Context()))
		require.NoError(t, s.Seed(t.Context()))
	}

	cats, err := s.ListCategories(t.Context())
	require.NoError(t, err)
	assert.Len(t, cats, 7)

	products, err := s.ListProducts(t.Context(), ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 4)
	assert.Equal(t, "89000.00", products[0].Price)
	require.NotNil(t, products[0].OriginalPrice)
	assert.Equal(t, "95000.00", *products[0].OriginalPrice)

	require.NoError(t, s.Ping(t.Context()))
}
