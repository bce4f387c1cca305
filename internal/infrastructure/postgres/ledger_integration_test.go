package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

type testEnv struct {
	pool       *pgxpool.Pool
	svc        *ledger.Service
	employeeID int64
	productID  int64
}

// setupTestEnv requiere TEST_DATABASE_URL; sin ella los tests de integración se omiten.
func setupTestEnv(t *testing.T, initial int64) *testEnv {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 20},
		config.LedgerConfig{LockTimeoutMS: 5000, StatementTimeoutMS: 15000})
	if err != nil {
		t.Skipf("PostgreSQL no disponible: %v", err)
	}
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE movements, products, categories, employees RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	var categoryID, employeeID int64
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ('Ferretería') RETURNING id`).Scan(&categoryID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO employees (first_name, last_name) VALUES ('Ana', 'Pérez') RETURNING id`).Scan(&employeeID))

	products := postgres.NewProductRepository(pool)
	p := &entity.Product{Name: "Tornillo", UnitPrice: decimal.RequireFromString("2.50"), CategoryID: categoryID}
	require.NoError(t, products.Create(ctx, p))
	if initial > 0 {
		_, err = pool.Exec(ctx, `UPDATE products SET quantity = $1 WHERE id = $2`, initial, p.ID)
		require.NoError(t, err)
	}

	svc := ledger.NewService(
		postgres.NewTxRunner(pool),
		products,
		postgres.NewEmployeeRepository(pool),
		postgres.NewQuantityStore(pool),
		postgres.NewMovementRepository(pool),
		ledger.Options{MaxAttempts: 5, Logger: zerolog.Nop()},
	)
	return &testEnv{pool: pool, svc: svc, employeeID: employeeID, productID: p.ID}
}

func (e *testEnv) input(direction entity.Direction, qty int64) ledger.MovementInput {
	return ledger.MovementInput{
		EmployeeID: e.employeeID,
		ProductID:  e.productID,
		Supplier:   "Ferretería Central",
		Quantity:   qty,
		Direction:  direction,
	}
}

func TestIntegration_Escenario(t *testing.T) {
	env := setupTestEnv(t, 10)
	ctx := context.Background()

	res, err := env.svc.RecordMovement(ctx, env.input(entity.DirectionOUT, 4))
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.NewQuantity)
	assert.NotZero(t, res.Movement.ID)
	assert.False(t, res.Movement.CreatedAt.IsZero())

	_, err = env.svc.RecordMovement(ctx, env.input(entity.DirectionOUT, 10))
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(6), insufficient.Available)

	res, err = env.svc.RecordMovement(ctx, env.input(entity.DirectionIN, 5))
	require.NoError(t, err)
	assert.Equal(t, int64(11), res.NewQuantity)

	q, err := env.svc.GetQuantity(ctx, env.productID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), q)

	page, err := env.svc.ListMovements(ctx, ledger.ListMovementsInput{Page: 1, Order: "value_desc"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, repository.MovementOrderValueDesc, page.Order)
	assert.True(t, decimal.RequireFromString("12.50").Equal(page.Items[0].Value))
	assert.Equal(t, "Ana Pérez", page.Items[0].EmployeeName)
}

func TestIntegration_ProductoInexistente(t *testing.T) {
	env := setupTestEnv(t, 0)
	in := env.input(entity.DirectionIN, 1)
	in.ProductID = env.productID + 1000

	_, err := env.svc.RecordMovement(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntegration_SalidasConcurrentes(t *testing.T) {
	const (
		stock   = 10
		workers = 40
	)
	env := setupTestEnv(t, stock)

	var (
		wg           sync.WaitGroup
		successes    atomic.Int64
		insufficient atomic.Int64
		other        atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.RecordMovement(context.Background(), env.input(entity.DirectionOUT, 1))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(stock), successes.Load())
	assert.Equal(t, int64(workers-stock), insufficient.Load())
	assert.Zero(t, other.Load())

	rec, err := env.svc.Reconcile(context.Background(), env.productID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Cached)
	assert.Equal(t, int64(stock), rec.Totals.Out)
}

func TestIntegration_QuantityStoreRechazaNegativo(t *testing.T) {
	env := setupTestEnv(t, 3)
	store := postgres.NewQuantityStore(env.pool)

	err := store.SetQuantity(context.Background(), env.productID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.SetQuantity(context.Background(), env.productID+1000, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntegration_ActualizarYListarProductos(t *testing.T) {
	env := setupTestEnv(t, 10)
	ctx := context.Background()

	var otherCategory int64
	require.NoError(t, env.pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ('Pinturas') RETURNING id`).Scan(&otherCategory))

	p, err := env.svc.UpdateProduct(ctx, env.productID, ledger.ProductInput{
		Name:       "Tornillo 3/8",
		UnitPrice:  decimal.RequireFromString("3.10"),
		CategoryID: otherCategory,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Quantity, "editar no cambia el stock")

	got, err := env.svc.GetProduct(ctx, env.productID)
	require.NoError(t, err)
	assert.Equal(t, "Pinturas", got.CategoryName)
	assert.True(t, decimal.RequireFromString("3.10").Equal(got.UnitPrice))

	_, err = env.svc.UpdateProduct(ctx, env.productID, ledger.ProductInput{Name: "X", UnitPrice: decimal.NewFromInt(1), CategoryID: 9999})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.svc.CreateProduct(ctx, "Arandela", decimal.RequireFromString("0.10"), otherCategory)
	require.NoError(t, err)
	page, err := env.svc.ListProducts(ctx, ledger.ListProductsInput{Order: "name_asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Arandela", page.Items[0].Name)

	s, err := env.svc.StockSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Employees)
}
