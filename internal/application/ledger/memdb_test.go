package ledger_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// memDB base en memoria con bloqueo por fila y escrituras que solo se publican en el commit.
type memDB struct {
	mu        sync.Mutex
	rowLocks  map[int64]*sync.Mutex
	products   map[int64]*entity.Product
	categories map[int64]string
	employees  map[int64]string
	movements []entity.Movement
	nextMovID int64
	nextProd  int64

	runs int
	// transientFailures cantidad de próximas transacciones que fallan como conflicto de la base.
	transientFailures int
	failCreate        error
	failSetQuantity   error
	// commitErr error devuelto en lugar de confirmar; las escrituras no se publican.
	commitErr error
	// offsets desplazamientos recibidos por los listados.
	offsets []int
}

var _ ledger.TxRunner = (*memDB)(nil)

func newMemDB() *memDB {
	return &memDB{
		rowLocks:   map[int64]*sync.Mutex{},
		products:   map[int64]*entity.Product{},
		categories: map[int64]string{1: "General", 2: "Herramientas"},
		employees:  map[int64]string{},
	}
}

func (db *memDB) addEmployee(id int64, name string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.employees[id] = name
}

func (db *memDB) addProduct(id int64, name string, price string, quantity int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.products[id] = &entity.Product{
		ID:         id,
		Name:       name,
		UnitPrice:  decimal.RequireFromString(price),
		CategoryID: 1,
		Quantity:   quantity,
	}
	if id > db.nextProd {
		db.nextProd = id
	}
}

func (db *memDB) quantity(id int64) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.products[id].Quantity
}

func (db *memDB) setQuantityDirect(id, q int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.products[id].Quantity = q
}

func (db *memDB) movementCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.movements)
}

func (db *memDB) runCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.runs
}

func (db *memDB) rowLock(id int64) *sync.Mutex {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		db.rowLocks[id] = l
	}
	return l
}

// Run implementa ledger.TxRunner.
func (db *memDB) Run(ctx context.Context, fn func(repository.MovementRepository, repository.QuantityStore) error) error {
	db.mu.Lock()
	db.runs++
	if db.transientFailures > 0 {
		db.transientFailures--
		db.mu.Unlock()
		return fmt.Errorf("%w: deadlock detected", domain.ErrTransientStorage)
	}
	db.mu.Unlock()

	tx := &memTx{db: db, pending: map[int64]int64{}}
	defer tx.unlockAll()

	if err := fn(tx, tx); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.commitErr != nil {
		return db.commitErr
	}
	for id, q := range tx.pending {
		db.products[id].Quantity = q
		db.products[id].UpdatedAt = time.Now()
	}
	db.movements = append(db.movements, tx.created...)
	return nil
}

// ProductRepository

type memProducts struct{ db *memDB }

func (r memProducts) Create(_ context.Context, p *entity.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.nextProd++
	p.ID = r.db.nextProd
	cp := *p
	r.db.products[p.ID] = &cp
	return nil
}

func (r memProducts) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.CategoryName = r.db.categories[cp.CategoryID]
	return &cp, nil
}

func (r memProducts) Update(_ context.Context, p *entity.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.db.categories[p.CategoryID]; !ok {
		return domain.ErrNotFound
	}
	stored.Name = p.Name
	stored.UnitPrice = p.UnitPrice
	stored.CategoryID = p.CategoryID
	stored.UpdatedAt = time.Now()
	p.Quantity = stored.Quantity
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r memProducts) List(_ context.Context, order repository.ProductOrder, limit, offset int) ([]*entity.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.offsets = append(r.db.offsets, offset)
	out := make([]*entity.Product, 0, len(r.db.products))
	for _, p := range r.db.products {
		cp := *p
		cp.CategoryName = r.db.categories[cp.CategoryID]
		out = append(out, &cp)
	}
	switch order {
	case repository.ProductOrderNameAsc:
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case repository.ProductOrderNameDesc:
		sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	case repository.ProductOrderIDAsc:
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	}
	return paginate(out, limit, offset), nil
}

func (r memProducts) Count(context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(r.db.products)), nil
}

// EmployeeRepository

type memEmployees struct {
	db  *memDB
	err error
}

func (r memEmployees) Exists(_ context.Context, id int64) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.employees[id]
	return ok, nil
}

func (r memEmployees) Count(context.Context) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(r.db.employees)), nil
}

// QuantityReader

type memQuantities struct{ db *memDB }

func (r memQuantities) GetQuantity(_ context.Context, productID int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return p.Quantity, nil
}

func (r memQuantities) TotalQuantity(_ context.Context) (int64, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var total int64
	for _, p := range r.db.products {
		total += p.Quantity
	}
	return total, int64(len(r.db.products)), nil
}

// MovementRepository sobre lo confirmado.

type memMovements struct{ db *memDB }

func (r memMovements) Create(context.Context, *entity.Movement) error {
	return fmt.Errorf("los movimientos se crean dentro de una transacción")
}

func (r memMovements) List(_ context.Context, order repository.MovementOrder, limit, offset int) ([]*entity.MovementView, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.offsets = append(r.db.offsets, offset)
	views := r.db.viewsLocked(func(entity.Movement) bool { return true })
	switch order {
	case repository.MovementOrderIDAsc, repository.MovementOrderDateAsc:
		sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	default:
		sort.Slice(views, func(i, j int) bool { return views[i].ID > views[j].ID })
	}
	return paginate(views, limit, offset), nil
}

func (r memMovements) Count(context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(r.db.movements)), nil
}

func (r memMovements) ListByProduct(_ context.Context, productID int64, limit, offset int) ([]*entity.MovementView, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	views := r.db.viewsLocked(func(m entity.Movement) bool { return m.ProductID == productID })
	sort.Slice(views, func(i, j int) bool { return views[i].ID > views[j].ID })
	return paginate(views, limit, offset), nil
}

func (r memMovements) TotalsByProduct(_ context.Context, productID int64) (repository.MovementTotals, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var t repository.MovementTotals
	for _, m := range r.db.movements {
		if m.ProductID != productID {
			continue
		}
		if m.Direction == entity.DirectionIN {
			t.In += m.Quantity
		} else {
			t.Out += m.Quantity
		}
	}
	return t, nil
}

func (db *memDB) viewsLocked(keep func(entity.Movement) bool) []*entity.MovementView {
	out := make([]*entity.MovementView, 0, len(db.movements))
	for _, m := range db.movements {
		if !keep(m) {
			continue
		}
		p := db.products[m.ProductID]
		out = append(out, &entity.MovementView{
			Movement:     m,
			EmployeeName: db.employees[m.EmployeeID],
			ProductName:  p.Name,
			UnitPrice:    p.UnitPrice,
			Value:        p.UnitPrice.Mul(decimal.NewFromInt(m.Quantity)),
		})
	}
	return out
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		panic(fmt.Sprintf("offset negativo: %d", offset))
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// memTx repositorios atados a una transacción en curso.
type memTx struct {
	db      *memDB
	locked  []*sync.Mutex
	held    map[int64]bool
	pending map[int64]int64
	created []entity.Movement
}

func (tx *memTx) unlockAll() {
	for _, l := range tx.locked {
		l.Unlock()
	}
}

func (tx *memTx) GetQuantity(_ context.Context, productID int64) (int64, error) {
	if q, ok := tx.pending[productID]; ok {
		return q, nil
	}
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	p, ok := tx.db.products[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return p.Quantity, nil
}

func (tx *memTx) GetQuantityForUpdate(ctx context.Context, productID int64) (int64, error) {
	if tx.held == nil {
		tx.held = map[int64]bool{}
	}
	if !tx.held[productID] {
		l := tx.db.rowLock(productID)
		l.Lock()
		tx.locked = append(tx.locked, l)
		tx.held[productID] = true
	}
	return tx.GetQuantity(ctx, productID)
}

func (tx *memTx) SetQuantity(_ context.Context, productID, quantity int64) error {
	if tx.db.failSetQuantity != nil {
		return tx.db.failSetQuantity
	}
	if quantity < 0 {
		return domain.ErrInvalidInput
	}
	tx.pending[productID] = quantity
	return nil
}

func (tx *memTx) TotalQuantity(ctx context.Context) (int64, int64, error) {
	return memQuantities{db: tx.db}.TotalQuantity(ctx)
}

func (tx *memTx) Create(_ context.Context, m *entity.Movement) error {
	if tx.db.failCreate != nil {
		return tx.db.failCreate
	}
	tx.db.mu.Lock()
	tx.db.nextMovID++
	m.ID = tx.db.nextMovID
	tx.db.mu.Unlock()
	m.CreatedAt = time.Now()
	tx.created = append(tx.created, *m)
	return nil
}

func (tx *memTx) List(ctx context.Context, order repository.MovementOrder, limit, offset int) ([]*entity.MovementView, error) {
	return memMovements{db: tx.db}.List(ctx, order, limit, offset)
}

func (tx *memTx) Count(ctx context.Context) (int64, error) {
	return memMovements{db: tx.db}.Count(ctx)
}

func (tx *memTx) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*entity.MovementView, error) {
	return memMovements{db: tx.db}.ListByProduct(ctx, productID, limit, offset)
}

func (tx *memTx) TotalsByProduct(ctx context.Context, productID int64) (repository.MovementTotals, error) {
	return memMovements{db: tx.db}.TotalsByProduct(ctx, productID)
}

// countingMetrics registra las llamadas del servicio.
type countingMetrics struct {
	mu       sync.Mutex
	recorded map[entity.Direction]int
	rejected map[string]int
	retries  int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{recorded: map[entity.Direction]int{}, rejected: map[string]int{}}
}

func (m *countingMetrics) MovementRecorded(d entity.Direction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded[d]++
}

func (m *countingMetrics) MovementRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

func (m *countingMetrics) MovementRetried() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries++
}
