package assembly_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ensamble-api/internal/domain"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// memLedger: libro de stock en memoria para los tests del orquestador.
// Las transacciones se serializan con mu y se revierten restaurando una copia.
// ──────────────────────────────────────────────────────────────────────────────

type lotKey struct{ item, vendor string }

type memLedger struct {
	mu sync.Mutex

	items      map[string]decimal.Decimal
	lots       map[lotKey]decimal.Decimal
	lastPO     map[lotKey]string
	assemblies map[string]*entity.Assembly
	usage      map[string][]entity.AssemblyComponentUsage

	vendors map[string]string
	boms    map[string]*entity.BOM
	pos     map[string]*entity.PurchaseOrder

	activityMu sync.Mutex
	activity   []entity.ActivityLog

	// failUsage fuerza un error en CreateUsage para probar el rollback.
	failUsage bool

	// touched artículos en el orden en que la tx bloqueó su stock.
	touched []string
}

func newMemLedger() *memLedger {
	return &memLedger{
		items:      map[string]decimal.Decimal{},
		lots:       map[lotKey]decimal.Decimal{},
		lastPO:     map[lotKey]string{},
		assemblies: map[string]*entity.Assembly{},
		usage:      map[string][]entity.AssemblyComponentUsage{},
		vendors:    map[string]string{},
		boms:       map[string]*entity.BOM{},
		pos:        map[string]*entity.PurchaseOrder{},
	}
}

func (l *memLedger) setLot(item, vendor string, qty int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := lotKey{item, vendor}
	prev := l.lots[k]
	l.lots[k] = decimal.NewFromInt(qty)
	l.items[item] = l.items[item].Sub(prev).Add(decimal.NewFromInt(qty))
	if vendor != "" {
		if _, ok := l.vendors[vendor]; !ok {
			l.vendors[vendor] = "Proveedor " + vendor
		}
	}
}

func (l *memLedger) lot(item, vendor string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lots[lotKey{item, vendor}]
}

func (l *memLedger) stock(item string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items[item]
}

// lockOrder artículos tocados sin repeticiones consecutivas; vacía el registro.
func (l *memLedger) lockOrder() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, id := range l.touched {
		if len(out) == 0 || out[len(out)-1] != id {
			out = append(out, id)
		}
	}
	l.touched = nil
	return out
}

func (l *memLedger) assemblyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.assemblies)
}

func (l *memLedger) activityEntries() []entity.ActivityLog {
	l.activityMu.Lock()
	defer l.activityMu.Unlock()
	return append([]entity.ActivityLog(nil), l.activity...)
}

// RunAssembly implementa assembly.TxRunner.
func (l *memLedger) RunAssembly(ctx context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	stockRepo repository.VendorStockRepository,
	assemblyRepo repository.AssemblyRepository,
) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.snapshot()
	tx := &memTx{l: l}
	if err := fn(memItems{l: l}, tx, tx); err != nil {
		l.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	items      map[string]decimal.Decimal
	lots       map[lotKey]decimal.Decimal
	lastPO     map[lotKey]string
	assemblies map[string]*entity.Assembly
	usage      map[string][]entity.AssemblyComponentUsage
}

func (l *memLedger) snapshot() memSnapshot {
	s := memSnapshot{
		items:      make(map[string]decimal.Decimal, len(l.items)),
		lots:       make(map[lotKey]decimal.Decimal, len(l.lots)),
		lastPO:     make(map[lotKey]string, len(l.lastPO)),
		assemblies: make(map[string]*entity.Assembly, len(l.assemblies)),
		usage:      make(map[string][]entity.AssemblyComponentUsage, len(l.usage)),
	}
	for k, v := range l.items {
		s.items[k] = v
	}
	for k, v := range l.lots {
		s.lots[k] = v
	}
	for k, v := range l.lastPO {
		s.lastPO[k] = v
	}
	for k, v := range l.assemblies {
		s.assemblies[k] = v
	}
	for k, v := range l.usage {
		s.usage[k] = v
	}
	return s
}

func (l *memLedger) restore(s memSnapshot) {
	l.items, l.lots, l.lastPO, l.assemblies, l.usage = s.items, s.lots, s.lastPO, s.assemblies, s.usage
}

// ── Repos de lectura (fuera de tx) ───────────────────────────────────────────

func (l *memLedger) GetByID(_ context.Context, id string) (*entity.BOM, error) {
	b, ok := l.boms[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (l *memLedger) List(_ context.Context, limit, offset int) ([]*entity.BOM, error) {
	var out []*entity.BOM
	for _, b := range l.boms {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *memLedger) GetByNumber(_ context.Context, poNumber string) (*entity.PurchaseOrder, error) {
	return l.pos[poNumber], nil
}

func (l *memLedger) Append(_ context.Context, entry *entity.ActivityLog) error {
	l.activityMu.Lock()
	defer l.activityMu.Unlock()
	l.activity = append(l.activity, *entry)
	return nil
}

// lockedStock expone VendorStockRepository fuera de una tx (para el resolvedor).
type lockedStock struct{ l *memLedger }

func (s lockedStock) ListByItem(ctx context.Context, itemID string) ([]entity.VendorStockLot, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	return (&memTx{l: s.l}).ListByItem(ctx, itemID)
}

func (s lockedStock) Reserve(ctx context.Context, itemID, vendorID string, qty decimal.Decimal) (*entity.VendorStockLot, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	return (&memTx{l: s.l}).Reserve(ctx, itemID, vendorID, qty)
}

func (s lockedStock) Restore(ctx context.Context, itemID, vendorID string, qty decimal.Decimal) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	return (&memTx{l: s.l}).Restore(ctx, itemID, vendorID, qty)
}

// ── Repos atados a la tx (el caller ya tiene mu) ─────────────────────────────

type memTx struct{ l *memLedger }

var (
	_ repository.InventoryItemRepository = memItems{}
	_ repository.VendorStockRepository   = (*memTx)(nil)
	_ repository.AssemblyRepository      = (*memTx)(nil)
)

func (t *memTx) vendorName(vendorID string) string {
	if vendorID == "" {
		return entity.InternalSourceName
	}
	return t.l.vendors[vendorID]
}

func (t *memTx) ListByItem(_ context.Context, itemID string) ([]entity.VendorStockLot, error) {
	var out []entity.VendorStockLot
	for k, q := range t.l.lots {
		if k.item != itemID {
			continue
		}
		out = append(out, entity.VendorStockLot{
			ItemID: k.item, VendorID: k.vendor, VendorName: t.vendorName(k.vendor),
			Quantity: q, LastPONumber: t.l.lastPO[k],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VendorID < out[j].VendorID })
	return out, nil
}

// Reserve replica el UPDATE condicional: solo descuenta si quantity >= qty.
func (t *memTx) Reserve(_ context.Context, itemID, vendorID string, qty decimal.Decimal) (*entity.VendorStockLot, error) {
	t.l.touched = append(t.l.touched, itemID)
	k := lotKey{itemID, vendorID}
	cur, ok := t.l.lots[k]
	if !ok || cur.LessThan(qty) {
		return nil, domain.ErrInsufficientStock
	}
	t.l.lots[k] = cur.Sub(qty)
	return &entity.VendorStockLot{
		ItemID: itemID, VendorID: vendorID, VendorName: t.vendorName(vendorID),
		Quantity: t.l.lots[k], LastPONumber: t.l.lastPO[k],
	}, nil
}

func (t *memTx) Restore(_ context.Context, itemID, vendorID string, qty decimal.Decimal) error {
	t.l.touched = append(t.l.touched, itemID)
	k := lotKey{itemID, vendorID}
	t.l.lots[k] = t.l.lots[k].Add(qty)
	return nil
}

func (t *memTx) Create(_ context.Context, a *entity.Assembly) error {
	if _, dup := t.l.assemblies[a.ID]; dup {
		return domain.ErrDuplicate
	}
	cp := *a
	cp.Units = append([]entity.AssemblyUnit(nil), a.Units...)
	t.l.assemblies[a.ID] = &cp
	return nil
}

func (t *memTx) CreateUsage(_ context.Context, usage []entity.AssemblyComponentUsage) error {
	if t.l.failUsage {
		return errors.New("insert usage: conexión perdida")
	}
	for _, u := range usage {
		t.l.usage[u.AssemblyID] = append(t.l.usage[u.AssemblyID], u)
	}
	return nil
}

func (t *memTx) GetByID(_ context.Context, id string) (*entity.Assembly, error) {
	a, ok := t.l.assemblies[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (t *memTx) GetForUpdate(ctx context.Context, id string) (*entity.Assembly, error) {
	return t.GetByID(ctx, id)
}

func (t *memTx) List(_ context.Context, limit, offset int) ([]*entity.Assembly, error) {
	var out []*entity.Assembly
	for _, a := range t.l.assemblies {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *memTx) ListUsage(_ context.Context, assemblyID string) ([]entity.AssemblyComponentUsage, error) {
	return append([]entity.AssemblyComponentUsage(nil), t.l.usage[assemblyID]...), nil
}

func (t *memTx) Delete(_ context.Context, id string) error {
	delete(t.l.usage, id)
	delete(t.l.assemblies, id)
	return nil
}

// memItems stock agregado por artículo dentro de la tx.
type memItems struct{ l *memLedger }

func (m memItems) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	cur, ok := m.l.items[id]
	if !ok {
		return nil, nil
	}
	return &entity.InventoryItem{ID: id, CurrentStock: cur}, nil
}

func (m memItems) AdjustStock(_ context.Context, itemID string, delta decimal.Decimal) error {
	m.l.touched = append(m.l.touched, itemID)
	cur, ok := m.l.items[itemID]
	if !ok && delta.IsNegative() {
		return domain.ErrNotFound
	}
	next := cur.Add(delta)
	if next.IsNegative() {
		return domain.ErrInsufficientStock
	}
	m.l.items[itemID] = next
	return nil
}

// ── Idempotencia y métricas falsas ───────────────────────────────────────────

type memIdempotency struct {
	mu       sync.Mutex
	keys     map[string]bool
	released []string
}

func newMemIdempotency() *memIdempotency { return &memIdempotency{keys: map[string]bool{}} }

func (m *memIdempotency) Reserve(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	m.released = append(m.released, key)
	return nil
}

type recordedMetrics struct {
	mu      sync.Mutex
	creates []string
	reverts []string
}

func (r *recordedMetrics) ObserveCreate(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates = append(r.creates, outcome)
}

func (r *recordedMetrics) ObserveReverse(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reverts = append(r.reverts, outcome)
}
