package assembly_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ensamble-api/internal/application/assembly"
	"github.com/jhoicas/Ensamble-api/internal/application/dto"
	"github.com/jhoicas/Ensamble-api/internal/domain"
	domainassembly "github.com/jhoicas/Ensamble-api/internal/domain/assembly"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: Widget = 2×Parte A + 1×Parte B
// ──────────────────────────────────────────────────────────────────────────────

const (
	bomWidget  = "bom-widget"
	itemWidget = "item-widget"
	itemA      = "item-a"
	itemB      = "item-b"
	vendorV    = "v1"
	vendorW    = "v2"
	testUser   = "user-1"
)

func widgetLedger() *memLedger {
	l := newMemLedger()
	l.boms[bomWidget] = &entity.BOM{
		ID:                bomWidget,
		Name:              "Widget",
		AssembledItemID:   itemWidget,
		AssembledItemName: "Widget",
		Items: []entity.BOMItem{
			{ID: "bi-a", BOMID: bomWidget, ComponentItemID: itemA, ComponentName: "Parte A", Unit: "und", QuantityPerUnit: decimal.NewFromInt(2)},
			{ID: "bi-b", BOMID: bomWidget, ComponentItemID: itemB, ComponentName: "Parte B", Unit: "und", QuantityPerUnit: decimal.NewFromInt(1)},
		},
	}
	l.vendors[vendorV] = "Proveedor V"
	l.vendors[vendorW] = "Proveedor W"
	l.items[itemWidget] = decimal.Zero
	return l
}

func newCreateUC(l *memLedger, idem assembly.IdempotencyStore, m assembly.Metrics) *assembly.CreateAssemblyUseCase {
	return assembly.NewCreateAssemblyUseCase(l, l, l, l, idem, m, nil)
}

func widgetInput(qty int, sourceA, sourceB string) assembly.CreateAssemblyInput {
	return assembly.CreateAssemblyInput{
		UserID:   testUser,
		BOMID:    bomWidget,
		Name:     "Lote de prueba",
		Quantity: qty,
		Sources:  map[string]string{itemA: sourceA, itemB: sourceB},
	}
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// ──────────────────────────────────────────────────────────────────────────────
// Creación exitosa
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateAssembly_ConsumeExactamenteLoRequerido(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 6) // justo lo requerido para 3 unidades
	l.setLot(itemB, vendorV, 10)
	uc := newCreateUC(l, nil, nil)

	a, err := uc.CreateAssembly(context.Background(), widgetInput(3, vendorV, vendorV))
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.True(t, l.lot(itemA, vendorV).Equal(d(0)))
	assert.True(t, l.lot(itemB, vendorV).Equal(d(7)))
	assert.True(t, l.stock(itemA).Equal(d(0)))
	assert.True(t, l.stock(itemB).Equal(d(7)))

	// Artículo terminado: agregado y lote interno
	assert.True(t, l.stock(itemWidget).Equal(d(3)))
	assert.True(t, l.lot(itemWidget, "").Equal(d(3)))

	assert.Equal(t, 3, a.Quantity)
	assert.Equal(t, "Lote de prueba", a.Name)
	require.Len(t, a.Units, 3)
	for i, u := range a.Units {
		assert.Equal(t, i+1, u.UnitNumber)
		assert.NotEmpty(t, u.SerialNumber)
	}
	assert.NotEqual(t, a.Units[0].SerialNumber, a.Units[1].SerialNumber)
}

func TestCreateAssembly_RegistraConsumoPorUnidadYComponente(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 6)
	l.setLot(itemB, "", 3)
	l.lastPO[lotKey{itemA, vendorV}] = "PO-77"
	uc := newCreateUC(l, nil, nil)

	a, err := uc.CreateAssembly(context.Background(), widgetInput(3, vendorV, ""))
	require.NoError(t, err)

	usage := l.usage[a.ID]
	require.Len(t, usage, 6) // 3 unidades × 2 componentes

	totalA, totalB := decimal.Zero, decimal.Zero
	for _, u := range usage {
		switch u.ComponentItemID {
		case itemA:
			totalA = totalA.Add(u.Quantity)
			assert.Equal(t, vendorV, u.VendorID)
			assert.Equal(t, "PO-77", u.SourcePONumber)
		case itemB:
			totalB = totalB.Add(u.Quantity)
			assert.Empty(t, u.VendorID)
			assert.Equal(t, entity.InternalSourceName, u.VendorName)
		}
	}
	assert.True(t, totalA.Equal(d(6)))
	assert.True(t, totalB.Equal(d(3)))
}

func TestCreateAssembly_RegistraActividad(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 10)
	l.setLot(itemB, vendorV, 10)
	uc := newCreateUC(l, nil, nil)

	a, err := uc.CreateAssembly(context.Background(), widgetInput(2, vendorV, vendorV))
	require.NoError(t, err)

	entries := l.activityEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, testUser, entries[0].UserID)
	assert.Equal(t, entity.ActionAssemblyCreated, entries[0].Action)
	assert.Equal(t, a.ID, entries[0].Details["assembly_id"])
	assert.Equal(t, 2, entries[0].Details["quantity"])
}

func TestCreateAssembly_NombrePorDefecto(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 10)
	l.setLot(itemB, vendorV, 10)
	uc := newCreateUC(l, nil, nil)

	in := widgetInput(1, vendorV, vendorV)
	in.Name = ""
	a, err := uc.CreateAssembly(context.Background(), in)
	require.NoError(t, err)
	assert.Contains(t, a.Name, "Widget ")
}

// ──────────────────────────────────────────────────────────────────────────────
// Rechazos sin efectos
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateAssembly_StockInsuficienteNoModificaNada(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 6)
	l.setLot(itemB, vendorW, 2) // faltan 1 de Parte B
	uc := newCreateUC(l, nil, nil)

	_, err := uc.CreateAssembly(context.Background(), widgetInput(3, vendorV, vendorW))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "Parte B")
	assert.Contains(t, err.Error(), vendorW)
	assert.Contains(t, err.Error(), "3")

	// Parte A se descontó dentro de la tx y debe quedar intacta tras el rollback
	assert.True(t, l.lot(itemA, vendorV).Equal(d(6)))
	assert.True(t, l.stock(itemA).Equal(d(6)))
	assert.True(t, l.lot(itemB, vendorW).Equal(d(2)))
	assert.True(t, l.stock(itemWidget).Equal(d(0)))
	assert.Equal(t, 0, l.assemblyCount())
	assert.Empty(t, l.activityEntries())
}

func TestCreateAssembly_LimiteInferiorRechazado(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 5) // 5 < 6
	l.setLot(itemB, vendorV, 10)
	uc := newCreateUC(l, nil, nil)

	_, err := uc.CreateAssembly(context.Background(), widgetInput(3, vendorV, vendorV))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "Parte A")
	assert.True(t, l.lot(itemA, vendorV).Equal(d(5)))
}

func TestCreateAssembly_FuenteFaltante(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 10)
	uc := newCreateUC(l, nil, nil)

	in := widgetInput(1, vendorV, "")
	delete(in.Sources, itemB)
	_, err := uc.CreateAssembly(context.Background(), in)
	assert.True(t, errors.Is(err, domain.ErrMissingSource))
	assert.Contains(t, err.Error(), "Parte B")
	assert.True(t, l.lot(itemA, vendorV).Equal(d(10)))
}

func TestCreateAssembly_CantidadInvalida(t *testing.T) {
	l := widgetLedger()
	uc := newCreateUC(l, nil, nil)

	for _, q := range []int{0, -2} {
		_, err := uc.CreateAssembly(context.Background(), widgetInput(q, vendorV, vendorV))
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "cantidad %d", q)
	}
}

func TestCreateAssembly_CantidadExcesivaEsInvalida(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 10)
	l.setLot(itemB, vendorV, 10)
	uc := newCreateUC(l, nil, nil)

	for _, q := range []int{domainassembly.MaxAssemblyUnits + 1, 1 << 50} {
		var err error
		require.NotPanics(t, func() {
			_, err = uc.CreateAssembly(context.Background(), widgetInput(q, vendorV, vendorV))
		})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "cantidad %d", q)
	}
	assert.True(t, l.lot(itemA, vendorV).Equal(d(10)))
	assert.True(t, l.stock(itemWidget).Equal(d(0)))
	assert.Equal(t, 0, l.assemblyCount())
}

func TestCreateAssembly_BOMInexistente(t *testing.T) {
	uc := newCreateUC(widgetLedger(), nil, nil)
	in := widgetInput(1, vendorV, vendorV)
	in.BOMID = "no-existe"

	_, err := uc.CreateAssembly(context.Background(), in)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreateAssembly_BOMAutorreferenciada(t *testing.T) {
	l := widgetLedger()
	l.boms[bomWidget].Items = append(l.boms[bomWidget].Items, entity.BOMItem{
		ComponentItemID: itemWidget, ComponentName: "Widget", QuantityPerUnit: d(1),
	})
	uc := newCreateUC(l, nil, nil)

	in := widgetInput(1, vendorV, vendorV)
	in.Sources[itemWidget] = ""
	_, err := uc.CreateAssembly(context.Background(), in)
	assert.True(t, errors.Is(err, domain.ErrSelfReferencingBOM))
}

func TestCreateAssembly_ErrorAMitadDeTransaccionHaceRollback(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 10)
	l.setLot(itemB, vendorV, 10)
	l.failUsage = true
	uc := newCreateUC(l, nil, nil)

	_, err := uc.CreateAssembly(context.Background(), widgetInput(2, vendorV, vendorV))
	require.Error(t, err)

	assert.True(t, l.lot(itemA, vendorV).Equal(d(10)))
	assert.True(t, l.lot(itemB, vendorV).Equal(d(10)))
	assert.True(t, l.stock(itemA).Equal(d(10)))
	assert.True(t, l.stock(itemWidget).Equal(d(0)))
	assert.Equal(t, 0, l.assemblyCount())
}

// ──────────────────────────────────────────────────────────────────────────────
// Orden de compra
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateAssembly_OrdenDeCompraCerrada(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 10)
	l.setLot(itemB, vendorV, 10)
	l.pos["PO-1"] = &entity.PurchaseOrder{ID: "po1", PONumber: "PO-1", Status: entity.POStatusClosed}
	uc := newCreateUC(l, nil, nil)

	in := widgetInput(1, vendorV, vendorV)
	in.PONumber = "PO-1"
	_, err := uc.CreateAssembly(context.Background(), in)
	assert.True(t, errors.Is(err, domain.ErrPurchaseOrderClosed))
}

func TestCreateAssembly_OrdenDeCompraAbiertaSeGuarda(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 10)
	l.setLot(itemB, vendorV, 10)
	l.pos["PO-2"] = &entity.PurchaseOrder{ID: "po2", PONumber: "PO-2", Status: entity.POStatusOpen}
	uc := newCreateUC(l, nil, nil)

	in := widgetInput(1, vendorV, vendorV)
	in.PONumber = "PO-2"
	a, err := uc.CreateAssembly(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "PO-2", a.PONumber)
}

func TestCreateAssembly_OrdenDeCompraInexistente(t *testing.T) {
	l := widgetLedger()
	uc := newCreateUC(l, nil, nil)

	in := widgetInput(1, vendorV, vendorV)
	in.PONumber = "PO-404"
	_, err := uc.CreateAssembly(context.Background(), in)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateAssembly_ClaveDeIdempotenciaRepetida(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 20)
	l.setLot(itemB, vendorV, 20)
	idem := newMemIdempotency()
	uc := newCreateUC(l, idem, nil)

	in := widgetInput(1, vendorV, vendorV)
	in.IdempotencyKey = "req-1"
	_, err := uc.CreateAssembly(context.Background(), in)
	require.NoError(t, err)

	_, err = uc.CreateAssembly(context.Background(), in)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assert.Equal(t, 1, l.assemblyCount())
	assert.True(t, l.lot(itemA, vendorV).Equal(d(18)))
}

func TestCreateAssembly_FalloLiberaClaveDeIdempotencia(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 1)
	l.setLot(itemB, vendorV, 20)
	idem := newMemIdempotency()
	uc := newCreateUC(l, idem, nil)

	in := widgetInput(1, vendorV, vendorV)
	in.IdempotencyKey = "req-2"
	_, err := uc.CreateAssembly(context.Background(), in)
	require.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, []string{"req-2"}, idem.released)

	// Repuesto el stock, el mismo request puede reintentarse
	l.setLot(itemA, vendorV, 2)
	_, err = uc.CreateAssembly(context.Background(), in)
	assert.NoError(t, err)
}

func TestCreateAssembly_MetricasPorResultado(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 2)
	l.setLot(itemB, vendorV, 1)
	m := &recordedMetrics{}
	uc := newCreateUC(l, nil, m)

	_, err := uc.CreateAssembly(context.Background(), widgetInput(1, vendorV, vendorV))
	require.NoError(t, err)
	_, _ = uc.CreateAssembly(context.Background(), widgetInput(1, vendorV, vendorV))
	_, _ = uc.CreateAssembly(context.Background(), widgetInput(0, vendorV, vendorV))

	assert.Equal(t, []string{assembly.OutcomeOK, assembly.OutcomeInsufficientStock, assembly.OutcomeValidation}, m.creates)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateAssembly_ConcurrentesSoloUnoGana(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, vendorV, 2) // alcanza para una sola unidad
	l.setLot(itemB, vendorV, 10)
	uc := newCreateUC(l, nil, nil)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.CreateAssembly(context.Background(), widgetInput(1, vendorV, vendorV))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	}
	assert.Equal(t, 1, ok)
	assert.True(t, l.lot(itemA, vendorV).Equal(d(0)))
	assert.True(t, l.stock(itemWidget).Equal(d(1)))
	assert.Equal(t, 1, l.assemblyCount())
}

func TestCreateAssembly_BloqueaArticulosEnOrdenAscendente(t *testing.T) {
	l := widgetLedger()
	items := l.boms[bomWidget].Items
	l.boms[bomWidget].Items = []entity.BOMItem{items[1], items[0]} // Parte B antes que Parte A
	l.setLot(itemA, vendorV, 4)
	l.setLot(itemB, vendorW, 2)
	uc := newCreateUC(l, nil, nil)
	reverse := newReverseUC(l, nil)

	a, err := uc.CreateAssembly(context.Background(), widgetInput(2, vendorV, vendorW))
	require.NoError(t, err)
	want := []string{itemA, itemB, itemWidget}
	assert.Equal(t, want, l.lockOrder())

	require.NoError(t, reverse.ReverseAssembly(context.Background(), a.ID, testUser))
	assert.Equal(t, want, l.lockOrder())
}

// ──────────────────────────────────────────────────────────────────────────────
// Adaptación desde el body HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateAssemblyFromRequest_UsuarioDistintoAlToken(t *testing.T) {
	uc := newCreateUC(widgetLedger(), nil, nil)

	_, err := uc.CreateAssemblyFromRequest(context.Background(), "token-user", "", dto.CreateAssemblyRequest{
		BOMID: bomWidget, Quantity: 1, UserID: "otro",
	})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCreateAssemblyFromRequest_FuenteInternaYUsuarioDelToken(t *testing.T) {
	l := widgetLedger()
	l.setLot(itemA, "", 4)
	l.setLot(itemB, vendorW, 2)
	uc := newCreateUC(l, nil, nil)

	w := vendorW
	po := "  "
	a, err := uc.CreateAssemblyFromRequest(context.Background(), "token-user", "", dto.CreateAssemblyRequest{
		BOMID:        bomWidget,
		AssemblyName: "  Corrida 7 ",
		Quantity:     2,
		ComponentSources: []dto.ComponentSourceRequest{
			{ComponentID: itemA, VendorID: nil},
			{ComponentID: itemB, VendorID: &w},
		},
		PONumber: &po,
	})
	require.NoError(t, err)
	assert.Equal(t, "token-user", a.CreatedBy)
	assert.Equal(t, "Corrida 7", a.Name)
	assert.Empty(t, a.PONumber)
	assert.True(t, l.lot(itemA, "").Equal(d(0)))
	assert.True(t, l.lot(itemB, vendorW).Equal(d(0)))
}

func TestCreateAssemblyFromRequest_ComponenteDuplicado(t *testing.T) {
	uc := newCreateUC(widgetLedger(), nil, nil)

	v := vendorV
	_, err := uc.CreateAssemblyFromRequest(context.Background(), testUser, "", dto.CreateAssemblyRequest{
		BOMID: bomWidget, Quantity: 1,
		ComponentSources: []dto.ComponentSourceRequest{
			{ComponentID: itemA, VendorID: &v},
			{ComponentID: itemA, VendorID: nil},
		},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
