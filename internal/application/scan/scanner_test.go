package scan_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/application/scan"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/config"
)

// fakeClient devuelve batches programados por offset (el primer id de la
// ventana) y respuestas de disponibilidad fijas. El contador de consultas de
// disponibilidad va protegido: el escáner las emite en paralelo por almacén.
type fakeClient struct {
	batches      map[int64][]scan.CatalogItem
	source       []int
	recipient    []int
	catalogCalls int
	block        chan struct{} // si no es nil, la primera llamada al catálogo bloquea

	mu         sync.Mutex
	availCalls int
}

func (f *fakeClient) FetchCatalogBatch(_ context.Context, ids []int64) []scan.CatalogItem {
	f.catalogCalls++
	if f.block != nil {
		<-f.block
		f.block = nil
	}
	return f.batches[ids[0]]
}

func (f *fakeClient) FetchAvailability(_ context.Context, _ int, _, _ []int64) ([]int, []int) {
	f.mu.Lock()
	f.availCalls++
	f.mu.Unlock()
	return f.source, f.recipient
}

func (f *fakeClient) availabilityCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.availCalls
}

type captureNotifier struct {
	events []scan.RestockEvent
}

func (n *captureNotifier) Broadcast(_ context.Context, e scan.RestockEvent) {
	n.events = append(n.events, e)
}

func newTestScanner(client scan.AvailabilityClient, products *memProducts, stocks *memStocks, notifier scan.Notifier, batchSize int) *scan.Scanner {
	detector := scan.NewDetector(products, stocks, testWarehouses, testLogger())
	return scan.NewScanner(
		client, detector, notifier, testWarehouses,
		config.ScanConfig{BatchSize: batchSize, Interval: time.Minute},
		testLogger(),
	)
}

func TestScanner_TerminaConBatchVacio(t *testing.T) {
	client := &fakeClient{
		batches: map[int64][]scan.CatalogItem{
			0:   {{ID: 1, Name: "A"}},
			200: {{ID: 201, Name: "B"}},
			// offset 400: vacío -> fin del escaneo
		},
	}
	notifier := &captureNotifier{}
	s := newTestScanner(client, newMemProducts(), newMemStocks(), notifier, 200)

	err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, client.catalogCalls, "dos batches con datos más el batch vacío terminal")
	assert.Equal(t, 4, client.availabilityCalls(), "una consulta por almacén por batch no vacío")
	assert.Empty(t, notifier.events, "primer avistamiento de todo: sin notificaciones")
	assert.False(t, s.LastScanAt().IsZero())
}

func TestScanner_ErrorUpstreamDegradaABatchVacio(t *testing.T) {
	// El cliente degrada errores a vacío, así que para el escáner un fallo
	// upstream en el primer batch es indistinguible del fin del catálogo.
	client := &fakeClient{batches: map[int64][]scan.CatalogItem{}}
	s := newTestScanner(client, newMemProducts(), newMemStocks(), &captureNotifier{}, 200)

	err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, client.catalogCalls)
	assert.Zero(t, client.availabilityCalls())
}

func TestScanner_RellenaConCerosLasListasCortas(t *testing.T) {
	products := newMemProducts()
	stocks := newMemStocks()
	for _, id := range []int64{1, 2, 3} {
		seedProduct(products, id, "P")
		stocks.seed(id, "almaty", 0, 0)
		stocks.seed(id, "astana", 0, 0)
	}

	client := &fakeClient{
		batches: map[int64][]scan.CatalogItem{
			0: {{ID: 1, Name: "P"}, {ID: 2, Name: "P"}, {ID: 3, Name: "P"}},
		},
		source: []int{5}, // más corta que los 3 ids: 2 y 3 quedan en cero
	}
	notifier := &captureNotifier{}
	s := newTestScanner(client, products, stocks, notifier, 200)

	require.NoError(t, s.Run(context.Background()))

	// Solo el producto 1 subió (0 -> 5); en ambos almacenes (misma respuesta fija).
	require.Len(t, notifier.events, 2)
	for _, e := range notifier.events {
		assert.Equal(t, int64(1), e.ProductID)
		assert.Equal(t, 5, e.NewCount)
	}

	s2, err := stocks.Get(2, "almaty")
	require.NoError(t, err)
	assert.Zero(t, s2.SourceCount, "cola faltante de la respuesta se trata como cero")
}

func TestScanner_RechazaEjecucionConcurrente(t *testing.T) {
	client := &fakeClient{
		batches: map[int64][]scan.CatalogItem{},
		block:   make(chan struct{}),
	}
	s := newTestScanner(client, newMemProducts(), newMemStocks(), &captureNotifier{}, 200)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	// Esperar a que el primer escaneo esté dentro de Run.
	require.Eventually(t, s.Running, time.Second, time.Millisecond)

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrScanInProgress)

	close(client.block)
	require.NoError(t, <-done)
	assert.False(t, s.Running())
}

func TestScanner_AvanzaOffsetConBatchParcial(t *testing.T) {
	// Un batch con menos items que la ventana no debe repetir la misma ventana.
	client := &fakeClient{
		batches: map[int64][]scan.CatalogItem{
			0: {{ID: 7, Name: "único"}},
		},
	}
	s := newTestScanner(client, newMemProducts(), newMemStocks(), &captureNotifier{}, 200)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 2, client.catalogCalls, "offset avanza batchSize aunque el batch venga incompleto")
}
