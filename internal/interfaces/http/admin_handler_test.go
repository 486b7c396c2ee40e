package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/application/scan"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/entity"
	apphttp "github.com/oleg-creator-arch/tg-bot-greenleaf/internal/interfaces/http"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/config"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles mínimos para armar un Scanner real que termina al instante
// (el primer batch viene vacío).
// ──────────────────────────────────────────────────────────────────────────────

type emptyClient struct {
	block chan struct{} // si no es nil, el catálogo bloquea hasta cerrarlo
}

func (c emptyClient) FetchCatalogBatch(context.Context, []int64) []scan.CatalogItem {
	if c.block != nil {
		<-c.block
	}
	return nil
}

func (emptyClient) FetchAvailability(context.Context, int, []int64, []int64) ([]int, []int) {
	return nil, nil
}

type noopNotifier struct{}

func (noopNotifier) Broadcast(context.Context, scan.RestockEvent) {}

type stubProducts struct{ count int64 }

func (stubProducts) GetByExternalID(int64) (*entity.Product, error) { return nil, nil }
func (stubProducts) Upsert(*entity.Product) error                   { return nil }
func (s stubProducts) Count() (int64, error)                        { return s.count, nil }

type stubStocks struct{}

func (stubStocks) Get(int64, string) (*entity.StockRecord, error) { return nil, nil }
func (stubStocks) Upsert(*entity.StockRecord) error               { return nil }

type stubSubscribers struct{ count int64 }

func (stubSubscribers) Add(int64) error                        { return nil }
func (stubSubscribers) Remove(int64) error                     { return nil }
func (stubSubscribers) ListAll() ([]*entity.Subscriber, error) { return nil, nil }
func (s stubSubscribers) Count() (int64, error)                { return s.count, nil }

func buildTestApp(client scan.AvailabilityClient) (*fiber.App, *scan.Scanner) {
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	warehouses := []config.Warehouse{{ID: "almaty", DisplayName: "Almaty", SourceAccountID: 715}}
	detector := scan.NewDetector(stubProducts{}, stubStocks{}, warehouses, log)
	scanner := scan.NewScanner(
		client, detector, noopNotifier{}, warehouses,
		config.ScanConfig{BatchSize: 200, Interval: time.Minute}, log,
	)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AppName:     "tg-bot-greenleaf",
		Scanner:     scanner,
		Products:    stubProducts{count: 12},
		Subscribers: stubSubscribers{count: 4},
		Log:         log,
	})
	return app, scanner
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	app, _ := buildTestApp(emptyClient{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeJSON(t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestTriggerScan_Lanzado(t *testing.T) {
	app, scanner := buildTestApp(emptyClient{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/scan", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	// El escaneo corre en segundo plano y con el cliente vacío termina enseguida.
	require.Eventually(t, func() bool {
		return !scanner.Running() && !scanner.LastScanAt().IsZero()
	}, time.Second, time.Millisecond*5)
}

func TestTriggerScan_ConflictoSiYaCorre(t *testing.T) {
	block := make(chan struct{})
	app, scanner := buildTestApp(emptyClient{block: block})

	// Escaneo en curso: el cliente bloquea dentro de Run hasta liberar el canal.
	go func() { _ = scanner.Run(context.Background()) }()
	require.Eventually(t, scanner.Running, time.Second, time.Millisecond)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/scan", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(block)
	require.Eventually(t, func() bool { return !scanner.Running() }, time.Second, time.Millisecond)
}

func TestStats(t *testing.T) {
	app, _ := buildTestApp(emptyClient{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeJSON(t, resp)
	assert.EqualValues(t, 12, body["products"])
	assert.EqualValues(t, 4, body["subscribers"])
	assert.Equal(t, false, body["scan_running"])
}
