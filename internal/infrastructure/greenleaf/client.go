package greenleaf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/application/scan"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/config"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/logger"
)

var _ scan.AvailabilityClient = (*Client)(nil)

// Client adaptador HTTP del API de GreenLeaf (catálogo + disponibilidad).
// Todos los errores de red y de decodificación se loguean y se degradan a
// resultados vacíos: es el contrato del puerto, el caller no maneja errores
// de este límite. Ojo: un vacío puede significar tanto "fin del catálogo"
// como "upstream caído"; el error queda visible solo en los logs.
type Client struct {
	httpClient *http.Client
	cfg        config.GreenLeafConfig
	log        *logger.Logger
}

// NewClient construye el cliente con el timeout por llamada de la configuración.
func NewClient(cfg config.GreenLeafConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		log:        log,
	}
}

// ── Formas del wire ───────────────────────────────────────────────────────────

type shopGoodsItem struct {
	ID    int64 `json:"id"`
	Title struct {
		Ru string `json:"ru"`
	} `json:"title"`
	Price struct {
		Store struct {
			Kzt int64 `json:"kzt"`
		} `json:"store"`
	} `json:"price"`
	Path string `json:"path"`
	Name string `json:"name"`
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// FetchCatalogBatch consulta el catálogo por el conjunto de ids candidatos.
// El upstream devuelve null para los ids inexistentes; se filtran.
func (c *Client) FetchCatalogBatch(ctx context.Context, ids []int64) []scan.CatalogItem {
	var raw []*shopGoodsItem
	if err := c.post(ctx, c.cfg.ShopAPI, ids, &raw); err != nil {
		c.log.Error().Err(err).Msg("consultar catálogo")
		return nil
	}

	items := make([]scan.CatalogItem, 0, len(raw))
	for _, it := range raw {
		if it == nil {
			continue
		}
		items = append(items, scan.CatalogItem{
			ID:    it.ID,
			Name:  it.Title.Ru,
			Price: it.Price.Store.Kzt,
			Link:  it.Path + "/" + it.Name,
		})
	}
	return items
}

// FetchAvailability consulta los conteos origen/destinatario de un almacén.
// El cuerpo es [[cuentaOrigen, sourceIDs], [cuentaDestinatario, recipientIDs]]
// y la respuesta [conteosOrigen, conteosDestinatario], alineados por posición
// con los ids enviados (no por id de la respuesta).
func (c *Client) FetchAvailability(ctx context.Context, sourceAccountID int, sourceIDs, recipientIDs []int64) ([]int, []int) {
	body := []any{
		[]any{sourceAccountID, sourceIDs},
		[]any{c.cfg.RecipientAccountID, recipientIDs},
	}

	var raw [][]int
	if err := c.post(ctx, c.cfg.DeliveryAPI, body, &raw); err != nil {
		c.log.Error().Err(err).Int("source_account", sourceAccountID).Msg("consultar disponibilidad")
		return nil, nil
	}

	var source, recipient []int
	if len(raw) > 0 {
		source = raw[0]
	}
	if len(raw) > 1 {
		recipient = raw[1]
	}
	return source, recipient
}

// post serializa el body como JSON, ejecuta el POST con el contexto y
// decodifica la respuesta en out.
func (c *Client) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ejecutar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("status inesperado %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decodificar respuesta: %w", err)
	}
	return nil
}
