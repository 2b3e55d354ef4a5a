package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sheetpos/pos/internal/cart"
	"sheetpos/pos/internal/catalog"
	"sheetpos/pos/internal/client"
	"sheetpos/pos/internal/config"
	"sheetpos/pos/internal/domain"
	"sheetpos/pos/internal/metrics"
	"sheetpos/pos/internal/receipt"
	"sheetpos/pos/internal/sheet"
	"sheetpos/pos/internal/state"

	log "github.com/sirupsen/logrus"
)

// Service owns the loaded catalog and the operator's cart.
type Service struct {
	client     client.CatalogClient
	normalizer *catalog.Normalizer
	catalog    *catalog.Store
	cart       *cart.Cart
	sources    state.SourceStore
	renderer   *receipt.HTMLRenderer
	metrics    *metrics.Metrics
	config     config.CatalogConfig
	sourceKey  string

	// loads are serialized so a scheduled refresh never races a manual one
	loadMu sync.Mutex
	now    func() time.Time
}

func NewService(
	client client.CatalogClient,
	normalizer *catalog.Normalizer,
	catalogStore *catalog.Store,
	cart *cart.Cart,
	sources state.SourceStore,
	renderer *receipt.HTMLRenderer,
	m *metrics.Metrics,
	catalogConfig config.CatalogConfig,
	sourceKey string,
) *Service {
	return &Service{
		client:     client,
		normalizer: normalizer,
		catalog:    catalogStore,
		cart:       cart,
		sources:    sources,
		renderer:   renderer,
		metrics:    m,
		config:     catalogConfig,
		sourceKey:  sourceKey,
		now:        time.Now,
	}
}

// CatalogStatus describes the last successful import.
type CatalogStatus struct {
	Loaded   bool                     `json:"loaded"`
	Source   string                   `json:"source,omitempty"`
	LoadedAt *time.Time               `json:"loaded_at,omitempty"`
	Products int                      `json:"products"`
	RowCount int                      `json:"row_count"`
	Rejected int                      `json:"rejected"`
	Headers  []string                 `json:"headers,omitempty"`
	Columns  map[catalog.Field]string `json:"columns,omitempty"`
	Prices   catalog.PriceSummary     `json:"prices"`
}

// LoadFromURL downloads, parses and publishes a remote catalog. The URL is
// remembered only once the catalog was published.
func (s *Service) LoadFromURL(ctx context.Context, sourceURL string) (*CatalogStatus, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, domain.NewError(domain.KindInvalidSource, "Please enter an Excel file URL")
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	data, err := s.client.Download(ctx, sourceURL)
	if err != nil {
		s.metrics.CatalogLoadFailed(err)
		log.Errorf("❌ Failed to download catalog from %s: %v", sourceURL, err)
		return nil, err
	}

	status, err := s.ingest(sourceURL, data)
	if err != nil {
		return nil, err
	}

	if err := s.sources.Set(ctx, s.sourceKey, sourceURL); err != nil {
		log.Warnf("Failed to remember catalog source: %v", err)
	}
	return status, nil
}

// LoadFromFile publishes a catalog from uploaded workbook bytes.
func (s *Service) LoadFromFile(fileName string, data []byte) (*CatalogStatus, error) {
	if err := sheet.ValidateFileName(fileName); err != nil {
		s.metrics.CatalogLoadFailed(err)
		return nil, err
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	return s.ingest("file:"+fileName, data)
}

// Reload loads the remembered source again, or the default URL when nothing
// was remembered yet.
func (s *Service) Reload(ctx context.Context) (*CatalogStatus, error) {
	sourceURL, err := s.sources.Get(ctx, s.sourceKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog source: %w", err)
	}
	if strings.TrimSpace(sourceURL) == "" {
		sourceURL = s.config.DefaultURL
	}

	log.Infof("🔄 Reloading catalog from %s", sourceURL)
	return s.LoadFromURL(ctx, sourceURL)
}

// LoadOnStartup is the first load after boot. A remembered source matching a
// stale marker is discarded in favour of the default URL.
func (s *Service) LoadOnStartup(ctx context.Context) (*CatalogStatus, error) {
	sourceURL, err := state.ResolveSource(ctx, s.sources, s.sourceKey, s.config.DefaultURL, s.config.StaleMarkers)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog source: %w", err)
	}

	log.Infof("🚀 Loading catalog from %s", sourceURL)
	return s.LoadFromURL(ctx, sourceURL)
}

func (s *Service) ingest(source string, data []byte) (*CatalogStatus, error) {
	rows, err := sheet.ReadWorkbook(data)
	if err != nil {
		s.metrics.CatalogLoadFailed(err)
		log.Errorf("❌ Failed to read workbook from %s: %v", source, err)
		return nil, err
	}

	result, err := s.normalizer.Normalize(rows)
	if err != nil {
		s.metrics.CatalogLoadFailed(err)
		log.Errorf("❌ Failed to import catalog from %s: %v", source, err)
		return nil, err
	}

	snapshot := catalog.NewSnapshot(source, result, s.now())
	s.catalog.Replace(snapshot)
	s.metrics.CatalogLoaded(len(result.Products), result.Rejected)

	log.Infof("✅ Loaded %d products from %s (%d rows, %d rejected)",
		len(result.Products), source, result.RowCount, result.Rejected)
	return statusOf(snapshot), nil
}

func (s *Service) Status() *CatalogStatus {
	return statusOf(s.catalog.Current())
}

func statusOf(snapshot *catalog.Snapshot) *CatalogStatus {
	if snapshot == nil || snapshot.Result == nil {
		return &CatalogStatus{}
	}
	loadedAt := snapshot.LoadedAt
	return &CatalogStatus{
		Loaded:   true,
		Source:   snapshot.Source,
		LoadedAt: &loadedAt,
		Products: len(snapshot.Result.Products),
		RowCount: snapshot.Result.RowCount,
		Rejected: snapshot.Result.Rejected,
		Headers:  snapshot.Result.Headers,
		Columns:  snapshot.Result.Columns,
		Prices:   snapshot.Result.Prices,
	}
}

func (s *Service) Search(term string) []domain.Product {
	return s.catalog.Current().Search(term)
}

// ExportCatalog writes the normalized catalog back out as a workbook.
func (s *Service) ExportCatalog() ([]byte, error) {
	products := s.catalog.Current().Products()
	if len(products) == 0 {
		return nil, domain.NewError(domain.KindEmptyCatalog, "No catalog loaded")
	}

	rows := make([][]any, 0, len(products)+1)
	header := []any{"ID", "Name (English)", "Name (Urdu)", "Category", "Barcode", "Unit"}
	for _, tier := range domain.PriceTiers {
		header = append(header, tier.GetTierName())
	}
	header = append(header, "Stock")
	rows = append(rows, header)

	for _, p := range products {
		row := []any{p.ID, p.Name, p.NameLocalized, p.Category, p.Barcode, p.UnitLabel}
		for _, tier := range domain.PriceTiers {
			row = append(row, p.Price(tier))
		}
		row = append(row, p.Stock)
		rows = append(rows, row)
	}

	data, err := sheet.Encode(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to export catalog: %w", err)
	}
	return data, nil
}

// CartView is the cart as shown to the operator.
type CartView struct {
	Lines  []CartLineView `json:"lines"`
	Totals domain.Totals  `json:"totals"`
}

type CartLineView struct {
	domain.CartLine
	Index             int     `json:"index"`
	QuantityFormatted string  `json:"quantity_formatted"`
	Step              float64 `json:"step"`
	Total             float64 `json:"line_total"`
}
