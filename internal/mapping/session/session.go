// Явное владение состоянием обработки вместо process-wide словарей:
// сессия держит текущий резолвер, сырые данные продаж и результаты.
package session

import (
	"sync"
	"sync/atomic"

	"sku-mapper/internal/mapping/model"
	"sku-mapper/internal/mapping/service"
)

type Table struct {
	Columns []string
	Rows    []map[string]string
}

type Session struct {
	resolver atomic.Pointer[service.Resolver]

	mu        sync.Mutex
	mapping   *Table
	sales     *Table
	skuColumn string
	processed []model.ResolutionResult
	report    *model.BatchReport
}

func New() *Session { return &Session{} }

// SetMapping атомарно подменяет резолвер: resolve, начатые по старому
// индексу, дорабатывают по старому снимку. Накопленные результаты
// сбрасываются — они считались против прежнего индекса.
func (s *Session) SetMapping(t *Table, r *service.Resolver) {
	s.resolver.Store(r)
	s.mu.Lock()
	s.mapping = t
	s.processed = nil
	s.report = nil
	s.mu.Unlock()
}

func (s *Session) Resolver() *service.Resolver { return s.resolver.Load() }

func (s *Session) SetSales(t *Table) {
	s.mu.Lock()
	s.sales = t
	s.skuColumn = ""
	s.processed = nil
	s.report = nil
	s.mu.Unlock()
}

func (s *Session) Mapping() *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapping
}

func (s *Session) Sales() *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sales
}

func (s *Session) SetProcessed(skuColumn string, results []model.ResolutionResult, report *model.BatchReport) {
	s.mu.Lock()
	s.skuColumn = skuColumn
	s.processed = results
	s.report = report
	s.mu.Unlock()
}

func (s *Session) Processed() (string, []model.ResolutionResult, *model.BatchReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skuColumn, s.processed, s.report
}

// Snapshot — продажи и результаты под одним захватом мьютекса.
// Раздельные геттеры могут увидеть таблицу одной загрузки и результаты
// другой; потребителям пары нужен согласованный снимок.
func (s *Session) Snapshot() (*Table, []model.ResolutionResult, *model.BatchReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sales, s.processed, s.report
}
