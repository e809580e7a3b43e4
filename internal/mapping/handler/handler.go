package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	excelize "github.com/xuri/excelize/v2"

	"sku-mapper/internal/config"
	"sku-mapper/internal/fileio"
	"sku-mapper/internal/mapping/model"
	"sku-mapper/internal/mapping/service"
	"sku-mapper/internal/mapping/session"
	"sku-mapper/internal/middleware"
)

// Handlers — HTTP-слой поверх сессии: загрузка маппинга и продаж,
// прогон резолвинга, аналитика, превью и экспорт.
type Handlers struct {
	cfg  config.Config
	base zerolog.Logger
	sess *session.Session
}

func New(cfg config.Config, logger zerolog.Logger) *Handlers {
	return &Handlers{cfg: cfg, base: logger, sess: session.New()}
}

func (h *Handlers) log(r *http.Request) zerolog.Logger {
	if rid := middleware.GetRequestID(r); rid != "" {
		return h.base.With().Str("req_id", rid).Logger()
	}
	return h.base
}

// UploadMapping принимает таблицу SKU→MSKU и строит новый индекс.
// Индекс подменяется атомарно: начатые resolve доработают по старому снимку.
func (h *Handlers) UploadMapping(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	start := time.Now()

	cols, rows, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	skuCol := findColumn(cols, "SKU")
	mskuCol := findColumn(cols, "MSKU")
	if skuCol == "" || mskuCol == "" {
		writeErr(w, http.StatusBadRequest, "mapping file must contain columns: SKU, MSKU")
		return
	}

	entries := make([]model.AliasEntry, 0, len(rows))
	for _, rec := range rows {
		entries = append(entries, model.AliasEntry{RawAlias: rec[skuCol], CanonicalID: rec[mskuCol]})
	}

	opt := model.Options{
		Threshold:      atoi(r.FormValue("threshold"), h.cfg.FuzzyThreshold),
		TopN:           h.cfg.TopN,
		CollapseSpaces: toBool(r.FormValue("collapse_spaces"), false),
		StripPunct:     toBool(r.FormValue("strip_punct"), false),
		Prefilter:      toBool(r.FormValue("prefilter"), false),
	}
	idx, st := service.BuildIndex(entries, opt)
	if st.Skipped > 0 || st.Overwritten > 0 {
		// сигнал качества данных; на семантику резолвинга не влияет
		log.Warn().
			Int("skipped", st.Skipped).
			Int("overwritten", st.Overwritten).
			Msg("mapping data quality")
	}

	h.sess.SetMapping(&session.Table{Columns: cols, Rows: rows}, service.NewResolver(idx, nil))

	log.Info().
		Int("entries", st.Entries).
		Int("indexed", st.Indexed).
		Dur("elapsed", time.Since(start)).
		Msg("mapping uploaded")

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "mapping file uploaded successfully",
		"records": len(rows),
		"columns": cols,
		"stats":   st,
	})
}

func (h *Handlers) UploadSales(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)

	cols, rows, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	h.sess.SetSales(&session.Table{Columns: cols, Rows: rows})

	log.Info().Int("records", len(rows)).Msg("sales uploaded")
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "sales file uploaded successfully",
		"records": len(rows),
		"columns": cols,
	})
}

// Process прогоняет каждую строку продаж через резолвер и считает агрегат.
func (h *Handlers) Process(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	start := time.Now()

	resv := h.sess.Resolver()
	sales := h.sess.Sales()
	if resv == nil || sales == nil {
		writeErr(w, http.StatusBadRequest, "please upload both mapping and sales files first")
		return
	}

	skuCol := findSKUColumn(sales.Columns)
	if skuCol == "" {
		writeErr(w, http.StatusBadRequest, "no SKU column found in sales data")
		return
	}

	raws := make([]string, len(sales.Rows))
	for i, rec := range sales.Rows {
		raws[i] = rec[skuCol]
	}

	workers := h.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := resv.ResolveBatch(raws, workers)
	report := service.Summarize(results, h.cfg.TopN)
	h.sess.SetProcessed(skuCol, results, &report)

	log.Info().
		Int("total", report.Total).
		Int("matched", report.Matched).
		Float64("rate", report.MappingRate).
		Dur("elapsed", time.Since(start)).
		Msg("process done")

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "mapping processed successfully",
		"skuColumn": skuCol,
		"stats":     report,
		"preview":   mergedRows(sales, results, 10),
	})
}

func (h *Handlers) Analytics(w http.ResponseWriter, r *http.Request) {
	skuCol, results, report := h.sess.Processed()
	if report == nil {
		writeErr(w, http.StatusBadRequest, "no processed data available")
		return
	}

	unique := make(map[string]struct{})
	for _, res := range results {
		if res.Kind != model.MatchUnresolved {
			unique[res.CanonicalID] = struct{}{}
		}
	}

	out := map[string]any{
		"skuColumn":      skuCol,
		"totalOrders":    report.Total,
		"uniqueProducts": len(unique),
		"mappingRate":    report.MappingRate,
		"topProducts":    report.TopCanonical,
		"unmappedCount":  len(report.UnresolvedRaw),
		"unmappedSkus":   report.UnresolvedRaw,
	}
	if qty, ok := totalQuantity(h.sess.Sales()); ok {
		out["totalQuantity"] = qty
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	const limit = 20
	switch r.URL.Query().Get("type") {
	case "mapping":
		h.tablePreview(w, h.sess.Mapping(), limit)
	case "processed":
		sales, results, _ := h.sess.Snapshot()
		if sales == nil || results == nil {
			writeErr(w, http.StatusBadRequest, "no data available")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"columns":   append(append([]string{}, sales.Columns...), extraColumns...),
			"preview":   mergedRows(sales, results, limit),
			"totalRows": len(sales.Rows),
		})
	default: // sales
		h.tablePreview(w, h.sess.Sales(), limit)
	}
}

func (h *Handlers) tablePreview(w http.ResponseWriter, t *session.Table, limit int) {
	if t == nil {
		writeErr(w, http.StatusBadRequest, "no data available")
		return
	}
	rows := t.Rows
	if len(rows) > limit {
		rows = rows[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"columns":   t.Columns,
		"preview":   rows,
		"totalRows": len(t.Rows),
	})
}

// Export отдаёт обработанные продажи (исходные колонки + MSKU/метод/балл)
// файлом: csv или xlsx.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)

	var req struct {
		Format string `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Format = "csv"
	}

	sales, results, _ := h.sess.Snapshot()
	if sales == nil || results == nil {
		writeErr(w, http.StatusBadRequest, "no processed data to export")
		return
	}

	headers := append(append([]string{}, sales.Columns...), extraColumns...)
	stamp := time.Now().Format("20060102_150405")

	// общая длина — на случай, если результаты считались по прежней таблице
	n := len(sales.Rows)
	if len(results) < n {
		n = len(results)
	}

	switch req.Format {
	case "", "csv":
		var buf bytes.Buffer
		cw := csv.NewWriter(&buf)
		_ = cw.Write(headers)
		for i := 0; i < n; i++ {
			_ = cw.Write(exportRow(sales.Columns, sales.Rows[i], results[i]))
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			log.Error().Err(err).Msg("export csv")
			writeErr(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="processed_sales_%s.csv"`, stamp))
		_, _ = w.Write(buf.Bytes())

	case "xlsx", "excel":
		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		cell, _ := excelize.CoordinatesToCellName(1, 1)
		_ = f.SetSheetRow(sheet, cell, &headers)
		for i := 0; i < n; i++ {
			row := exportRow(sales.Columns, sales.Rows[i], results[i])
			cell, _ = excelize.CoordinatesToCellName(1, i+2)
			_ = f.SetSheetRow(sheet, cell, &row)
		}
		w.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="processed_sales_%s.xlsx"`, stamp))
		if err := f.Write(w); err != nil {
			log.Error().Err(err).Msg("export xlsx")
		}

	default:
		writeErr(w, http.StatusBadRequest, "unsupported format")
	}
}

// readUpload — общий разбор multipart-загрузки с полем file.
func (h *Handlers) readUpload(w http.ResponseWriter, r *http.Request) ([]string, []map[string]string, bool) {
	defer r.Body.Close()
	if err := r.ParseMultipartForm(int64(h.cfg.MaxUploadMB) << 20); err != nil {
		writeErr(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
		return nil, nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "no file provided")
		return nil, nil, false
	}
	defer file.Close()

	cols, rows, err := fileio.ReadAnyMaps(file, header.Filename, atoi(r.FormValue("header_row"), 1))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "failed to read file: "+err.Error())
		return nil, nil, false
	}
	if len(rows) == 0 {
		writeErr(w, http.StatusBadRequest, "file contains no data rows")
		return nil, nil, false
	}
	return cols, rows, true
}
