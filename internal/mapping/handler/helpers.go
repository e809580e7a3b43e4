package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"sku-mapper/internal/mapping/model"
	"sku-mapper/internal/mapping/session"
	"sku-mapper/internal/utils"
)

// колонки, дописываемые к обработанным продажам
var extraColumns = []string{"MSKU", "MatchMethod", "MatchScore"}

// Совместимость с потребителями прежних выгрузок: неразрешённые записи
// помечаются литералом Unmapped в колонке MSKU.
const unmappedSentinel = "Unmapped"

var rxHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normHeaderKey — нижний регистр, служебные символы → пробел, схлопывание.
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = rxHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// findColumn — точное совпадение нормализованного имени, затем contains.
func findColumn(cols []string, want string) string {
	nWant := normHeaderKey(want)
	for _, c := range cols {
		if normHeaderKey(c) == nWant {
			return c
		}
	}
	for _, c := range cols {
		if strings.Contains(normHeaderKey(c), nWant) {
			return c
		}
	}
	return ""
}

// findSKUColumn — первая колонка, имя которой содержит "sku".
func findSKUColumn(cols []string) string {
	for _, c := range cols {
		if strings.Contains(strings.ToLower(c), "sku") {
			return c
		}
	}
	return ""
}

// mergedRows — строки продаж с дописанными колонками результата.
func mergedRows(sales *session.Table, results []model.ResolutionResult, limit int) []map[string]string {
	n := len(sales.Rows)
	if n > len(results) {
		n = len(results)
	}
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]map[string]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, mergedRow(sales.Rows[i], results[i]))
	}
	return out
}

func mergedRow(rec map[string]string, res model.ResolutionResult) map[string]string {
	m := make(map[string]string, len(rec)+len(extraColumns))
	for k, v := range rec {
		m[k] = v
	}
	m["MSKU"] = canonicalOrSentinel(res)
	m["MatchMethod"] = string(res.Kind)
	m["MatchScore"] = scoreString(res.Score)
	return m
}

func exportRow(cols []string, rec map[string]string, res model.ResolutionResult) []string {
	out := make([]string, 0, len(cols)+len(extraColumns))
	for _, c := range cols {
		out = append(out, rec[c])
	}
	return append(out, canonicalOrSentinel(res), string(res.Kind), scoreString(res.Score))
}

func canonicalOrSentinel(res model.ResolutionResult) string {
	if res.Kind == model.MatchUnresolved {
		return unmappedSentinel
	}
	return res.CanonicalID
}

func scoreString(s *int) string {
	if s == nil {
		return ""
	}
	return strconv.Itoa(*s)
}

// totalQuantity — сумма по первой количественной колонке, если она есть.
func totalQuantity(sales *session.Table) (float64, bool) {
	if sales == nil {
		return 0, false
	}
	col := findColumn(sales.Columns, "quantity")
	if col == "" {
		col = findColumn(sales.Columns, "qty")
	}
	if col == "" {
		return 0, false
	}
	sum := 0.0
	for _, rec := range sales.Rows {
		if v, ok := utils.ParseFloatLoose(rec[col]); ok {
			sum += v
		}
	}
	return sum, true
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func toBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
