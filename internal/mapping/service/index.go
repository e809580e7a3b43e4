package service

import (
	"sort"
	"strings"

	"sku-mapper/internal/mapping/model"
)

// AliasIndex — неизменяемая таблица нормализованный-ключ → канонический id.
// Строится один раз на загрузку маппинга; новая загрузка = новый индекс.
// Все ключи — выход Normalize, сырых строк здесь не бывает.
type AliasIndex struct {
	byKey map[string]string
	keys  []string       // порядок первой вставки — тай-брейк для fuzzy
	pos   map[string]int // ключ → позиция первой вставки
	inv   map[string]map[string]struct{} // trigram -> set(key), только при Prefilter
	opt   model.Options
}

// BuildStats — сигналы качества данных при построении; на семантику
// резолвинга не влияют, логирует их вызывающая сторона.
type BuildStats struct {
	Entries     int `json:"entries"`
	Indexed     int `json:"indexed"`
	Skipped     int `json:"skipped"`     // пустые/невалидные алиасы
	Overwritten int `json:"overwritten"` // дубликаты ключей (last-write-wins)
}

func BuildIndex(entries []model.AliasEntry, opt model.Options) (*AliasIndex, BuildStats) {
	if opt.Threshold <= 0 {
		opt.Threshold = model.DefaultThreshold
	}
	idx := &AliasIndex{
		byKey: make(map[string]string, len(entries)),
		keys:  make([]string, 0, len(entries)),
		pos:   make(map[string]int, len(entries)),
		opt:   opt,
	}
	if opt.Prefilter {
		idx.inv = make(map[string]map[string]struct{})
	}

	st := BuildStats{Entries: len(entries)}
	for _, e := range entries {
		// строка без любого из двух полей пропускается
		if strings.TrimSpace(e.CanonicalID) == "" {
			st.Skipped++
			continue
		}
		key, err := Normalize(e.RawAlias, opt)
		if err != nil {
			st.Skipped++
			continue
		}
		if _, dup := idx.byKey[key]; dup {
			// поздняя запись побеждает; позиция в keys остаётся первой
			st.Overwritten++
			idx.byKey[key] = e.CanonicalID
			continue
		}
		idx.byKey[key] = e.CanonicalID
		idx.pos[key] = len(idx.keys)
		idx.keys = append(idx.keys, key)

		if idx.inv != nil {
			for g := range trigramSet(key) {
				bucket, ok := idx.inv[g]
				if !ok {
					bucket = make(map[string]struct{})
					idx.inv[g] = bucket
				}
				bucket[key] = struct{}{}
			}
		}
	}
	st.Indexed = len(idx.keys)
	return idx, st
}

func (idx *AliasIndex) Len() int { return len(idx.keys) }

func (idx *AliasIndex) Options() model.Options { return idx.opt }

func (idx *AliasIndex) lookup(key string) (string, bool) {
	id, ok := idx.byKey[key]
	return id, ok
}

// candidates — ключи для fuzzy-перебора в порядке первой вставки.
// Без префильтра это весь индекс (эталонная семантика); с префильтром —
// только ключи, делящие хотя бы одну триграмму с запросом, в том же порядке.
func (idx *AliasIndex) candidates(key string) []string {
	if idx.inv == nil {
		return idx.keys
	}
	seen := make(map[string]struct{})
	for g := range trigramSet(key) {
		if bucket, ok := idx.inv[g]; ok {
			for k := range bucket {
				seen[k] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return idx.pos[out[i]] < idx.pos[out[j]] })
	return out
}

func trigramSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	if s == "" {
		return m
	}
	p := " " + s + " "
	r := []rune(p)
	if len(r) < 3 {
		m[p] = struct{}{}
		return m
	}
	for i := 0; i <= len(r)-3; i++ {
		m[string(r[i:i+3])] = struct{}{}
	}
	return m
}
