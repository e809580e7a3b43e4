package service

import (
	"sort"
	"sync"

	"sku-mapper/internal/mapping/model"
)

// Resolver — точный O(1) поиск по ключу, затем fuzzy-перебор кандидатов.
// Индекс неизменяем, поэтому один Resolver безопасен для параллельных вызовов.
type Resolver struct {
	idx *AliasIndex
	sc  Scorer
}

func NewResolver(idx *AliasIndex, sc Scorer) *Resolver {
	if sc == nil {
		sc = RatioScorer{}
	}
	return &Resolver{idx: idx, sc: sc}
}

func (r *Resolver) Index() *AliasIndex { return r.idx }

// ResolveOne никогда не возвращает ошибку: все аномалии данных деградируют
// в unresolved. Пустой вход — unresolved без балла.
func (r *Resolver) ResolveOne(raw string) model.ResolutionResult {
	res := model.ResolutionResult{InputRaw: raw, Kind: model.MatchUnresolved}

	key, err := Normalize(raw, r.idx.opt)
	if err != nil {
		return res
	}

	// (1) точное совпадение нормализованного ключа
	if id, ok := r.idx.lookup(key); ok {
		s := 100
		return model.ResolutionResult{InputRaw: raw, CanonicalID: id, Kind: model.MatchExact, Score: &s}
	}

	// (2) fuzzy по всем известным ключам; пустой индекс — всегда unresolved
	if r.idx.Len() == 0 {
		return res
	}
	best := -1
	bestKey := ""
	for _, cand := range r.idx.candidates(key) {
		// строгое > сохраняет тай-брейк по порядку первой вставки
		if s := r.sc.Score(key, cand); s > best {
			best = s
			bestKey = cand
		}
	}
	if best < 0 {
		return res
	}
	if best >= r.idx.opt.Threshold {
		id, _ := r.idx.lookup(bestKey)
		return model.ResolutionResult{InputRaw: raw, CanonicalID: id, Kind: model.MatchFuzzy, Score: &best}
	}

	// недобравший балл сохраняем для диагностики
	res.Score = &best
	return res
}

// ResolveBatch — независимые resolve по общему индексу; порядок результатов
// равен порядку входа. workers <= 1 — последовательный проход.
func (r *Resolver) ResolveBatch(raws []string, workers int) []model.ResolutionResult {
	out := make([]model.ResolutionResult, len(raws))
	if workers <= 1 || len(raws) < 2 {
		for i, raw := range raws {
			out[i] = r.ResolveOne(raw)
		}
		return out
	}
	if workers > len(raws) {
		workers = len(raws)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = r.ResolveOne(raws[i])
			}
		}()
	}
	for i := range raws {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

// Summarize — чистая агрегация серии результатов; инвариантна к перестановке
// входа. topN <= 0 — дефолт.
func Summarize(results []model.ResolutionResult, topN int) model.BatchReport {
	if topN <= 0 {
		topN = model.DefaultTopN
	}

	counts := make(map[string]int)
	unresolved := make(map[string]struct{})
	matched := 0
	for _, res := range results {
		if res.Kind == model.MatchUnresolved {
			unresolved[res.InputRaw] = struct{}{}
			continue
		}
		matched++
		counts[res.CanonicalID]++
	}

	total := len(results)
	rate := 0.0
	if total > 0 {
		rate = float64(matched) / float64(total) * 100
	}

	ids := make([]string, 0, len(unresolved))
	for id := range unresolved {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	top := make([]model.CanonicalCount, 0, len(counts))
	for id, n := range counts {
		top = append(top, model.CanonicalCount{CanonicalID: id, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].CanonicalID < top[j].CanonicalID
	})
	if len(top) > topN {
		top = top[:topN]
	}

	return model.BatchReport{
		Total:         total,
		Matched:       matched,
		MappingRate:   rate,
		UnresolvedRaw: ids,
		TopCanonical:  top,
	}
}
