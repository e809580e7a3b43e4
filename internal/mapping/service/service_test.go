package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"sku-mapper/internal/mapping/model"
)

// fixedScorer отдаёт один и тот же балл любой паре — для проверки порога
// и тай-брейка независимо от конкретной метрики.
type fixedScorer int

func (f fixedScorer) Score(a, b string) int { return int(f) }

func catalogResolver(t *testing.T) *Resolver {
	t.Helper()
	idx, _ := BuildIndex([]model.AliasEntry{
		{RawAlias: "sku001", CanonicalID: "MSKU-A"},
		{RawAlias: "sku002", CanonicalID: "MSKU-B"},
	}, model.DefaultOptions())
	return NewResolver(idx, nil)
}

func TestResolveExact(t *testing.T) {
	r := catalogResolver(t)
	res := r.ResolveOne("SKU001")
	require.Equal(t, model.MatchExact, res.Kind)
	require.Equal(t, "MSKU-A", res.CanonicalID)
	require.NotNil(t, res.Score)
	require.Equal(t, 100, *res.Score)
}

func TestResolveFuzzyTypo(t *testing.T) {
	// буква O вместо нуля
	r := catalogResolver(t)
	res := r.ResolveOne("sku0O1")
	require.Equal(t, model.MatchFuzzy, res.Kind)
	require.Equal(t, "MSKU-A", res.CanonicalID)
	require.NotNil(t, res.Score)
	require.GreaterOrEqual(t, *res.Score, 80)
	require.Less(t, *res.Score, 100)
}

func TestResolveUnresolvedKeepsScore(t *testing.T) {
	r := catalogResolver(t)
	res := r.ResolveOne("completely-different")
	require.Equal(t, model.MatchUnresolved, res.Kind)
	require.Empty(t, res.CanonicalID)
	require.NotNil(t, res.Score)
	require.Less(t, *res.Score, 80)
}

func TestResolveEmptyInput(t *testing.T) {
	r := catalogResolver(t)
	for _, raw := range []string{"", "   "} {
		res := r.ResolveOne(raw)
		require.Equal(t, model.MatchUnresolved, res.Kind)
		require.Nil(t, res.Score)
	}
}

func TestResolveEmptyIndex(t *testing.T) {
	idx, _ := BuildIndex(nil, model.DefaultOptions())
	r := NewResolver(idx, nil)
	res := r.ResolveOne("anything")
	require.Equal(t, model.MatchUnresolved, res.Kind)
	require.Nil(t, res.Score)
}

func TestResolveThresholdInclusive(t *testing.T) {
	idx, _ := BuildIndex([]model.AliasEntry{
		{RawAlias: "sku001", CanonicalID: "MSKU-A"},
	}, model.DefaultOptions())

	// 79 — мимо, балл сохраняется для диагностики
	res := NewResolver(idx, fixedScorer(79)).ResolveOne("nope")
	require.Equal(t, model.MatchUnresolved, res.Kind)
	require.NotNil(t, res.Score)
	require.Equal(t, 79, *res.Score)

	// ровно 80 — принимаем
	res = NewResolver(idx, fixedScorer(80)).ResolveOne("nope")
	require.Equal(t, model.MatchFuzzy, res.Kind)
	require.Equal(t, "MSKU-A", res.CanonicalID)
	require.Equal(t, 80, *res.Score)
}

func TestResolveExactBeatsFuzzy(t *testing.T) {
	idx, _ := BuildIndex([]model.AliasEntry{
		{RawAlias: "sku001", CanonicalID: "MSKU-A"},
		{RawAlias: "sku002", CanonicalID: "MSKU-B"},
	}, model.DefaultOptions())

	// даже если scorer даёт всем 100, точный ключ идёт exact-путём
	res := NewResolver(idx, fixedScorer(100)).ResolveOne("sku002")
	require.Equal(t, model.MatchExact, res.Kind)
	require.Equal(t, "MSKU-B", res.CanonicalID)
}

func TestResolveTieBreakFirstInsertion(t *testing.T) {
	idx, _ := BuildIndex([]model.AliasEntry{
		{RawAlias: "zzz9", CanonicalID: "FIRST"},
		{RawAlias: "aaa1", CanonicalID: "SECOND"},
	}, model.DefaultOptions())

	// все кандидаты с равным баллом: победитель — первый вставленный
	res := NewResolver(idx, fixedScorer(90)).ResolveOne("qqq")
	require.Equal(t, model.MatchFuzzy, res.Kind)
	require.Equal(t, "FIRST", res.CanonicalID)
}

func TestResolveNormalizedEquivalence(t *testing.T) {
	// одинаковый ключ → одинаковый результат
	r := catalogResolver(t)
	a := r.ResolveOne(" sku001")
	b := r.ResolveOne("SKU001  ")
	require.Equal(t, a.Kind, b.Kind)
	require.Equal(t, a.CanonicalID, b.CanonicalID)
}

func TestResolveBatchMatchesSequential(t *testing.T) {
	r := catalogResolver(t)
	raws := make([]string, 0, 120)
	for i := 0; i < 40; i++ {
		raws = append(raws, "SKU001", "sku0O2", "garbage-"+string(rune('a'+i%26)))
	}

	seq := r.ResolveBatch(raws, 1)
	par := r.ResolveBatch(raws, 8)
	require.Equal(t, seq, par)
}

func TestSummarizeEmpty(t *testing.T) {
	rep := Summarize(nil, 0)
	require.Equal(t, 0, rep.Total)
	require.Equal(t, 0, rep.Matched)
	require.Equal(t, 0.0, rep.MappingRate)
	require.Empty(t, rep.UnresolvedRaw)
	require.Empty(t, rep.TopCanonical)
}

func TestSummarizeCounts(t *testing.T) {
	score := 100
	results := make([]model.ResolutionResult, 0, 10)
	for i := 0; i < 7; i++ {
		results = append(results, model.ResolutionResult{
			InputRaw: "A", CanonicalID: "MSKU-A", Kind: model.MatchExact, Score: &score,
		})
	}
	f := 85
	results = append(results, model.ResolutionResult{
		InputRaw: "B", CanonicalID: "MSKU-B", Kind: model.MatchFuzzy, Score: &f,
	})
	results = append(results,
		model.ResolutionResult{InputRaw: "bad-1", Kind: model.MatchUnresolved},
		model.ResolutionResult{InputRaw: "bad-2", Kind: model.MatchUnresolved},
	)

	rep := Summarize(results, 10)
	require.Equal(t, 10, rep.Total)
	require.Equal(t, 8, rep.Matched)
	require.Equal(t, 80.0, rep.MappingRate)
	require.Equal(t, []string{"bad-1", "bad-2"}, rep.UnresolvedRaw)
	require.Equal(t, []model.CanonicalCount{
		{CanonicalID: "MSKU-A", Count: 7},
		{CanonicalID: "MSKU-B", Count: 1},
	}, rep.TopCanonical)
}

func TestSummarizeTopNTieAndTruncate(t *testing.T) {
	mk := func(id string, n int) []model.ResolutionResult {
		out := make([]model.ResolutionResult, n)
		for i := range out {
			out[i] = model.ResolutionResult{InputRaw: id, CanonicalID: id, Kind: model.MatchExact}
		}
		return out
	}
	var results []model.ResolutionResult
	results = append(results, mk("B", 3)...)
	results = append(results, mk("A", 3)...) // равный счёт: A раньше B по id
	results = append(results, mk("C", 5)...)

	rep := Summarize(results, 2)
	require.Equal(t, []model.CanonicalCount{
		{CanonicalID: "C", Count: 5},
		{CanonicalID: "A", Count: 3},
	}, rep.TopCanonical)
}

func TestSummarizePermutationInvariant(t *testing.T) {
	var results []model.ResolutionResult
	for i := 0; i < 30; i++ {
		kind := model.MatchExact
		id := "MSKU-A"
		if i%3 == 0 {
			kind = model.MatchUnresolved
			id = ""
		} else if i%3 == 1 {
			id = "MSKU-B"
		}
		results = append(results, model.ResolutionResult{
			InputRaw: "raw-" + string(rune('a'+i%7)), CanonicalID: id, Kind: kind,
		})
	}

	base := Summarize(results, 10)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5; i++ {
		shuffled := append([]model.ResolutionResult(nil), results...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		require.Equal(t, base, Summarize(shuffled, 10))
	}
}
