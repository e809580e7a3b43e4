package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sku-mapper/internal/mapping/model"
)

func TestBuildIndexLastWriteWins(t *testing.T) {
	idx, st := BuildIndex([]model.AliasEntry{
		{RawAlias: "X", CanonicalID: "A"},
		{RawAlias: "x ", CanonicalID: "B"}, // тот же нормализованный ключ
	}, model.DefaultOptions())

	require.Equal(t, 1, idx.Len())
	require.Equal(t, 1, st.Overwritten)
	id, ok := idx.lookup("X")
	require.True(t, ok)
	require.Equal(t, "B", id)
}

func TestBuildIndexSkipsInvalid(t *testing.T) {
	idx, st := BuildIndex([]model.AliasEntry{
		{RawAlias: "", CanonicalID: "A"},
		{RawAlias: "   ", CanonicalID: "B"},
		{RawAlias: "sku009", CanonicalID: " "}, // без канонического id тоже мимо
		{RawAlias: "sku001", CanonicalID: "MSKU-A"},
	}, model.DefaultOptions())

	require.Equal(t, 3, st.Skipped)
	require.Equal(t, 1, st.Indexed)
	require.Equal(t, 1, idx.Len())
}

func TestBuildIndexKeysAreNormalized(t *testing.T) {
	idx, _ := BuildIndex([]model.AliasEntry{
		{RawAlias: "  sku001 ", CanonicalID: "MSKU-A"},
	}, model.DefaultOptions())

	_, ok := idx.lookup("SKU001")
	require.True(t, ok)
	_, ok = idx.lookup("  sku001 ")
	require.False(t, ok)
}

func TestBuildIndexDefaultThreshold(t *testing.T) {
	idx, _ := BuildIndex(nil, model.Options{})
	require.Equal(t, model.DefaultThreshold, idx.Options().Threshold)
}

func TestCandidatesInsertionOrder(t *testing.T) {
	entries := []model.AliasEntry{
		{RawAlias: "BBB1", CanonicalID: "C1"},
		{RawAlias: "AAA1", CanonicalID: "C2"},
		{RawAlias: "BBB1", CanonicalID: "C3"}, // дубликат не двигает порядок
		{RawAlias: "CCC1", CanonicalID: "C4"},
	}
	idx, _ := BuildIndex(entries, model.DefaultOptions())
	require.Equal(t, []string{"BBB1", "AAA1", "CCC1"}, idx.candidates("anything"))
}

func TestCandidatesPrefilter(t *testing.T) {
	opt := model.DefaultOptions()
	opt.Prefilter = true
	idx, _ := BuildIndex([]model.AliasEntry{
		{RawAlias: "SKU001", CanonicalID: "A"},
		{RawAlias: "SKU002", CanonicalID: "B"},
		{RawAlias: "WIDGET", CanonicalID: "C"},
	}, opt)

	cands := idx.candidates("SKU0O1")
	require.Contains(t, cands, "SKU001")
	require.Contains(t, cands, "SKU002")
	require.NotContains(t, cands, "WIDGET")

	// порядок выживших — порядок первой вставки
	require.Equal(t, []string{"SKU001", "SKU002"}, cands)
}

func TestTrigramSet(t *testing.T) {
	m := trigramSet("AB")
	require.Len(t, m, 2) // " AB", "AB "

	m = trigramSet("A")
	require.Len(t, m, 1) // короче триграммы — вся строка с паддингом

	require.Empty(t, trigramSet(""))
}
