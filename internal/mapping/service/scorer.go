package service

import (
	"math"
	"sort"
	"strings"
)

// Scorer — внешняя способность «похожести»: балл в [0..100] для пары
// нормализованных ключей. Конкретный алгоритм заменяем, не трогая резолвер.
type Scorer interface {
	Score(a, b string) int
}

// RatioScorer — лучший из трёх вариантов на базе Дамерау-Левенштейна:
// обычный ratio, ratio по отсортированным токенам (устойчив к перестановке
// слов) и partial ratio (вхождение короткого ключа в длинный, с штрафом 0.9).
type RatioScorer struct{}

func (RatioScorer) Score(a, b string) int {
	best := ratio(a, b)
	if v := tokenSortRatio(a, b); v > best {
		best = v
	}
	if v := partialRatio(a, b) * 0.9; v > best {
		best = v
	}
	s := int(math.Floor(best * 100))
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}
	return s
}

// normalized Damerau-Levenshtein similarity in [0..1]
func ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	d := damerauLevenshtein(a, b)
	m := len([]rune(a))
	if mb := len([]rune(b)); mb > m {
		m = mb
	}
	return 1 - float64(d)/float64(m)
}

// tokenSort: сортируем токены по алфавиту (нож туристический == туристический нож)
func tokenSort(s string) string {
	if s == "" {
		return s
	}
	t := strings.Fields(s)
	sort.Strings(t)
	return strings.Join(t, " ")
}

func tokenSortRatio(a, b string) float64 {
	return ratio(tokenSort(a), tokenSort(b))
}

// partialRatio: короткая строка против каждого окна той же длины в длинной.
func partialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0
	}
	if len(ra) == len(rb) {
		return ratio(string(ra), string(rb))
	}
	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		if v := ratio(string(ra), string(rb[i:i+len(ra)])); v > best {
			best = v
			if best == 1 {
				break
			}
		}
	}
	return best
}
