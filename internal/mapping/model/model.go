package model

// MatchKind — способ, которым запись была сопоставлена с каноническим id.
type MatchKind string

const (
	MatchExact      MatchKind = "exact"
	MatchFuzzy      MatchKind = "fuzzy"
	MatchUnresolved MatchKind = "unresolved"
)

// AliasEntry — одна строка таблицы соответствий SKU → MSKU.
type AliasEntry struct {
	RawAlias    string `json:"sku"`
	CanonicalID string `json:"msku"`
}

type Options struct {
	CollapseSpaces bool // схлопнуть внутренние пробелы в ключе
	StripPunct     bool // пунктуация → пробелы (затем схлопывание)
	Threshold      int  // порог принятия fuzzy-кандидата, включительно (0..100)
	TopN           int  // сколько канонических id показывать в отчёте
	Prefilter      bool // триграммный предотбор кандидатов для больших каталогов
}

const (
	DefaultThreshold = 80
	DefaultTopN      = 10
)

func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, TopN: DefaultTopN}
}

// ResolutionResult — итог разрешения одного входного SKU.
// Score присутствует у exact (всегда 100) и fuzzy; у unresolved он хранит
// лучший недобравший балл, если fuzzy-поиск вообще выполнялся.
type ResolutionResult struct {
	InputRaw    string    `json:"input"`
	CanonicalID string    `json:"msku,omitempty"`
	Kind        MatchKind `json:"kind"`
	Score       *int      `json:"score,omitempty"`
}

type CanonicalCount struct {
	CanonicalID string `json:"msku"`
	Count       int    `json:"count"`
}

// BatchReport — агрегат по серии ResolutionResult.
type BatchReport struct {
	Total         int              `json:"total"`
	Matched       int              `json:"matched"`
	MappingRate   float64          `json:"mappingRate"`
	UnresolvedRaw []string         `json:"unresolved"`
	TopCanonical  []CanonicalCount `json:"topCanonical"`
}
