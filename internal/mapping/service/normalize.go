package service

import (
	"errors"
	"regexp"
	"strings"

	"sku-mapper/internal/mapping/model"
)

// ErrEmptyInput — пустой/пробельный идентификатор. Резолвер трактует его как
// «идентификатор отсутствует» и сразу отдаёт unresolved, до поиска не доходит.
var ErrEmptyInput = errors.New("empty identifier")

var punct = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// Normalize — единственное понятие «идентичности» для сопоставления:
// две сырые строки с одинаковым ключом считаются одним алиасом.
// Trim + ASCII-верхний регистр; опционально пунктуация→пробелы и схлопывание.
func Normalize(raw string, opt model.Options) (string, error) {
	out := strings.TrimSpace(raw)
	if out == "" {
		return "", ErrEmptyInput
	}
	out = asciiUpper(out)
	if opt.StripPunct {
		out = punct.ReplaceAllString(out, " ")
	}
	if opt.StripPunct || opt.CollapseSpaces {
		out = collapseSpaces(out)
	}
	if out == "" {
		// строка целиком из пунктуации
		return "", ErrEmptyInput
	}
	return out, nil
}

// Идентификаторы — алфавитно-цифровые коды, поэтому регистр поднимаем только
// для ASCII: без locale-зависимых сюрпризов вроде турецкой i.
func asciiUpper(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - ('a' - 'A')
		}
		return r
	}, s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
