package fileio

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// readJSON — массив плоских объектов; значения приводим к строкам.
// Заголовки — объединение ключей в алфавитном порядке (в JSON порядка нет).
func readJSON(r io.Reader) ([]string, []map[string]string, error) {
	var raw []map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("json: expected array of objects: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil, nil
	}

	seen := make(map[string]struct{})
	for _, rec := range raw {
		for k := range rec {
			seen[k] = struct{}{}
		}
	}
	headers := make([]string, 0, len(seen))
	for k := range seen {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	out := make([]map[string]string, 0, len(raw))
	for _, rec := range raw {
		m := make(map[string]string, len(headers))
		for _, h := range headers {
			m[h] = cellString(rec[h])
		}
		out = append(out, m)
	}
	return headers, out, nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return normalizeCell(t)
	case float64:
		// целые числа без хвоста ".000000"
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
