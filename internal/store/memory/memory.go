// Package memory implementa store.Store em memória, para testes do motor de
// importação. Escrito contra o mesmo contrato dos backends reais: nenhum
// teste deve depender de comportamento que só exista aqui.
package memory

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/store"
)

type Store struct {
	mu     sync.RWMutex
	tables map[string][]store.Row
}

func New() *Store {
	return &Store{tables: make(map[string][]store.Row)}
}

// Seed carrega linhas iniciais em uma tabela (apenas arranjo de teste).
// Linhas sem "id" ganham um UUID, como fariam no banco real.
func (s *Store) Seed(table string, rows ...store.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.tables[table] = append(s.tables[table], withID(cloneRow(r)))
	}
}

// Table devolve uma cópia das linhas atuais da tabela (inspeção de teste).
func (s *Store) Table(table string) []store.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Row, 0, len(s.tables[table]))
	for _, r := range s.tables[table] {
		out = append(out, cloneRow(r))
	}
	return out
}

func (s *Store) Select(_ context.Context, table string, columns []string, filters []store.Filter) ([]store.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []store.Row
	for _, r := range s.tables[table] {
		ok, err := matchesAll(r, filters)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, projectRow(r, columns))
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, table string, rows []store.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.tables[table] = append(s.tables[table], withID(cloneRow(r)))
	}
	return nil
}

func (s *Store) Update(_ context.Context, table string, values store.Row, filters []store.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, r := range s.tables[table] {
		ok, err := matchesAll(r, filters)
		if err != nil {
			return count, err
		}
		if !ok {
			continue
		}
		for k, v := range values {
			r[k] = v
		}
		count++
	}
	return count, nil
}

func (s *Store) Upsert(_ context.Context, table string, rows []store.Row, conflictColumns []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, incoming := range rows {
		matched := false
		for _, existing := range s.tables[table] {
			if sameKey(existing, incoming, conflictColumns) {
				for k, v := range incoming {
					existing[k] = v
				}
				matched = true
				break
			}
		}
		if !matched {
			s.tables[table] = append(s.tables[table], withID(cloneRow(incoming)))
		}
	}
	return nil
}

func (s *Store) Delete(_ context.Context, table string, filters []store.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []store.Row
	count := 0
	for _, r := range s.tables[table] {
		ok, err := matchesAll(r, filters)
		if err != nil {
			return count, err
		}
		if ok {
			count++
			continue
		}
		kept = append(kept, r)
	}
	s.tables[table] = kept
	return count, nil
}

// ---------------------- casamento de filtros ----------------------

func matchesAll(r store.Row, filters []store.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := matches(r, f)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matches(r store.Row, f store.Filter) (bool, error) {
	val, present := r[f.Column]
	switch f.Op {
	case store.OpEq:
		return present && equalValues(val, f.Value), nil
	case store.OpIlike:
		pattern, ok := f.Value.(string)
		if !ok {
			return false, fmt.Errorf("ilike exige padrão string, recebeu %T", f.Value)
		}
		if !present || val == nil {
			return false, nil
		}
		return ilikeMatch(fmt.Sprint(val), pattern), nil
	case store.OpIn:
		values, ok := f.Value.([]any)
		if !ok {
			return false, fmt.Errorf("in exige slice de valores, recebeu %T", f.Value)
		}
		for _, candidate := range values {
			if present && equalValues(val, candidate) {
				return true, nil
			}
		}
		return false, nil
	case store.OpGte, store.OpLte:
		if !present || val == nil {
			return false, nil
		}
		cmp, err := compareValues(val, f.Value)
		if err != nil {
			return false, err
		}
		if f.Op == store.OpGte {
			return cmp >= 0, nil
		}
		return cmp <= 0, nil
	case store.OpIs:
		if f.Value != nil {
			return false, fmt.Errorf("is suporta apenas NULL")
		}
		return !present || isNilValue(val), nil
	default:
		return false, fmt.Errorf("operador de filtro desconhecido: %q", f.Op)
	}
}

func equalValues(a, b any) bool {
	if isNilValue(a) || isNilValue(b) {
		return isNilValue(a) && isNilValue(b)
	}
	if fa, aok := toFloat(a); aok {
		if fb, bok := toFloat(b); bok {
			return fa == fb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func compareValues(a, b any) (int, error) {
	if fa, aok := toFloat(a); aok {
		if fb, bok := toFloat(b); bok {
			switch {
			case fa < fb:
				return -1, nil
			case fa > fb:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b)), nil
}

func ilikeMatch(value, pattern string) bool {
	parts := strings.Split(strings.ToLower(pattern), "%")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile("^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return false
	}
	return re.MatchString(strings.ToLower(value))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case *int:
		if n == nil {
			return 0, false
		}
		return float64(*n), true
	case *float64:
		if n == nil {
			return 0, false
		}
		return *n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func isNilValue(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case *int:
		return n == nil
	case *float64:
		return n == nil
	case *string:
		return n == nil
	default:
		return false
	}
}

func sameKey(a, b store.Row, columns []string) bool {
	for _, c := range columns {
		if !equalValues(a[c], b[c]) {
			return false
		}
	}
	return len(columns) > 0
}

func cloneRow(r store.Row) store.Row {
	out := make(store.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func projectRow(r store.Row, columns []string) store.Row {
	if len(columns) == 0 {
		return cloneRow(r)
	}
	out := make(store.Row, len(columns))
	for _, c := range columns {
		if v, ok := r[c]; ok {
			out[c] = v
		}
	}
	return out
}

func withID(r store.Row) store.Row {
	if _, ok := r["id"]; !ok {
		r["id"] = uuid.NewString()
	}
	return r
}
