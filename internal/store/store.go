// Package store define o contrato mínimo de persistência usado pelas
// importações: seleção filtrada, insert em lote, update filtrado, upsert por
// chave de conflito e delete filtrado. Os backends (REST/PostgREST, SQLite e
// memória para testes) implementam a mesma interface para que o motor de
// importação não conheça o banco.
package store

import "context"

// Row é uma linha genérica, coluna → valor. Valores nil viajam como NULL.
type Row map[string]any

// Operadores de filtro aceitos por todos os backends.
const (
	OpEq    = "eq"    // igualdade exata
	OpIlike = "ilike" // LIKE sem caixa; o valor pode conter %
	OpIn    = "in"    // pertencimento; o valor é um slice
	OpGte   = "gte"   // maior ou igual
	OpLte   = "lte"   // menor ou igual
	OpIs    = "is"    // comparação com NULL; o valor é nil
)

// Filter é uma condição de seleção (todas as condições são conjuntivas).
type Filter struct {
	Column string
	Op     string
	Value  any
}

// Atalhos de construção de filtros.
func Eq(column string, value any) Filter    { return Filter{Column: column, Op: OpEq, Value: value} }
func Ilike(column, pattern string) Filter   { return Filter{Column: column, Op: OpIlike, Value: pattern} }
func In(column string, values []any) Filter { return Filter{Column: column, Op: OpIn, Value: values} }
func Gte(column string, value any) Filter   { return Filter{Column: column, Op: OpGte, Value: value} }
func Lte(column string, value any) Filter   { return Filter{Column: column, Op: OpLte, Value: value} }
func IsNull(column string) Filter           { return Filter{Column: column, Op: OpIs, Value: nil} }

// Store é o contrato de persistência. Implementações devem ser seguras para
// uso concorrente.
type Store interface {
	// Select retorna as linhas da tabela que satisfazem todos os filtros.
	// columns vazio seleciona todas as colunas.
	Select(ctx context.Context, table string, columns []string, filters []Filter) ([]Row, error)

	// Insert insere as linhas. Falha inteira em violação de restrição.
	Insert(ctx context.Context, table string, rows []Row) error

	// Update aplica values às linhas filtradas e retorna quantas foram
	// afetadas.
	Update(ctx context.Context, table string, values Row, filters []Filter) (int, error)

	// Upsert insere ou atualiza pela chave de conflito dada.
	Upsert(ctx context.Context, table string, rows []Row, conflictColumns []string) error

	// Delete remove as linhas filtradas e retorna quantas foram removidas.
	Delete(ctx context.Context, table string, filters []Filter) (int, error)
}
