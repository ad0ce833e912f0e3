// Package header resolve colunas de planilhas com cabeçalhos inconsistentes
// (caixa, acentos, fragmentos HTML, sinônimos) para índices de coluna.
package header

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	yearColumnRegex = regexp.MustCompile(`^(?:horas?\s*)?(\d{4})$`)
)

// Normalize prepara uma célula de cabeçalho para casamento: remove tags HTML,
// remove acentos, colapsa espaços e converte para minúsculas.
// Ex.: "Total de Horas <br><small>em decimal</small>" → "total de horas em decimal".
func Normalize(cell string) string {
	s := htmlTagRegex.ReplaceAllString(cell, " ")
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeRow normaliza todas as células de uma linha de cabeçalho.
func NormalizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = Normalize(cell)
	}
	return out
}

// FindColumn retorna o índice da primeira célula que casa com algum dos
// aliases, na ordem dada. O casamento é por continência nas duas direções
// (cabeçalho contém alias OU alias contém cabeçalho), o que cobre tanto
// cabeçalhos abreviados quanto cabeçalhos com decoração extra. Retorna -1
// quando nenhum alias casa.
func FindColumn(row []string, aliases []string) int {
	normalized := NormalizeRow(row)
	for _, alias := range aliases {
		a := Normalize(alias)
		if a == "" {
			continue
		}
		for idx, h := range normalized {
			if h == "" {
				continue
			}
			if strings.Contains(h, a) || strings.Contains(a, h) {
				return idx
			}
		}
	}
	return -1
}

// FindColumnExact retorna o índice da primeira célula cujo texto normalizado
// é exatamente igual a algum dos aliases. Usado quando a continência geraria
// ambiguidade (ex.: "Cliente" vs "Grupo do Cliente").
func FindColumnExact(row []string, aliases []string) int {
	normalized := NormalizeRow(row)
	for _, alias := range aliases {
		a := Normalize(alias)
		for idx, h := range normalized {
			if h != "" && h == a {
				return idx
			}
		}
	}
	return -1
}

// YearColumns detecta estruturalmente colunas de horas por ano ("2024",
// "Horas 2023", ...), já que o conjunto de anos é aberto. Retorna mapa
// ano → índice; em empate vence a primeira coluna.
func YearColumns(row []string) map[string]int {
	out := make(map[string]int)
	for idx, cell := range NormalizeRow(row) {
		m := yearColumnRegex.FindStringSubmatch(cell)
		if m == nil {
			continue
		}
		if _, seen := out[m[1]]; !seen {
			out[m[1]] = idx
		}
	}
	return out
}

// Cell devolve a célula idx da linha, ou "" quando o índice está fora do
// intervalo (linhas de dados podem ser mais curtas que o cabeçalho).
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
