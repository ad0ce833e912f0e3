// Package match decide se dois nomes livres de cliente/grupo denotam a mesma
// entidade. As planilhas trazem nomes truncados, com sufixos ou com prefixo
// "GRUPO", então o casamento combina normalização, prefixo e primeira palavra,
// com uma lista de exceções explícitas para os casos difíceis conhecidos.
package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/schollz/closestmatch"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	slashRegex      = regexp.MustCompile(`\s*/\s*`)
)

// Override é um casamento explícito entre um nome de planilha e um nome da
// base, avaliado com seu próprio par de regex em vez das heurísticas
// genéricas. NomePadrao, quando preenchido, é o nome canônico a gravar.
type Override struct {
	Planilha   string `yaml:"planilha" validate:"required"`
	Base       string `yaml:"base" validate:"required"`
	NomePadrao string `yaml:"nome_padrao"`

	planilhaRe *regexp.Regexp
	baseRe     *regexp.Regexp
}

// DefaultOverrides retorna a lista de exceções conhecidas da base atual.
// Mantida como dado de configuração (pode ser substituída por ambiente).
func DefaultOverrides() []Override {
	return []Override{
		{Planilha: `^grupo\s+disep$`, Base: `^(grupo\s+)?disep$`, NomePadrao: "Grupo Disep"},
	}
}

// Matcher aplica as heurísticas de casamento de nomes. Construído com a lista
// de exceções; seguro para uso concorrente após a construção.
type Matcher struct {
	overrides []Override
}

// New compila as exceções e retorna um Matcher. Regex inválida é erro de
// configuração (aborta antes de qualquer importação).
func New(overrides []Override) (*Matcher, error) {
	compiled := make([]Override, 0, len(overrides))
	for _, o := range overrides {
		pre, err := regexp.Compile(`(?i)` + o.Planilha)
		if err != nil {
			return nil, fmt.Errorf("override %q: regex de planilha inválida: %w", o.Planilha, err)
		}
		bre, err := regexp.Compile(`(?i)` + o.Base)
		if err != nil {
			return nil, fmt.Errorf("override %q: regex de base inválida: %w", o.Base, err)
		}
		o.planilhaRe = pre
		o.baseRe = bre
		compiled = append(compiled, o)
	}
	return &Matcher{overrides: compiled}, nil
}

// StripGrupo remove o prefixo "GRUPO " (qualquer caixa) do início do nome.
func StripGrupo(name string) string {
	s := strings.TrimSpace(name)
	upper := strings.ToUpper(s)
	if upper == "GRUPO" {
		return ""
	}
	if strings.HasPrefix(upper, "GRUPO ") {
		return strings.TrimSpace(s[len("GRUPO "):])
	}
	return s
}

// NormalizeNome normaliza um nome para comparação: sem prefixo GRUPO, espaços
// colapsados, caixa alta.
func NormalizeNome(name string) string {
	s := StripGrupo(name)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeGrupo normaliza um nome de grupo para agrupamento (minúsculo, um
// espaço, sem prefixo "Grupo ", barra com espaços). "Adhemar / Flávio" e
// "Grupo Adhemar/Flávio" caem na mesma chave.
func NormalizeGrupo(name string) string {
	s := StripGrupo(name)
	s = slashRegex.ReplaceAllString(s, " / ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Matches decide se dois nomes denotam a mesma entidade. Simétrico.
//
// A heurística de primeira palavra gera falsos positivos quando duas entidades
// não relacionadas compartilham a primeira palavra; o sistema aceita fusões
// ocasionais (visíveis, corrigíveis via overrides) em troca de não perder
// horas/processos por divisões silenciosas.
func (m *Matcher) Matches(a, b string) bool {
	na := NormalizeNome(a)
	nb := NormalizeNome(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.HasPrefix(na, nb) || strings.HasPrefix(nb, na) {
		return true
	}
	aFirst := strings.SplitN(na, " ", 2)[0]
	bFirst := strings.SplitN(nb, " ", 2)[0]
	if aFirst != "" && aFirst == bFirst {
		return true
	}
	return m.MatchesOverride(a, b) || m.MatchesOverride(b, a)
}

// MatchesOverride consulta apenas a lista de exceções (planilha → base).
func (m *Matcher) MatchesOverride(planilha, base string) bool {
	p := strings.TrimSpace(planilha)
	b := strings.TrimSpace(base)
	if p == "" || b == "" {
		return false
	}
	for _, o := range m.overrides {
		if o.planilhaRe.MatchString(p) && o.baseRe.MatchString(b) {
			return true
		}
	}
	return false
}

// CanonicalName retorna o nome padrão definido na exceção que casa com o nome
// da planilha, ou "" quando nenhuma casa.
func (m *Matcher) CanonicalName(planilha string) string {
	p := strings.TrimSpace(planilha)
	for _, o := range m.overrides {
		if o.NomePadrao != "" && o.planilhaRe.MatchString(p) {
			return o.NomePadrao
		}
	}
	return ""
}

// ClosestCandidate devolve, entre os candidatos, o mais próximo do nome pelo
// índice de n-gramas, apenas como candidato: o chamador deve confirmar com
// Matches antes de aceitar, para não rebaixar a precisão do casamento.
func (m *Matcher) ClosestCandidate(name string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	// chaves em minúsculas: Closest baixa a caixa só da palavra buscada, então
	// chaves em caixa alta nunca intersectam os n-gramas da busca
	keys := make([]string, 0, len(candidates))
	index := make(map[string]string, len(candidates))
	for _, c := range candidates {
		k := strings.ToLower(NormalizeNome(c))
		if k == "" {
			continue
		}
		if _, seen := index[k]; !seen {
			index[k] = c
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	cm := closestmatch.New(keys, []int{3, 4, 5})
	best := cm.Closest(strings.ToLower(NormalizeNome(name)))
	if best == "" {
		return ""
	}
	return index[best]
}
