package importer

import (
	"strings"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/header"
)

// ---------------------- aliases de coluna ----------------------

// Relatório "Processos Completo" (registro de clientes do escritório).
var processosAliases = map[string][]string{
	"grupo_cliente": {"grupo do cliente"},
	"razao_social":  {"cliente", "razão social", "razao social", "nome", "empresa"},
	"cnpj":          {"cnpj", "cnpj/cpf"},
	"qtd_processos": {"processos", "qtd processos", "quantidade processos", "nº processos", "numero processos"},
	"horas_total":   {"horas", "horas total", "total horas", "horas totais", "carga horária", "total de horas", "carga horaria"},
}

// A coluna de situação exige casamento exato primeiro ("situação do processo"
// contém "processo", que colide por continência com outras colunas).
var situacaoProcessoAliases = []string{"situação do processo", "situacao do processo", "situação processo", "situacao processo"}

// Relatório TimeSheets (linhas transacionais de horas).
var timesheetAliases = map[string][]string{
	"data":          {"data", "date", "data lançamento"},
	"grupo_cliente": {"grupo cliente", "grupo do cliente", "grupo_cliente"},
	"cliente":       {"cliente", "razão social", "razao social"},
	"total_horas":   {"total de horas em decimal", "total de horas", "total horas", "horas", "total_horas", "horas totais", "em decimal"},
}

// Relatório financeiro (faturamento; CSV ponto e vírgula).
var financeiroAliases = map[string][]string{
	"ci_titulo":       {"ci título", "ci titulo", "ci_titulo"},
	"ci_parcela":      {"ci parcela", "ci_parcela"},
	"data_vencimento": {"data vencimento", "data_vencimento"},
	"nro_titulo":      {"nro título", "nro titulo", "nro_titulo", "numero titulo"},
	"cliente":         {"cliente"},
	"descricao":       {"descrição", "descricao"},
	"valor":           {"valor"},
	"situacao":        {"situação", "situacao"},
	"data_baixa":      {"data baixa", "data_baixa"},
}

// DADOS.xlsx (timesheet acumulado dos advogados, 1 linha por cliente/grupo).
var dadosAliases = map[string][]string{
	"cliente":       {"cliente", "razão social", "razao social", "cliente/grupo", "nome"},
	"qtd_processos": {"qt pasta", "quantidade de processos", "qtd processos", "processos", "nº processos"},
	"horas_total":   {"qt horas", "horas total", "total horas", "horas totais", "total de horas"},
}

// ---------------------- situação do processo ----------------------

// Valores exatos da coluna "Situação do Processo", como aparecem nas colunas
// da tabela dinâmica. "Ativo" não tem alias de continência: só conta o valor
// exato, para bater com os totais da dinâmica do Excel.
var situacaoExata = []struct{ label, col string }{
	{"arquivado", "arquivado"},
	{"arquivado definitivamente", "arquivado_definitivamente"},
	{"arquivado provisoriamente", "arquivado_provisoriamente"},
	{"ativo", "ativo"},
	{"encerrado - ex-cliente", "ex_cliente"},
	{"suspenso", "suspenso"},
}

// Aliases de continência, usados só quando o valor não bate exato (variações
// de espaço/acento). A ordem importa: categorias mais específicas primeiro.
var situacaoAliasesDefault = []struct {
	col     string
	aliases []string
}{
	{"arquivado", []string{"arquivado"}},
	{"arquivado_definitivamente", []string{"arquivado definitivamente", "definitivamente"}},
	{"arquivado_provisoriamente", []string{"arquivado provisoriamente", "provisoriamente"}},
	{"ex_cliente", []string{"encerrado - ex-cliente", "encerrado - ex cliente", "ex-cliente", "ex cliente"}},
	{"encerrado", []string{"encerrado"}},
	{"suspenso", []string{"suspenso"}},
}

var dashReplacer = strings.NewReplacer("–", "-", "—", "-")

// normalizarSituacao mapeia o valor cru da coluna de situação para a coluna
// da contagem. ok=false quando o valor não casa com nenhuma categoria (vai
// para o balde "outros").
func (imp *Importer) normalizarSituacao(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), " ")
	s = dashReplacer.Replace(s)
	if s == "" {
		return "", false
	}
	for _, e := range situacaoExata {
		if s == e.label {
			return e.col, true
		}
	}
	for _, entry := range situacaoAliasesDefault {
		aliases := entry.aliases
		if override, ok := imp.statusAliases[entry.col]; ok {
			aliases = override
		}
		for _, a := range aliases {
			if strings.Contains(s, a) || strings.Contains(a, s) {
				return entry.col, true
			}
		}
	}
	return "", false
}

// findSituacaoColumn prioriza o cabeçalho exato antes da continência.
func findSituacaoColumn(headerRow []string) int {
	if idx := header.FindColumnExact(headerRow, situacaoProcessoAliases[:2]); idx >= 0 {
		return idx
	}
	return header.FindColumn(headerRow, situacaoProcessoAliases)
}

// findClienteColumn localiza a coluna de razão social por igualdade exata
// ("cliente", nunca "grupo do cliente"), com sinônimos exatos de reserva.
func findClienteColumn(headerRow []string) int {
	if idx := header.FindColumnExact(headerRow, []string{"cliente"}); idx >= 0 {
		return idx
	}
	return header.FindColumnExact(headerRow, []string{"razão social", "razao social", "nome", "empresa"})
}

// findTotalHorasColumn retorna o índice da coluna de horas do TimeSheets e se
// ela já está em decimal. A coluna "Total de Horas em decimal" tem
// prioridade; sem ela cai na coluna "Total de Horas" (que pode vir como
// serial de tempo).
func findTotalHorasColumn(headerRow []string) (int, bool) {
	normalized := header.NormalizeRow(headerRow)
	for i, n := range normalized {
		if (strings.Contains(n, "total de horas") || strings.Contains(n, "total horas")) && strings.Contains(n, "decimal") {
			return i, true
		}
	}
	idx := header.FindColumn(headerRow, timesheetAliases["total_horas"])
	if idx < 0 {
		return -1, false
	}
	return idx, strings.Contains(normalized[idx], "decimal")
}
