// package domain/models.go
package domain

// Nomes de tabela no Supabase (sistema de registro).
const (
	TableClientesEscritorio   = "clientes_escritorio"
	TableClientsInadimplencia = "clients_inadimplencia"
	TableContagemCIPorGrupo   = "contagem_ci_por_grupo"
	TableTimesheets           = "timesheets"
	TableRelatorioFinanceiro  = "relatorio_financeiro"

	// View somente-leitura, agregada no banco (consumida pela apresentação).
	ViewTimesheetsResumoPorGrupoAno = "timesheets_resumo_por_grupo_ano"
)

// Classe de inadimplência atribuída na reunião do comitê (nunca derivada
// automaticamente em regime permanente).
type ClasseInadimplencia string

const (
	ClasseA ClasseInadimplencia = "A"
	ClasseB ClasseInadimplencia = "B"
	ClasseC ClasseInadimplencia = "C"
)

// ClienteEscritorio é uma linha de clientes_escritorio: uma empresa (CNPJ) da
// base completa do escritório. Uma empresa pode pertencer a um grupo comercial.
type ClienteEscritorio struct {
	ID           string
	GrupoCliente string // vazio = sem grupo
	RazaoSocial  string // chave de casamento, nunca vazia
	CNPJ         string // somente dígitos, 14 quando completo; vazio se ausente
	QtdProcessos int
	HorasTotal   float64
	HorasPorAno  map[string]float64 // apenas anos com horas > 0
}

// ClienteInadimplencia é uma linha de clients_inadimplencia (CDI).
type ClienteInadimplencia struct {
	ID                   string
	RazaoSocial          string
	StatusClasse         ClasseInadimplencia
	DiasEmAberto         int
	ValorEmAberto        float64
	ValorMensal          *float64 // nil = desconhecido (0 da planilha vira nil)
	DataVencimento       string   // YYYY-MM-DD, vazio se desconhecida
	Gestor               string   // e-mail do team_member quando mapeado
	ObservacoesGerais    string
	UltimaProvidencia    string
	DataProvidencia      string
	FollowUp             string
	DataFollowUp         string
	QtdProcessos         *int
	HorasTotal           *float64
	HorasPorAno          map[string]float64
	ClienteEscritorioID  string // vínculo fraco com clientes_escritorio
	ResolvidoAt          string // vazio = ainda inadimplente
}

// ContagemCI guarda a contagem de processos (CI) por situação para um grupo.
// TotalGeral é sempre recalculado como a soma das categorias.
type ContagemCI struct {
	Arquivado                int
	ArquivadoDefinitivamente int
	ArquivadoProvisoriamente int
	Ativo                    int
	Encerrado                int
	ExCliente                int
	Suspenso                 int
	Outros                   int
}

// Total soma todas as categorias, incluindo "outros".
func (c ContagemCI) Total() int {
	return c.Arquivado + c.ArquivadoDefinitivamente + c.ArquivadoProvisoriamente +
		c.Ativo + c.Encerrado + c.ExCliente + c.Suspenso + c.Outros
}

// Timesheet é uma linha transacional do relatório de horas: (data, cliente, horas).
type Timesheet struct {
	Data         string // YYYY-MM-DD
	GrupoCliente string
	Cliente      string
	TotalHoras   float64
}

// ParcelaFinanceira é uma linha do relatório de faturamento, endereçada pela
// chave natural composta (CITitulo, CIParcela).
type ParcelaFinanceira struct {
	CITitulo       int
	CIParcela      int
	DataVencimento string
	NroTitulo      string
	Cliente        string
	Descricao      string
	Valor          float64
	Situacao       string // ABERTO | PAGO
	DataBaixa      string
}

// RunReport acumula os contadores de uma execução de importação. É o único
// contrato que ferramentas externas devem usar para verificar uma execução
// (não o texto de log).
type RunReport struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
	Dropped  int `json:"dropped"`
	Errors   int `json:"errors"`

	// Substituição de período (variante timesheets): 1 quando o delete por
	// datas foi aplicado, 0 caso contrário.
	Deleted int `json:"deleted"`

	GruposUpserted int `json:"grupos_upserted"`

	// Valores de "Situação do Processo" que caíram no balde "outros",
	// retidos para revisão do operador (amostrados na exibição).
	SituacoesNaoMapeadas []string `json:"situacoes_nao_mapeadas,omitempty"`
}
