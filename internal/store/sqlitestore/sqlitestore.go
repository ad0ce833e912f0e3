// Package sqlitestore implementa store.Store sobre SQLite (gorm + driver puro
// Go), para operação local sem o banco gerenciado: desenvolvimento, testes de
// integração e execuções avulsas da CLI.
package sqlitestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/store"
)

type Store struct {
	db *gorm.DB
}

// New abre (ou cria) o arquivo SQLite, migra o esquema e cria a view de
// resumo de horas por grupo/ano usada pela importação de grupos.
func New(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir o banco SQLite: %w", err)
	}

	if err := db.AutoMigrate(
		&clienteEscritorio{},
		&clienteInadimplencia{},
		&contagemCIPorGrupo{},
		&timesheet{},
		&parcelaFinanceira{},
	); err != nil {
		return nil, fmt.Errorf("erro ao migrar o esquema: %w", err)
	}

	// No banco gerenciado esta view existe no Postgres; aqui é recriada em
	// cima da tabela transacional.
	viewSQL := `CREATE VIEW IF NOT EXISTS timesheets_resumo_por_grupo_ano AS
		SELECT grupo_cliente, CAST(strftime('%Y', data) AS TEXT) AS ano,
		       SUM(total_horas) AS total_horas
		FROM timesheets
		WHERE grupo_cliente IS NOT NULL AND grupo_cliente <> ''
		GROUP BY grupo_cliente, ano`
	if err := db.Exec(viewSQL).Error; err != nil {
		return nil, fmt.Errorf("erro ao criar a view de resumo: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Select(ctx context.Context, table string, columns []string, filters []store.Filter) ([]store.Row, error) {
	tx, err := applyFilters(s.db.WithContext(ctx).Table(table), filters)
	if err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		tx = tx.Select(columns)
	}
	var raw []map[string]any
	if err := tx.Find(&raw).Error; err != nil {
		return nil, fmt.Errorf("erro ao consultar %s: %w", table, err)
	}
	rows := make([]store.Row, len(raw))
	for i, r := range raw {
		rows[i] = store.Row(r)
	}
	return rows, nil
}

func (s *Store) Insert(ctx context.Context, table string, rows []store.Row) error {
	if len(rows) == 0 {
		return nil
	}
	payload := make([]map[string]any, len(rows))
	for i, r := range rows {
		payload[i] = encodeRow(r)
	}
	if err := s.db.WithContext(ctx).Table(table).Create(payload).Error; err != nil {
		return fmt.Errorf("erro ao inserir em %s: %w", table, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, table string, values store.Row, filters []store.Filter) (int, error) {
	tx, err := applyFilters(s.db.WithContext(ctx).Table(table), filters)
	if err != nil {
		return 0, err
	}
	result := tx.Updates(encodeRow(values))
	if result.Error != nil {
		return 0, fmt.Errorf("erro ao atualizar %s: %w", table, result.Error)
	}
	return int(result.RowsAffected), nil
}

func (s *Store) Upsert(ctx context.Context, table string, rows []store.Row, conflictColumns []string) error {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]clause.Column, len(conflictColumns))
	for i, c := range conflictColumns {
		cols[i] = clause.Column{Name: c}
	}
	payload := make([]map[string]any, len(rows))
	for i, r := range rows {
		payload[i] = encodeRow(r)
	}
	err := s.db.WithContext(ctx).Table(table).
		Clauses(clause.OnConflict{Columns: cols, UpdateAll: true}).
		Create(payload).Error
	if err != nil {
		return fmt.Errorf("erro no upsert em %s: %w", table, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, table string, filters []store.Filter) (int, error) {
	if len(filters) == 0 {
		return 0, fmt.Errorf("delete sem filtros não é permitido")
	}
	tx, err := applyFilters(s.db.WithContext(ctx).Table(table), filters)
	if err != nil {
		return 0, err
	}
	result := tx.Delete(nil)
	if result.Error != nil {
		return 0, fmt.Errorf("erro ao remover de %s: %w", table, result.Error)
	}
	return int(result.RowsAffected), nil
}

func applyFilters(tx *gorm.DB, filters []store.Filter) (*gorm.DB, error) {
	for _, f := range filters {
		col := quoteColumn(f.Column)
		switch f.Op {
		case store.OpEq:
			tx = tx.Where(col+" = ?", f.Value)
		case store.OpIlike:
			pattern, ok := f.Value.(string)
			if !ok {
				return nil, fmt.Errorf("ilike exige padrão string, recebeu %T", f.Value)
			}
			tx = tx.Where("LOWER("+col+") LIKE LOWER(?)", pattern)
		case store.OpIn:
			values, ok := f.Value.([]any)
			if !ok {
				return nil, fmt.Errorf("in exige slice de valores, recebeu %T", f.Value)
			}
			tx = tx.Where(col+" IN ?", values)
		case store.OpGte:
			tx = tx.Where(col+" >= ?", f.Value)
		case store.OpLte:
			tx = tx.Where(col+" <= ?", f.Value)
		case store.OpIs:
			if f.Value != nil {
				return nil, fmt.Errorf("is suporta apenas NULL")
			}
			tx = tx.Where(col + " IS NULL")
		default:
			return nil, fmt.Errorf("operador de filtro desconhecido: %q", f.Op)
		}
	}
	return tx, nil
}

// quoteColumn restringe nomes de coluna a identificadores simples; filtros
// vêm de código, não de entrada de usuário, mas a checagem é barata.
func quoteColumn(name string) string {
	clean := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return -1
	}, strings.ToLower(name))
	return clean
}

// encodeRow prepara uma linha para o SQLite: mapas e slices (jsonb no
// Postgres) viram texto JSON e linhas sem id ganham UUID.
func encodeRow(r store.Row) map[string]any {
	out := make(map[string]any, len(r)+1)
	for k, v := range r {
		switch v.(type) {
		case map[string]float64, map[string]any, []string, []any:
			data, err := json.Marshal(v)
			if err == nil {
				out[k] = string(data)
				continue
			}
			out[k] = v
		default:
			out[k] = v
		}
	}
	if _, ok := out["id"]; !ok {
		out["id"] = uuid.NewString()
	}
	return out
}

// ---------------------- esquema ----------------------

type clienteEscritorio struct {
	ID           string  `gorm:"column:id;primaryKey"`
	GrupoCliente *string `gorm:"column:grupo_cliente"`
	RazaoSocial  string  `gorm:"column:razao_social;index"`
	CNPJ         *string `gorm:"column:cnpj;index"`
	QtdProcessos int     `gorm:"column:qtd_processos"`
	HorasTotal   float64 `gorm:"column:horas_total"`
	HorasPorAno  *string `gorm:"column:horas_por_ano"`
	CreatedAt    *string `gorm:"column:created_at"`
	UpdatedAt    *string `gorm:"column:updated_at"`
}

func (clienteEscritorio) TableName() string { return "clientes_escritorio" }

type clienteInadimplencia struct {
	ID                  string   `gorm:"column:id;primaryKey"`
	RazaoSocial         string   `gorm:"column:razao_social;index"`
	StatusClasse        *string  `gorm:"column:status_classe"`
	DiasEmAberto        *int     `gorm:"column:dias_em_aberto"`
	ValorEmAberto       *float64 `gorm:"column:valor_em_aberto"`
	ValorMensal         *float64 `gorm:"column:valor_mensal"`
	DataVencimento      *string  `gorm:"column:data_vencimento"`
	Gestor              *string  `gorm:"column:gestor"`
	ObservacoesGerais   *string  `gorm:"column:observacoes_gerais"`
	UltimaProvidencia   *string  `gorm:"column:ultima_providencia"`
	DataProvidencia     *string  `gorm:"column:data_providencia"`
	FollowUp            *string  `gorm:"column:follow_up"`
	DataFollowUp        *string  `gorm:"column:data_follow_up"`
	QtdProcessos        *int     `gorm:"column:qtd_processos"`
	HorasTotal          *float64 `gorm:"column:horas_total"`
	HorasPorAno         *string  `gorm:"column:horas_por_ano"`
	ClienteEscritorioID *string  `gorm:"column:cliente_escritorio_id"`
	ResolvidoAt         *string  `gorm:"column:resolvido_at"`
	CreatedAt           *string  `gorm:"column:created_at"`
	UpdatedAt           *string  `gorm:"column:updated_at"`
}

func (clienteInadimplencia) TableName() string { return "clients_inadimplencia" }

type contagemCIPorGrupo struct {
	ID                       string  `gorm:"column:id;primaryKey"`
	GrupoCliente             string  `gorm:"column:grupo_cliente;uniqueIndex"`
	Arquivado                int     `gorm:"column:arquivado"`
	ArquivadoDefinitivamente int     `gorm:"column:arquivado_definitivamente"`
	ArquivadoProvisoriamente int     `gorm:"column:arquivado_provisoriamente"`
	Ativo                    int     `gorm:"column:ativo"`
	Encerrado                int     `gorm:"column:encerrado"`
	ExCliente                int     `gorm:"column:ex_cliente"`
	Suspenso                 int     `gorm:"column:suspenso"`
	Outros                   int     `gorm:"column:outros"`
	TotalGeral               int     `gorm:"column:total_geral"`
	UpdatedAt                *string `gorm:"column:updated_at"`
}

func (contagemCIPorGrupo) TableName() string { return "contagem_ci_por_grupo" }

type timesheet struct {
	ID           string  `gorm:"column:id;primaryKey"`
	Data         string  `gorm:"column:data;index"`
	GrupoCliente *string `gorm:"column:grupo_cliente"`
	Cliente      *string `gorm:"column:cliente"`
	TotalHoras   float64 `gorm:"column:total_horas"`
	CreatedAt    *string `gorm:"column:created_at"`
}

func (timesheet) TableName() string { return "timesheets" }

type parcelaFinanceira struct {
	ID             string   `gorm:"column:id;primaryKey"`
	CITitulo       int      `gorm:"column:ci_titulo;uniqueIndex:idx_titulo_parcela"`
	CIParcela      int      `gorm:"column:ci_parcela;uniqueIndex:idx_titulo_parcela"`
	DataVencimento *string  `gorm:"column:data_vencimento"`
	NroTitulo      *string  `gorm:"column:nro_titulo"`
	Cliente        *string  `gorm:"column:cliente"`
	Descricao      *string  `gorm:"column:descricao"`
	Valor          *float64 `gorm:"column:valor"`
	Situacao       *string  `gorm:"column:situacao"`
	DataBaixa      *string  `gorm:"column:data_baixa"`
	UpdatedAt      *string  `gorm:"column:updated_at"`
}

func (parcelaFinanceira) TableName() string { return "relatorio_financeiro" }
