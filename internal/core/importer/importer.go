// Package importer é o motor de reconciliação: consome extratos tabulares já
// materializados (extract), resolve colunas (header), normaliza valores
// (normalize), agrupa por entidade (match) e grava no store com semântica
// idempotente. Cada variante de importação expõe uma operação própria e todas
// devolvem um domain.RunReport, o único contrato de verificação de execução.
package importer

import (
	"time"

	"go.uber.org/zap"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/match"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store"
)

// Tamanho de lote para inserts/upserts em massa (limite de payload do
// backend).
const batchSize = 200

// Teto de sanidade para horas de uma única linha de timesheet. Acima disso a
// linha é descartada com aviso (erro de exportação, não dado real).
const maxHorasLinha = 10000

// Options carrega as tabelas operacionais injetadas na construção (nunca
// constantes de módulo): mapa responsável → e-mail e aliases extras de
// situação de processo.
type Options struct {
	Gestores      map[string]string
	StatusAliases map[string][]string
}

type Importer struct {
	store   store.Store
	matcher *match.Matcher
	log     *zap.Logger

	gestores      map[string]string
	statusAliases map[string][]string

	// relógio injetável (dias em aberto dependem de "hoje")
	now func() time.Time
}

func New(st store.Store, matcher *match.Matcher, log *zap.Logger, opts Options) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{
		store:         st,
		matcher:       matcher,
		log:           log,
		gestores:      opts.Gestores,
		statusAliases: opts.StatusAliases,
		now:           time.Now,
	}
}
