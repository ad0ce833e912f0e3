package importer

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/header"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/match"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/normalize"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/domain"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store"
)

// registroEscritorio é a projeção do registro usada pelo cruzamento.
type registroEscritorio struct {
	id           string
	razaoSocial  string
	grupoCliente string
}

// ImportDados cruza o DADOS.xlsx (timesheet acumulado dos advogados, uma
// linha por cliente ou grupo) com os inadimplentes em aberto: atualiza
// qtd_processos, horas_total e horas_por_ano, corrige a razão social para o
// nome do DADOS (fonte canônica de grafia) e vincula ao registro do
// escritório via o matcher de nomes.
func (imp *Importer) ImportDados(ctx context.Context, rows [][]string) (*domain.RunReport, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("planilha vazia ou sem dados")
	}
	headerRow := rows[0]
	idxCliente := header.FindColumn(headerRow, dadosAliases["cliente"])
	if idxCliente < 0 {
		// base histórica sem cabeçalho reconhecível usa a primeira coluna
		idxCliente = 0
	}
	idxProcessos := header.FindColumn(headerRow, dadosAliases["qtd_processos"])
	idxHoras := header.FindColumn(headerRow, dadosAliases["horas_total"])
	anos := header.YearColumns(headerRow)

	inadimplentes, err := imp.store.Select(ctx, domain.TableClientsInadimplencia,
		[]string{"id", "razao_social", "cliente_escritorio_id"},
		[]store.Filter{store.IsNull("resolvido_at")})
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar inadimplentes: %w", err)
	}
	escritorioRows, err := imp.store.Select(ctx, domain.TableClientesEscritorio,
		[]string{"id", "razao_social", "grupo_cliente"}, nil)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar o registro de clientes: %w", err)
	}
	escritorio := make([]registroEscritorio, 0, len(escritorioRows))
	for _, r := range escritorioRows {
		escritorio = append(escritorio, registroEscritorio{
			id:           fmt.Sprint(r["id"]),
			razaoSocial:  stringValue(r["razao_social"]),
			grupoCliente: stringValue(r["grupo_cliente"]),
		})
	}

	report := &domain.RunReport{}
	for _, row := range rows[1:] {
		nomePlanilha := header.Cell(row, idxCliente)
		if nomePlanilha == "" {
			report.Skipped++
			continue
		}

		var qtdProcessos *int
		if n, ok := normalize.ParseNumber(header.Cell(row, idxProcessos)); ok {
			v := int(math.Max(0, math.Round(n)))
			qtdProcessos = &v
		}
		var horasTotal *float64
		if h, ok := normalize.ParseSerialDayHours(header.Cell(row, idxHoras)); ok {
			v := math.Max(0, h)
			horasTotal = &v
		}
		horasPorAno := make(map[string]float64)
		for ano, col := range anos {
			if h, ok := normalize.ParseSerialDayHours(header.Cell(row, col)); ok {
				horasPorAno[ano] = h
			}
		}

		// candidatos do registro: nome do DADOS pode ser grupo ou empresa
		var candidatos []registroEscritorio
		candidatoIDs := make(map[string]struct{})
		for _, ce := range escritorio {
			if imp.casaRegistro(nomePlanilha, ce) {
				candidatos = append(candidatos, ce)
				candidatoIDs[ce.id] = struct{}{}
			}
		}

		alvos := imp.inadimplentesParaLinha(nomePlanilha, inadimplentes, escritorio, candidatos, candidatoIDs)
		if len(alvos) == 0 {
			imp.log.Warn("cliente do DADOS não encontrado na base", zap.String("nome", nomePlanilha))
			report.Skipped++
			continue
		}

		nomeCorreto := imp.matcher.CanonicalName(nomePlanilha)
		if nomeCorreto == "" {
			nomeCorreto = nomePlanilha
		}
		nomeSemGrupo := match.StripGrupo(nomePlanilha)
		var vinculoPadrao string
		for _, ce := range escritorio {
			if ce.razaoSocial == nomeCorreto || ce.razaoSocial == nomeSemGrupo ||
				(ce.grupoCliente != "" && (ce.grupoCliente == nomeCorreto || ce.grupoCliente == nomeSemGrupo)) {
				vinculoPadrao = ce.id
				break
			}
		}
		if vinculoPadrao == "" && len(candidatos) > 0 {
			vinculoPadrao = candidatos[0].id
		}

		for _, alvo := range alvos {
			idEscritorio := vinculoPadrao
			if idEscritorio == "" {
				idEscritorio = stringValue(alvo["cliente_escritorio_id"])
			}
			razaoAlvo := stringValue(alvo["razao_social"])
			for _, ce := range candidatos {
				if imp.matcher.Matches(razaoAlvo, ce.razaoSocial) {
					idEscritorio = ce.id
					break
				}
			}

			payload := store.Row{"razao_social": nomeCorreto}
			if qtdProcessos != nil {
				payload["qtd_processos"] = *qtdProcessos
			}
			if horasTotal != nil {
				payload["horas_total"] = *horasTotal
			}
			if len(horasPorAno) > 0 {
				payload["horas_por_ano"] = horasPorAno
			}
			if idEscritorio != "" {
				payload["cliente_escritorio_id"] = idEscritorio
			}

			id := fmt.Sprint(alvo["id"])
			if _, err := imp.store.Update(ctx, domain.TableClientsInadimplencia, payload, []store.Filter{store.Eq("id", id)}); err != nil {
				imp.log.Error("erro ao atualizar inadimplente", zap.String("razao_social", razaoAlvo), zap.Error(err))
				report.Errors++
				continue
			}
			report.Updated++
		}
	}

	imp.log.Info("cruzamento do DADOS concluído",
		zap.Int("atualizados", report.Updated),
		zap.Int("ignorados", report.Skipped),
		zap.Int("erros", report.Errors))
	return report, nil
}

func (imp *Importer) casaRegistro(nomePlanilha string, ce registroEscritorio) bool {
	if imp.matcher.Matches(nomePlanilha, ce.razaoSocial) {
		return true
	}
	if ce.grupoCliente != "" && imp.matcher.Matches(nomePlanilha, ce.grupoCliente) {
		return true
	}
	return imp.matcher.MatchesOverride(nomePlanilha, ce.grupoCliente) ||
		imp.matcher.MatchesOverride(nomePlanilha, ce.razaoSocial)
}

// inadimplentesParaLinha seleciona os inadimplentes que correspondem a uma
// linha do DADOS: por nome direto, por override, por vínculo já existente com
// um candidato do registro, ou pelo nome da empresa do grupo.
func (imp *Importer) inadimplentesParaLinha(nomePlanilha string, inadimplentes []store.Row, escritorio []registroEscritorio, candidatos []registroEscritorio, candidatoIDs map[string]struct{}) []store.Row {
	var out []store.Row
	for _, c := range inadimplentes {
		razao := stringValue(c["razao_social"])
		vinculo := stringValue(c["cliente_escritorio_id"])
		if imp.matcher.Matches(nomePlanilha, razao) || imp.matcher.MatchesOverride(nomePlanilha, razao) {
			out = append(out, c)
			continue
		}
		if vinculo != "" {
			if _, ok := candidatoIDs[vinculo]; ok {
				out = append(out, c)
				continue
			}
			if ce, ok := buscaPorID(escritorio, vinculo); ok {
				if imp.matcher.Matches(nomePlanilha, ce.grupoCliente) || imp.matcher.Matches(nomePlanilha, ce.razaoSocial) ||
					imp.matcher.MatchesOverride(nomePlanilha, ce.grupoCliente) || imp.matcher.MatchesOverride(nomePlanilha, ce.razaoSocial) {
					out = append(out, c)
					continue
				}
			}
		}
		for _, ce := range candidatos {
			if imp.matcher.Matches(razao, ce.razaoSocial) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func buscaPorID(lista []registroEscritorio, id string) (registroEscritorio, bool) {
	for _, ce := range lista {
		if ce.id == id {
			return ce, true
		}
	}
	return registroEscritorio{}, false
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
