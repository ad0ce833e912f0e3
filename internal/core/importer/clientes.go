package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/header"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/domain"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store"
)

// Máximo de situações não mapeadas retidas no relatório (amostra para o
// operador, não inventário completo).
const maxSituacoesAmostra = 20

// agregado acumula as linhas de uma mesma entidade dentro de uma execução.
// A chave de agrupamento é o par literal (grupo|razão social): dentro de um
// mesmo extrato a entidade aparece com a string idêntica; o casamento fuzzy
// só entra na reconciliação contra o store.
type agregado struct {
	grupoCliente string
	razaoSocial  string
	cnpj         string
	qtdProcessos int
	horasTotal   float64
	horasPorAno  map[string]float64
}

// ImportProcessos sincroniza o relatório "Processos Completo" com o registro
// de clientes do escritório e a contagem de processos por situação.
//
// Idempotente por recomputação: os agregados são sempre recalculados do
// extrato inteiro e sobrescrevem os valores da linha existente, nunca somam
// sobre eles.
func (imp *Importer) ImportProcessos(ctx context.Context, rows [][]string) (*domain.RunReport, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("planilha sem dados (cabeçalho + pelo menos uma linha)")
	}
	headerRow := rows[0]
	idx := resolveProcessosColumns(headerRow)
	if idx.razaoSocial < 0 {
		return nil, fmt.Errorf("coluna de cliente/razão social não encontrada")
	}

	report := &domain.RunReport{}

	// passada de agrupamento + contagem por situação
	agregados := make(map[string]*agregado)
	var ordemAgregados []string
	contagens := make(map[string]*domain.ContagemCI)
	var ordemContagens []string
	naoMapeadas := make(map[string]struct{})

	for _, row := range rows[1:] {
		if c := rowToCandidato(row, idx); c != nil {
			key := c.grupoCliente + "|" + c.razaoSocial
			agg, ok := agregados[key]
			if !ok {
				agg = &agregado{
					grupoCliente: c.grupoCliente,
					razaoSocial:  c.razaoSocial,
					cnpj:         c.cnpj,
				}
				agregados[key] = agg
				ordemAgregados = append(ordemAgregados, key)
			}
			// vale o primeiro mapa por ano não vazio do grupo
			if agg.horasPorAno == nil && c.horasPorAno != nil {
				agg.horasPorAno = c.horasPorAno
			}
			if c.qtdProcessos != nil && *c.qtdProcessos > 0 {
				agg.qtdProcessos += *c.qtdProcessos
			} else {
				agg.qtdProcessos++
			}
			if c.horasTotal != nil && *c.horasTotal > 0 {
				agg.horasTotal += *c.horasTotal
			}
		}

		if idx.grupoCliente >= 0 && idx.situacao >= 0 {
			grupo := header.Cell(row, idx.grupoCliente)
			if grupo == "" {
				continue
			}
			counts, ok := contagens[grupo]
			if !ok {
				counts = &domain.ContagemCI{}
				contagens[grupo] = counts
				ordemContagens = append(ordemContagens, grupo)
			}
			raw := header.Cell(row, idx.situacao)
			if col, ok := imp.normalizarSituacao(raw); ok {
				incrementaContagem(counts, col)
			} else {
				counts.Outros++
				if raw != "" {
					if _, seen := naoMapeadas[raw]; !seen {
						naoMapeadas[raw] = struct{}{}
						if len(report.SituacoesNaoMapeadas) < maxSituacoesAmostra {
							report.SituacoesNaoMapeadas = append(report.SituacoesNaoMapeadas, raw)
						}
					}
				}
			}
		}
	}
	report.Skipped = len(rows) - 1 - len(agregados)

	if len(report.SituacoesNaoMapeadas) > 0 {
		imp.log.Warn("situações de processo não mapeadas (contadas em outros)",
			zap.Strings("valores", report.SituacoesNaoMapeadas))
	}

	// lista atual do registro, para o candidato fuzzy da reconciliação
	existentes, err := imp.store.Select(ctx, domain.TableClientesEscritorio,
		[]string{"id", "razao_social"}, nil)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar o registro de clientes: %w", err)
	}
	nomesExistentes := make([]string, 0, len(existentes))
	idPorNome := make(map[string]string, len(existentes))
	for _, row := range existentes {
		nome, _ := row["razao_social"].(string)
		if nome == "" {
			continue
		}
		nomesExistentes = append(nomesExistentes, nome)
		if _, ok := idPorNome[nome]; !ok {
			idPorNome[nome] = fmt.Sprint(row["id"])
		}
	}

	// passada de reconciliação
	for _, key := range ordemAgregados {
		agg := agregados[key]
		payload := store.Row{
			"grupo_cliente": nullableString(agg.grupoCliente),
			"razao_social":  agg.razaoSocial,
			"cnpj":          nullableString(agg.cnpj),
			"qtd_processos": agg.qtdProcessos,
			"horas_total":   agg.horasTotal,
		}
		if len(agg.horasPorAno) > 0 {
			payload["horas_por_ano"] = agg.horasPorAno
		}

		id, err := imp.findClienteExistente(ctx, agg, nomesExistentes, idPorNome)
		if err != nil {
			imp.log.Error("erro ao buscar cliente", zap.String("razao_social", agg.razaoSocial), zap.Error(err))
			report.Errors++
			continue
		}
		if id != "" {
			if _, err := imp.store.Update(ctx, domain.TableClientesEscritorio, payload, []store.Filter{store.Eq("id", id)}); err != nil {
				imp.log.Error("erro ao atualizar cliente", zap.String("razao_social", agg.razaoSocial), zap.Error(err))
				report.Errors++
				continue
			}
			report.Updated++
		} else {
			if err := imp.store.Insert(ctx, domain.TableClientesEscritorio, []store.Row{payload}); err != nil {
				imp.log.Error("erro ao inserir cliente", zap.String("razao_social", agg.razaoSocial), zap.Error(err))
				report.Errors++
				continue
			}
			report.Inserted++
		}
	}

	// passada de upsert da contagem por grupo
	for _, grupo := range ordemContagens {
		counts := contagens[grupo]
		payload := store.Row{
			"grupo_cliente":             grupo,
			"arquivado":                 counts.Arquivado,
			"arquivado_definitivamente": counts.ArquivadoDefinitivamente,
			"arquivado_provisoriamente": counts.ArquivadoProvisoriamente,
			"ativo":                     counts.Ativo,
			"encerrado":                 counts.Encerrado,
			"ex_cliente":                counts.ExCliente,
			"suspenso":                  counts.Suspenso,
			"outros":                    counts.Outros,
			"total_geral":               counts.Total(),
		}
		if err := imp.store.Upsert(ctx, domain.TableContagemCIPorGrupo, []store.Row{payload}, []string{"grupo_cliente"}); err != nil {
			imp.log.Error("erro no upsert da contagem", zap.String("grupo", grupo), zap.Error(err))
			report.Errors++
			continue
		}
		report.GruposUpserted++
	}

	imp.log.Info("importação de processos concluída",
		zap.Int("inseridos", report.Inserted),
		zap.Int("atualizados", report.Updated),
		zap.Int("ignorados", report.Skipped),
		zap.Int("grupos", report.GruposUpserted),
		zap.Int("erros", report.Errors))
	return report, nil
}

// findClienteExistente localiza a linha do registro para um agregado:
// CNPJ exato, depois razão social sem caixa, por fim o candidato fuzzy
// confirmado pelo matcher.
func (imp *Importer) findClienteExistente(ctx context.Context, agg *agregado, nomes []string, idPorNome map[string]string) (string, error) {
	if agg.cnpj != "" {
		rows, err := imp.store.Select(ctx, domain.TableClientesEscritorio, []string{"id"},
			[]store.Filter{store.Eq("cnpj", agg.cnpj)})
		if err != nil {
			return "", err
		}
		if len(rows) > 0 {
			return fmt.Sprint(rows[0]["id"]), nil
		}
	}
	rows, err := imp.store.Select(ctx, domain.TableClientesEscritorio, []string{"id"},
		[]store.Filter{store.Ilike("razao_social", agg.razaoSocial)})
	if err != nil {
		return "", err
	}
	if len(rows) > 0 {
		return fmt.Sprint(rows[0]["id"]), nil
	}
	if candidato := imp.matcher.ClosestCandidate(agg.razaoSocial, nomes); candidato != "" {
		if imp.matcher.Matches(agg.razaoSocial, candidato) {
			return idPorNome[candidato], nil
		}
	}
	return "", nil
}

func incrementaContagem(c *domain.ContagemCI, col string) {
	switch col {
	case "arquivado":
		c.Arquivado++
	case "arquivado_definitivamente":
		c.ArquivadoDefinitivamente++
	case "arquivado_provisoriamente":
		c.ArquivadoProvisoriamente++
	case "ativo":
		c.Ativo++
	case "encerrado":
		c.Encerrado++
	case "ex_cliente":
		c.ExCliente++
	case "suspenso":
		c.Suspenso++
	default:
		c.Outros++
	}
}

// nullableString converte "" em NULL (colunas opcionais do registro).
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
