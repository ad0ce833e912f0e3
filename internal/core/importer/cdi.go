package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/extract"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/header"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/normalize"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/domain"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store"
)

// Abas estruturais do CDI; as demais abas são por cliente.
const (
	sheetQuadroResumo = "QUADRO RESUMO"
	sheetPlanilha1    = "Planilha1"
)

// providencia é uma linha da aba Planilha1 (providência e follow-up por
// cliente, casados por prefixo de nome).
type providencia struct {
	cliente         string
	providencia     string
	dataProvidencia string
	followUp        string
	dataFollowUp    string
}

// ImportCDI importa a planilha de controle de inadimplência: a aba QUADRO
// RESUMO traz um cliente por linha; Planilha1 (opcional) complementa
// providência e follow-up; as abas por cliente fornecem a última data de
// vencimento com valor em aberto, da qual derivam os dias em aberto.
//
// Clientes ainda inadimplentes (resolvido_at nulo) são atualizados; os demais
// nomes geram linhas novas. A classe A/B/C vem sempre da planilha (definida
// na reunião), nunca recalculada aqui.
func (imp *Importer) ImportCDI(ctx context.Context, wb *extract.Workbook) (*domain.RunReport, error) {
	resumo, ok := wb.Rows(sheetQuadroResumo)
	if !ok {
		return nil, fmt.Errorf("aba %q não encontrada", sheetQuadroResumo)
	}
	if len(resumo) < 2 {
		return nil, fmt.Errorf("aba %q sem dados", sheetQuadroResumo)
	}
	headerRow := resumo[0]
	idxCliente := header.FindColumn(headerRow, []string{"cliente"})
	idxClassif := header.FindColumn(headerRow, []string{"classifica"})
	idxValorMensal := header.FindColumn(headerRow, []string{"valor mensal"})
	idxSaldo := header.FindColumn(headerRow, []string{"saldo em aberto"})
	idxObs := header.FindColumn(headerRow, []string{"observa"})
	idxPlano := header.FindColumn(headerRow, []string{"plano de a"})
	idxResp := header.FindColumn(headerRow, []string{"respons"})
	if idxCliente < 0 || idxSaldo < 0 {
		return nil, fmt.Errorf("colunas esperadas não encontradas no %s", sheetQuadroResumo)
	}

	providencias := imp.lerPlanilha1(wb)
	report := &domain.RunReport{}

	for _, row := range resumo[1:] {
		razaoSocial := header.Cell(row, idxCliente)
		if razaoSocial == "" {
			report.Skipped++
			continue
		}

		saldoAberto := normalize.ParseMonetary(header.Cell(row, idxSaldo))
		classe := classeFromCell(header.Cell(row, idxClassif))
		responsavel := header.Cell(row, idxResp)
		observacoes := header.Cell(row, idxObs)
		planoAcao := header.Cell(row, idxPlano)

		dataVencimento := imp.ultimaDataVencimentoAberto(wb, razaoSocial)
		diasEmAberto := imp.diasEmAberto(dataVencimento)

		p1 := casaProvidencia(providencias, razaoSocial)
		ultimaProvidencia := planoAcao
		var dataProvidencia, followUp, dataFollowUp string
		if p1 != nil {
			if p1.providencia != "" {
				ultimaProvidencia = p1.providencia
			}
			dataProvidencia = p1.dataProvidencia
			followUp = p1.followUp
			dataFollowUp = p1.dataFollowUp
		}

		// zero da planilha no valor mensal significa "não informado"
		var valorMensal any
		if raw := header.Cell(row, idxValorMensal); raw != "" {
			if v := normalize.ParseMonetary(raw); v != 0 {
				valorMensal = v
			}
		}

		payload := store.Row{
			"razao_social":       razaoSocial,
			"status_classe":      string(classe),
			"dias_em_aberto":     diasEmAberto,
			"valor_em_aberto":    saldoAberto,
			"valor_mensal":       valorMensal,
			"data_vencimento":    nullableString(dataVencimento),
			"gestor":             nullableString(imp.gestorEmail(responsavel)),
			"observacoes_gerais": nullableString(observacoes),
			"ultima_providencia": nullableString(ultimaProvidencia),
			"data_providencia":   nullableString(dataProvidencia),
			"follow_up":          nullableString(followUp),
			"data_follow_up":     nullableString(dataFollowUp),
		}

		// vínculo fraco com o registro do escritório, por razão social exata
		if ceRows, err := imp.store.Select(ctx, domain.TableClientesEscritorio, []string{"id"},
			[]store.Filter{store.Eq("razao_social", razaoSocial)}); err == nil && len(ceRows) > 0 {
			payload["cliente_escritorio_id"] = fmt.Sprint(ceRows[0]["id"])
		} else {
			payload["cliente_escritorio_id"] = nil
		}

		existing, err := imp.store.Select(ctx, domain.TableClientsInadimplencia, []string{"id"},
			[]store.Filter{store.Eq("razao_social", razaoSocial), store.IsNull("resolvido_at")})
		if err != nil {
			imp.log.Error("erro ao buscar inadimplente", zap.String("razao_social", razaoSocial), zap.Error(err))
			report.Errors++
			continue
		}
		if len(existing) > 0 {
			id := fmt.Sprint(existing[0]["id"])
			if _, err := imp.store.Update(ctx, domain.TableClientsInadimplencia, payload, []store.Filter{store.Eq("id", id)}); err != nil {
				imp.log.Error("erro ao atualizar inadimplente", zap.String("razao_social", razaoSocial), zap.Error(err))
				report.Errors++
				continue
			}
			report.Updated++
		} else {
			payload["resolvido_at"] = nil
			if err := imp.store.Insert(ctx, domain.TableClientsInadimplencia, []store.Row{payload}); err != nil {
				imp.log.Error("erro ao inserir inadimplente", zap.String("razao_social", razaoSocial), zap.Error(err))
				report.Errors++
				continue
			}
			report.Inserted++
		}
	}

	imp.log.Info("importação do CDI concluída",
		zap.Int("inseridos", report.Inserted),
		zap.Int("atualizados", report.Updated),
		zap.Int("erros", report.Errors))
	return report, nil
}

func (imp *Importer) lerPlanilha1(wb *extract.Workbook) []providencia {
	rows, ok := wb.Rows(sheetPlanilha1)
	if !ok || len(rows) < 2 {
		return nil
	}
	headerRow := rows[0]
	idxCliente := header.FindColumn(headerRow, []string{"cliente"})
	idxProv := header.FindColumn(headerRow, []string{"providencia", "providência"})
	idxDataP := header.FindColumn(headerRow, []string{"data p g", "data p. g", "data p.g"})
	idxFu := header.FindColumnExact(headerRow, []string{"fu"})
	if idxFu < 0 {
		idxFu = header.FindColumn(headerRow, []string{"follow"})
	}
	idxDataUp := header.FindColumn(headerRow, []string{"data up"})

	var out []providencia
	for _, row := range rows[1:] {
		p := providencia{
			cliente:     header.Cell(row, idxCliente),
			providencia: header.Cell(row, idxProv),
			followUp:    header.Cell(row, idxFu),
		}
		if iso, ok := normalize.ParseDateISO(header.Cell(row, idxDataP)); ok {
			p.dataProvidencia = iso
		}
		if iso, ok := normalize.ParseDateISO(header.Cell(row, idxDataUp)); ok {
			p.dataFollowUp = iso
		}
		out = append(out, p)
	}
	return out
}

// casaProvidencia encontra a linha de Planilha1 para um cliente do resumo:
// o nome do resumo começa com o nome da Planilha1, ou a Planilha1 começa com
// a primeira palavra do resumo.
func casaProvidencia(lista []providencia, razaoSocial string) *providencia {
	upper := strings.ToUpper(razaoSocial)
	primeira := strings.SplitN(upper, " ", 2)[0]
	for i := range lista {
		c := strings.ToUpper(strings.TrimSpace(lista[i].cliente))
		if c == "" {
			continue
		}
		if strings.HasPrefix(upper, c) || strings.HasPrefix(c, primeira) {
			return &lista[i]
		}
	}
	return nil
}

// ultimaDataVencimentoAberto varre a aba do cliente (localizada por prefixo
// do nome) atrás da maior data de vencimento com valor em aberto positivo.
func (imp *Importer) ultimaDataVencimentoAberto(wb *extract.Workbook, clienteNome string) string {
	rows := clientSheetRows(wb, clienteNome)
	if len(rows) < 2 {
		return ""
	}
	headerRow := rows[0]
	idxVenc := header.FindColumn(headerRow, []string{"data vencimento"})
	idxAberto := header.FindColumn(headerRow, []string{"valor em aberto"})
	if idxVenc < 0 || idxAberto < 0 {
		return ""
	}
	var ultima string
	for _, row := range rows[1:] {
		aberto := normalize.ParseMonetary(header.Cell(row, idxAberto))
		if aberto <= 0 {
			continue
		}
		if iso, ok := normalize.ParseDateISO(header.Cell(row, idxVenc)); ok && iso > ultima {
			ultima = iso
		}
	}
	return ultima
}

// clientSheetRows localiza a aba do cliente pelo nome ("ABG CORPORATE" casa
// com a aba "ABG").
func clientSheetRows(wb *extract.Workbook, clienteNome string) [][]string {
	name := strings.ToUpper(strings.TrimSpace(clienteNome))
	if name == "" {
		return nil
	}
	primeira := strings.SplitN(name, " ", 2)[0]
	for _, sheet := range wb.Sheets {
		if sheet.Name == sheetQuadroResumo || sheet.Name == sheetPlanilha1 {
			continue
		}
		sheetUpper := strings.ToUpper(strings.TrimSpace(sheet.Name))
		if name == sheetUpper || strings.HasPrefix(name, sheetUpper+" ") || strings.HasPrefix(sheetUpper, primeira) {
			return sheet.Rows
		}
	}
	return nil
}

func (imp *Importer) diasEmAberto(dataVencimento string) int {
	if dataVencimento == "" {
		return 0
	}
	venc, err := time.Parse("2006-01-02", dataVencimento)
	if err != nil {
		return 0
	}
	hoje := imp.now().UTC().Truncate(24 * time.Hour)
	dias := int(hoje.Sub(venc).Hours() / 24)
	if dias < 0 {
		return 0
	}
	return dias
}

// classeFromCell normaliza o texto de classificação da planilha ("GRAU A",
// "B", ...) para a classe. Texto irreconhecível cai em A.
func classeFromCell(raw string) domain.ClasseInadimplencia {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "GRAU B") || s == "B":
		return domain.ClasseB
	case strings.Contains(s, "GRAU C") || s == "C":
		return domain.ClasseC
	default:
		return domain.ClasseA
	}
}

// gestorEmail resolve o nome da coluna RESPONSÁVEL para o e-mail do
// team_member: nome completo, depois primeira palavra, por fim o próprio
// texto original (para nomes fora do mapa).
func (imp *Importer) gestorEmail(responsavel string) string {
	t := strings.TrimSpace(responsavel)
	if t == "" {
		return ""
	}
	if email, ok := imp.gestores[t]; ok {
		return email
	}
	if email, ok := imp.gestores[strings.SplitN(t, " ", 2)[0]]; ok {
		return email
	}
	return t
}
