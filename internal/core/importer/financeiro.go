package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/header"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/normalize"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/domain"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store"
)

// ImportFinanceiro sincroniza o relatório de faturamento com a tabela de
// parcelas. Upsert pela chave natural (ci_titulo, ci_parcela): reimportar o
// mesmo extrato é naturalmente idempotente e janelas parciais de datas nunca
// apagam parcelas fora da janela.
func (imp *Importer) ImportFinanceiro(ctx context.Context, rows [][]string) (*domain.RunReport, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("relatório financeiro sem dados (cabeçalho + pelo menos uma linha)")
	}
	headerRow := rows[0]
	idx := make(map[string]int, len(financeiroAliases))
	for field, aliases := range financeiroAliases {
		idx[field] = header.FindColumn(headerRow, aliases)
	}
	for _, obrigatoria := range []string{"ci_titulo", "ci_parcela", "data_vencimento", "nro_titulo", "cliente", "valor", "situacao"} {
		if idx[obrigatoria] < 0 {
			return nil, fmt.Errorf("relatório financeiro: coluna obrigatória %q não encontrada", obrigatoria)
		}
	}

	report := &domain.RunReport{}
	var payloads []store.Row
	for _, row := range rows[1:] {
		ciTitulo, okTitulo := digitsToInt(header.Cell(row, idx["ci_titulo"]))
		ciParcela, okParcela := digitsToInt(header.Cell(row, idx["ci_parcela"]))
		dataVencimento, temVencimento := normalize.ParseDateISO(header.Cell(row, idx["data_vencimento"]))
		nroTitulo := header.Cell(row, idx["nro_titulo"])
		cliente := header.Cell(row, idx["cliente"])
		valor, temValor := normalize.ParseNumber(header.Cell(row, idx["valor"]))
		if !okTitulo || !okParcela || !temVencimento || nroTitulo == "" || cliente == "" || !temValor {
			report.Skipped++
			continue
		}

		situacao := strings.ToUpper(header.Cell(row, idx["situacao"]))
		if situacao != "PAGO" {
			situacao = "ABERTO"
		}
		payload := store.Row{
			"ci_titulo":       ciTitulo,
			"ci_parcela":      ciParcela,
			"data_vencimento": dataVencimento,
			"nro_titulo":      nroTitulo,
			"cliente":         cliente,
			"descricao":       nullableString(header.Cell(row, idx["descricao"])),
			"valor":           normalize.Round2(valor),
			"situacao":        situacao,
		}
		if dataBaixa, ok := normalize.ParseDateISO(header.Cell(row, idx["data_baixa"])); ok {
			payload["data_baixa"] = dataBaixa
		} else {
			payload["data_baixa"] = nil
		}
		payloads = append(payloads, payload)
	}

	for start := 0; start < len(payloads); start += batchSize {
		end := start + batchSize
		if end > len(payloads) {
			end = len(payloads)
		}
		chunk := payloads[start:end]
		if err := imp.store.Upsert(ctx, domain.TableRelatorioFinanceiro, chunk, []string{"ci_titulo", "ci_parcela"}); err != nil {
			imp.log.Error("erro no upsert do relatório financeiro", zap.Int("inicio", start), zap.Error(err))
			report.Errors++
			continue
		}
		report.Upserted += len(chunk)
	}

	imp.log.Info("importação do relatório financeiro concluída",
		zap.Int("linhas", len(payloads)),
		zap.Int("upserted", report.Upserted),
		zap.Int("erros", report.Errors))
	return report, nil
}

// digitsToInt extrai os dígitos de um identificador ("CI 1234" → 1234).
func digitsToInt(val string) (int, bool) {
	var b strings.Builder
	for _, r := range val {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}
