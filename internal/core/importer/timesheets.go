package importer

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/header"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/normalize"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/domain"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store"
)

// ImportTimesheets sincroniza o relatório TimeSheets (Data, Grupo Cliente,
// Cliente, Total de Horas) com a tabela transacional de horas.
//
// Idempotência por substituição de período: com replaceDateRange (padrão da
// CLI e da API), todas as linhas do store cujas datas aparecem no arquivo são
// removidas antes dos inserts. Datas fora do arquivo nunca são tocadas.
func (imp *Importer) ImportTimesheets(ctx context.Context, rows [][]string, replaceDateRange bool) (*domain.RunReport, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("TimeSheets sem dados (cabeçalho + pelo menos uma linha)")
	}
	headerRow := rows[0]
	idxData := header.FindColumn(headerRow, timesheetAliases["data"])
	idxGrupo := header.FindColumn(headerRow, timesheetAliases["grupo_cliente"])
	// exato primeiro: "Grupo Cliente" contém "cliente" e viria antes
	idxCliente := findClienteColumn(headerRow)
	if idxCliente < 0 {
		idxCliente = header.FindColumn(headerRow, timesheetAliases["cliente"])
	}
	idxHoras, horasDecimal := findTotalHorasColumn(headerRow)
	if idxData < 0 || idxCliente < 0 || idxHoras < 0 {
		return nil, fmt.Errorf("TimeSheets: colunas obrigatórias não encontradas (Data, Cliente, Total de Horas)")
	}

	report := &domain.RunReport{}
	var payloads []store.Row
	datasNoArquivo := make(map[string]struct{})
	var ordemDatas []string

	for _, row := range rows[1:] {
		dataISO, temData := normalize.ParseDateISO(header.Cell(row, idxData))
		cliente := header.Cell(row, idxCliente)
		rawHoras := header.Cell(row, idxHoras)
		var totalHoras float64
		var temHoras bool
		if horasDecimal {
			totalHoras, temHoras = normalize.ParseDecimalHours(rawHoras)
		} else {
			totalHoras, temHoras = normalize.ParseDurationHours(rawHoras)
		}
		if !temData || cliente == "" || !temHoras || totalHoras < 0 {
			report.Skipped++
			continue
		}
		if totalHoras > maxHorasLinha {
			imp.log.Warn("linha de timesheet descartada (total de horas implausível)",
				zap.Float64("total_horas", totalHoras),
				zap.String("data", dataISO),
				zap.String("cliente", cliente))
			report.Dropped++
			continue
		}
		if _, seen := datasNoArquivo[dataISO]; !seen {
			datasNoArquivo[dataISO] = struct{}{}
			ordemDatas = append(ordemDatas, dataISO)
		}
		payloads = append(payloads, store.Row{
			"data":          dataISO,
			"grupo_cliente": nullableString(header.Cell(row, idxGrupo)),
			"cliente":       cliente,
			"total_horas":   math.Max(0, totalHoras),
		})
	}

	if replaceDateRange && len(payloads) > 0 && len(ordemDatas) > 0 {
		datas := make([]any, len(ordemDatas))
		for i, d := range ordemDatas {
			datas[i] = d
		}
		if _, err := imp.store.Delete(ctx, domain.TableTimesheets, []store.Filter{store.In("data", datas)}); err != nil {
			imp.log.Warn("aviso ao remover o período anterior do timesheet", zap.Error(err))
		} else {
			report.Deleted = 1
		}
	}

	for start := 0; start < len(payloads); start += batchSize {
		end := start + batchSize
		if end > len(payloads) {
			end = len(payloads)
		}
		chunk := payloads[start:end]
		if err := imp.store.Insert(ctx, domain.TableTimesheets, chunk); err != nil {
			imp.log.Error("erro ao inserir lote de timesheets", zap.Int("inicio", start), zap.Error(err))
			report.Errors++
			continue
		}
		report.Inserted += len(chunk)
	}

	imp.log.Info("importação de timesheets concluída",
		zap.Int("inseridos", report.Inserted),
		zap.Bool("periodo_substituido", report.Deleted == 1),
		zap.Int("descartados", report.Dropped),
		zap.Int("erros", report.Errors))
	return report, nil
}
