package importer

import (
	"math"
	"strings"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/header"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/normalize"
)

// processosIndexes é o mapa de colunas resolvido uma vez por arquivo; as
// linhas só são projetadas depois disso (nunca índice cru no meio da regra de
// negócio).
type processosIndexes struct {
	grupoCliente int
	razaoSocial  int
	cnpj         int
	qtdProcessos int
	horasTotal   int
	situacao     int
	horasPorAno  map[string]int
}

func resolveProcessosColumns(headerRow []string) processosIndexes {
	return processosIndexes{
		grupoCliente: header.FindColumn(headerRow, processosAliases["grupo_cliente"]),
		razaoSocial:  findClienteColumn(headerRow),
		cnpj:         header.FindColumn(headerRow, processosAliases["cnpj"]),
		qtdProcessos: header.FindColumn(headerRow, processosAliases["qtd_processos"]),
		horasTotal:   header.FindColumn(headerRow, processosAliases["horas_total"]),
		situacao:     findSituacaoColumn(headerRow),
		horasPorAno:  header.YearColumns(headerRow),
	}
}

// candidato é uma linha do relatório de processos projetada para tipos.
// Cada linha representa um processo de uma empresa; a agregação por entidade
// acontece depois.
type candidato struct {
	grupoCliente string
	razaoSocial  string
	cnpj         string
	qtdProcessos *int
	horasTotal   *float64
	horasPorAno  map[string]float64
}

// rowToCandidato projeta uma linha crua. Retorna nil quando a razão social
// está em branco (linha pulada, contada como skipped, nunca como erro).
func rowToCandidato(row []string, idx processosIndexes) *candidato {
	razao := header.Cell(row, idx.razaoSocial)
	if razao == "" {
		return nil
	}
	c := &candidato{
		grupoCliente: header.Cell(row, idx.grupoCliente),
		razaoSocial:  razao,
		cnpj:         normalize.NormalizeCNPJ(header.Cell(row, idx.cnpj)),
	}
	if n, ok := normalize.ParseNumber(header.Cell(row, idx.qtdProcessos)); ok {
		qtd := int(math.Max(0, math.Round(n)))
		c.qtdProcessos = &qtd
	}
	if h, ok := parseHorasProcessos(header.Cell(row, idx.horasTotal)); ok {
		horas := math.Max(0, h)
		c.horasTotal = &horas
	}
	for ano, col := range idx.horasPorAno {
		if v, ok := normalize.ParseNumber(header.Cell(row, col)); ok && v > 0 {
			if c.horasPorAno == nil {
				c.horasPorAno = make(map[string]float64)
			}
			c.horasPorAno[ano] = v
		}
	}
	return c
}

// parseHorasProcessos aceita horas em número (BR/EN) ou duração "H:MM[:SS]"
// (o relatório mistura os dois formatos entre exportações).
func parseHorasProcessos(val string) (float64, bool) {
	if strings.Contains(val, ":") {
		return normalize.ParseDurationHours(val)
	}
	return normalize.ParseNumber(val)
}
