package importer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/match"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/domain"
)

// HorasGrupo acumula as horas de timesheet de um grupo, no total e por ano.
type HorasGrupo struct {
	Total  float64
	PorAno map[string]float64
}

// HorasPorGrupo lê a view agregada de horas por grupo/ano (calculada no
// banco, para não trazer as linhas transacionais) e devolve o mapa por nome
// literal de grupo. O merge entre variantes de grafia fica em
// HorasParaGrupo, já que a chave literal ainda é útil para depuração.
func (imp *Importer) HorasPorGrupo(ctx context.Context) (map[string]HorasGrupo, error) {
	rows, err := imp.store.Select(ctx, domain.ViewTimesheetsResumoPorGrupoAno,
		[]string{"grupo_cliente", "ano", "total_horas"}, nil)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler o resumo de horas por grupo: %w", err)
	}
	out := make(map[string]HorasGrupo)
	for _, r := range rows {
		grupo := stringValue(r["grupo_cliente"])
		ano := anoValue(r["ano"])
		horas := floatValue(r["total_horas"])
		if grupo == "" && ano == "" {
			continue
		}
		entry := out[grupo]
		entry.Total += horas
		if ano != "" {
			if entry.PorAno == nil {
				entry.PorAno = make(map[string]float64)
			}
			entry.PorAno[ano] += horas
		}
		out[grupo] = entry
	}
	return out, nil
}

// HorasParaGrupo soma as horas de todas as variantes de grafia de um grupo
// ("Adhemar / Flávio" e "Grupo Adhemar/Flávio" caem na mesma chave
// normalizada).
func HorasParaGrupo(horas map[string]HorasGrupo, grupo string) HorasGrupo {
	merged := HorasGrupo{PorAno: make(map[string]float64)}
	alvo := match.NormalizeGrupo(grupo)
	for key, h := range horas {
		if match.NormalizeGrupo(key) != alvo {
			continue
		}
		merged.Total += h.Total
		for ano, v := range h.PorAno {
			merged.PorAno[ano] += v
		}
	}
	return merged
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// anoValue aceita o ano como número (Postgres) ou texto (view do SQLite).
func anoValue(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.Itoa(int(n))
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
