package importer

import (
	"context"
	"math"
	"testing"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/domain"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store/memory"
)

func TestHorasPorGrupo(t *testing.T) {
	st := memory.New()
	st.Seed(domain.ViewTimesheetsResumoPorGrupoAno,
		map[string]any{"grupo_cliente": "Grupo Adhemar/Flávio", "ano": "2024", "total_horas": 10.0},
		map[string]any{"grupo_cliente": "Grupo Adhemar/Flávio", "ano": "2023", "total_horas": 4.0},
		map[string]any{"grupo_cliente": "Adhemar / Flávio", "ano": "2024", "total_horas": 6.0},
		map[string]any{"grupo_cliente": "Beta", "ano": float64(2024), "total_horas": 1.5},
	)
	imp := newTestImporter(t, st)

	horas, err := imp.HorasPorGrupo(context.Background())
	if err != nil {
		t.Fatalf("HorasPorGrupo: %v", err)
	}
	// chaves literais preservadas; grafias distintas ainda separadas
	if len(horas) != 3 {
		t.Fatalf("grupos = %d; esperado 3", len(horas))
	}
	if h := horas["Grupo Adhemar/Flávio"]; math.Abs(h.Total-14.0) > 1e-9 || math.Abs(h.PorAno["2024"]-10.0) > 1e-9 {
		t.Errorf("Grupo Adhemar/Flávio = %+v; esperado total 14, 2024=10", h)
	}
	// ano numérico (banco Postgres) também é aceito
	if h := horas["Beta"]; math.Abs(h.PorAno["2024"]-1.5) > 1e-9 {
		t.Errorf("Beta = %+v; esperado 2024=1.5", h)
	}
}

func TestHorasParaGrupoMesclaVariantes(t *testing.T) {
	horas := map[string]HorasGrupo{
		"Grupo Adhemar/Flávio": {Total: 14.0, PorAno: map[string]float64{"2024": 10.0, "2023": 4.0}},
		"Adhemar / Flávio":     {Total: 6.0, PorAno: map[string]float64{"2024": 6.0}},
		"Beta":                 {Total: 1.5, PorAno: map[string]float64{"2024": 1.5}},
	}

	merged := HorasParaGrupo(horas, "adhemar/flávio")
	if math.Abs(merged.Total-20.0) > 1e-9 {
		t.Errorf("Total = %v; esperado 20", merged.Total)
	}
	if math.Abs(merged.PorAno["2024"]-16.0) > 1e-9 || math.Abs(merged.PorAno["2023"]-4.0) > 1e-9 {
		t.Errorf("PorAno = %v; esperado 2024=16 2023=4", merged.PorAno)
	}

	vazio := HorasParaGrupo(horas, "Inexistente")
	if vazio.Total != 0 || len(vazio.PorAno) != 0 {
		t.Errorf("grupo inexistente = %+v; esperado zero", vazio)
	}
}
