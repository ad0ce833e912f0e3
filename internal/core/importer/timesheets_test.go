package importer

import (
	"context"
	"math"
	"testing"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/domain"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store/memory"
)

func TestImportTimesheetsColunaDecimal(t *testing.T) {
	st := memory.New()
	imp := newTestImporter(t, st)

	rows := [][]string{
		{"Data", "Grupo Cliente", "Cliente", "Total de Horas <br><small>em decimal</small>"},
		{"15/01/2025", "Grupo Acme", "Acme Ltda", "0,5"},
	}
	report, err := imp.ImportTimesheets(context.Background(), rows, true)
	if err != nil {
		t.Fatalf("ImportTimesheets: %v", err)
	}
	if report.Inserted != 1 {
		t.Fatalf("Inserted = %d; esperado 1", report.Inserted)
	}
	ts := st.Table(domain.TableTimesheets)
	// coluna decimal: 0,5 é meia hora, não meio dia
	if horas, _ := ts[0]["total_horas"].(float64); math.Abs(horas-0.5) > 1e-9 {
		t.Errorf("total_horas = %v; esperado 0.5", ts[0]["total_horas"])
	}
}

func TestImportTimesheetsSerialDeTempo(t *testing.T) {
	st := memory.New()
	imp := newTestImporter(t, st)

	rows := [][]string{
		{"Data", "Cliente", "Total de Horas"},
		{"15/01/2025", "Acme Ltda", "0.5"},
	}
	report, err := imp.ImportTimesheets(context.Background(), rows, true)
	if err != nil {
		t.Fatalf("ImportTimesheets: %v", err)
	}
	if report.Inserted != 1 {
		t.Fatalf("Inserted = %d; esperado 1", report.Inserted)
	}
	ts := st.Table(domain.TableTimesheets)
	// sem "decimal" no cabeçalho, 0.5 é fração de dia: 12 horas
	if horas, _ := ts[0]["total_horas"].(float64); math.Abs(horas-12.0) > 1e-9 {
		t.Errorf("total_horas = %v; esperado 12.0", ts[0]["total_horas"])
	}
}

func TestImportTimesheetsSubstituiPeriodo(t *testing.T) {
	st := memory.New()
	imp := newTestImporter(t, st)

	janeiro := [][]string{
		{"Data", "Grupo Cliente", "Cliente", "Total de Horas em decimal"},
		{"14/01/2025", "Grupo Acme", "Acme Ltda", "2,0"},
		{"15/01/2025", "Grupo Acme", "Acme Ltda", "3,0"},
		{"16/01/2025", "Grupo Acme", "Acme Ltda", "4,0"},
	}
	if _, err := imp.ImportTimesheets(context.Background(), janeiro, true); err != nil {
		t.Fatalf("primeira importação: %v", err)
	}

	correcao := [][]string{
		{"Data", "Grupo Cliente", "Cliente", "Total de Horas em decimal"},
		{"15/01/2025", "Grupo Acme", "Acme Ltda", "8,0"},
	}
	report, err := imp.ImportTimesheets(context.Background(), correcao, true)
	if err != nil {
		t.Fatalf("correção: %v", err)
	}
	if report.Deleted != 1 || report.Inserted != 1 {
		t.Fatalf("Deleted/Inserted = %d/%d; esperado 1/1", report.Deleted, report.Inserted)
	}

	ts := st.Table(domain.TableTimesheets)
	if len(ts) != 3 {
		t.Fatalf("linhas = %d; esperado 3 (apenas 15/01 substituído)", len(ts))
	}
	horasPorData := make(map[string]float64)
	for _, row := range ts {
		data, _ := row["data"].(string)
		horas, _ := row["total_horas"].(float64)
		horasPorData[data] += horas
	}
	want := map[string]float64{"2025-01-14": 2.0, "2025-01-15": 8.0, "2025-01-16": 4.0}
	for data, horas := range want {
		if math.Abs(horasPorData[data]-horas) > 1e-9 {
			t.Errorf("horas em %s = %v; esperado %v", data, horasPorData[data], horas)
		}
	}
}

func TestImportTimesheetsTetoDeHoras(t *testing.T) {
	st := memory.New()
	imp := newTestImporter(t, st)

	rows := [][]string{
		{"Data", "Cliente", "Total de Horas em decimal"},
		{"15/01/2025", "Acme Ltda", "10001"},
		{"15/01/2025", "Acme Ltda", "2,0"},
	}
	report, err := imp.ImportTimesheets(context.Background(), rows, true)
	if err != nil {
		t.Fatalf("ImportTimesheets: %v", err)
	}
	if report.Dropped != 1 || report.Inserted != 1 {
		t.Fatalf("Dropped/Inserted = %d/%d; esperado 1/1", report.Dropped, report.Inserted)
	}
}

func TestImportTimesheetsSemReplace(t *testing.T) {
	st := memory.New()
	imp := newTestImporter(t, st)

	rows := [][]string{
		{"Data", "Cliente", "Total de Horas em decimal"},
		{"15/01/2025", "Acme Ltda", "2,0"},
	}
	if _, err := imp.ImportTimesheets(context.Background(), rows, false); err != nil {
		t.Fatalf("primeira: %v", err)
	}
	report, err := imp.ImportTimesheets(context.Background(), rows, false)
	if err != nil {
		t.Fatalf("segunda: %v", err)
	}
	if report.Deleted != 0 {
		t.Errorf("Deleted = %d; esperado 0", report.Deleted)
	}
	if len(st.Table(domain.TableTimesheets)) != 2 {
		t.Errorf("sem replace as linhas duplicam (comportamento esperado do flag)")
	}
}

func TestImportTimesheetsColunasObrigatorias(t *testing.T) {
	imp := newTestImporter(t, memory.New())
	rows := [][]string{
		{"Data", "Grupo Cliente"},
		{"15/01/2025", "Grupo Acme"},
	}
	if _, err := imp.ImportTimesheets(context.Background(), rows, true); err == nil {
		t.Fatal("sem colunas obrigatórias deveria ser erro fatal")
	}
}
