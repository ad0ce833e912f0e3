package importer

import (
	"context"
	"math"
	"testing"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/domain"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store/memory"
)

func TestImportDadosCruzamento(t *testing.T) {
	st := memory.New()
	st.Seed(domain.TableClientesEscritorio, map[string]any{
		"id":            "ce-abg",
		"razao_social":  "ABG CORPORATE PARTICIPAÇÕES",
		"grupo_cliente": "Grupo ABG",
	})
	st.Seed(domain.TableClientsInadimplencia, map[string]any{
		"id":           "ci-abg",
		"razao_social": "ABG",
		"resolvido_at": nil,
	})
	imp := newTestImporter(t, st)

	rows := [][]string{
		{"Cliente", "QT PASTA", "QT HORAS", "2024", "2023"},
		{"ABG CORPORATE", "12", "80,51", "40,00", "40,51"},
	}
	report, err := imp.ImportDados(context.Background(), rows)
	if err != nil {
		t.Fatalf("ImportDados: %v", err)
	}
	if report.Updated != 1 || report.Skipped != 0 {
		t.Fatalf("Updated/Skipped = %d/%d; esperado 1/0", report.Updated, report.Skipped)
	}

	var abg map[string]any
	for _, row := range st.Table(domain.TableClientsInadimplencia) {
		if row["id"] == "ci-abg" {
			abg = row
		}
	}
	// a grafia do DADOS é a canônica e sobrescreve a anterior
	if abg["razao_social"] != "ABG CORPORATE" {
		t.Errorf("razao_social = %v; esperado ABG CORPORATE", abg["razao_social"])
	}
	if abg["qtd_processos"] != 12 {
		t.Errorf("qtd_processos = %v; esperado 12", abg["qtd_processos"])
	}
	// horas vêm como serial de dias: 80,51 dias = 1932,24 horas
	if horas, _ := abg["horas_total"].(float64); math.Abs(horas-1932.24) > 1e-9 {
		t.Errorf("horas_total = %v; esperado 1932.24", abg["horas_total"])
	}
	porAno, _ := abg["horas_por_ano"].(map[string]float64)
	if len(porAno) != 2 || math.Abs(porAno["2024"]-960.0) > 1e-9 {
		t.Errorf("horas_por_ano = %v; esperado 2024=960", porAno)
	}
	if abg["cliente_escritorio_id"] != "ce-abg" {
		t.Errorf("cliente_escritorio_id = %v; esperado ce-abg", abg["cliente_escritorio_id"])
	}
}

func TestImportDadosViaOverride(t *testing.T) {
	st := memory.New()
	st.Seed(domain.TableClientsInadimplencia, map[string]any{
		"id":           "ci-disep",
		"razao_social": "DISEP",
		"resolvido_at": nil,
	})
	imp := newTestImporter(t, st)

	rows := [][]string{
		{"Cliente", "QT PASTA"},
		{"Grupo Disep", "3"},
	}
	report, err := imp.ImportDados(context.Background(), rows)
	if err != nil {
		t.Fatalf("ImportDados: %v", err)
	}
	if report.Updated != 1 {
		t.Fatalf("Updated = %d; esperado 1", report.Updated)
	}
	row := st.Table(domain.TableClientsInadimplencia)[0]
	// o override também define o nome padrão
	if row["razao_social"] != "Grupo Disep" {
		t.Errorf("razao_social = %v; esperado Grupo Disep", row["razao_social"])
	}
}

func TestImportDadosNaoEncontrado(t *testing.T) {
	st := memory.New()
	st.Seed(domain.TableClientsInadimplencia, map[string]any{
		"razao_social": "Beta SA",
		"resolvido_at": nil,
	})
	imp := newTestImporter(t, st)

	rows := [][]string{
		{"Cliente", "QT PASTA"},
		{"Zeta Holding", "1"},
		{"", "2"},
	}
	report, err := imp.ImportDados(context.Background(), rows)
	if err != nil {
		t.Fatalf("ImportDados: %v", err)
	}
	if report.Updated != 0 || report.Skipped != 2 {
		t.Fatalf("Updated/Skipped = %d/%d; esperado 0/2", report.Updated, report.Skipped)
	}
}

func TestImportDadosIgnoraResolvidos(t *testing.T) {
	st := memory.New()
	st.Seed(domain.TableClientsInadimplencia, map[string]any{
		"razao_social": "Acme Ltda",
		"resolvido_at": "2024-06-01",
	})
	imp := newTestImporter(t, st)

	rows := [][]string{
		{"Cliente", "QT PASTA"},
		{"Acme Ltda", "5"},
	}
	report, err := imp.ImportDados(context.Background(), rows)
	if err != nil {
		t.Fatalf("ImportDados: %v", err)
	}
	// cliente já resolvido está fora do cruzamento
	if report.Updated != 0 || report.Skipped != 1 {
		t.Fatalf("Updated/Skipped = %d/%d; esperado 0/1", report.Updated, report.Skipped)
	}
}
