package extract

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func xlsxFixture(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "QUADRO RESUMO")
	f.SetSheetRow("QUADRO RESUMO", "A1", &[]any{"CLIENTE", "SALDO EM ABERTO"})
	f.SetSheetRow("QUADRO RESUMO", "A2", &[]any{"ABG CORPORATE", "R$ 9.939,84"})

	if _, err := f.NewSheet("ABG"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	f.SetSheetRow("ABG", "A1", &[]any{"DATA VENCIMENTO", "VALOR EM ABERTO"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return &buf
}

func TestOpenWorkbookXLSX(t *testing.T) {
	wb, err := OpenWorkbook(xlsxFixture(t))
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	names := wb.SheetNames()
	if len(names) != 2 || names[0] != "QUADRO RESUMO" || names[1] != "ABG" {
		t.Fatalf("SheetNames = %v", names)
	}

	rows, ok := wb.Rows("quadro resumo") // sem caixa
	if !ok || len(rows) != 2 {
		t.Fatalf("Rows(quadro resumo) = %v, %v", rows, ok)
	}
	if rows[1][0] != "ABG CORPORATE" {
		t.Errorf("célula = %q; esperado ABG CORPORATE", rows[1][0])
	}
	if _, ok := wb.Rows("Inexistente"); ok {
		t.Error("aba inexistente não deveria existir")
	}
	if first := wb.FirstRows(); len(first) != 2 {
		t.Errorf("FirstRows = %d linhas; esperado 2", len(first))
	}
}

func TestOpenWorkbookFormatoInvalido(t *testing.T) {
	if _, err := OpenWorkbook(strings.NewReader("isto não é uma planilha")); err == nil {
		t.Fatal("conteúdo arbitrário deveria falhar")
	}
}

func TestOpenEscolhePorExtensao(t *testing.T) {
	csv := "Data;Cliente;Total de Horas\n15/01/2025;Acme;2,5\n"
	wb, err := Open("relatorio.CSV", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rows, ok := wb.Rows("csv")
	if !ok || len(rows) != 2 || rows[1][1] != "Acme" {
		t.Fatalf("Rows(csv) = %v, %v", rows, ok)
	}

	if _, err := Open("relatorio.xlsx", xlsxFixture(t)); err != nil {
		t.Fatalf("Open(.xlsx): %v", err)
	}
}

func TestReadCSVLatin1(t *testing.T) {
	// "Situação" em ISO8859-1: 0xE7 0xE3 não são UTF-8 válido
	raw := []byte("Cliente;Situa\xe7\xe3o\nAcme;Em aberto\n")
	rows, err := ReadCSV(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if rows[0][1] != "Situação" {
		t.Errorf("cabeçalho = %q; esperado Situação (reinterpretado de latin1)", rows[0][1])
	}
}

func TestReadCSVCamposDesiguais(t *testing.T) {
	csv := "a;b;c\n1;2\n1;2;3;4\n"
	rows, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 3 || len(rows[1]) != 2 || len(rows[2]) != 4 {
		t.Fatalf("linhas com larguras variáveis deveriam passar: %v", rows)
	}
}
