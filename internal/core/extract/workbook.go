// Package extract lê planilhas (.xlsx, .xls, .csv) para uma representação
// uniforme de linhas de texto. O conteúdo chega via upload ou caminho local e
// nunca é confiável: arquivos corrompidos ou de formato errado retornam erro,
// nunca linhas parciais silenciosas.
package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Sheet é uma aba já materializada como matriz de strings. Valores numéricos
// e de data chegam como o texto exibido pela planilha (seriais inclusos);
// interpretação é responsabilidade dos parsers de normalize.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook é o conjunto ordenado de abas de um arquivo.
type Workbook struct {
	Sheets []Sheet
}

// SheetNames retorna os nomes das abas na ordem do arquivo.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Rows retorna as linhas da aba de nome dado (comparação sem caixa e sem
// espaços nas pontas). ok=false quando a aba não existe.
func (w *Workbook) Rows(name string) ([][]string, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, s := range w.Sheets {
		if strings.ToLower(strings.TrimSpace(s.Name)) == want {
			return s.Rows, true
		}
	}
	return nil, false
}

// FirstRows retorna as linhas da primeira aba, ou nil quando o arquivo não
// tem abas.
func (w *Workbook) FirstRows() [][]string {
	if len(w.Sheets) == 0 {
		return nil
	}
	return w.Sheets[0].Rows
}

// Open carrega um arquivo de planilha escolhendo o leitor pela extensão:
// .csv vai para o leitor CSV (vira workbook de aba única "csv"); qualquer
// outra extensão tenta xlsx e depois xls.
func Open(filename string, file io.Reader) (*Workbook, error) {
	if strings.ToLower(filepath.Ext(filename)) == ".csv" {
		rows, err := ReadCSV(file)
		if err != nil {
			return nil, err
		}
		return &Workbook{Sheets: []Sheet{{Name: "csv", Rows: rows}}}, nil
	}
	return OpenWorkbook(file)
}

// OpenWorkbook materializa todas as abas de um arquivo Excel. Tenta xlsx
// (excelize) e, se o container não for OOXML, tenta o formato binário .xls.
func OpenWorkbook(file io.Reader) (*Workbook, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	reader := bytes.NewReader(data)

	// tenta xlsx
	f, err := excelize.OpenReader(reader)
	if err == nil {
		defer f.Close()
		wb := &Workbook{}
		for _, name := range f.GetSheetList() {
			rows, err := f.GetRows(name)
			if err != nil {
				return nil, fmt.Errorf("erro ao ler a aba %q: %w", name, err)
			}
			wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
		}
		if len(wb.Sheets) == 0 {
			return nil, fmt.Errorf("o arquivo não contém planilhas")
		}
		return wb, nil
	}

	// tenta xls
	reader.Seek(0, io.SeekStart)
	workbook, err := xls.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("unsupported workbook file format")
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, fmt.Errorf("o arquivo .xls não contém planilhas")
	}
	wb := &Workbook{}
	for i := range workbook.GetSheets() {
		sheet, err := workbook.GetSheet(i)
		if err != nil {
			return nil, fmt.Errorf("erro ao obter planilha do arquivo .xls: %w", err)
		}
		var allRows [][]string
		for _, row := range sheet.GetRows() {
			var csvRow []string
			for _, cell := range row.GetCols() {
				csvRow = append(csvRow, cell.GetString())
			}
			allRows = append(allRows, csvRow)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: sheet.GetName(), Rows: allRows})
	}
	return wb, nil
}

// ReadCSV lê um CSV separado por ponto e vírgula. Arquivos que não são UTF-8
// válido são reinterpretados como ISO8859-1 (padrão dos exports legados).
func ReadCSV(file io.Reader) ([][]string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		decoder := charmap.ISO8859_1.NewDecoder()
		src = transform.NewReader(bytes.NewReader(data), decoder)
	}
	reader := csv.NewReader(src)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao ler o CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
