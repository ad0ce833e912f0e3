package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/api/responses"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/extract"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/importer"
)

// SyncHandler lida com as requisições de importação de extratos (upload
// multipart, uma rota por variante de relatório).
type SyncHandler struct {
	importer *importer.Importer
}

// NewSyncHandler cria um novo handler de sincronização.
func NewSyncHandler(imp *importer.Importer) *SyncHandler {
	return &SyncHandler{importer: imp}
}

// openUpload abre o arquivo do formulário e valida a extensão.
func openUpload(c *gin.Context, formKey string, extensoes ...string) (*extract.Workbook, bool) {
	fileHeader, err := c.FormFile(formKey)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Arquivo %q não encontrado ou inválido", formKey))
		return nil, false
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	permitida := false
	for _, e := range extensoes {
		if ext == e {
			permitida = true
			break
		}
	}
	if !permitida {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Extensão de arquivo não suportada: %s", ext))
		return nil, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo enviado")
		return nil, false
	}
	defer file.Close()

	wb, err := extract.Open(fileHeader.Filename, file)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Erro ao ler a planilha", err.Error())
		return nil, false
	}
	return wb, true
}

// HandleProcessos importa o relatório "Processos Completo" (registro de
// clientes + contagem por situação).
func (h *SyncHandler) HandleProcessos(c *gin.Context) {
	wb, ok := openUpload(c, "file", ".xlsx", ".xls")
	if !ok {
		return
	}
	report, err := h.importer.ImportProcessos(c.Request.Context(), wb.FirstRows())
	if err != nil {
		responses.Error(c, http.StatusUnprocessableEntity, "Erro ao importar o relatório de processos", err.Error())
		return
	}
	responses.Success(c, report, "Importação de processos concluída")
}

// HandleTimesheets importa o relatório TimeSheets. O campo de formulário
// "replaceDateRange" (padrão "true") controla a substituição de período.
func (h *SyncHandler) HandleTimesheets(c *gin.Context) {
	wb, ok := openUpload(c, "file", ".xlsx", ".xls", ".csv")
	if !ok {
		return
	}
	replace := c.DefaultPostForm("replaceDateRange", "true") != "false"
	report, err := h.importer.ImportTimesheets(c.Request.Context(), wb.FirstRows(), replace)
	if err != nil {
		responses.Error(c, http.StatusUnprocessableEntity, "Erro ao importar o TimeSheets", err.Error())
		return
	}
	responses.Success(c, report, "Importação de timesheets concluída")
}

// HandleFinanceiro importa o relatório de faturamento (CSV ou Excel).
func (h *SyncHandler) HandleFinanceiro(c *gin.Context) {
	wb, ok := openUpload(c, "file", ".csv", ".xlsx", ".xls")
	if !ok {
		return
	}
	report, err := h.importer.ImportFinanceiro(c.Request.Context(), wb.FirstRows())
	if err != nil {
		responses.Error(c, http.StatusUnprocessableEntity, "Erro ao importar o relatório financeiro", err.Error())
		return
	}
	responses.Success(c, report, "Importação do relatório financeiro concluída")
}

// HandleCDI importa a planilha de controle de inadimplência (multiabas).
func (h *SyncHandler) HandleCDI(c *gin.Context) {
	wb, ok := openUpload(c, "file", ".xlsx", ".xls")
	if !ok {
		return
	}
	report, err := h.importer.ImportCDI(c.Request.Context(), wb)
	if err != nil {
		responses.Error(c, http.StatusUnprocessableEntity, "Erro ao importar o CDI", err.Error())
		return
	}
	responses.Success(c, report, "Importação do CDI concluída")
}

// HandleDados cruza o DADOS.xlsx com os inadimplentes em aberto.
func (h *SyncHandler) HandleDados(c *gin.Context) {
	wb, ok := openUpload(c, "file", ".xlsx", ".xls")
	if !ok {
		return
	}
	report, err := h.importer.ImportDados(c.Request.Context(), wb.FirstRows())
	if err != nil {
		responses.Error(c, http.StatusUnprocessableEntity, "Erro ao cruzar o DADOS", err.Error())
		return
	}
	responses.Success(c, report, "Cruzamento do DADOS concluído")
}

// HandleHorasPorGrupo devolve as horas agregadas por grupo/ano (leitura da
// view, consumida pelos cards do painel).
func (h *SyncHandler) HandleHorasPorGrupo(c *gin.Context) {
	horas, err := h.importer.HorasPorGrupo(c.Request.Context())
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao consultar as horas por grupo", err.Error())
		return
	}
	if grupo := c.Query("grupo"); grupo != "" {
		responses.Success(c, importer.HorasParaGrupo(horas, grupo), "Horas do grupo")
		return
	}
	responses.Success(c, horas, "Horas por grupo")
}
