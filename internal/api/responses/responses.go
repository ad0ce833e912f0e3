// Package responses define o envelope padrão das respostas da API de
// sincronização e o log estruturado de cada resposta emitida.
package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// APIResponse é o envelope padrão: status "success" ou "error", o dado da
// operação (ex.: o relatório de execução) e mensagens para o operador.
type APIResponse struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// SetLogger injeta o logger usado no registro das respostas.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Success envia uma resposta de sucesso com o dado e a mensagem informados.
func Success(c *gin.Context, data interface{}, message string) {
	resp := APIResponse{Status: "success", Data: data, Message: message}
	c.JSON(http.StatusOK, resp)
	logger.Info("API success", zap.String("path", c.Request.URL.Path), zap.Int("status", http.StatusOK))
}

// Error envia uma resposta de erro com o código, a mensagem e detalhes
// opcionais.
func Error(c *gin.Context, code int, message string, errs ...string) {
	resp := APIResponse{Status: "error", Message: message, Errors: errs}
	c.JSON(code, resp)
	logger.Error("API error", zap.String("path", c.Request.URL.Path), zap.Int("status", code), zap.Strings("errors", errs))
}
