// cmd/syncd/main.go
package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/api/handlers"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/api/responses"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/config"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/importer"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/match"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store/rest"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store/sqlitestore"
)

func buildStore(cfg *config.Config) (store.Store, error) {
	if cfg.Store.Driver == config.DriverSQLite {
		return sqlitestore.New(cfg.Store.SQLitePath)
	}
	return rest.New(cfg.Store.URL, cfg.Store.Key), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuração inválida: ", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Falha ao iniciar o logger: ", err)
	}
	defer logger.Sync()
	responses.SetLogger(logger)

	st, err := buildStore(cfg)
	if err != nil {
		log.Fatal("Falha ao abrir o store: ", err)
	}
	matcher, err := match.New(cfg.Overrides.Matcher)
	if err != nil {
		log.Fatal("Overrides de casamento inválidos: ", err)
	}

	imp := importer.New(st, matcher, logger, importer.Options{
		Gestores:      cfg.Overrides.Gestores,
		StatusAliases: cfg.Overrides.StatusAliases,
	})
	syncHandler := handlers.NewSyncHandler(imp)

	router := gin.Default()

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/sync/processos", syncHandler.HandleProcessos)
		apiV1.POST("/sync/timesheets", syncHandler.HandleTimesheets)
		apiV1.POST("/sync/financeiro", syncHandler.HandleFinanceiro)
		apiV1.POST("/sync/cdi", syncHandler.HandleCDI)
		apiV1.POST("/sync/dados", syncHandler.HandleDados)
		apiV1.GET("/grupos/horas", syncHandler.HandleHorasPorGrupo)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "sync-service"})
	})

	log.Printf("🚀 Sync Service (Go) iniciado e escutando na porta %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Falha ao iniciar o servidor de sincronização: ", err)
	}
}
