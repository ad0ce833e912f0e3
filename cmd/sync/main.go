// cmd/sync/main.go
//
// CLI de importação: cada variante de relatório é um subcomando que lê o
// arquivo local, executa a importação e imprime o resumo da execução.
// Sai com código diferente de zero apenas em erro de configuração ou de
// leitura do arquivo; erros de linha individuais aparecem nos contadores.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/config"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/extract"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/importer"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/match"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/domain"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store/rest"
	"github.com/LeoMarquesSilva/financeiro-bp/internal/store/sqlitestore"
)

var replaceDateRange bool

func buildImporter() (*importer.Importer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	var st store.Store
	if cfg.Store.Driver == config.DriverSQLite {
		st, err = sqlitestore.New(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
	} else {
		st = rest.New(cfg.Store.URL, cfg.Store.Key)
	}
	matcher, err := match.New(cfg.Overrides.Matcher)
	if err != nil {
		return nil, err
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return importer.New(st, matcher, logger, importer.Options{
		Gestores:      cfg.Overrides.Gestores,
		StatusAliases: cfg.Overrides.StatusAliases,
	}), nil
}

func openWorkbook(path string) (*extract.Workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir %s: %w", path, err)
	}
	defer file.Close()
	return extract.Open(filepath.Base(path), file)
}

func printReport(report *domain.RunReport) {
	fmt.Println("--- Resumo ---")
	fmt.Println("Inseridos:", report.Inserted)
	fmt.Println("Atualizados:", report.Updated)
	if report.Upserted > 0 {
		fmt.Println("Upserted:", report.Upserted)
	}
	fmt.Println("Ignorados:", report.Skipped)
	if report.Dropped > 0 {
		fmt.Println("Descartados:", report.Dropped)
	}
	if report.Deleted == 1 {
		fmt.Println("Período substituído: sim")
	}
	if report.GruposUpserted > 0 {
		fmt.Println("Grupos atualizados:", report.GruposUpserted)
	}
	fmt.Println("Erros:", report.Errors)
	if len(report.SituacoesNaoMapeadas) > 0 {
		fmt.Println("Situações não mapeadas (contaram em outros):")
		for _, s := range report.SituacoesNaoMapeadas {
			fmt.Println("  -", s)
		}
	}
}

// runImport encapsula o fluxo comum dos subcomandos de arquivo.
func runImport(path string, fn func(*importer.Importer, *extract.Workbook) (*domain.RunReport, error)) error {
	imp, err := buildImporter()
	if err != nil {
		return err
	}
	wb, err := openWorkbook(path)
	if err != nil {
		return err
	}
	report, err := fn(imp, wb)
	if err != nil {
		return err
	}
	printReport(report)
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "sync",
		Short:         "Sincroniza extratos do escritório com o sistema de registro",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "processos <arquivo>",
		Short: "Importa o relatório Processos Completo (registro de clientes + contagem por situação)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], func(imp *importer.Importer, wb *extract.Workbook) (*domain.RunReport, error) {
				return imp.ImportProcessos(cmd.Context(), wb.FirstRows())
			})
		},
	})

	timesheetsCmd := &cobra.Command{
		Use:   "timesheets <arquivo>",
		Short: "Importa o relatório TimeSheets (substitui as datas presentes no arquivo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], func(imp *importer.Importer, wb *extract.Workbook) (*domain.RunReport, error) {
				return imp.ImportTimesheets(cmd.Context(), wb.FirstRows(), replaceDateRange)
			})
		},
	}
	timesheetsCmd.Flags().BoolVar(&replaceDateRange, "replace-date-range", true,
		"remove do store as datas presentes no arquivo antes de inserir")
	rootCmd.AddCommand(timesheetsCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "financeiro <arquivo>",
		Short: "Importa o relatório de faturamento (upsert por título/parcela)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], func(imp *importer.Importer, wb *extract.Workbook) (*domain.RunReport, error) {
				return imp.ImportFinanceiro(cmd.Context(), wb.FirstRows())
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "cdi <arquivo>",
		Short: "Importa a planilha de controle de inadimplência",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], func(imp *importer.Importer, wb *extract.Workbook) (*domain.RunReport, error) {
				return imp.ImportCDI(cmd.Context(), wb)
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "dados <arquivo>",
		Short: "Cruza o DADOS.xlsx com os inadimplentes em aberto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], func(imp *importer.Importer, wb *extract.Workbook) (*domain.RunReport, error) {
				return imp.ImportDados(cmd.Context(), wb.FirstRows())
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "grupos",
		Short: "Mostra as horas de timesheet agregadas por grupo e ano",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			imp, err := buildImporter()
			if err != nil {
				return err
			}
			horas, err := imp.HorasPorGrupo(cmd.Context())
			if err != nil {
				return err
			}
			for grupo, h := range horas {
				fmt.Printf("%s: %.2fh", grupo, h.Total)
				for ano, v := range h.PorAno {
					fmt.Printf(" | %s: %.2fh", ano, v)
				}
				fmt.Println()
			}
			return nil
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
