// Package config carrega a configuração do serviço e da CLI: variáveis de
// ambiente (com .env em desenvolvimento) e um arquivo YAML opcional de
// overrides operacionais (exceções do casamento de nomes, aliases de situação
// e o mapa responsável → e-mail).
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/core/match"
)

// Drivers de persistência suportados.
const (
	DriverRest   = "rest"
	DriverSQLite = "sqlite"
)

type StoreConfig struct {
	Driver     string `validate:"required,oneof=rest sqlite"`
	URL        string `validate:"required_if=Driver rest,omitempty,url"`
	Key        string `validate:"required_if=Driver rest"`
	SQLitePath string `validate:"required_if=Driver sqlite"`
}

// Overrides é o conteúdo do arquivo YAML apontado por SYNC_OVERRIDES. Tudo é
// opcional; o que não vier usa os defaults embutidos.
type Overrides struct {
	Matcher       []match.Override    `yaml:"matcher"`
	StatusAliases map[string][]string `yaml:"status_aliases"`
	Gestores      map[string]string   `yaml:"gestores"`
}

type Config struct {
	Port      string `validate:"required"`
	Store     StoreConfig
	Overrides Overrides
}

// Load lê .env (quando existe), as variáveis de ambiente e o YAML de
// overrides. Configuração inválida é erro fatal de partida, nunca de runtime.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: envOr("PORT", "8083"),
		Store: StoreConfig{
			Driver:     envOr("STORE_DRIVER", DriverRest),
			URL:        firstEnv("STORE_URL", "SUPABASE_URL"),
			Key:        firstEnv("STORE_KEY", "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_ANON_KEY"),
			SQLitePath: envOr("SQLITE_PATH", "financeiro.db"),
		},
	}

	if path := os.Getenv("SYNC_OVERRIDES"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler o arquivo de overrides %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg.Overrides); err != nil {
			return nil, fmt.Errorf("erro ao interpretar %s: %w", path, err)
		}
	}
	if cfg.Overrides.Matcher == nil {
		cfg.Overrides.Matcher = match.DefaultOverrides()
	}
	if cfg.Overrides.Gestores == nil {
		cfg.Overrides.Gestores = DefaultGestores()
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuração inválida: %w", err)
	}
	return cfg, nil
}

// DefaultGestores é o mapa nome na planilha (coluna RESPONSÁVEL) → e-mail do
// team_member. Nomes fora do mapa deixam o gestor vazio, nunca inventado.
func DefaultGestores() map[string]string {
	return map[string]string{
		"GIAN":      "giancarlo@bpplaw.com.br",
		"Giancarlo": "giancarlo@bpplaw.com.br",
		"LEONARDO":  "leonardo@bpplaw.com.br",
		"Leonardo":  "leonardo@bpplaw.com.br",
		"Gustavo":   "gustavo@bpplaw.com.br",
		"Ricardo":   "ricardo@bpplaw.com.br",
		"Gabriela":  "gabriela.consul@bpplaw.com.br",
		"Daniel":    "daniel@bpplaw.com.br",
		"Renato":    "renato@bpplaw.com.br",
		"Michel":    "michel.malaquias@bpplaw.com.br",
		"Emanueli":  "emanueli.lourenco@bpplaw.com.br",
		"Ariany":    "ariany.bispo@bpplaw.com.br",
		"Jorge":     "jorge@bpplaw.com.br",
		"Ligia":     "ligia@bpplaw.com.br",
		"Wagner":    "wagner.armani@bpplaw.com.br",
		"Jansonn":   "jansonn@bpplaw.com.br",
		"Henrique":  "henrique.nascimento@bpplaw.com.br",
		"Felipe":    "felipe@bpplaw.com.br",
		"Lavínia":   "lavinia.ferraz@bpplaw.com.br",
		"Lavinia":   "lavinia.ferraz@bpplaw.com.br",
		"Francisco": "francisco.zanin@bpplaw.com.br",
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
