// Package config carrega a configuração do serviço via Viper (variáveis de
// ambiente com precedência sobre um .env opcional).
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa a configuração da aplicação.
type Config struct {
	App    AppConfig
	Server ServerConfig
	Audit  AuditConfig
	JWT    JWTConfig
}

// AppConfig configuração geral.
type AppConfig struct {
	Env      string // development ou production
	Name     string
	LogLevel string
}

// ServerConfig configuração do servidor HTTP.
type ServerConfig struct {
	Port        int
	MaxUploadMB int
}

// Addr devolve o endereço de escuta.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// MaxUploadBytes is the multipart memory limit derived from MaxUploadMB.
func (c ServerConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// AuditConfig configuração da auditoria.
type AuditConfig struct {
	RulesFile string // vazio = catálogo embutido
}

// JWTConfig configuração da autenticação. Secret vazio desliga a autenticação.
type JWTConfig struct {
	Secret string
}

// Enabled reports whether bearer authentication is on.
func (c JWTConfig) Enabled() bool {
	return c.Secret != ""
}

// Load lê a configuração de variáveis de ambiente e, se existir, de um .env
// no diretório atual.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos erro se não existir

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "production"),
			Name:     getString(v, "APP_NAME", "audit-service"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        getInt(v, "SERVER_PORT", 8084),
			MaxUploadMB: getInt(v, "MAX_UPLOAD_MB", 64),
		},
		Audit: AuditConfig{
			RulesFile: getString(v, "RULES_FILE", ""),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate confere os valores numéricos.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("configuração inválida: SERVER_PORT=%d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("configuração inválida: MAX_UPLOAD_MB=%d", c.Server.MaxUploadMB)
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, _ := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
