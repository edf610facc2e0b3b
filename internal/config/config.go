package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/reconcile"
)

const DefaultPactoURL = "https://apigw.pactosolucoes.com.br"

type PactoConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Token         string        `yaml:"-"`
	CompanyID     string        `yaml:"-"`
	RateLimitWait time.Duration `yaml:"rate_limit_wait"`
	MaxAttempts   int           `yaml:"max_attempts"`
	MaxPages      int           `yaml:"max_pages"`
}

type SheetConfig struct {
	SpreadsheetID string                        `yaml:"spreadsheet_id"`
	SheetName     string                        `yaml:"sheet_name"`
	CSVPath       string                        `yaml:"csv_path"`
	Salespeople   []reconcile.SalespersonColumn `yaml:"salespeople"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"-"`
	Password string `yaml:"-"`
	AuditTo  string `yaml:"audit_to"`
}

// Config reúne tudo que o app precisa. O núcleo (reconcile) nunca lê daqui direto.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"-"`
	BackupPath  string `yaml:"backup_path"`
	RabbitMQURL string `yaml:"-"`

	BackendURL   string `yaml:"backend_url"`
	BackendToken string `yaml:"-"`

	Threshold        int           `yaml:"threshold"`
	WindowDays       int           `yaml:"window_days"`
	Workers          int           `yaml:"workers"`
	AuditDays        int           `yaml:"audit_days"`
	Schedule         string        `yaml:"schedule"`
	TrackedEvents    []string      `yaml:"tracked_events"`
	ConsolidatedTab  string        `yaml:"consolidated_tab"`
	BookingsTab      string        `yaml:"bookings_tab"`
	AuditTab         string        `yaml:"audit_tab"`
	RecoveryCSV      string        `yaml:"recovery_csv"`
	ReconcileTimeout time.Duration `yaml:"reconcile_timeout"`

	Pacto PactoConfig `yaml:"pacto"`
	Sheet SheetConfig `yaml:"sheet"`
	Mail  MailConfig  `yaml:"mail"`
}

func Default() *Config {
	return &Config{
		Port:             "8080",
		BackupPath:       "backup.db",
		Threshold:        reconcile.DefaultThreshold,
		WindowDays:       0,
		Workers:          1,
		AuditDays:        60,
		TrackedEvents:    append([]string(nil), entity.TrackedEvents...),
		ConsolidatedTab:  "Historico",
		BookingsTab:      "Agendamentos",
		AuditTab:         "Auditoria",
		RecoveryCSV:      "leads_para_recuperacao.csv",
		ReconcileTimeout: 10 * time.Minute,
		Pacto: PactoConfig{
			BaseURL:       DefaultPactoURL,
			RateLimitWait: 1300 * time.Millisecond,
			MaxAttempts:   5,
		},
		Sheet: SheetConfig{
			SheetName:   "Leads",
			Salespeople: append([]reconcile.SalespersonColumn(nil), reconcile.DefaultSalespersonColumns...),
		},
		Mail: MailConfig{Port: 587},
	}
}

// Load: defaults -> reconcile.yaml (se existir) -> variáveis de ambiente.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env não encontrado, usando variáveis do ambiente")
	}

	cfg := Default()

	path := GetEnv("RECONCILE_CONFIG", "reconcile.yaml")
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile sobrepõe o arquivo YAML. Arquivo ausente não é erro.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("erro ao ler %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("yaml inválido em %s: %w", path, err)
	}
	log.Printf("⚙️ Configuração carregada de %s", path)
	return nil
}

func (c *Config) applyEnv() {
	c.Port = GetEnv("PORT", c.Port)
	c.DatabaseURL = GetEnv("DATABASE_URL", c.DatabaseURL)
	c.BackupPath = GetEnv("BACKUP_PATH", c.BackupPath)
	c.RabbitMQURL = GetEnv("RABBITMQ_URL", c.RabbitMQURL)
	c.BackendURL = GetEnv("BACKEND_URL", c.BackendURL)
	c.BackendToken = GetEnv("BACKEND_TOKEN", c.BackendToken)

	c.Threshold = GetEnvInt("MATCH_THRESHOLD", c.Threshold)
	c.WindowDays = GetEnvInt("RECENCY_WINDOW_DAYS", c.WindowDays)
	c.Workers = GetEnvInt("MATCH_WORKERS", c.Workers)
	c.AuditDays = GetEnvInt("AUDIT_DAYS", c.AuditDays)
	c.Schedule = GetEnv("RECONCILE_SCHEDULE", c.Schedule)

	c.Pacto.BaseURL = GetEnv("PACTO_URL", c.Pacto.BaseURL)
	c.Pacto.Token = GetEnv("TOKEN", c.Pacto.Token)
	c.Pacto.CompanyID = GetEnv("EMPRESA_ID", c.Pacto.CompanyID)
	c.Pacto.RateLimitWait = GetEnvDuration("PACTO_RATE_LIMIT_WAIT", c.Pacto.RateLimitWait)
	c.Pacto.MaxAttempts = GetEnvInt("PACTO_MAX_ATTEMPTS", c.Pacto.MaxAttempts)
	c.Pacto.MaxPages = GetEnvInt("PACTO_MAX_PAGES", c.Pacto.MaxPages)

	c.Sheet.SpreadsheetID = GetEnv("TP_ACADEMIA_DB_ID", c.Sheet.SpreadsheetID)
	c.Sheet.SheetName = GetEnv("LEADS_SHEET_NAME", c.Sheet.SheetName)
	c.Sheet.CSVPath = GetEnv("LEADS_CSV_PATH", c.Sheet.CSVPath)

	c.Mail.Host = GetEnv("MAIL_HOST", c.Mail.Host)
	c.Mail.Port = GetEnvInt("MAIL_PORT", c.Mail.Port)
	c.Mail.User = GetEnv("MAIL_USER", c.Mail.User)
	c.Mail.Password = GetEnv("MAIL_PASS", c.Mail.Password)
	c.Mail.AuditTo = GetEnv("AUDIT_MAIL_TO", c.Mail.AuditTo)
}

func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("MATCH_THRESHOLD deve estar entre 0 e 100, recebido %d", c.Threshold)
	}
	if c.WindowDays < 0 {
		return fmt.Errorf("RECENCY_WINDOW_DAYS não pode ser negativo, recebido %d", c.WindowDays)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Pacto.MaxAttempts < 1 {
		return fmt.Errorf("PACTO_MAX_ATTEMPTS deve ser >= 1, recebido %d", c.Pacto.MaxAttempts)
	}
	return nil
}

// HasPacto indica se dá para extrair da API (token + empresa).
func (c *Config) HasPacto() bool {
	return c.Pacto.Token != "" && c.Pacto.CompanyID != ""
}

func (c *Config) HasMail() bool {
	return c.Mail.Host != "" && c.Mail.AuditTo != ""
}

func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	v := GetEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s inválido (%q), usando %d", key, v, fallback)
		return fallback
	}
	return n
}

func GetEnvFloat(key string, fallback float64) float64 {
	v := GetEnv(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️ %s inválido (%q), usando %v", key, v, fallback)
		return fallback
	}
	return f
}

func GetEnvBool(key string, fallback bool) bool {
	v := GetEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("⚠️ %s inválido (%q), usando %v", key, v, fallback)
		return fallback
	}
	return b
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v := GetEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️ %s inválido (%q), usando %s", key, v, fallback)
		return fallback
	}
	return d
}
