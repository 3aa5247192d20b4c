package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "DEVPROJECT_SCANNER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds every knob the pipeline needs; there is no process-wide
// mutable state anywhere else.
type Config struct {
	Reference     ReferenceConfig    `yaml:"reference"`
	Documents     DocumentsConfig    `yaml:"documents"`
	Report        ReportConfig       `yaml:"report"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// ReferenceConfig locates the entity table and selects its columns.
// A selector is either a 0-based decimal index or a header name.
type ReferenceConfig struct {
	Path                string `yaml:"path"`
	SiteIDColumn        string `yaml:"siteIdColumn"`
	PrimaryNameColumn   string `yaml:"primaryNameColumn"`
	AlternateNameColumn string `yaml:"alternateNameColumn"`
}

// DocumentsConfig points at the directory of candidate documents.
type DocumentsConfig struct {
	Dir string `yaml:"dir"`
}

// ReportConfig names the output CSV destination.
type ReportConfig struct {
	Path string `yaml:"path"`
}

// FetchConfig drives the optional meetings-page download stage.
type FetchConfig struct {
	Enabled       bool                 `yaml:"enabled"`
	BaseURL       string               `yaml:"baseUrl"`
	SiteRoot      string               `yaml:"siteRoot"`
	FromDate      string               `yaml:"fromDate"` // YYYY-MM-DD
	ToDate        string               `yaml:"toDate"`   // YYYY-MM-DD
	RowSelector   string               `yaml:"rowSelector"`
	TitleSelector string               `yaml:"titleSelector"`
	DateSelector  string               `yaml:"dateSelector"`
	DocumentTypes []DocumentTypeConfig `yaml:"documentTypes"`
	ManifestPath  string               `yaml:"manifestPath"`
	PageDelay     string               `yaml:"pageDelay"`
}

// Delay resolves the inter-page delay string to a duration; unset or
// unparsable values disable the delay.
func (f FetchConfig) Delay() time.Duration {
	if f.PageDelay == "" {
		return 0
	}
	d, err := time.ParseDuration(f.PageDelay)
	if err != nil {
		log.Printf("config: invalid pageDelay %q, delay disabled", f.PageDelay)
		return 0
	}
	return d
}

// DocumentTypeConfig names one document category and the CSS selector
// locating its link inside a meeting row.
type DocumentTypeConfig struct {
	Name     string `yaml:"name"`
	Selector string `yaml:"selector"`
}

// DatabaseConfig describes the optional Postgres run history.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig enables recurring scans; an empty interval means one shot.
type SchedulerConfig struct {
	Interval string `yaml:"interval"`
}

// Every resolves the interval string to a duration; unset or unparsable
// values select a single run.
func (s SchedulerConfig) Every() time.Duration {
	if s.Interval == "" {
		return 0
	}
	d, err := time.ParseDuration(s.Interval)
	if err != nil {
		log.Printf("config: invalid scheduler interval %q, running once", s.Interval)
		return 0
	}
	return d
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides on top of the defaults.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Reference.Path != "" {
		base.Reference.Path = override.Reference.Path
	}
	if override.Reference.SiteIDColumn != "" {
		base.Reference.SiteIDColumn = override.Reference.SiteIDColumn
	}
	if override.Reference.PrimaryNameColumn != "" {
		base.Reference.PrimaryNameColumn = override.Reference.PrimaryNameColumn
	}
	if override.Reference.AlternateNameColumn != "" {
		base.Reference.AlternateNameColumn = override.Reference.AlternateNameColumn
	}

	if override.Documents.Dir != "" {
		base.Documents.Dir = override.Documents.Dir
	}

	if override.Report.Path != "" {
		base.Report.Path = override.Report.Path
	}

	if override.Fetch.Enabled {
		base.Fetch.Enabled = true
	}
	if override.Fetch.BaseURL != "" {
		base.Fetch.BaseURL = override.Fetch.BaseURL
	}
	if override.Fetch.SiteRoot != "" {
		base.Fetch.SiteRoot = override.Fetch.SiteRoot
	}
	if override.Fetch.FromDate != "" {
		base.Fetch.FromDate = override.Fetch.FromDate
	}
	if override.Fetch.ToDate != "" {
		base.Fetch.ToDate = override.Fetch.ToDate
	}
	if override.Fetch.RowSelector != "" {
		base.Fetch.RowSelector = override.Fetch.RowSelector
	}
	if override.Fetch.TitleSelector != "" {
		base.Fetch.TitleSelector = override.Fetch.TitleSelector
	}
	if override.Fetch.DateSelector != "" {
		base.Fetch.DateSelector = override.Fetch.DateSelector
	}
	if len(override.Fetch.DocumentTypes) > 0 {
		base.Fetch.DocumentTypes = override.Fetch.DocumentTypes
	}
	if override.Fetch.ManifestPath != "" {
		base.Fetch.ManifestPath = override.Fetch.ManifestPath
	}
	if override.Fetch.PageDelay != "" {
		base.Fetch.PageDelay = override.Fetch.PageDelay
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Scheduler.Interval != "" {
		base.Scheduler.Interval = override.Scheduler.Interval
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Reference: ReferenceConfig{
			Path: "reference.csv",
			// Column layout of the county's project export; override
			// per dataset rather than assuming it is universal.
			SiteIDColumn:        "0",
			PrimaryNameColumn:   "6",
			AlternateNameColumn: "7",
		},
		Documents: DocumentsConfig{Dir: "downloads"},
		Report:    ReportConfig{Path: "mention_report.csv"},
		Fetch: FetchConfig{
			Enabled:       false,
			BaseURL:       "https://www.fluvannacounty.org/meetings",
			SiteRoot:      "https://www.fluvannacounty.org",
			FromDate:      "2000-01-01",
			ToDate:        "2025-12-31",
			RowSelector:   "tr.odd, tr.even",
			TitleSelector: ".views-field-title",
			DateSelector:  ".views-field-field-calendar-date .date-display-single",
			DocumentTypes: []DocumentTypeConfig{
				{Name: "Agenda", Selector: ".views-field-field-agendas a[href]"},
				{Name: "Package", Selector: ".views-field-field-packets a[href]"},
				{Name: "Action Report", Selector: ".views-field-field-action-reports a[href]"},
				{Name: "Minutes", Selector: ".views-field-field-minutes a[href]"},
				{Name: "COAD Report", Selector: ".views-field-field-other-meeting-attachments a[href]"},
			},
			ManifestPath: "meeting_documents.csv",
			PageDelay:    "1s",
		},
		Database:      DatabaseConfig{DSN: ""},
		Notifications: NotificationConfig{Telegram: TelegramConfig{BotToken: "", ChatID: ""}},
		Scheduler:     SchedulerConfig{Interval: ""},
		Logging:       LoggingConfig{Level: "info"},
	}
}
