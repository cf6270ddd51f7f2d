package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Settings holds all user-configurable application settings organized by category.
type Settings struct {
	General GeneralSettings `json:"general"`
	Safety  SafetySettings  `json:"safety"`
	Monitor MonitorSettings `json:"monitor"`
	Paste   PasteSettings   `json:"paste"`
	History HistorySettings `json:"history"`
	Server  ServerSettings  `json:"server"`
}

// GeneralSettings contains application behavior settings.
type GeneralSettings struct {
	Notifications     bool   `json:"notifications"`
	Theme             int    `json:"theme" validate:"oneof=0 1 2"`
	LogRetentionCount int    `json:"log_retention_count" validate:"min=0,max=100"`
	LogLevel          string `json:"log_level" validate:"oneof=trace debug info warn error disabled"`
}

const (
	ThemeAdaptive = 0
	ThemeLight    = 1
	ThemeDark     = 2
)

// SafetySettings guards every clean against oversized or slow clipboards.
type SafetySettings struct {
	MaxClipboardSizeMB int     `json:"max_clipboard_size_mb" validate:"min=1,max=1024"`
	TimeoutSeconds     float64 `json:"timeout_seconds" validate:"gt=0,lte=60"`
	SkipLargeItems     bool    `json:"skip_large_items"`
}

// MonitorSettings contains the clipboard polling intervals.
type MonitorSettings struct {
	AutoCleanInterval time.Duration `json:"auto_clean_interval" validate:"min=50ms,max=1m"`
	HistoryInterval   time.Duration `json:"history_interval" validate:"min=50ms,max=1m"`
}

// PasteSettings contains the clean-and-paste timings. RestoreDelay counts
// from the clipboard write, so it must exceed PasteDelay.
type PasteSettings struct {
	PasteDelay   time.Duration `json:"paste_delay" validate:"min=0,max=10s"`
	RestoreDelay time.Duration `json:"restore_delay" validate:"gtfield=PasteDelay,max=30s"`
}

// HistorySettings controls clipboard history capture.
type HistorySettings struct {
	Enabled  bool `json:"enabled"`
	MaxItems int  `json:"max_items" validate:"min=0,max=100000"`
}

// ServerSettings contains the local HTTP API parameters.
type ServerSettings struct {
	Host string `json:"host" validate:"required,ip"`
	// Port 0 picks the first free port from DefaultServerPort.
	Port int `json:"port" validate:"min=0,max=65535"`
}

// DefaultServerPort is the first port tried when none is configured.
const DefaultServerPort = 1760

// SettingMeta provides metadata for a single setting (for UI rendering).
type SettingMeta struct {
	Key         string // JSON key name
	Label       string // Human-readable label
	Description string // Help text displayed in right pane
	Type        string // "string", "int", "bool", "duration", "float64"
}

// GetSettingsMetadata returns metadata for all settings organized by category.
func GetSettingsMetadata() map[string][]SettingMeta {
	return map[string][]SettingMeta{
		"General": {
			{Key: "notifications", Label: "Notifications", Description: "Report skipped and failed cleans.", Type: "bool"},
			{Key: "theme", Label: "App Theme", Description: "UI Theme (System, Light, Dark).", Type: "int"},
			{Key: "log_retention_count", Label: "Log Retention Count", Description: "Number of recent log files to keep.", Type: "int"},
			{Key: "log_level", Label: "Log Level", Description: "Minimum level written to the debug log.", Type: "string"},
		},
		"Safety": {
			{Key: "max_clipboard_size_mb", Label: "Max Clipboard Size", Description: "Largest clipboard payload cleaned, in MB (1-1024).", Type: "int"},
			{Key: "timeout_seconds", Label: "Extraction Timeout", Description: "Seconds allowed to read text from the clipboard.", Type: "float64"},
			{Key: "skip_large_items", Label: "Skip Large Items", Description: "Leave payloads above the size limit untouched.", Type: "bool"},
		},
		"Monitor": {
			{Key: "auto_clean_interval", Label: "Auto-Clean Interval", Description: "How often the clipboard is polled for auto-clean (e.g., 500ms).", Type: "duration"},
			{Key: "history_interval", Label: "History Interval", Description: "How often the clipboard is polled for history (e.g., 1.5s).", Type: "duration"},
		},
		"Paste": {
			{Key: "paste_delay", Label: "Paste Delay", Description: "Wait between writing the cleaned text and pasting it.", Type: "duration"},
			{Key: "restore_delay", Label: "Restore Delay", Description: "Wait after the write before the original clipboard is restored.", Type: "duration"},
		},
		"History": {
			{Key: "enabled", Label: "History", Description: "Keep a history of copied items.", Type: "bool"},
			{Key: "max_items", Label: "Max Items", Description: "Items kept in history. 0 keeps everything.", Type: "int"},
		},
		"Server": {
			{Key: "host", Label: "Host", Description: "Address the local API binds to.", Type: "string"},
			{Key: "port", Label: "Port", Description: "Port for the local API. 0 picks a free port from 1760.", Type: "int"},
		},
	}
}

// CategoryOrder returns the order of categories for UI tabs.
func CategoryOrder() []string {
	return []string{"General", "Safety", "Monitor", "Paste", "History", "Server"}
}

const (
	KB = 1024
	MB = 1024 * KB
)

// DefaultSettings returns a new Settings instance with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		General: GeneralSettings{
			Notifications:     true,
			Theme:             ThemeAdaptive,
			LogRetentionCount: 5,
			LogLevel:          "debug",
		},
		Safety: SafetySettings{
			MaxClipboardSizeMB: 10,
			TimeoutSeconds:     2,
			SkipLargeItems:     true,
		},
		Monitor: MonitorSettings{
			AutoCleanInterval: 500 * time.Millisecond,
			HistoryInterval:   1500 * time.Millisecond,
		},
		Paste: PasteSettings{
			PasteDelay:   100 * time.Millisecond,
			RestoreDelay: 800 * time.Millisecond,
		},
		History: HistorySettings{
			Enabled:  true,
			MaxItems: 200,
		},
		Server: ServerSettings{
			Host: "127.0.0.1",
			Port: 0,
		},
	}
}

// GetSettingsPath returns the path to the settings JSON file.
func GetSettingsPath() string {
	return filepath.Join(GetClnbrdDir(), "settings.json")
}

// LoadSettings loads settings from disk. Returns defaults if file doesn't exist.
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(GetSettingsPath())
}

// LoadSettingsFrom loads settings from path, filling missing fields with defaults.
func LoadSettingsFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings() // Start with defaults to fill any missing fields
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// SaveSettings saves settings to disk atomically.
func SaveSettings(s *Settings) error {
	return SaveSettingsTo(GetSettingsPath(), s)
}

// SaveSettingsTo validates s and writes it to path atomically.
func SaveSettingsTo(path string, s *Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}

// RuntimeConfig is the slice of Settings the clean service runs with.
type RuntimeConfig struct {
	MaxPayloadBytes   int64
	SkipLargeItems    bool
	ExtractionTimeout time.Duration
	PasteDelay        time.Duration
	RestoreDelay      time.Duration
	Notifications     bool
}

// ToRuntimeConfig creates a RuntimeConfig from user Settings
func (s *Settings) ToRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		MaxPayloadBytes:   int64(s.Safety.MaxClipboardSizeMB) * MB,
		SkipLargeItems:    s.Safety.SkipLargeItems,
		ExtractionTimeout: time.Duration(s.Safety.TimeoutSeconds * float64(time.Second)),
		PasteDelay:        s.Paste.PasteDelay,
		RestoreDelay:      s.Paste.RestoreDelay,
		Notifications:     s.General.Notifications,
	}
}
