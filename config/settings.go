package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// APIKeyEnv overrides gateway.apiKey when set.
const APIKeyEnv = "TMDB_API_KEY"

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server      ServerSettings     `json:"server"`
	Gateway     GatewaySettings    `json:"gateway"`
	Images      ImageSettings      `json:"images"`
	Suggestions SuggestionSettings `json:"suggestions"`
	Paging      PagingSettings     `json:"paging"`
	Log         LogConfig          `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// GatewaySettings configures the remote content API client.
type GatewaySettings struct {
	APIKey            string `json:"apiKey"`
	BaseURL           string `json:"baseUrl"`
	Language          string `json:"language"`
	TimeoutSeconds    int    `json:"timeoutSeconds"`
	MinIntervalMillis int    `json:"minIntervalMillis"` // -1 disables request spacing
}

type ImageSettings struct {
	BaseURL      string `json:"baseUrl"`
	Placeholder  string `json:"placeholder"`
	PosterSize   string `json:"posterSize"`
	BackdropSize string `json:"backdropSize"`
	ProfileSize  string `json:"profileSize"`
}

type SuggestionSettings struct {
	DebounceMillis int `json:"debounceMillis"`
	MinLength      int `json:"minLength"`
	Limit          int `json:"limit"`
}

// PagingSettings tunes infinite-scroll views and the home page.
type PagingSettings struct {
	InitialPages       int  `json:"initialPages"`
	Proximity          int  `json:"proximity"`
	IgnoreEmptyPages   bool `json:"ignoreEmptyPages"`
	HomeConcurrency    int  `json:"homeConcurrency"`
	SessionIdleMinutes int  `json:"sessionIdleMinutes"`
}

// LogConfig controls log file rotation.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

func (g GatewaySettings) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

func (g GatewaySettings) MinInterval() time.Duration {
	return time.Duration(g.MinIntervalMillis) * time.Millisecond
}

func (s SuggestionSettings) Debounce() time.Duration {
	return time.Duration(s.DebounceMillis) * time.Millisecond
}

func (p PagingSettings) SessionIdle() time.Duration {
	return time.Duration(p.SessionIdleMinutes) * time.Minute
}

// Addr returns host:port for the HTTP listener.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 7777},
		Gateway: GatewaySettings{
			APIKey:            "",
			BaseURL:           "https://api.themoviedb.org/3",
			Language:          "en-US",
			TimeoutSeconds:    15,
			MinIntervalMillis: 20,
		},
		Images: ImageSettings{
			BaseURL:      "https://image.tmdb.org/t/p",
			Placeholder:  "/placeholder-image.jpg",
			PosterSize:   "w500",
			BackdropSize: "w1280",
			ProfileSize:  "w185",
		},
		Suggestions: SuggestionSettings{DebounceMillis: 300, MinLength: 2, Limit: 5},
		Paging: PagingSettings{
			InitialPages:       2,
			Proximity:          500,
			HomeConcurrency:    4,
			SessionIdleMinutes: 30,
		},
		Log: LogConfig{
			File:       "cache/logs/backend.log",
			Level:      "info",
			MaxSize:    50, // MB per file
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	fs   afero.Fs
	path string
}

func NewManager(configPath string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), configPath)
}

// NewManagerWithFs uses the given filesystem, typically afero.NewMemMapFs in tests.
func NewManagerWithFs(fsys afero.Fs, configPath string) *Manager {
	return &Manager{fs: fsys, path: configPath}
}

func (m *Manager) Path() string {
	return m.path
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

// Load reads the settings file or creates it with defaults if missing. Zero
// values left by older files are backfilled and TMDB_API_KEY, when set,
// replaces the stored key.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := m.fs.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return applyEnv(defaults), nil
	}

	f, err := m.fs.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("decode %s: %w", m.path, err)
	}
	backfill(&s)
	return applyEnv(s), nil
}

func backfill(s *Settings) {
	d := DefaultSettings()

	if s.Server.Port == 0 {
		s.Server.Port = d.Server.Port
	}
	if strings.TrimSpace(s.Gateway.BaseURL) == "" {
		s.Gateway.BaseURL = d.Gateway.BaseURL
	}
	if strings.TrimSpace(s.Gateway.Language) == "" {
		s.Gateway.Language = d.Gateway.Language
	}
	if s.Gateway.TimeoutSeconds <= 0 {
		s.Gateway.TimeoutSeconds = d.Gateway.TimeoutSeconds
	}
	if s.Gateway.MinIntervalMillis == 0 {
		s.Gateway.MinIntervalMillis = d.Gateway.MinIntervalMillis
	}

	if s.Images.BaseURL == "" {
		s.Images.BaseURL = d.Images.BaseURL
	}
	if s.Images.Placeholder == "" {
		s.Images.Placeholder = d.Images.Placeholder
	}
	if s.Images.PosterSize == "" {
		s.Images.PosterSize = d.Images.PosterSize
	}
	if s.Images.BackdropSize == "" {
		s.Images.BackdropSize = d.Images.BackdropSize
	}
	if s.Images.ProfileSize == "" {
		s.Images.ProfileSize = d.Images.ProfileSize
	}

	if s.Suggestions.DebounceMillis <= 0 {
		s.Suggestions.DebounceMillis = d.Suggestions.DebounceMillis
	}
	if s.Suggestions.MinLength <= 0 {
		s.Suggestions.MinLength = d.Suggestions.MinLength
	}
	if s.Suggestions.Limit <= 0 {
		s.Suggestions.Limit = d.Suggestions.Limit
	}

	if s.Paging.InitialPages <= 0 {
		s.Paging.InitialPages = d.Paging.InitialPages
	}
	if s.Paging.Proximity <= 0 {
		s.Paging.Proximity = d.Paging.Proximity
	}
	if s.Paging.HomeConcurrency <= 0 {
		s.Paging.HomeConcurrency = d.Paging.HomeConcurrency
	}
	if s.Paging.SessionIdleMinutes <= 0 {
		s.Paging.SessionIdleMinutes = d.Paging.SessionIdleMinutes
	}

	// Ensure log settings have defaults
	if s.Log.File == "" {
		s.Log.File = d.Log.File
	}
	if s.Log.MaxSize == 0 {
		s.Log.MaxSize = d.Log.MaxSize
	}
	if s.Log.MaxBackups == 0 {
		s.Log.MaxBackups = d.Log.MaxBackups
	}
	if s.Log.MaxAge == 0 {
		s.Log.MaxAge = d.Log.MaxAge
	}
}

func applyEnv(s Settings) Settings {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		s.Gateway.APIKey = key
	}
	return s
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := m.fs.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = m.fs.Remove(tmp)
		return err
	}
	return m.fs.Rename(tmp, m.path)
}
