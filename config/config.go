package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "othello-local"

var (
	cfgFile = appName + "/config.json"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

type ConfigColors struct {
	BoardColor        int `json:"board"`
	BoardColorAlt     int `json:"board_alt"`
	BlackColor        int `json:"black"`
	WhiteColor        int `json:"white"`
	LineColor         int `json:"line"`
	HintColor         int `json:"hint"`
	CursorColorFG     int `json:"cursor_fg"`
	CursorColorBG     int `json:"cursor_bg"`
	LastPlayedColorBG int `json:"last_played_bg"`
}

type ConfigSymbols struct {
	BlackDisc   rune `json:"black"`
	WhiteDisc   rune `json:"white"`
	EmptySquare rune `json:"empty"`
	LegalHint   rune `json:"hint"`
}

type Theme struct {
	DrawCursorBackground     bool          `json:"draw_cursor_bg"`
	DrawLastPlayedBackground bool          `json:"draw_last_played_bg"`
	ShowLegalMoves           bool          `json:"show_legal_moves"`
	Colors                   ConfigColors  `json:"colors"`
	Symbols                  ConfigSymbols `json:"symbols"`
}

// EngineConfig holds the computer opponent settings.
type EngineConfig struct {
	Depth int `json:"depth"`
	// Path to an external engine speaking the text protocol. Empty plays
	// against the built-in engine.
	Path string `json:"engine_path"`
	// DefaultColor is the human's color in new games, 1=black, 2=white.
	DefaultColor int `json:"default_color"`
}

type StorageConfig struct {
	ArchivePath string `json:"archive_path"`
}

type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type ServerConfig struct {
	Addr string `json:"addr"`
}

type Config struct {
	Theme   Theme         `json:"theme"`
	Engine  EngineConfig  `json:"engine"`
	Storage StorageConfig `json:"storage"`
	Log     LogConfig     `json:"log"`
	Server  ServerConfig  `json:"server"`
}

func InitConfig() (*Config, error) {
	config := DefaultConfig
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err == nil {
		if err := readCfgFile(absPath, &config); err != nil {
			return nil, err
		}
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	for _, r := range []rune{c.Theme.Symbols.BlackDisc, c.Theme.Symbols.WhiteDisc, c.Theme.Symbols.EmptySquare, c.Theme.Symbols.LegalHint} {
		if r < 32 || (r >= 127 && r <= 159) {
			return &InvalidConfig{"Unicode characters 1-31 and 127-159 are not allowed"}
		}
	}
	if c.Engine.Depth < MinDepth || c.Engine.Depth > MaxDepth {
		return &InvalidConfig{fmt.Sprintf("engine depth must be between %d and %d", MinDepth, MaxDepth)}
	}
	if c.Engine.DefaultColor != 1 && c.Engine.DefaultColor != 2 {
		return &InvalidConfig{"default_color must be 1 (black) or 2 (white)"}
	}
	return nil
}

func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return saveCfgFile(absPath, c, 0664)
}

// HistoryDir is where finished and in-progress games are recorded as SGF.
func HistoryDir() string {
	return filepath.Join(xdg.DataHome, appName, "history")
}

// ArchivePath returns the configured SQLite archive, or the default
// location under the XDG data directory.
func (c *Config) ArchivePath() string {
	if c.Storage.ArchivePath != "" {
		return c.Storage.ArchivePath
	}
	return filepath.Join(xdg.DataHome, appName, "games.db")
}

// LogFile returns the configured log file, or the default location under
// the XDG state directory.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(xdg.StateHome, appName, "othello.log")
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, a); err != nil {
		return &InvalidConfig{fmt.Sprintf("%s: %v", filePath, err)}
	}
	return nil
}
