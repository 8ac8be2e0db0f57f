package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pdfsummarizer/pdfprocessor"
)

// Settings defaults.
const (
	DefaultInstruction  = pdfprocessor.DefaultInstruction
	DefaultOCRLanguage  = "eng"
	DefaultOCRPages     = "0,1"
	DefaultOutputFormat = "txt"
	MaxRecentFolders    = 5
)

// Settings are the user preferences remembered between runs.
// The API key is deliberately absent.
type Settings struct {
	LastFolder          string   `yaml:"last_folder"`
	RecentFolders       []string `yaml:"recent_folders"`
	Instruction         string   `yaml:"instruction"`
	OCREnabled          bool     `yaml:"ocr_enabled"`
	OCRLanguage         string   `yaml:"ocr_language"`
	OCRPages            string   `yaml:"ocr_pages"`
	OCRAllPages         bool     `yaml:"ocr_all_pages"`
	DefaultSaveLocation string   `yaml:"default_save_location"`
	OutputFormat        string   `yaml:"output_format"`
}

// DefaultSettings returns the settings used on first run.
func DefaultSettings() Settings {
	return Settings{
		Instruction:  DefaultInstruction,
		OCRLanguage:  DefaultOCRLanguage,
		OCRPages:     DefaultOCRPages,
		OutputFormat: DefaultOutputFormat,
	}
}

// LoadSettings reads path and merges it onto DefaultSettings.
// A missing file returns defaults and no error. A corrupt file returns defaults
// together with the parse error so the caller can warn and continue.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	var loaded Settings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	settings.merge(loaded)
	return settings, nil
}

// merge copies non-zero fields of other onto s.
func (s *Settings) merge(other Settings) {
	if other.LastFolder != "" {
		s.LastFolder = other.LastFolder
	}
	if len(other.RecentFolders) > 0 {
		s.RecentFolders = nil
		// Oldest first so the file's first entry ends up most recent.
		for i := len(other.RecentFolders) - 1; i >= 0; i-- {
			s.AddRecentFolder(other.RecentFolders[i])
		}
	}
	if strings.TrimSpace(other.Instruction) != "" {
		s.Instruction = other.Instruction
	}
	s.OCREnabled = other.OCREnabled
	s.OCRAllPages = other.OCRAllPages
	if other.OCRLanguage != "" {
		s.OCRLanguage = other.OCRLanguage
	}
	if other.OCRPages != "" {
		s.OCRPages = other.OCRPages
	}
	if other.DefaultSaveLocation != "" {
		s.DefaultSaveLocation = other.DefaultSaveLocation
	}
	if other.OutputFormat != "" {
		s.OutputFormat = other.OutputFormat
	}
}

// AddRecentFolder moves folder to the front of the recent list, keeping at most
// MaxRecentFolders unique entries.
func (s *Settings) AddRecentFolder(folder string) {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return
	}
	recent := []string{folder}
	for _, existing := range s.RecentFolders {
		if existing != folder {
			recent = append(recent, existing)
		}
	}
	if len(recent) > MaxRecentFolders {
		recent = recent[:MaxRecentFolders]
	}
	s.RecentFolders = recent
}

// SaveSettings writes s to path as YAML, creating the parent directory.
func SaveSettings(path string, s Settings) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	return nil
}
