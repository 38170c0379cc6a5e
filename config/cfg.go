package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"cbundle/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// EngineConfig holds page geometry and timing of interactive parts.
	EngineConfig struct {
		PageHeight    float64       `yaml:"page_height" validate:"gt=0"`
		PageMargin    float64       `yaml:"page_margin" validate:"gte=0,ltfield=PageHeight"`
		Debounce      time.Duration `yaml:"debounce" validate:"gte=0"`
		FrameInterval time.Duration `yaml:"frame_interval" validate:"gte=0"`
		Overscan      int           `yaml:"overscan" validate:"gte=0"`
		ItemHeight    float64       `yaml:"item_height" validate:"gt=0"`
		Viewport      float64       `yaml:"viewport" validate:"gt=0"`
	}

	TOCConfig struct {
		EntriesPerPage int                   `yaml:"entries_per_page" validate:"min=1"`
		LabelTemplate  string                `yaml:"label_template" validate:"required"`
		StampFormat    common.StampFormat    `yaml:"stamp_format" validate:"gte=0"`
		LateInsertMode common.LateInsertMode `yaml:"late_insert_mode" validate:"gte=0"`
		LongTabWarning int                   `yaml:"long_tab_warning" validate:"min=1"`
	}

	StorageConfig struct {
		Database string `yaml:"database" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
	}

	EvidenceConfig struct {
		Cache   string `yaml:"cache,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
		Workers int    `yaml:"workers" validate:"min=1,max=64"`
		// strict PDF validation is slow, but catches broken files early
		Strict bool `yaml:"strict"`
	}

	ExportConfig struct {
		NameTemplate  string `yaml:"name_template" validate:"required"`
		Transliterate bool   `yaml:"transliterate"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Engine    EngineConfig   `yaml:"engine"`
		TOC       TOCConfig      `yaml:"toc"`
		Storage   StorageConfig  `yaml:"storage"`
		Evidence  EvidenceConfig `yaml:"evidence"`
		Export    ExportConfig   `yaml:"export"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field names above
	LabelTemplateFieldName      TemplateFieldName = "label_template"
	ExportNameTemplateFieldName TemplateFieldName = "name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(LabelTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(ExportNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we know about are allowed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if !process {
		return cfg, nil
	}
	if err := gencfg.Sanitize(cfg); err != nil {
		return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
	}
	if err := gencfg.Validate(cfg); err != nil {
		return nil, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration expands configuration template to get defaults, then
// applies file at path (if any) on top of them and validates the result.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns expanded default configuration.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
