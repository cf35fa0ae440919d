package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ImagesConfig struct {
		Dir   string   `yaml:"dir" validate:"required"`
		Types []string `yaml:"types" validate:"min=1,dive,required"`
	}

	NotesConfig struct {
		Styles []string `yaml:"styles" validate:"dive,required"`
		Prefix string   `yaml:"prefix"`
	}

	DocumentConfig struct {
		Input                string       `yaml:"input"`
		Section              string       `yaml:"section"`
		OutputDir            string       `yaml:"output_dir" sanitize:"path_clean" validate:"required"`
		DumpDir              string       `yaml:"dump_dir"`
		IndexTitle           string       `yaml:"index_title" validate:"required"`
		TableMode            TableMode    `yaml:"table_mode" validate:"oneof=grid list"`
		Language             string       `yaml:"language" validate:"required,bcp47_language_tag"`
		PrefaceHeadingStyles []string     `yaml:"preface_heading_styles" validate:"dive,required"`
		StrictStyles         bool         `yaml:"strict_styles"`
		FootnotesRubric      string       `yaml:"footnotes_rubric"`
		Images               ImagesConfig `yaml:"images"`
		Notes                NotesConfig  `yaml:"notes"`
	}

	GithubConfig struct {
		URLBase   string `yaml:"url_base" validate:"required,url"`
		Repo      string `yaml:"repo"`
		Commitish string `yaml:"commitish" validate:"required"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Github    GithubConfig   `yaml:"github"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Only fields defined above are accepted, so plain yaml.Unmarshal would
	// not do
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration expands embedded configuration template to get defaults,
// superimposes values from the file at the given path (if any) and validates
// the result.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
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
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare expands configuration template and returns it as is.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
