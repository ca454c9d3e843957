package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"github.com/cebtenzzre/npf2html/common"
	"github.com/cebtenzzre/npf2html/css"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	AskConfig struct {
		AvatarURL string `yaml:"avatar_url" validate:"omitempty,url"`
	}

	PageConfig struct {
		Language          string `yaml:"language" validate:"required,bcp47_language_tag"`
		TitleTemplate     string `yaml:"title_template"`
		DescriptionLength int    `yaml:"description_length" validate:"gte=0,lte=1000"`
	}

	DocumentConfig struct {
		ClassPrefix           string           `yaml:"class_prefix" validate:"required"`
		OutputFormat          common.OutputFmt `yaml:"output_format" validate:"gte=0"`
		StylesheetPath        string           `yaml:"stylesheet_path" sanitize:"assure_file_access"`
		OutputNameTemplate    string           `yaml:"output_name_template"`
		FileNameTransliterate bool             `yaml:"file_name_transliterate"`
		ExpandTruncated       bool             `yaml:"expand_truncated"`
		RenderTrail           bool             `yaml:"render_trail"`
		Ask                   AskConfig        `yaml:"ask"`
		Page                  PageConfig       `yaml:"page"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// must match yaml field names above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
	PageTitleTemplateFieldName  TemplateFieldName = "title_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(PageTitleTemplateFieldName)),
)

// checkConfig performs validations which cannot be expressed with tags.
func checkConfig(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	if !css.IsIdent(cfg.Document.ClassPrefix) {
		sl.ReportError(cfg.Document.ClassPrefix, "ClassPrefix", "class_prefix", "css_ident", "")
	}
	if !cfg.Document.OutputFormat.IsValid() {
		sl.ReportError(cfg.Document.OutputFormat, "OutputFormat", "output_format", "output_fmt", "")
	}
	for name, text := range map[TemplateFieldName]string{
		OutputNameTemplateFieldName: cfg.Document.OutputNameTemplate,
		PageTitleTemplateFieldName:  cfg.Document.Page.TitleTemplate,
	} {
		if _, err := template.New(string(name)).Option("missingkey=error").Parse(text); err != nil {
			sl.ReportError(text, string(name), string(name), "template", err.Error())
		}
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkConfig)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
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

	// overwrite cfg values with values from the file
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

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
