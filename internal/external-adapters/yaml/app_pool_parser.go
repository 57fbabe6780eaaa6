// Package yaml provides YAML-based app pool parsing and repository implementations.
package yaml

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

// yamlAppPool represents the raw YAML structure
type yamlAppPool struct {
	Apps []yamlApp `yaml:"apps"`
}

type yamlApp struct {
	Name          string       `yaml:"name"`
	BundleID      string       `yaml:"bundle_id"`
	Version       string       `yaml:"version"`
	Platform      string       `yaml:"platform"`
	SecurityScore int          `yaml:"security_score"`
	Findings      yamlFindings `yaml:"findings"`
	IconPath      string       `yaml:"icon_path"`
	PDFPath       string       `yaml:"pdf_path"`
}

type yamlFindings struct {
	High    int `yaml:"high"`
	Warning int `yaml:"warning"`
	Info    int `yaml:"info"`
	Secure  int `yaml:"secure"`
}

// AppPoolParser parses YAML app pool files
type AppPoolParser struct{}

// NewAppPoolParser creates a new YAML parser
func NewAppPoolParser() *AppPoolParser {
	return &AppPoolParser{}
}

// ParseFile parses a YAML app pool file into templates
func (p *AppPoolParser) ParseFile(filePath string) ([]entities.AppTemplate, error) {
	//nolint:gosec // G304: filePath is the user-provided pool file
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into templates. Every invalid entry is reported.
func (p *AppPoolParser) Parse(data []byte) ([]entities.AppTemplate, error) {
	var pool yamlAppPool
	if err := yaml.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(pool.Apps) == 0 {
		return nil, fmt.Errorf("app pool must list at least one app")
	}

	var merr *multierror.Error
	templates := make([]entities.AppTemplate, 0, len(pool.Apps))
	for i, app := range pool.Apps {
		tmpl, err := convertApp(app)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("apps[%d]: %w", i, err))
			continue
		}
		templates = append(templates, tmpl)
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return templates, nil
}

func convertApp(app yamlApp) (entities.AppTemplate, error) {
	if app.Name == "" || app.BundleID == "" {
		return entities.AppTemplate{}, fmt.Errorf("name and bundle_id are required")
	}

	var platform entities.Platform
	switch strings.ToLower(app.Platform) {
	case "android":
		platform = entities.PlatformAndroid
	case "ios":
		platform = entities.PlatformIOS
	default:
		return entities.AppTemplate{}, fmt.Errorf("unsupported platform %q", app.Platform)
	}

	if app.SecurityScore < 0 || app.SecurityScore > 100 {
		return entities.AppTemplate{}, fmt.Errorf("security_score %d out of range", app.SecurityScore)
	}
	f := app.Findings
	if f.High < 0 || f.Warning < 0 || f.Info < 0 || f.Secure < 0 {
		return entities.AppTemplate{}, fmt.Errorf("finding counts must not be negative")
	}

	return entities.AppTemplate{
		Name:            app.Name,
		BundleID:        app.BundleID,
		Version:         app.Version,
		Platform:        platform,
		SecurityScore:   app.SecurityScore,
		HighFindings:    f.High,
		WarningFindings: f.Warning,
		InfoFindings:    f.Info,
		SecureFindings:  f.Secure,
		IconPath:        app.IconPath,
		PDFPath:         app.PDFPath,
	}, nil
}
