package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/pkg/logger"
)

//go:embed files/*.tmpl
var embedded embed.FS

// Renderer interface for template rendering (for dependency injection)
type Renderer interface {
	ExecuteTemplate(name string, data any) (string, error)
	TemplateExists(name string) bool
}

// Manager manages named text templates
type Manager struct {
	templates *template.Template
	source    string
}

// GetDefaultFuncMap returns common template helper functions
func GetDefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"printf": fmt.Sprintf,
		"upper":  strings.ToUpper,
	}
}

// NewDefaultManager loads the templates compiled into the binary
func NewDefaultManager() (*Manager, error) {
	sub, err := fs.Sub(embedded, "files")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}
	return newManager(sub, "embedded")
}

// NewManager loads all *.tmpl files from a directory, overriding the embedded set
func NewManager(templatesDir string) (*Manager, error) {
	matches, err := filepath.Glob(filepath.Join(templatesDir, "*.tmpl"))
	if err != nil {
		return nil, fmt.Errorf("invalid templates directory %s: %w", templatesDir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no templates found in %s", templatesDir)
	}

	tmpl, err := template.New("root").Funcs(GetDefaultFuncMap()).ParseFiles(matches...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates in %s: %w", templatesDir, err)
	}

	logger.Info("templates loaded",
		zap.Int("count", len(tmpl.Templates())-1),
		zap.String("directory", templatesDir),
	)

	return &Manager{templates: tmpl, source: templatesDir}, nil
}

func newManager(fsys fs.FS, source string) (*Manager, error) {
	tmpl, err := template.New("root").Funcs(GetDefaultFuncMap()).ParseFS(fsys, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s templates: %w", source, err)
	}
	return &Manager{templates: tmpl, source: source}, nil
}

// ExecuteTemplate renders template with data
func (m *Manager) ExecuteTemplate(name string, data any) (string, error) {
	tmpl := m.templates.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

// TemplateExists checks if template exists
func (m *Manager) TemplateExists(name string) bool {
	return m.templates.Lookup(name) != nil
}

// Source returns where the templates were loaded from
func (m *Manager) Source() string {
	return m.source
}
