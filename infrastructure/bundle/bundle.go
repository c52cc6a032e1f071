// Package bundle reads and writes YAML bundles of templates, connections
// and the naming rule, used to move configuration between installations.
package bundle

import (
	"errors"
	"fmt"
	"os"

	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/naming"
	"github.com/helixml/dagforge/domain/template"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is written to every exported bundle.
const CurrentVersion = "1"

// ErrUnsupportedVersion indicates a bundle written by an incompatible version.
var ErrUnsupportedVersion = errors.New("unsupported bundle version")

// Bundle is the YAML document.
type Bundle struct {
	Version     string       `yaml:"version"`
	NamingRule  *Rule        `yaml:"naming_rule,omitempty"`
	Templates   []Template   `yaml:"templates,omitempty"`
	Connections []Connection `yaml:"connections,omitempty"`
}

// Rule is the YAML form of a naming rule.
type Rule struct {
	Separator string  `yaml:"separator,omitempty"`
	Tokens    []Token `yaml:"tokens"`
}

// Token is the YAML form of a naming token.
type Token struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value,omitempty"`
}

// Template is the YAML form of a code template.
type Template struct {
	Name       string `yaml:"name"`
	SourceType string `yaml:"source_type,omitempty"`
	TargetType string `yaml:"target_type,omitempty"`
	Comment    string `yaml:"comment,omitempty"`
	Code       string `yaml:"code"`
}

// Connection is the YAML form of a connection. Passwords are never exported
// but are accepted on import.
type Connection struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// LoadFile loads and parses a YAML bundle from the given path.
func LoadFile(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to read bundle %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML data into a Bundle.
func Parse(data []byte) (Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("failed to parse bundle YAML: %w", err)
	}
	if b.Version == "" {
		b.Version = CurrentVersion
	}
	if b.Version != CurrentVersion {
		return Bundle{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, b.Version)
	}
	return b, nil
}

// Marshal serializes a Bundle to YAML.
func Marshal(b Bundle) ([]byte, error) {
	return yaml.Marshal(b)
}

// WriteFile writes a Bundle to the given path.
func WriteFile(b Bundle, path string) error {
	data, err := Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write bundle %s: %w", path, err)
	}
	return nil
}

// New builds a bundle from domain values. rule may be nil.
func New(rule *naming.Rule, templates []template.Template, connections []connection.Connection) Bundle {
	b := Bundle{Version: CurrentVersion}
	if rule != nil {
		r := Rule{Separator: rule.Separator()}
		for _, t := range rule.Tokens() {
			r.Tokens = append(r.Tokens, Token{Type: string(t.Kind()), Value: t.Value()})
		}
		b.NamingRule = &r
	}
	for _, t := range templates {
		b.Templates = append(b.Templates, Template{
			Name:       t.Name(),
			SourceType: t.SourceType(),
			TargetType: t.TargetType(),
			Comment:    t.Comment(),
			Code:       t.Body(),
		})
	}
	for _, c := range connections {
		b.Connections = append(b.Connections, Connection{
			Name:     c.Name(),
			Type:     c.Kind(),
			Host:     c.Host(),
			Port:     c.Port(),
			Database: c.Database(),
			Username: c.Username(),
		})
	}
	return b
}

// Rule returns the bundled naming rule, or nil when the bundle has none.
func (b Bundle) Rule() (*naming.Rule, error) {
	if b.NamingRule == nil {
		return nil, nil
	}
	tokens := make([]naming.Token, len(b.NamingRule.Tokens))
	for i, t := range b.NamingRule.Tokens {
		tokens[i] = naming.NewToken(naming.Kind(t.Type), t.Value)
	}
	rule := naming.NewRule(tokens, b.NamingRule.Separator)
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("bundle naming rule: %w", err)
	}
	return &rule, nil
}

// DomainTemplates returns the bundled templates as new, unsaved templates.
func (b Bundle) DomainTemplates() []template.Template {
	out := make([]template.Template, len(b.Templates))
	for i, t := range b.Templates {
		out[i] = template.NewTemplate(t.Name, t.SourceType, t.TargetType, t.Comment, t.Code)
	}
	return out
}

// DomainConnections returns the bundled connections as new, unsaved
// connections.
func (b Bundle) DomainConnections() []connection.Connection {
	out := make([]connection.Connection, len(b.Connections))
	for i, c := range b.Connections {
		out[i] = connection.NewConnection(c.Name, c.Type, c.Host, c.Port, c.Database, c.Username, c.Password)
	}
	return out
}
