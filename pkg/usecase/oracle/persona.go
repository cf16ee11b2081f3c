package oracle

import (
	"bytes"
	_ "embed"
	"os"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

//go:embed prompt/directive.md
var defaultDirective string

//go:embed prompt/image.md
var defaultImageStyle string

const DefaultAspectRatio = "1:1"

// Persona is the fixed configuration that shapes every answer: the system
// directive of the interpret call and the stylistic preamble of the
// synthesis call. It is set by the operator, never by a query.
type Persona struct {
	Directive   string `yaml:"directive"`
	ImageStyle  string `yaml:"image_style"`
	AspectRatio string `yaml:"aspect_ratio"`

	// Model names are read from the persona file for convenience; they are
	// applied to the Gemini adapter, not to the pipeline.
	InterpretModel string `yaml:"interpret_model"`
	ImageModel     string `yaml:"image_model"`

	imageTmpl *template.Template
}

// DefaultPersona returns the built-in oracle persona
func DefaultPersona() *Persona {
	p := &Persona{
		Directive:   defaultDirective,
		ImageStyle:  defaultImageStyle,
		AspectRatio: DefaultAspectRatio,
	}
	// The embedded template is known to parse
	p.imageTmpl = template.Must(template.New("image").Parse(p.ImageStyle))
	return p
}

// LoadPersona reads a YAML persona file. Fields left empty keep the
// built-in values.
func LoadPersona(path string) (*Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read persona file", goerr.V("path", path))
	}

	var loaded Persona
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, goerr.Wrap(err, "failed to parse persona file", goerr.V("path", path))
	}

	p := DefaultPersona()
	if loaded.Directive != "" {
		p.Directive = loaded.Directive
	}
	if loaded.ImageStyle != "" {
		p.ImageStyle = loaded.ImageStyle
	}
	if loaded.AspectRatio != "" {
		p.AspectRatio = loaded.AspectRatio
	}
	p.InterpretModel = loaded.InterpretModel
	p.ImageModel = loaded.ImageModel

	tmpl, err := template.New("image").Parse(p.ImageStyle)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid image_style template", goerr.V("path", path))
	}
	p.imageTmpl = tmpl

	return p, nil
}

// ImagePrompt renders the synthesis prompt for an IMAGE description
func (p *Persona) ImagePrompt(text string) (string, error) {
	var buf bytes.Buffer
	if err := p.imageTmpl.Execute(&buf, map[string]any{"Text": text}); err != nil {
		return "", goerr.Wrap(err, "failed to execute image prompt template")
	}
	return buf.String(), nil
}
