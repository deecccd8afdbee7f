package responder

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/tbxark/formbot/types"
	"gopkg.in/yaml.v3"
)

//go:embed domain.yml
var defaultDomainYAML []byte

var defaultDomain, defaultDomainErr = ParseDomain(defaultDomainYAML)

// Domain holds the response templates, keyed by template id.
type Domain struct {
	Responses map[string][]string `yaml:"responses"`
}

func ParseDomain(data []byte) (*Domain, error) {
	var d Domain
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse domain: %w", err)
	}
	if d.Responses == nil {
		d.Responses = map[string][]string{}
	}
	return &d, nil
}

func LoadDomain(path string) (*Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDomain(data)
}

// DefaultDomain returns a copy of the embedded restaurant domain.
func DefaultDomain() (*Domain, error) {
	if defaultDomainErr != nil {
		return nil, fmt.Errorf("embedded domain: %w", defaultDomainErr)
	}
	return defaultDomain.Merge(nil), nil
}

// Merge returns a copy of d where templates from other override d.
func (d *Domain) Merge(other *Domain) *Domain {
	out := &Domain{Responses: make(map[string][]string, len(d.Responses))}
	for k, v := range d.Responses {
		out.Responses[k] = v
	}
	if other != nil {
		for k, v := range other.Responses {
			out.Responses[k] = v
		}
	}
	return out
}

// TemplateRenderer renders the first variant of a template and fills
// {slot} placeholders from the tracker.
type TemplateRenderer struct {
	domain *Domain
}

// NewTemplateRenderer falls back to the embedded domain when domain is nil.
func NewTemplateRenderer(domain *Domain) *TemplateRenderer {
	if domain == nil {
		domain = defaultDomain
	}
	return &TemplateRenderer{domain: domain}
}

func (r *TemplateRenderer) Render(ctx context.Context, template string, tracker *types.Tracker) (string, error) {
	if r.domain == nil {
		return "", fmt.Errorf("render %q: embedded domain: %w", template, defaultDomainErr)
	}
	variants := r.domain.Responses[template]
	if len(variants) == 0 {
		return "", fmt.Errorf("template %q not found in domain", template)
	}
	return fillSlots(variants[0], tracker), nil
}

func fillSlots(text string, tracker *types.Tracker) string {
	if tracker == nil || len(tracker.Slots) == 0 || !strings.Contains(text, "{") {
		return text
	}
	pairs := make([]string, 0, len(tracker.Slots)*2)
	for name, value := range tracker.Slots {
		pairs = append(pairs, "{"+name+"}", value.Text())
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

var _ Renderer = (*TemplateRenderer)(nil)
