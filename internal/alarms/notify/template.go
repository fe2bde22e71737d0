package notify

import (
	"bytes"
	"errors"
	"strconv"
	"text/template"
)

const DefaultTemplate = `🚨 TEMPERATURE ALARM!
Sensor: {{.Sensor}}
Temperature: {{.Temperature}}°C
Time: {{.Time}}`

// TemplateData provides fields for rendering alarm text.
type TemplateData struct {
	Sensor      string
	Temperature string
	Time        string
}

// FormatTemperature renders a sensor value, or N/A when the probe had no value.
func FormatTemperature(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Template renders notification content.
type Template struct {
	tpl *template.Template
}

// NewTemplate parses a notification template, falling back to DefaultTemplate.
func NewTemplate(tpl string) (*Template, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("alarm-notification").Option("missingkey=error").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{tpl: parsed}, nil
}

// Render applies the template to data.
func (t *Template) Render(data TemplateData) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("alarm template: nil")
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
