package deploy

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/cameronsjo/lambdo/internal/gitinfo"
)

// DefaultDescription stamps published versions with the publish time.
const DefaultDescription = `{{ .Time | date "2006-01-02 15:04" }}`

// maxDescription is the longest description the platform accepts.
const maxDescription = 256

// DescriptionData is available to version description templates.
type DescriptionData struct {
	Name   string
	Time   time.Time
	RunID  string
	Commit string
	Short  string
	Branch string
	Dirty  bool
}

func newDescriptionData(name string, now time.Time, runID string, git gitinfo.Info) DescriptionData {
	return DescriptionData{
		Name:   name,
		Time:   now,
		RunID:  runID,
		Commit: git.Commit,
		Short:  git.Short(),
		Branch: git.Branch,
		Dirty:  git.Dirty,
	}
}

// ParseDescription compiles a version description template with the sprig
// function map. An empty text selects DefaultDescription.
func ParseDescription(text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultDescription
	}
	tmpl, err := template.New("description").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse description template: %w", err)
	}
	return tmpl, nil
}

func renderDescription(tmpl *template.Template, data DescriptionData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render description: %w", err)
	}
	desc := strings.TrimSpace(buf.String())
	if len(desc) > maxDescription {
		desc = desc[:maxDescription]
	}
	return desc, nil
}
