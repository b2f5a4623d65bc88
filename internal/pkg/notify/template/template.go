// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package template

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Template represents a notification template
type Template struct {
	ID          string // notification type it renders
	Title       string // Template title
	Content     string // Template content with variables
	Variables   []string
	Description string
}

// TemplateEngine renders templates; parsed templates are cached by text.
type TemplateEngine struct {
	funcMap template.FuncMap
	mu      sync.RWMutex
	parsed  map[string]*template.Template
}

// NewTemplateEngine creates a new template engine
func NewTemplateEngine() *TemplateEngine {
	titleCaser := cases.Title(language.English)
	funcMap := template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"title": titleCaser.String,
		"trim":  strings.TrimSpace,
		// status turns UNDER_REVIEW into "Under Review"
		"status": func(s string) string {
			return titleCaser.String(strings.ReplaceAll(strings.ToLower(s), "_", " "))
		},
		"plural": func(n int64, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
	}

	return &TemplateEngine{
		funcMap: funcMap,
		parsed:  make(map[string]*template.Template),
	}
}

// Render renders a template with the given data
func (e *TemplateEngine) Render(tmplContent string, data map[string]any) (string, error) {
	tmpl, err := e.parse(tmplContent)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func (e *TemplateEngine) parse(tmplContent string) (*template.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.parsed[tmplContent]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	tmpl, err := template.New("notification").Funcs(e.funcMap).Option("missingkey=error").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	e.mu.Lock()
	e.parsed[tmplContent] = tmpl
	e.mu.Unlock()
	return tmpl, nil
}

// ValidateTemplate validates if a template is valid
func (e *TemplateEngine) ValidateTemplate(tmplContent string) error {
	_, err := template.New("validation").Funcs(e.funcMap).Parse(tmplContent)
	return err
}
