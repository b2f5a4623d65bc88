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

import "fmt"

// PredefinedTemplates holds one template per notification type
var PredefinedTemplates = []*Template{
	{
		ID:          "IDEA_CREATED",
		Title:       "New idea created",
		Content:     `Your idea '{{.title}}' was created with id {{.ideaId}}`,
		Variables:   []string{"title", "ideaId"},
		Description: "Sent to the creator when an idea is created",
	},
	{
		ID:          "IDEA_STATUS_CHANGED",
		Title:       "Idea status changed",
		Content:     `Your idea '{{.title}}' moved from {{status .from}} to {{status .to}}`,
		Variables:   []string{"title", "from", "to"},
		Description: "Sent to the creator on every lifecycle transition",
	},
	{
		ID:    "VOTE_ACTIVITY",
		Title: "New vote",
		// others is total votes minus the new one
		Content:     `{{.actor}}{{if gt .others 0}} and {{.others}} {{plural .others "other" "others"}}{{end}} voted for your idea`,
		Variables:   []string{"actor", "others"},
		Description: "Sent to the idea owner when a vote is cast",
	},
	{
		ID:          "TEAM_ASSIGNED",
		Title:       "Team assignment",
		Content:     `You have been assigned the role {{.role}} on idea {{.ideaId}}`,
		Variables:   []string{"role", "ideaId"},
		Description: "Sent to the user added to an idea team",
	},
	{
		ID:          "BOOKMARK_ACTIVITY",
		Title:       "Idea bookmarked",
		Content:     `{{.actor}} bookmarked your idea`,
		Variables:   []string{"actor"},
		Description: "Sent to the idea owner when someone bookmarks it",
	},
}

// Renderer renders predefined templates by notification type.
type Renderer struct {
	engine    *TemplateEngine
	templates map[string]*Template
}

func NewRenderer() *Renderer {
	r := &Renderer{
		engine:    NewTemplateEngine(),
		templates: make(map[string]*Template, len(PredefinedTemplates)),
	}
	for _, t := range PredefinedTemplates {
		r.templates[t.ID] = t
	}
	return r
}

// Render returns title and message for the notification type.
func (r *Renderer) Render(notificationType string, data map[string]any) (title, message string, err error) {
	t, ok := r.templates[notificationType]
	if !ok {
		return "", "", fmt.Errorf("no template for notification type %s", notificationType)
	}
	message, err = r.engine.Render(t.Content, data)
	if err != nil {
		return "", "", fmt.Errorf("render %s: %w", notificationType, err)
	}
	return t.Title, message, nil
}
