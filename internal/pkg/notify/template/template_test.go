package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_VoteActivity(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name   string
		actor  string
		others int64
		want   string
	}{
		{"first vote", "Alice", 0, "Alice voted for your idea"},
		{"second vote", "Bob", 1, "Bob and 1 other voted for your idea"},
		{"many votes", "Carol", 4, "Carol and 4 others voted for your idea"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, msg, err := r.Render("VOTE_ACTIVITY", map[string]any{"actor": tt.actor, "others": tt.others})
			require.NoError(t, err)
			assert.Equal(t, "New vote", title)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestRenderer_StatusChanged(t *testing.T) {
	_, msg, err := NewRenderer().Render("IDEA_STATUS_CHANGED", map[string]any{
		"title": "Solar roof", "from": "SUBMITTED", "to": "UNDER_REVIEW",
	})
	require.NoError(t, err)
	assert.Equal(t, "Your idea 'Solar roof' moved from Submitted to Under Review", msg)
}

func TestRenderer_Errors(t *testing.T) {
	r := NewRenderer()

	_, _, err := r.Render("UNKNOWN", nil)
	assert.Error(t, err)

	_, _, err = r.Render("TEAM_ASSIGNED", map[string]any{"role": "MEMBER"})
	assert.Error(t, err, "missing ideaId must fail")
}

func TestPredefinedTemplatesParse(t *testing.T) {
	e := NewTemplateEngine()
	for _, tmpl := range PredefinedTemplates {
		assert.NoError(t, e.ValidateTemplate(tmpl.Content), tmpl.ID)
	}
}
