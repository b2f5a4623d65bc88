package idea

import (
	"testing"

	"github.com/go-arcade/ideaflow/internal/engine/model"
	"github.com/stretchr/testify/assert"
)

func TestIdea_Members(t *testing.T) {
	i := &Idea{}
	assert.Equal(t, []uint64{}, i.Members())

	assert.True(t, i.AddMember(3))
	assert.True(t, i.AddMember(1))
	assert.False(t, i.AddMember(3))
	assert.True(t, i.AddMember(2))
	assert.Equal(t, []uint64{3, 1, 2}, i.Members())

	before := i.Members()
	assert.True(t, i.RemoveMember(1))
	assert.False(t, i.RemoveMember(1))
	assert.Equal(t, []uint64{3, 2}, i.Members())
	assert.Equal(t, []uint64{3, 1, 2}, before)
}

func TestPageQuery_Normalize(t *testing.T) {
	tests := []struct {
		in   model.PageQuery
		want model.PageQuery
	}{
		{model.PageQuery{}, model.PageQuery{Page: 1, Size: 10}},
		{model.PageQuery{Page: 3, Size: 500}, model.PageQuery{Page: 3, Size: 100}},
		{model.PageQuery{Page: -1, Size: 20}, model.PageQuery{Page: 1, Size: 20}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Normalize())
	}
	assert.Equal(t, 40, model.PageQuery{Page: 3, Size: 20}.Offset())
}
