package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesense/domain/core"
	"tablesense/domain/project"
)

func TestResolve(t *testing.T) {
	r := NewResolver(&project.Project{ID: "crm", Tables: map[string]string{"leads": "crm_leads"}})

	p, err := r.Resolve(context.Background(), "crm")
	require.NoError(t, err)
	assert.Equal(t, "crm_leads", p.Tables["leads"])

	p.Tables["leads"] = "edited"
	again, err := r.Resolve(context.Background(), "crm")
	require.NoError(t, err)
	assert.Equal(t, "crm_leads", again.Tables["leads"])

	_, err = r.Resolve(context.Background(), "other")
	assert.ErrorIs(t, err, core.ErrProjectNotFound)
}

func TestAdHoc(t *testing.T) {
	p, err := AdHoc("local").Resolve(context.Background(), "local")
	require.NoError(t, err)

	phys, logical, ok := p.ResolveTable("anything")
	assert.True(t, ok)
	assert.Equal(t, "anything", phys)
	assert.Empty(t, logical)
}
