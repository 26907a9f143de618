package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/model"
	"modelkit/pkg/repository"
)

type noteProps struct {
	Title string `json:"title" validate:"required"`
}

func noteTrait(t *testing.T) *model.AggregateRootTrait[noteProps] {
	t.Helper()
	trait, err := model.NewAggregateRoot[noteProps]("Note").
		WithSchema(model.Struct[noteProps]()).
		Build()
	require.NoError(t, err)
	return trait
}

func TestNewRepository_RejectsUnsafeTableName(t *testing.T) {
	trait := noteTrait(t)

	for _, table := range []string{"", "Notes", "notes; DROP TABLE users", "1notes", "no-tes"} {
		_, err := NewRepository(nil, trait, table)
		require.Error(t, err, "table %q", table)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMisconfigured))
	}

	_, err := NewRepository(nil, trait, "notes_v2")
	assert.NoError(t, err)
}

func TestContainmentDoc_ExpandsDottedPaths(t *testing.T) {
	doc, err := containmentDoc(repository.Query{
		"status":          "open",
		"reporter.name":   "ada",
		"reporter.org.id": 7,
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"status": "open",
		"reporter": {"name": "ada", "org": {"id": 7}}
	}`, string(doc))
}

func TestContainmentDoc_EmptyQueryMatchesEverything(t *testing.T) {
	doc, err := containmentDoc(repository.Query{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(doc))
}
