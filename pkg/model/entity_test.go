package model_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "modelkit/pkg/domain"
	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/model"
)

type userProps struct {
	Name   string `validate:"required"`
	Email  string `validate:"required,email"`
	Active bool
}

func userTrait(t *testing.T) *model.EntityTrait[userProps] {
	t.Helper()
	trait, err := model.NewEntity[userProps]("User").
		WithSchema(model.Struct[userProps]()).
		Build()
	require.NoError(t, err)
	return trait
}

func TestEntity_NewMintsIdentity(t *testing.T) {
	trait := userTrait(t)

	e, err := trait.New(context.Background(), userProps{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	assert.False(t, e.ID.IsNil())
	assert.Equal(t, "User", e.GetTag())
	assert.False(t, e.CreatedAt.IsZero())
	assert.Nil(t, e.UpdatedAt, "updatedAt is absent until the first command")
}

func TestEntity_NewHonorsSuppliedIdentity(t *testing.T) {
	trait := userTrait(t)
	supplied := id.NewIdentifier()
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	e, err := trait.New(context.Background(),
		userProps{Name: "Ada", Email: "ada@example.com"},
		model.WithID(supplied), model.WithCreatedAt(createdAt))
	require.NoError(t, err)

	assert.Equal(t, supplied, e.ID)
	assert.Equal(t, createdAt, e.CreatedAt)
}

func TestEntity_DisabledGenerationRequiresID(t *testing.T) {
	trait, err := model.NewEntity[userProps]("User").
		WithSchema(model.Struct[userProps]()).
		WithoutIDGeneration().
		Build()
	require.NoError(t, err)

	_, err = trait.New(context.Background(), userProps{Name: "Ada", Email: "ada@example.com"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestEntity_ParseRehydratesSnapshot(t *testing.T) {
	trait := userTrait(t)
	identifier := id.NewIdentifier()
	createdAt := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	updatedAt := createdAt.Add(48 * time.Hour)

	e, err := trait.Parse(context.Background(), model.Snapshot{
		ID:        identifier,
		Props:     userProps{Name: "Ada", Email: "ada@example.com", Active: true},
		CreatedAt: createdAt,
		UpdatedAt: &updatedAt,
	})
	require.NoError(t, err)

	assert.Equal(t, identifier, e.ID)
	assert.Equal(t, createdAt, e.CreatedAt)
	require.NotNil(t, e.UpdatedAt)
	assert.Equal(t, updatedAt, *e.UpdatedAt)
	assert.True(t, e.Unpack().Active)
}

func TestEntity_ParseRevalidatesProps(t *testing.T) {
	trait := userTrait(t)

	_, err := trait.Parse(context.Background(), model.Snapshot{
		ID:    id.NewIdentifier(),
		Props: userProps{Name: "", Email: "broken"},
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSchemaDecode))
}

func TestEntity_IdentityEquality(t *testing.T) {
	trait := userTrait(t)
	ctx := context.Background()

	shared := id.NewIdentifier()
	a, err := trait.New(ctx, userProps{Name: "Ada", Email: "ada@example.com"}, model.WithID(shared))
	require.NoError(t, err)
	b, err := trait.New(ctx, userProps{Name: "Different", Email: "other@example.com"}, model.WithID(shared))
	require.NoError(t, err)

	// Same tag and id: equal despite different props.
	assert.True(t, a.IsEqual(b))

	c, err := trait.New(ctx, userProps{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.False(t, a.IsEqual(c))
}

func TestEntityCommand_SuccessYieldsNewInstance(t *testing.T) {
	trait := userTrait(t)
	ctx := context.Background()

	deactivate := model.AsCommand(func(_ context.Context, _ struct{}, props userProps, _ model.Entity[userProps], _ id.CorrelationID) (userProps, error) {
		next := props
		next.Active = false
		return next, nil
	})

	original, err := trait.New(ctx, userProps{Name: "Ada", Email: "ada@example.com", Active: true})
	require.NoError(t, err)

	updated, err := deactivate.Execute(ctx, original, struct{}{})
	require.NoError(t, err)

	// Identity preserved, props replaced, updatedAt set.
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, original.GetTag(), updated.GetTag())
	assert.Equal(t, original.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.Unpack().Active)
	require.NotNil(t, updated.UpdatedAt)
	assert.False(t, updated.UpdatedAt.Before(original.CreatedAt))

	// The original is untouched.
	assert.True(t, original.Unpack().Active)
	assert.Nil(t, original.UpdatedAt)
}

func TestEntityCommand_UpdatedAtIsMonotonic(t *testing.T) {
	trait := userTrait(t)
	ctx := context.Background()

	rename := model.AsCommand(func(_ context.Context, name string, props userProps, _ model.Entity[userProps], _ id.CorrelationID) (userProps, error) {
		next := props
		next.Name = name
		return next, nil
	})

	e, err := trait.New(ctx, userProps{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	first, err := rename.Execute(ctx, e, "Grace")
	require.NoError(t, err)
	second, err := rename.Execute(ctx, first, "Edsger")
	require.NoError(t, err)

	require.NotNil(t, first.UpdatedAt)
	require.NotNil(t, second.UpdatedAt)
	assert.False(t, second.UpdatedAt.Before(*first.UpdatedAt))
}

func TestEntityCommand_FailureLeavesTargetUntouched(t *testing.T) {
	trait := userTrait(t)
	ctx := context.Background()

	failing := model.AsCommand(func(_ context.Context, _ struct{}, _ userProps, _ model.Entity[userProps], _ id.CorrelationID) (userProps, error) {
		return userProps{}, dErrors.NewInvariantViolation("user is locked")
	})

	original, err := trait.New(ctx, userProps{Name: "Ada", Email: "ada@example.com", Active: true})
	require.NoError(t, err)

	_, err = failing.Execute(ctx, original, struct{}{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	assert.True(t, original.Unpack().Active)
	assert.Nil(t, original.UpdatedAt)
}

func TestEntityCommand_CorrelationID(t *testing.T) {
	trait := userTrait(t)
	ctx := context.Background()

	var seen id.CorrelationID
	capture := model.AsCommand(func(_ context.Context, _ struct{}, props userProps, _ model.Entity[userProps], correlation id.CorrelationID) (userProps, error) {
		seen = correlation
		return props, nil
	})

	e, err := trait.New(ctx, userProps{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	t.Run("generated when absent", func(t *testing.T) {
		_, err := capture.Execute(ctx, e, struct{}{})
		require.NoError(t, err)
		assert.False(t, seen.IsNil())
	})

	t.Run("caller-supplied is threaded through", func(t *testing.T) {
		supplied := id.NewCorrelationID()
		_, err := capture.Execute(ctx, e, struct{}{}, model.WithCorrelationID(supplied))
		require.NoError(t, err)
		assert.Equal(t, supplied, seen)
	})
}

func TestEntityTrait_NamedCommands(t *testing.T) {
	trait, err := model.NewEntity[userProps]("User").
		WithSchema(model.Struct[userProps]()).
		WithCommand("deactivate", func(_ context.Context, _ any, props userProps, _ model.Entity[userProps], _ id.CorrelationID) (userProps, error) {
			next := props
			next.Active = false
			return next, nil
		}).
		Build()
	require.NoError(t, err)

	ctx := context.Background()
	e, err := trait.New(ctx, userProps{Name: "Ada", Email: "ada@example.com", Active: true})
	require.NoError(t, err)

	cmd, err := trait.Command("deactivate")
	require.NoError(t, err)

	updated, err := cmd.Execute(ctx, e, nil)
	require.NoError(t, err)
	assert.False(t, updated.Unpack().Active)

	_, err = trait.Command("unknown")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeMisconfigured))
}
