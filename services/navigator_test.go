package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipe-canvas/models"
)

type fakeRecipeSource struct {
	recipes []models.Recipe
	err     error
	calls   int
}

func (f *fakeRecipeSource) Recipes(ctx context.Context, entryID uint) ([]models.Recipe, error) {
	f.calls++
	return f.recipes, f.err
}

func navRecipe(discovered bool) *models.Recipe {
	return &models.Recipe{
		ID: 10,
		Predicates: []models.PredicateNode{{
			ID:      1,
			Lexical: models.LexicalRef{ID: 42, Lemma: "run"},
			RoleMappings: []models.RoleMapping{{
				RoleLabel:      "Mover",
				BindKind:       models.BindRole,
				EntryRoleLabel: "Agent",
				Discovered:     discovered,
			}},
		}},
	}
}

func TestDiscoveredLabels(t *testing.T) {
	p := &models.PredicateNode{RoleMappings: []models.RoleMapping{
		{EntryRoleLabel: "Agent", Discovered: true},
		{EntryRoleLabel: "Theme", Discovered: false},
		{EntryRoleLabel: "", Discovered: true},
	}}
	assert.Equal(t, []string{"Agent"}, DiscoveredLabels(p))
}

func TestSelectSuitableRecipe(t *testing.T) {
	resolving := models.Recipe{
		ID: 7,
		Predicates: []models.PredicateNode{{
			ID: 1,
			RoleMappings: []models.RoleMapping{
				{EntryRoleLabel: "Agent", Discovered: false},
			},
		}},
	}
	rediscovering := models.Recipe{
		ID: 8,
		Predicates: []models.PredicateNode{{
			ID: 2,
			RoleMappings: []models.RoleMapping{
				{EntryRoleLabel: "Agent", Discovered: true},
			},
		}},
	}

	t.Run("prefers resolving recipe", func(t *testing.T) {
		id, ok := SelectSuitableRecipe([]models.Recipe{rediscovering, resolving}, []string{"Agent"})
		assert.True(t, ok)
		assert.Equal(t, uint(7), id)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := SelectSuitableRecipe([]models.Recipe{rediscovering}, []string{"Agent"})
		assert.False(t, ok)
	})

	t.Run("no labels", func(t *testing.T) {
		_, ok := SelectSuitableRecipe([]models.Recipe{resolving}, nil)
		assert.False(t, ok)
	})
}

func TestNavigateWithoutDiscoveredSkipsLookup(t *testing.T) {
	source := &fakeRecipeSource{}
	n := NewNavigator(source, time.Second, zap.NewNop())

	result, err := n.Navigate(context.Background(), navRecipe(false), 1)
	require.NoError(t, err)
	assert.Equal(t, uint(42), result.EntryID)
	assert.False(t, result.Resolved)
	assert.Zero(t, source.calls, "no lookup without discovered mappings")
}

func TestNavigateSelectsSuitableRecipe(t *testing.T) {
	source := &fakeRecipeSource{recipes: []models.Recipe{{
		ID: 99,
		Predicates: []models.PredicateNode{{
			ID: 5,
			RoleMappings: []models.RoleMapping{
				{EntryRoleLabel: "Agent", Discovered: false},
			},
		}},
	}}}
	n := NewNavigator(source, time.Second, zap.NewNop())

	result, err := n.Navigate(context.Background(), navRecipe(true), 1)
	require.NoError(t, err)
	assert.Equal(t, uint(42), result.EntryID)
	assert.True(t, result.Resolved)
	assert.Equal(t, uint(99), result.RecipeID)
	assert.Equal(t, 1, source.calls)
}

func TestNavigateLookupFailureFallsBackSilently(t *testing.T) {
	source := &fakeRecipeSource{err: errors.New("upstream down")}
	n := NewNavigator(source, time.Second, zap.NewNop())

	result, err := n.Navigate(context.Background(), navRecipe(true), 1)
	require.NoError(t, err, "lookup failure must not fail the navigation")
	assert.Equal(t, uint(42), result.EntryID)
	assert.False(t, result.Resolved)
	assert.Zero(t, result.RecipeID)
}

func TestNavigateNoSuitableRecipeKeepsDefault(t *testing.T) {
	source := &fakeRecipeSource{recipes: []models.Recipe{{
		ID: 99,
		Predicates: []models.PredicateNode{{
			ID: 5,
			RoleMappings: []models.RoleMapping{
				{EntryRoleLabel: "Agent", Discovered: true},
			},
		}},
	}}}
	n := NewNavigator(source, time.Second, zap.NewNop())

	result, err := n.Navigate(context.Background(), navRecipe(true), 1)
	require.NoError(t, err)
	assert.False(t, result.Resolved)
}

func TestNavigateTreeOnlyRecipe(t *testing.T) {
	// Migrierte Recipes tragen ihre Vorkommen mitunter nur im Baum.
	p := models.PredicateNode{ID: 9, Lexical: models.LexicalRef{ID: 42, Lemma: "run"}}
	recipe := &models.Recipe{
		ID: 5,
		LogicRoot: &models.LogicNode{Kind: models.LogicAnd, Children: []*models.LogicNode{
			{Kind: models.LogicNot, Children: []*models.LogicNode{
				{Kind: models.LogicLeaf, TargetPredicate: &p},
			}},
		}},
	}
	n := NewNavigator(&fakeRecipeSource{}, time.Second, zap.NewNop())

	result, err := n.Navigate(context.Background(), recipe, 9)
	require.NoError(t, err)
	assert.Equal(t, uint(42), result.EntryID)
}

func TestSelectSuitableRecipeTreeOnlyPredicates(t *testing.T) {
	p := models.PredicateNode{ID: 3, RoleMappings: []models.RoleMapping{
		{EntryRoleLabel: "Agent", Discovered: false},
	}}
	recipe := models.Recipe{ID: 7, LogicRoot: leaf(&p)}

	id, ok := SelectSuitableRecipe([]models.Recipe{recipe}, []string{"Agent"})
	assert.True(t, ok, "tree-only destination recipes must be selectable")
	assert.Equal(t, uint(7), id)
}

func TestNavigateUnknownPredicate(t *testing.T) {
	n := NewNavigator(&fakeRecipeSource{}, time.Second, zap.NewNop())
	_, err := n.Navigate(context.Background(), navRecipe(false), 123)
	assert.Error(t, err)
}
