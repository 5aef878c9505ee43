package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recipe-canvas/models"
)

// RecipeSource liefert die Rezeptliste eines Eintrags; erfüllt vom
// Lexikon-Client.
type RecipeSource interface {
	Recipes(ctx context.Context, entryID uint) ([]models.Recipe, error)
}

// NavigationResult ist das Ziel eines Prädikat-Klicks: der Eintrag und
// ggf. das dort vorzuwählende Recipe.
type NavigationResult struct {
	EntryID  uint `json:"entry_id"`
	RecipeID uint `json:"recipe_id,omitempty"`
	Resolved bool `json:"resolved"`
}

// Navigator löst Prädikat-Klicks auf. Trägt ein Mapping das
// Discovered-Flag, wird am Ziel-Eintrag nach einem Recipe gesucht, das
// die entdeckte Variable auflöst statt sie erneut zu entdecken; der
// Lookup ist zeitlich begrenzt und fällt bei Fehlern still auf das
// erste Recipe zurück.
type Navigator struct {
	Source  RecipeSource
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewNavigator erstellt einen Navigator über der gegebenen Quelle.
func NewNavigator(source RecipeSource, timeout time.Duration, logger *zap.Logger) *Navigator {
	return &Navigator{Source: source, Timeout: timeout, Logger: logger}
}

// DiscoveredLabels sammelt die Rollen-Labels aller discovered Mappings
// eines Prädikats.
func DiscoveredLabels(pred *models.PredicateNode) []string {
	var labels []string
	for _, m := range pred.RoleMappings {
		if m.Discovered && m.EntryRoleLabel != "" {
			labels = append(labels, m.EntryRoleLabel)
		}
	}
	return labels
}

// SelectSuitableRecipe sucht das erste Recipe, in dem irgendein
// Prädikat ein Mapping auf eines der entdeckten Labels trägt, das
// selbst nicht discovered ist, also ein Recipe, das die Variable
// auflöst.
func SelectSuitableRecipe(recipes []models.Recipe, discoveredLabels []string) (uint, bool) {
	if len(discoveredLabels) == 0 {
		return 0, false
	}
	labelSet := make(map[string]bool, len(discoveredLabels))
	for _, l := range discoveredLabels {
		labelSet[l] = true
	}
	for _, recipe := range recipes {
		for _, pred := range recipePredicates(&recipe) {
			for _, m := range pred.RoleMappings {
				if !m.Discovered && labelSet[m.EntryRoleLabel] {
					return recipe.ID, true
				}
			}
		}
	}
	return 0, false
}

// recipePredicates liefert alle Prädikat-Vorkommen eines Recipes,
// unabhängig davon, ob sie in der flachen Liste oder nur im Baum stehen.
func recipePredicates(recipe *models.Recipe) []*models.PredicateNode {
	seen := make(map[uint]bool, len(recipe.Predicates))
	var preds []*models.PredicateNode
	for i := range recipe.Predicates {
		seen[recipe.Predicates[i].ID] = true
		preds = append(preds, &recipe.Predicates[i])
	}
	for _, occ := range ExtractOccurrences(recipe.LogicRoot, false) {
		if !seen[occ.Predicate.ID] {
			seen[occ.Predicate.ID] = true
			preds = append(preds, occ.Predicate)
		}
	}
	return preds
}

// Navigate bestimmt das Ziel eines Klicks auf ein Prädikat-Vorkommen.
// Die Navigation selbst schlägt nie am Lookup fehl: ohne Treffer bleibt
// die Rezept-Wahl dem Default (erstes Recipe) des Ziels überlassen.
func (n *Navigator) Navigate(ctx context.Context, recipe *models.Recipe, predicateID uint) (NavigationResult, error) {
	pred := recipe.PredicateByID(predicateID)
	if pred == nil {
		return NavigationResult{}, fmt.Errorf("predicate %d not in recipe %d", predicateID, recipe.ID)
	}

	result := NavigationResult{EntryID: pred.Lexical.ID}
	labels := DiscoveredLabels(pred)
	if len(labels) == 0 {
		return result, nil
	}

	lookupCtx := ctx
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	recipes, err := n.Source.Recipes(lookupCtx, pred.Lexical.ID)
	if err != nil {
		n.Logger.Warn("Suitable-Recipe-Lookup fehlgeschlagen, Fallback auf Default",
			zap.Uint("target_entry_id", pred.Lexical.ID),
			zap.Error(err))
		return result, nil
	}

	if id, ok := SelectSuitableRecipe(recipes, labels); ok {
		result.RecipeID = id
		result.Resolved = true
	}
	return result, nil
}
