package main

import (
	"encoding/json"
	"log"
	"os"
	"strings"

	"recipe-canvas/models"
	"recipe-canvas/services"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// RenderConfig steuert das Offline-Rendering aus JSON-Dateien, z.B. für
// Dokumentation oder Regressionstests gegen echte Rezept-Exporte.
type RenderConfig struct {
	EntryFile   string `envconfig:"RENDER_ENTRY_FILE" required:"true"`
	RecipesFile string `envconfig:"RENDER_RECIPES_FILE" required:"true"`
	OutFile     string `envconfig:"RENDER_OUT_FILE" default:"diagram.svg"`
	RecipeID    uint   `envconfig:"RENDER_RECIPE_ID" default:"0"`
	Expand      string `envconfig:"RENDER_EXPAND" default:"roles"`
}

func main() {
	log.Println("Starte Offline-Rendering...")

	var cfg RenderConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}

	// 1. Eintrag und Rezepte aus Dateien lesen
	entry, err := readEntry(cfg.EntryFile)
	if err != nil {
		log.Fatalf("Fehler beim Lesen des Eintrags: %v", err)
	}
	recipes, err := readRecipes(cfg.RecipesFile)
	if err != nil {
		log.Fatalf("Fehler beim Lesen der Rezepte: %v", err)
	}

	// 2. Diagramm rendern
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	renderer := services.NewRenderer(services.NewLayouter(), services.NewBindingResolver(services.NewCatalog()), logger)
	svg := renderer.RenderDiagram(entry, recipes, cfg.RecipeID, parseExpand(cfg.Expand))

	// 3. SVG schreiben
	if err := os.WriteFile(cfg.OutFile, []byte(svg), 0o644); err != nil {
		log.Fatalf("Fehler beim Schreiben der Ausgabe: %v", err)
	}

	log.Printf("Diagramm erfolgreich nach %s geschrieben (%d Rezepte)", cfg.OutFile, len(recipes))
}

func readEntry(path string) (*models.GraphNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry models.GraphNode
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func readRecipes(path string) ([]models.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recipes []models.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func parseExpand(raw string) services.ExpandConfig {
	var cfg services.ExpandConfig
	for _, part := range strings.Split(raw, ",") {
		switch strings.TrimSpace(part) {
		case "roles":
			cfg.Roles = true
		case "lemmas":
			cfg.Lemmas = true
		case "examples":
			cfg.Examples = true
		case "causes":
			cfg.Causes = true
		case "entails":
			cfg.Entails = true
		case "also_see":
			cfg.AlsoSee = true
		}
	}
	return cfg
}
