package lexicon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"recipe-canvas/config"
	"recipe-canvas/models"
)

// httpClient wird für alle Anfragen an die Lexikon-API verwendet.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// Client ist der Zugang zur Lexikon-API: Eintrags-Details, Rezeptlisten
// und der Rollentyp-Katalog. Alle Daten sind read-only Snapshots.
type Client struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewClient erstellt einen neuen Lexikon-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{Config: cfg, Logger: logger}
}

// Entry lädt den GraphNode eines Eintrags.
func (c *Client) Entry(ctx context.Context, entryID uint) (*models.GraphNode, error) {
	var entry models.GraphNode
	url := fmt.Sprintf("%s/entries/%d", c.Config.LexiconBaseURL, entryID)
	if err := c.getJSON(ctx, url, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Recipes lädt die Rezeptliste eines Eintrags.
func (c *Client) Recipes(ctx context.Context, entryID uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	url := fmt.Sprintf("%s/entries/%d/recipes", c.Config.LexiconBaseURL, entryID)
	if err := c.getJSON(ctx, url, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// RoleTypes lädt den generischen Rollentyp-Katalog.
func (c *Client) RoleTypes(ctx context.Context) ([]models.RoleType, error) {
	var types []models.RoleType
	url := c.Config.LexiconBaseURL + "/role-types"
	if err := c.getJSON(ctx, url, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.Config.LexiconAPIKey != "" {
		req.Header.Set("X-API-KEY", c.Config.LexiconAPIKey)
	}

	c.Logger.Debug("Rufe Lexikon-API auf", zap.String("url", url))
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("lexicon API %s: unexpected status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("lexicon API %s: decode: %w", url, err)
	}
	return nil
}
