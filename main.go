package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recipe-canvas/config"
	"recipe-canvas/lexicon"
	"recipe-canvas/models"
	"recipe-canvas/services"
	"recipe-canvas/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	diagramsRenderedCounter prometheus.Counter
	snapshotsCounter        prometheus.Counter
	catalogRefreshCounter   prometheus.Counter
	navigationsCounter      prometheus.Counter
	navigationsResolved     prometheus.Counter
)

func init() {
	diagramsRenderedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "diagrams_rendered_total",
		Help: "Total number of recipe diagrams rendered.",
	})
	snapshotsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshots_uploaded_total",
		Help: "Total number of diagram snapshots uploaded to S3.",
	})
	catalogRefreshCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "role_type_catalog_refreshes_total",
		Help: "Total number of successful role type catalog refreshes.",
	})
	navigationsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "predicate_navigations_total",
		Help: "Total number of predicate navigation requests.",
	})
	navigationsResolved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "predicate_navigations_resolved_total",
		Help: "Navigations that landed on a suitable recipe via a discovered variable.",
	})
	prometheus.MustRegister(diagramsRenderedCounter, snapshotsCounter,
		catalogRefreshCounter, navigationsCounter, navigationsResolved)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Lexikon-Client und Services
	client := lexicon.NewClient(cfg, logging)
	catalog := services.NewCatalog()
	resolver := services.NewBindingResolver(catalog)
	layouter := services.NewLayouter()
	if cfg.CanvasMaxRowWidth > 0 {
		layouter.MaxRowWidth = cfg.CanvasMaxRowWidth
	}
	renderer := services.NewRenderer(layouter, resolver, logging)
	navigator := services.NewNavigator(client, time.Duration(cfg.NavigateTimeoutSeconds)*time.Second, logging)

	// Katalog-Warmup; Fehler degradieren nur die Beschreibungen.
	refreshCatalog(client, catalog, logging)

	var s3Client *s3ClientHolder
	if cfg.SnapshotsEnabled() {
		raw, err := storage.NewS3Client(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		s3Client = &s3ClientHolder{client: raw}
		logging.Info("Snapshot upload enabled", zap.String("bucket", cfg.StratoS3Bucket))
	} else {
		logging.Info("Snapshot upload disabled (no S3 config)")
	}

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "recipe-canvas"})
	})

	// Setup Routes
	setupDiagramRoutes(router, client, renderer, layouter, logging)
	setupNavigateRoutes(router, client, navigator, logging)
	setupSnapshotRoutes(router, cfg, client, renderer, s3Client, logging)
	setupCatalogRoutes(router, catalog)

	// Setup Cron: Rollentyp-Katalog periodisch auffrischen.
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CatalogRefreshSchedule, func() {
		refreshCatalog(client, catalog, logging)
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// s3ClientHolder hält den optionalen S3-Client; nil bedeutet Snapshots
// sind deaktiviert.
type s3ClientHolder struct {
	client storage.S3API
}

func refreshCatalog(client *lexicon.Client, catalog *services.Catalog, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	types, err := client.RoleTypes(ctx)
	if err != nil {
		logger.Warn("Role type catalog refresh failed, keeping previous catalog", zap.Error(err))
		return
	}
	catalog.Replace(types)
	catalogRefreshCounter.Inc()
	logger.Info("Role type catalog refreshed", zap.Int("role_types", len(types)))
}

// parseExpand liest die aufgeklappten Sektionen aus ?expand=roles,lemmas,...
func parseExpand(c *gin.Context) services.ExpandConfig {
	var cfg services.ExpandConfig
	for _, part := range strings.Split(c.Query("expand"), ",") {
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

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", name)})
		return 0, false
	}
	return uint(id), true
}

func parseRecipeQuery(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.Query("recipe"), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// setupDiagramRoutes konfiguriert die Diagramm-Endpoints (SVG und
// Layout-JSON für Hosts, die selbst zeichnen).
func setupDiagramRoutes(router *gin.Engine, client *lexicon.Client, renderer *services.Renderer, layouter *services.Layouter, log *zap.Logger) {
	rg := router.Group("/entries")

	rg.GET("/:id/diagram", func(c *gin.Context) {
		entryID, ok := parseID(c, "id")
		if !ok {
			return
		}

		entry, recipes, ok := fetchEntryAndRecipes(c, client, entryID, log)
		if !ok {
			return
		}

		svg := renderer.RenderDiagram(entry, recipes, parseRecipeQuery(c), parseExpand(c))
		diagramsRenderedCounter.Inc()
		c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
	})

	rg.GET("/:id/diagram.json", func(c *gin.Context) {
		entryID, ok := parseID(c, "id")
		if !ok {
			return
		}

		entry, recipes, ok := fetchEntryAndRecipes(c, client, entryID, log)
		if !ok {
			return
		}
		if len(recipes) == 0 {
			c.JSON(http.StatusOK, gin.H{"entry_id": entry.ID, "recipes": 0})
			return
		}

		recipe := services.ActiveRecipe(recipes, parseRecipeQuery(c))
		if recipe == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "selected recipe not in list"})
			return
		}

		plan := services.InterpretRecipe(recipe)
		head := services.HeadInfo{
			Pager:         len(recipes) > 1,
			Preconditions: services.PreconditionSummary(recipe) != "",
			Example:       recipe.Example != "",
		}
		layout := layouter.Layout(plan, recipe.Relations, parseExpand(c), head)
		renderer.ResolveBoxBindings(&layout, recipe, entry)

		c.JSON(http.StatusOK, gin.H{
			"entry_id":  entry.ID,
			"recipe_id": recipe.ID,
			"recipes":   len(recipes),
			"layout":    layout,
		})
	})
}

// setupNavigateRoutes konfiguriert den Klick-Endpoint: Ziel-Eintrag
// plus ggf. das Recipe, das die entdeckte Variable auflöst.
func setupNavigateRoutes(router *gin.Engine, client *lexicon.Client, navigator *services.Navigator, log *zap.Logger) {
	rg := router.Group("/entries")

	rg.GET("/:id/navigate/:predicateID", func(c *gin.Context) {
		entryID, ok := parseID(c, "id")
		if !ok {
			return
		}
		predicateID, ok := parseID(c, "predicateID")
		if !ok {
			return
		}

		recipes, err := client.Recipes(c.Request.Context(), entryID)
		if err != nil {
			log.Error("Recipe fetch for navigation failed", zap.Uint("entry_id", entryID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "lexicon API unavailable"})
			return
		}
		recipe := services.ActiveRecipe(recipes, parseRecipeQuery(c))
		if recipe == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}

		result, err := navigator.Navigate(c.Request.Context(), recipe, predicateID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		navigationsCounter.Inc()
		if result.Resolved {
			navigationsResolved.Inc()
		}
		c.JSON(http.StatusOK, result)
	})
}

// setupSnapshotRoutes konfiguriert den Snapshot-Export gerenderter
// Diagramme nach S3.
func setupSnapshotRoutes(router *gin.Engine, cfg *config.Config, client *lexicon.Client, renderer *services.Renderer, holder *s3ClientHolder, log *zap.Logger) {
	rg := router.Group("/entries")

	rg.POST("/:id/snapshot", func(c *gin.Context) {
		if holder == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot upload not configured"})
			return
		}
		entryID, ok := parseID(c, "id")
		if !ok {
			return
		}

		entry, recipes, ok := fetchEntryAndRecipes(c, client, entryID, log)
		if !ok {
			return
		}

		recipeID := parseRecipeQuery(c)
		svg := renderer.RenderDiagram(entry, recipes, recipeID, parseExpand(c))

		key := fmt.Sprintf("diagrams/entry-%d-recipe-%d-%s.svg", entryID, recipeID,
			time.Now().UTC().Format("2006-01-02T15-04-05Z"))
		link, err := storage.UploadSnapshot(c.Request.Context(), holder.client, cfg, key, []byte(svg))
		if err != nil {
			log.Error("Snapshot upload failed", zap.String("key", key), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "snapshot upload failed"})
			return
		}

		snapshotsCounter.Inc()
		log.Info("Snapshot uploaded", zap.String("key", key))
		c.JSON(http.StatusCreated, gin.H{"link": link})
	})
}

func setupCatalogRoutes(router *gin.Engine, catalog *services.Catalog) {
	router.GET("/role-types", func(c *gin.Context) {
		c.JSON(http.StatusOK, catalog.Types())
	})
}

// fetchEntryAndRecipes lädt Eintrag und Rezeptliste; Fehler werden
// direkt als HTTP-Antwort gemeldet.
func fetchEntryAndRecipes(c *gin.Context, client *lexicon.Client, entryID uint, log *zap.Logger) (*models.GraphNode, []models.Recipe, bool) {
	entry, err := client.Entry(c.Request.Context(), entryID)
	if err != nil {
		log.Error("Entry fetch failed", zap.Uint("entry_id", entryID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "lexicon API unavailable"})
		return nil, nil, false
	}
	recipes, err := client.Recipes(c.Request.Context(), entryID)
	if err != nil {
		log.Error("Recipe fetch failed", zap.Uint("entry_id", entryID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "lexicon API unavailable"})
		return nil, nil, false
	}
	return entry, recipes, true
}
