package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"4343"`

	// Upstream-Lexikon-API (Einträge, Rezepte, Rollentypen)
	LexiconBaseURL string `envconfig:"LEXICON_BASE_URL" required:"true"`
	LexiconAPIKey  string `envconfig:"LEXICON_API_KEY"`

	// Eigener API-Schutz; leer lassen deaktiviert die Prüfung.
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Zeitplan für den Refresh des Rollentyp-Katalogs.
	CatalogRefreshSchedule string `envconfig:"CATALOG_REFRESH_SCHEDULE" default:"@every 1h"`

	// Timeout in Sekunden für den Suitable-Recipe-Lookup bei Navigation.
	NavigateTimeoutSeconds int `envconfig:"NAVIGATE_TIMEOUT_SECONDS" default:"5"`

	// Maximale Zeilenbreite des Diagramm-Canvas (0 = Default des Layouters).
	CanvasMaxRowWidth float64 `envconfig:"CANVAS_MAX_ROW_WIDTH" default:"0"`

	StratoS3Key    string `envconfig:"STRATO_S3_KEY"`
	StratoS3Secret string `envconfig:"STRATO_S3_SECRET"`
	StratoS3URL    string `envconfig:"STRATO_S3_URL"`
	StratoS3Region string `envconfig:"STRATO_S3_REGION"`
	StratoS3Bucket string `envconfig:"STRATO_S3_BUCKET"`
}

// SnapshotsEnabled meldet, ob eine vollständige S3-Konfiguration vorliegt.
func (c *Config) SnapshotsEnabled() bool {
	return c.StratoS3Key != "" && c.StratoS3Secret != "" && c.StratoS3URL != "" &&
		c.StratoS3Region != "" && c.StratoS3Bucket != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
