package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"

	BlobDriverS3     = "s3"
	BlobDriverGridFS = "gridfs"

	ProfileDriverDB   = "db"
	ProfileDriverHTTP = "http"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config est chargée une seule fois au démarrage puis n'est plus modifiée.
type Config struct {
	Addr    string `env:"HTTP_ADDR" envDefault:":8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"1h"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DBUrl       string `env:"SUPABASE_DB_URL"`
	MongoURL    string `env:"MONGODB_URL"`
	MongoDB     string `env:"MONGODB_DATABASE" envDefault:"socialsite"`

	BlobDriver      string `env:"BLOB_DRIVER" envDefault:"s3"`
	S3Bucket        string `env:"AWS_BUCKET_NAME"`
	S3Region        string `env:"AWS_REGION" envDefault:"eu-west-3"`
	S3AccessKeyID   string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretKey     string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Endpoint      string `env:"AWS_ENDPOINT_URL"`
	S3UsePathStyle  bool   `env:"AWS_S3_PATH_STYLE" envDefault:"false"`
	S3Folder        string `env:"AWS_S3_FOLDER" envDefault:"posts"`
	GridFSBucket    string `env:"GRIDFS_BUCKET" envDefault:"fs"`
	FilesURLPrefix  string `env:"FILES_URL_PREFIX" envDefault:"/api/files/"`
	RedirectOnWrite string `env:"REDIRECT_ON_WRITE" envDefault:"/"`

	ProfileDriver     string        `env:"PROFILE_DRIVER" envDefault:"db"`
	ProfileServiceURL string        `env:"PROFILE_SERVICE_URL"`
	ProfileServiceKey string        `env:"PROFILE_SERVICE_KEY"`
	RedisURL          string        `env:"REDIS_URL"`
	ProfileCacheTTL   time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`

	MaxUploadBytes    int64    `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"`
	AllowedExtensions []string `env:"ALLOWED_FILE_EXTENSIONS" envDefault:"png,jpg,jpeg,gif,mp4,mov"`
	AllowedMIMETypes  []string `env:"ALLOWED_MIME_TYPES" envDefault:"image/jpeg,image/png,image/gif,video/mp4,video/quicktime"`
	PostPattern       string   `env:"POST_PATTERN" envDefault:"^[A-Za-z0-9\\s.,!?\\-'\"]+$"`
}

// LoadConfig lit le .env (s'il existe) puis les variables d'environnement.
func LoadConfig() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadMigrateConfig ne demande que la base Postgres : les migrations
// n'ont besoin ni du secret JWT ni du stockage des fichiers.
func LoadMigrateConfig() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateMigrate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("lecture config: %w", err)
	}
	return cfg, nil
}

func (c *Config) ValidateMigrate() error {
	if c.DBUrl == "" {
		return fmt.Errorf("%w: SUPABASE_DB_URL manquant", ErrInvalidConfig)
	}
	return nil
}

// Validate vérifie la cohérence des drivers et des URLs requises.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET manquant", ErrInvalidConfig)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: MAX_UPLOAD_BYTES doit être positif", ErrInvalidConfig)
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DBUrl == "" {
			return fmt.Errorf("%w: SUPABASE_DB_URL manquant", ErrInvalidConfig)
		}
	case StoreDriverMongo:
		if c.MongoURL == "" {
			return fmt.Errorf("%w: MONGODB_URL manquant", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: STORE_DRIVER inconnu %q", ErrInvalidConfig, c.StoreDriver)
	}

	switch c.BlobDriver {
	case BlobDriverS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("%w: AWS_BUCKET_NAME manquant", ErrInvalidConfig)
		}
	case BlobDriverGridFS:
		if c.MongoURL == "" {
			return fmt.Errorf("%w: MONGODB_URL manquant pour GridFS", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: BLOB_DRIVER inconnu %q", ErrInvalidConfig, c.BlobDriver)
	}

	switch c.ProfileDriver {
	case ProfileDriverDB:
		if c.DBUrl == "" {
			return fmt.Errorf("%w: SUPABASE_DB_URL manquant pour les profils", ErrInvalidConfig)
		}
	case ProfileDriverHTTP:
		if c.ProfileServiceURL == "" {
			return fmt.Errorf("%w: PROFILE_SERVICE_URL manquant", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: PROFILE_DRIVER inconnu %q", ErrInvalidConfig, c.ProfileDriver)
	}

	return nil
}
