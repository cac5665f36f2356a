package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/auth"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/config"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/database"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/guard"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/logs"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/media"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/post"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/sanitize"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/storage"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/upload"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/user"
)

// App regroupe les dépendances ouvertes au démarrage.
type App struct {
	Router  *gin.Engine
	closers []func(context.Context) error
}

// Build ouvre les connexions choisies par la config et construit le routeur.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}
	fail := func(err error) (*App, error) {
		_ = app.Close(context.WithoutCancel(ctx))
		return nil, err
	}

	pattern, err := sanitize.Compile(cfg.PostPattern)
	if err != nil {
		return nil, fmt.Errorf("POST_PATTERN: %w", err)
	}

	var db *gorm.DB
	if cfg.StoreDriver == config.StoreDriverPostgres || cfg.ProfileDriver == config.ProfileDriverDB {
		db, err = database.ConnectPostgres(cfg.DBUrl, cfg.GinMode == gin.DebugMode)
		if err != nil {
			return fail(err)
		}
		app.closers = append(app.closers, func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
	}

	var mongoDB *mongo.Database
	if cfg.StoreDriver == config.StoreDriverMongo || cfg.BlobDriver == config.BlobDriverGridFS {
		client, err := database.ConnectMongo(ctx, cfg.MongoURL)
		if err != nil {
			return fail(err)
		}
		app.closers = append(app.closers, client.Disconnect)
		mongoDB = client.Database(cfg.MongoDB)
	}

	var store post.Store
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		ms := post.NewMongoStore(mongoDB)
		if err := ms.EnsureIndexes(ctx); err != nil {
			return fail(err)
		}
		store = ms
	default:
		store = post.NewGormStore(db)
	}

	var blobs storage.BlobStore
	switch cfg.BlobDriver {
	case config.BlobDriverGridFS:
		blobs = storage.NewGridFSStore(mongoDB, cfg.GridFSBucket)
	default:
		blobs, err = storage.InitS3(ctx, storage.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			AccessKeyID:  cfg.S3AccessKeyID,
			SecretKey:    cfg.S3SecretKey,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3UsePathStyle,
			Folder:       cfg.S3Folder,
		})
		if err != nil {
			return fail(err)
		}
	}

	var profiles user.ProfileProvider
	switch cfg.ProfileDriver {
	case config.ProfileDriverHTTP:
		profiles = user.NewHTTPProfiles(cfg.ProfileServiceURL, cfg.ProfileServiceKey)
	default:
		profiles = user.NewGormDirectory(db)
	}
	if cfg.RedisURL != "" {
		rdb, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logs.LogJSON("WARN", "Profile cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
			profiles = user.NewCachedProfiles(profiles, rdb, cfg.ProfileCacheTTL)
		}
	}

	validator := media.NewValidator(media.Policy{
		MaxBytes:   cfg.MaxUploadBytes,
		Extensions: cfg.AllowedExtensions,
		MIMETypes:  cfg.AllowedMIMETypes,
	})
	pipeline := upload.NewPipeline(validator, blobs)
	svc := post.NewService(store, blobs, pipeline, profiles, post.Options{
		Pattern:        pattern,
		FilesURLPrefix: cfg.FilesURLPrefix,
	})

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	handler := post.NewHandler(svc, tokens, guard.AcceptAllCSRF, cfg.RedirectOnWrite)

	app.Router = NewRouter(RouterDeps{
		Posts:          handler,
		Blobs:          blobs,
		Tokens:         tokens,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Debug:          cfg.GinMode == gin.DebugMode,
	})
	return app, nil
}

// Close ferme les connexions dans l'ordre inverse d'ouverture.
func (a *App) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// Serve démarre le serveur HTTP et l'arrête proprement quand ctx est annulé.
func (a *App) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logs.LogJSON("INFO", "Server listening", map[string]interface{}{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		logs.LogJSON("INFO", "Server shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	}
}
