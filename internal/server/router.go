// Package server assemble les routes HTTP du service.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/guard"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/middleware"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/post"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/storage"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/upload"
)

type RouterDeps struct {
	Posts  *post.Handler
	Blobs  storage.BlobStore
	Tokens middleware.TokenParser
	// MaxUploadBytes borne le corps des requêtes avec pièce jointe.
	MaxUploadBytes int64
	Debug          bool
}

// multipartOverhead laisse la place aux en-têtes et aux champs texte du formulaire.
const multipartOverhead = 1 << 20

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if d.Debug {
		r.Use(gin.Logger())
	}
	r.MaxMultipartMemory = d.MaxUploadBytes + multipartOverhead

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := r.Group("/", middleware.AuthMiddleware(d.Tokens))
	authed.GET("/api/files/:id", upload.ServeFile(d.Blobs))

	guarded := authed.Group("/", guard.DenyDirectCalls())
	guarded.POST("/create-post", middleware.BodyLimit(d.MaxUploadBytes+multipartOverhead), d.Posts.CreatePost)
	guarded.POST("/update-post", d.Posts.UpdatePost)
	guarded.POST("/delete-post", d.Posts.DeletePost)
	guarded.POST("/api/posts", d.Posts.ListPosts)
	guarded.POST("/api/posts/:username", d.Posts.ListPosts)

	return r
}
