package post

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/apperr"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/guard"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/logs"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/session"
)

type Handler struct {
	svc        *Service
	sessions   session.Regenerator
	csrf       guard.CSRFVerifier
	redirectTo string
}

func NewHandler(svc *Service, sessions session.Regenerator, csrf guard.CSRFVerifier, redirectTo string) *Handler {
	if sessions == nil {
		sessions = session.Noop{}
	}
	if csrf == nil {
		csrf = guard.AcceptAllCSRF
	}
	if redirectTo == "" {
		redirectTo = "/"
	}
	return &Handler{svc: svc, sessions: sessions, csrf: csrf, redirectTo: redirectTo}
}

func (h *Handler) identity(c *gin.Context) (string, bool) {
	identity, ok := guard.Identity(c)
	if !ok {
		apperr.Respond(c, apperr.New(apperr.Unauthorized))
		return "", false
	}
	return identity, true
}

func (h *Handler) verifyCSRF(c *gin.Context, identity string) bool {
	if h.csrf.Verify(c, guard.CSRFToken(c)) {
		return true
	}
	logs.LogJSON("WARN", "CSRF token rejected", map[string]interface{}{
		"route":  c.FullPath(),
		"userID": identity,
	})
	apperr.Respond(c, apperr.New(apperr.Unauthorized))
	return false
}

// mutator vérifie l'identité et le jeton CSRF communs aux écritures.
func (h *Handler) mutator(c *gin.Context) (string, bool) {
	identity, ok := h.identity(c)
	if !ok || !h.verifyCSRF(c, identity) {
		return "", false
	}
	return identity, true
}

func (h *Handler) done(c *gin.Context, identity string) {
	if err := h.sessions.Regenerate(c); err != nil {
		logs.LogJSON("WARN", "Session regeneration failed", map[string]interface{}{
			"route":  c.FullPath(),
			"userID": identity,
			"error":  err.Error(),
		})
	}
	c.Redirect(http.StatusFound, h.redirectTo)
}

// CreatePost POST /create-post
func (h *Handler) CreatePost(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	// Le formulaire est lu ici en premier : un corps trop gros doit
	// donner FileTooLarge.
	fh, err := attachmentOf(c)
	if err != nil {
		logs.LogJSON("WARN", "Invalid multipart form", map[string]interface{}{
			"route":  c.FullPath(),
			"userID": identity,
			"error":  err.Error(),
		})
		apperr.Respond(c, err)
		return
	}
	if !h.verifyCSRF(c, identity) {
		return
	}

	if _, err := h.svc.Create(c.Request.Context(), identity, c.PostForm("content"), fh); err != nil {
		apperr.Respond(c, err)
		return
	}
	h.done(c, identity)
}

// attachmentOf renvoie nil si aucun fichier n'est joint.
func attachmentOf(c *gin.Context) (*multipart.FileHeader, error) {
	fh, err := c.FormFile("attachment")
	if err == nil {
		return fh, nil
	}
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, apperr.Wrap(apperr.FileTooLarge, err)
	}
	return nil, apperr.Wrap(apperr.InvalidInput, err)
}

// UpdatePost POST /update-post
func (h *Handler) UpdatePost(c *gin.Context) {
	identity, ok := h.mutator(c)
	if !ok {
		return
	}

	var content *string
	if v, provided := c.GetPostForm("content"); provided {
		content = &v
	}

	if err := h.svc.Update(c.Request.Context(), identity, c.PostForm("id"), content); err != nil {
		apperr.Respond(c, err)
		return
	}
	h.done(c, identity)
}

// DeletePost POST /delete-post
func (h *Handler) DeletePost(c *gin.Context) {
	identity, ok := h.mutator(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity, c.PostForm("id")); err != nil {
		apperr.Respond(c, err)
		return
	}
	h.done(c, identity)
}

// ListPosts POST /api/posts et /api/posts/:username
func (h *Handler) ListPosts(c *gin.Context) {
	views, err := h.svc.List(c.Request.Context(), c.Param("username"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": views})
}
