// Package post gère le cycle de vie des posts : création, mise à jour,
// suppression et lecture enrichie.
package post

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/apperr"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/guard"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/logs"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/sanitize"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/storage"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/upload"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/user"
)

// Uploader valide et enregistre une pièce jointe.
type Uploader interface {
	Upload(ctx context.Context, fh *multipart.FileHeader) (*upload.Attachment, error)
}

type Options struct {
	// Pattern des contenus ; sanitize.PostPattern si nil.
	Pattern        *sanitize.Pattern
	FilesURLPrefix string
}

type Service struct {
	store       Store
	blobs       storage.BlobStore
	uploads     Uploader
	profiles    user.ProfileProvider
	pattern     *sanitize.Pattern
	filesPrefix string
	now         func() time.Time
	newID       func() string
}

func NewService(store Store, blobs storage.BlobStore, uploads Uploader, profiles user.ProfileProvider, opts Options) *Service {
	pattern := opts.Pattern
	if pattern == nil {
		pattern = sanitize.PostPattern
	}
	prefix := opts.FilesURLPrefix
	if prefix == "" {
		prefix = "/api/files/"
	}
	return &Service{
		store:       store,
		blobs:       blobs,
		uploads:     uploads,
		profiles:    profiles,
		pattern:     pattern,
		filesPrefix: prefix,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Create valide le contenu, enregistre la pièce jointe éventuelle puis le post.
// Si l'insertion échoue, la pièce jointe déjà écrite est supprimée.
func (s *Service) Create(ctx context.Context, owner, content string, fh *multipart.FileHeader) (*Post, error) {
	if owner == "" {
		return nil, apperr.New(apperr.Unauthorized)
	}

	content = sanitize.NormalizeNewlines(strings.TrimSpace(content))
	if content == "" {
		return nil, apperr.New(apperr.MissingFields)
	}
	if !sanitize.Validate(content, s.pattern) {
		logs.LogJSON("WARN", "Post content rejected", map[string]interface{}{
			"userID": owner,
		})
		return nil, apperr.New(apperr.InvalidInput)
	}

	var attachment *string
	if fh != nil && fh.Filename != "" {
		att, err := s.uploads.Upload(ctx, fh)
		if err != nil {
			return nil, err
		}
		attachment = &att.ID
	}

	p := &Post{
		ID:         s.newID(),
		UserID:     owner,
		Content:    EncodeContent(content),
		Attachment: attachment,
		CreatedAt:  s.now().UTC(),
		Likes:      pq.StringArray{},
		Comments:   Comments{},
	}

	if _, err := s.store.InsertOne(ctx, p); err != nil {
		logs.LogJSON("ERROR", "Post creation failed", map[string]interface{}{
			"userID": owner,
			"error":  err.Error(),
		})
		if attachment != nil {
			s.releaseOrphan(ctx, *attachment)
		}
		return nil, apperr.Wrap(apperr.PostCreationFailed, err)
	}

	logs.LogJSON("INFO", "Post created", map[string]interface{}{
		"userID": owner,
		"postID": p.ID,
	})
	return p, nil
}

func (s *Service) releaseOrphan(ctx context.Context, blobID string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), blobID); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
		logs.LogJSON("ERROR", "Orphan attachment not released", map[string]interface{}{
			"fileID": blobID,
			"error":  err.Error(),
		})
	}
}

func (s *Service) checkTarget(identity, id string) (string, error) {
	if identity == "" {
		return "", apperr.New(apperr.Unauthorized)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperr.New(apperr.MissingFields)
	}
	return id, nil
}

// Update ne modifie que le contenu. content nil = champ absent.
// L'identifiant et le contenu sont validés ensemble ; un contenu absent,
// vide ou invalide laisse le patch vide.
func (s *Service) Update(ctx context.Context, identity, id string, content *string) error {
	id, err := s.checkTarget(identity, id)
	if err != nil {
		return err
	}

	var text *string
	if content != nil {
		normalized := sanitize.NormalizeNewlines(strings.TrimSpace(*content))
		text = &normalized
	}
	if !sanitize.ValidateBulk([]sanitize.Field{
		{Value: &id, Pattern: sanitize.IDPattern},
		{Value: text, Pattern: s.pattern},
	}) {
		return apperr.New(apperr.InvalidInput)
	}

	var patch Patch
	if text != nil {
		encoded := EncodeContent(*text)
		patch.Content = &encoded
	}
	if patch.IsEmpty() {
		return apperr.New(apperr.InvalidInput)
	}

	matched, err := s.store.UpdateOne(ctx, OwnedBy(id, identity), patch)
	if err != nil {
		logs.LogJSON("ERROR", "Post update failed", map[string]interface{}{
			"userID": identity,
			"postID": id,
			"error":  err.Error(),
		})
		return apperr.Wrap(apperr.UpdateFailed, err)
	}
	if matched == 0 {
		logs.LogJSON("WARN", "Post not found or forbidden", map[string]interface{}{
			"userID": identity,
			"postID": id,
		})
		return apperr.New(apperr.PostNotFoundOrForbidden)
	}

	logs.LogJSON("INFO", "Post updated", map[string]interface{}{
		"userID": identity,
		"postID": id,
	})
	return nil
}

// Delete libère d'abord la pièce jointe ; si cela échoue, le post est conservé.
func (s *Service) Delete(ctx context.Context, identity, id string) error {
	id, err := s.checkTarget(identity, id)
	if err != nil {
		return err
	}
	if !sanitize.Validate(id, sanitize.IDPattern) {
		return apperr.New(apperr.InvalidInput)
	}

	posts, err := s.store.Find(ctx, OwnedBy(id, identity))
	if err != nil {
		logs.LogJSON("ERROR", "Post lookup failed", map[string]interface{}{
			"userID": identity,
			"postID": id,
			"error":  err.Error(),
		})
		return apperr.Wrap(apperr.UpdateFailed, err)
	}
	// Le filtre porte déjà le propriétaire ; on revérifie l'enregistrement lu
	// avant de toucher à sa pièce jointe.
	if len(posts) == 0 || !guard.AuthorizeOwner(identity, posts[0].UserID) {
		logs.LogJSON("WARN", "Post not found or forbidden", map[string]interface{}{
			"userID": identity,
			"postID": id,
		})
		return apperr.New(apperr.PostNotFoundOrForbidden)
	}

	if att := posts[0].Attachment; att != nil && *att != "" {
		if err := s.blobs.Delete(ctx, *att); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
			logs.LogJSON("ERROR", "Attachment deletion failed", map[string]interface{}{
				"userID": identity,
				"postID": id,
				"fileID": *att,
				"error":  err.Error(),
			})
			return apperr.Wrap(apperr.UpdateFailed, err)
		}
	}

	deleted, err := s.store.DeleteOne(ctx, OwnedBy(id, identity))
	if err != nil {
		logs.LogJSON("ERROR", "Post deletion failed", map[string]interface{}{
			"userID": identity,
			"postID": id,
			"error":  err.Error(),
		})
		return apperr.Wrap(apperr.UpdateFailed, err)
	}
	if deleted == 0 {
		return apperr.New(apperr.PostNotFoundOrForbidden)
	}

	logs.LogJSON("INFO", "Post deleted", map[string]interface{}{
		"userID": identity,
		"postID": id,
	})
	return nil
}

// List renvoie les posts (tous, ou ceux d'un username) du plus récent au plus ancien.
func (s *Service) List(ctx context.Context, username string) ([]View, error) {
	var filter Filter
	if username != "" {
		if !sanitize.Validate(username, sanitize.TextPattern) {
			return nil, apperr.New(apperr.InvalidInput)
		}
		userID, err := s.profiles.ResolveUsername(ctx, username)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return []View{}, nil
			}
			logs.LogJSON("ERROR", "Username resolution failed", map[string]interface{}{
				"username": username,
				"error":    err.Error(),
			})
			return nil, apperr.Wrap(apperr.ListFailed, err)
		}
		filter.Owner = userID
	}

	posts, err := s.store.Find(ctx, filter)
	if err != nil {
		logs.LogJSON("ERROR", "Posts lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, apperr.Wrap(apperr.ListFailed, err)
	}

	profiles := map[string]*user.Profile{}
	views := make([]View, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		text, err := DecodeContent(p.Content)
		if err != nil {
			logs.LogJSON("WARN", "Undecodable post content skipped", map[string]interface{}{
				"postID": p.ID,
				"error":  err.Error(),
			})
			continue
		}
		views = append(views, s.render(p, text, s.profileOf(ctx, profiles, p.UserID)))
	}
	return views, nil
}

// profileOf met en cache le profil le temps d'une requête. Un profil
// introuvable ne bloque pas la lecture.
func (s *Service) profileOf(ctx context.Context, seen map[string]*user.Profile, userID string) *user.Profile {
	if p, ok := seen[userID]; ok {
		return p
	}
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			logs.LogJSON("WARN", "Profile lookup failed", map[string]interface{}{
				"userID": userID,
				"error":  err.Error(),
			})
		}
		p = &user.Profile{UserID: userID}
	}
	seen[userID] = p
	return p
}
