package post

import (
	"encoding/json"
	"time"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/user"
)

// View est la forme publique d'un post.
type View struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	Username       string            `json:"username"`
	Content        string            `json:"content"`
	Attachment     *string           `json:"attachment"`
	AttachmentID   *string           `json:"attachment_id"`
	CreatedAt      string            `json:"created_at"`
	Likes          []string          `json:"likes"`
	Comments       []json.RawMessage `json:"comments"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	ProfilePicture string            `json:"profile_picture"`
}

func (s *Service) render(p *Post, text string, profile *user.Profile) View {
	v := View{
		ID:             p.ID,
		UserID:         p.UserID,
		Username:       profile.Username,
		Content:        text,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
		Likes:          []string(p.Likes),
		Comments:       []json.RawMessage(p.Comments),
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		ProfilePicture: profile.AvatarURL,
	}
	if v.Likes == nil {
		v.Likes = []string{}
	}
	if v.Comments == nil {
		v.Comments = []json.RawMessage{}
	}
	if p.Attachment != nil && *p.Attachment != "" {
		id := *p.Attachment
		url := s.filesPrefix + id
		v.AttachmentID = &id
		v.Attachment = &url
	}
	return v
}
