package post

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) scoped(ctx context.Context, f Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&Post{})
	if f.ID != "" {
		q = q.Where("id = ?", f.ID)
	}
	if f.Owner != "" {
		q = q.Where("user_id = ?", f.Owner)
	}
	return q
}

func (s *GormStore) Find(ctx context.Context, f Filter) ([]Post, error) {
	var posts []Post
	if err := s.scoped(ctx, f).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("lecture des posts: %w", err)
	}
	return posts, nil
}

func (s *GormStore) InsertOne(ctx context.Context, p *Post) (string, error) {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return "", fmt.Errorf("insertion du post: %w", err)
	}
	return p.ID, nil
}

// UpdateOne renvoie le nombre de lignes correspondant au filtre.
func (s *GormStore) UpdateOne(ctx context.Context, f Filter, patch Patch) (int64, error) {
	if f.IsZero() {
		return 0, ErrEmptyFilter
	}
	updates := map[string]interface{}{}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if len(updates) == 0 {
		return 0, nil
	}

	res := s.scoped(ctx, f).Updates(updates)
	if res.Error != nil {
		return 0, fmt.Errorf("mise à jour du post: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) DeleteOne(ctx context.Context, f Filter) (int64, error) {
	if f.IsZero() {
		return 0, ErrEmptyFilter
	}
	res := s.scoped(ctx, f).Delete(&Post{})
	if res.Error != nil {
		return 0, fmt.Errorf("suppression du post: %w", res.Error)
	}
	return res.RowsAffected, nil
}
