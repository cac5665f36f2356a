package post

import (
	"context"
	"errors"
)

// ErrEmptyFilter protège contre une écriture sans condition.
var ErrEmptyFilter = errors.New("post: mutation without filter")

// Filter : égalité sur les champs renseignés, combinés par ET.
type Filter struct {
	ID    string
	Owner string
}

func (f Filter) IsZero() bool { return f.ID == "" && f.Owner == "" }

// OwnedBy cible un post précis de ce propriétaire ; l'ownership est vérifiée
// dans la même opération que l'écriture.
func OwnedBy(id, owner string) Filter {
	return Filter{ID: id, Owner: owner}
}

// Patch ne contient que les champs modifiables.
type Patch struct {
	Content *string
}

func (p Patch) IsEmpty() bool { return p.Content == nil }

// Store est le stockage des posts. Find trie par date de création décroissante.
type Store interface {
	Find(ctx context.Context, f Filter) ([]Post, error)
	InsertOne(ctx context.Context, p *Post) (string, error)
	UpdateOne(ctx context.Context, f Filter, patch Patch) (int64, error)
	DeleteOne(ctx context.Context, f Filter) (int64, error)
}
