package post

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
)

type Post struct {
	ID         string         `gorm:"primaryKey" bson:"_id"`
	UserID     string         `gorm:"index;not null" bson:"user_id"`
	Content    string         `gorm:"not null" bson:"content"` // base64, voir EncodeContent
	Attachment *string        `bson:"attachment"`
	CreatedAt  time.Time      `gorm:"index" bson:"created_at"`
	Likes      pq.StringArray `gorm:"type:text[]" bson:"likes"`
	Comments   Comments       `gorm:"type:jsonb" bson:"comments"`
}

// Comments est opaque pour ce service : stocké et relu tel quel.
type Comments []json.RawMessage

func (c Comments) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]json.RawMessage(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Comments) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = Comments{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("comments: type non supporté")
	}
	var out []json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*c = out
	return nil
}
