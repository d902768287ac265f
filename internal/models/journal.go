package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentFormat records how an entry's content should be interpreted.
type ContentFormat string

const (
	ContentFormatPlain ContentFormat = "plain"
	ContentFormatRich  ContentFormat = "rich"
)

// Valid reports whether f is one of the known formats.
func (f ContentFormat) Valid() bool {
	return f == ContentFormatPlain || f == ContentFormatRich
}

// MaxTitleLength is the longest title accepted, counted in characters.
const MaxTitleLength = 200

// JournalEntry is a single journal record owned by one user.
type JournalEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"user_id" json:"user_id"`
	Title         string             `bson:"title" json:"title"`
	Content       string             `bson:"content" json:"content"`
	ContentFormat ContentFormat      `bson:"content_format,omitempty" json:"content_format"`
	Mood          string             `bson:"mood,omitempty" json:"mood,omitempty"`
	ImageURL      string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	IsPrivate     bool               `bson:"is_private" json:"is_private"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasMood reports whether the entry was tagged with a mood.
func (e JournalEntry) HasMood() bool {
	return e.Mood != ""
}

// WasEdited reports whether the entry has been updated after creation.
func (e JournalEntry) WasEdited() bool {
	return !e.UpdatedAt.Equal(e.CreatedAt)
}
