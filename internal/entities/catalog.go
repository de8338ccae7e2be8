package entities

import (
	"strings"
	"time"
)

type Author struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LastName   string    `gorm:"index;size:128" json:"last_name"`
	FirstName  string    `gorm:"size:128" json:"first_name"`
	MiddleName string    `gorm:"size:128" json:"middle_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DisplayName renders "Last First Middle", skipping empty parts.
func (a Author) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.LastName, a.FirstName, a.MiddleName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

type Genre struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Publisher struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Book is shared catalog data. Whether a user owns it is derived from
// StatusRecord rows, never stored on the book itself.
type Book struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"index;size:512" json:"title"`
	Published   *int       `json:"published,omitempty"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	PublisherID *uint      `gorm:"index" json:"publisher_id,omitempty"`
	Publisher   *Publisher `gorm:"foreignKey:PublisherID" json:"publisher,omitempty"`
	Authors     []Author   `gorm:"many2many:book_authors;" json:"authors"`
	Genres      []Genre    `gorm:"many2many:book_genres;" json:"genres"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
