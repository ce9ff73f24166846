// Package models contains data structures for the application's domain models.
package models

import "time"

// Post is the only persisted entity. Rows are hard-deleted.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName pins the table name used by the SQL migrations.
func (Post) TableName() string {
	return "posts"
}

// PostInput carries the writable fields of a post after validation.
type PostInput struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}
