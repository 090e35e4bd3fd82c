package models

import "time"

// Document is one record of the document store: a JSON object addressed by
// collection and id.
type Document struct {
	Collection string `gorm:"primaryKey;size:100"`
	ID         string `gorm:"primaryKey;size:128"`
	Data       []byte `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName pins the table name.
func (Document) TableName() string {
	return "documents"
}
