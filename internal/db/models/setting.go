package models

import "time"

// Setting is one application setting, editable by developers only.
type Setting struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:191;not null"`
	Value     []byte
	UpdatedBy string `gorm:"size:64"`
	UpdatedAt time.Time
}

// TableName pins the table name.
func (Setting) TableName() string {
	return "settings"
}
