package models

import "github.com/google/uuid"

// NumberSequenceModel holds the last issued number per company, scope and period
type NumberSequenceModel struct {
	CompanyID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Scope     string    `gorm:"type:varchar(30);primaryKey"`
	Period    string    `gorm:"type:varchar(8);primaryKey"`
	LastValue int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NumberSequenceModel) TableName() string {
	return "number_sequences"
}
