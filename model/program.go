package model

import (
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/utils/slug"
	"gorm.io/gorm"
)

// Program represents a degree program (carrera) independent of any university
type Program struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(255);not null;index" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Offerings []Offering `gorm:"foreignKey:ProgramID;constraint:OnDelete:RESTRICT" json:"offerings,omitempty"`
}

// BeforeSave keeps the slug in sync with the name
func (p *Program) BeforeSave(tx *gorm.DB) error {
	p.Slug = slug.Encode(p.Name)
	return nil
}
