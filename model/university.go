package model

import (
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/utils/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// University represents an institution that offers programs.
// Name is unique case-insensitively; the index is created in database.Migrate.
type University struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Name         string                      `gorm:"type:varchar(255);not null" json:"name"`
	Slug         string                      `gorm:"type:varchar(255);not null;index" json:"slug"`
	Country      string                      `gorm:"type:varchar(100);not null" json:"country"`
	City         string                      `gorm:"type:varchar(100);not null" json:"city"`
	NationalRank int                         `gorm:"default:0" json:"national_rank"`
	WorldRank    int                         `gorm:"default:0" json:"world_rank"`
	LogoURL      string                      `gorm:"type:varchar(500)" json:"logo_url"`
	CampusImages datatypes.JSONSlice[string] `json:"campus_images"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`

	// Relationships
	Offerings []Offering `gorm:"foreignKey:UniversityID;constraint:OnDelete:RESTRICT" json:"offerings,omitempty"`
}

// BeforeSave keeps the slug in sync with the name
func (u *University) BeforeSave(tx *gorm.DB) error {
	u.Slug = slug.Encode(u.Name)
	if u.CampusImages == nil {
		u.CampusImages = datatypes.JSONSlice[string]{}
	}
	return nil
}
