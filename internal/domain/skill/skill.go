package skill

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryMusic       Category = "music"
	CategoryLanguages   Category = "languages"
	CategoryArts        Category = "arts"
	CategoryTechnology  Category = "technology"
	CategorySports      Category = "sports"
	CategoryCooking     Category = "cooking"
	CategoryBusiness    Category = "business"
	CategoryPhotography Category = "photography"
	CategoryWriting     Category = "writing"
	CategoryCrafts      Category = "crafts"
	CategoryOther       Category = "other"
)

var categories = map[Category]struct{}{
	CategoryMusic: {}, CategoryLanguages: {}, CategoryArts: {}, CategoryTechnology: {},
	CategorySports: {}, CategoryCooking: {}, CategoryBusiness: {}, CategoryPhotography: {},
	CategoryWriting: {}, CategoryCrafts: {}, CategoryOther: {},
}

func IsKnownCategory(c Category) bool {
	_, ok := categories[c]
	return ok
}

// Skill is a catalog entry. TotalUsers mirrors count(user_skill where skill_id = id).
type Skill struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Category    Category  `gorm:"not null;index;column:category" json:"category"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	IconURL     string    `gorm:"column:icon_url" json:"iconUrl,omitempty"`
	IsActive    bool      `gorm:"not null;default:true;column:is_active" json:"isActive"`
	TotalUsers  int64     `gorm:"not null;default:0;column:total_users" json:"totalUsers"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (Skill) TableName() string { return "skill" }

func (s *Skill) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
