package models

const (
	ProjectTypeBackend  = "BACKEND"
	ProjectTypeFrontend = "FRONTEND"
	ProjectTypeIOS      = "IOS"
	ProjectTypeAndroid  = "ANDROID"
)

type Project struct {
	BaseModel

	Title       string `gorm:"uniqueIndex;not null"`
	Description string
	Type        string `gorm:"not null"` // BACKEND, FRONTEND, IOS, ANDROID
	AuthorID    uint   `gorm:"not null;index"`

	// Relationships
	Author       User          `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Contributors []Contributor `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Issues       []Issue       `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
