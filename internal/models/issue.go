package models

const (
	IssuePriorityLow    = "LOW"
	IssuePriorityMedium = "MEDIUM"
	IssuePriorityHigh   = "HIGH"

	IssueTagBug     = "BUG"
	IssueTagFeature = "FEATURE"
	IssueTagTask    = "TASK"

	IssueStatusTodo       = "TODO"
	IssueStatusInProgress = "IN_PROGRESS"
	IssueStatusFinished   = "FINISHED"
)

type Issue struct {
	BaseModel

	Title        string `gorm:"not null"`
	Description  string
	Priority     string `gorm:"not null"`                 // LOW, MEDIUM, HIGH
	Tag          string `gorm:"not null"`                 // BUG, FEATURE, TASK
	Status       string `gorm:"not null;default:'TODO'"`  // TODO, IN_PROGRESS, FINISHED
	ProjectID    uint   `gorm:"not null;index"`
	AuthorID     uint   `gorm:"not null;index"`
	AssignedToID *uint

	// Relationships
	Project    Project   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AssignedTo *User     `gorm:"foreignKey:AssignedToID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Comments   []Comment `gorm:"foreignKey:IssueID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
