package model

import "time"

type Category string
type GoalStatus string

const (
	CategoryPhysical  Category = "physical"
	CategoryMental    Category = "mental"
	CategoryLearning  Category = "learning"
	CategorySocial    Category = "social"
	CategoryFinancial Category = "financial"
	CategoryCreative  Category = "creative"

	GoalActive    GoalStatus = "ACTIVE"
	GoalCompleted GoalStatus = "COMPLETED"
	GoalArchived  GoalStatus = "ARCHIVED"
)

// ValidCategory reports whether c is one of the known goal categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryPhysical, CategoryMental, CategoryLearning,
		CategorySocial, CategoryFinancial, CategoryCreative:
		return true
	}
	return false
}

type Milestone struct {
	MilestoneID string    `bson:"milestone_id" json:"milestone_id"`
	Title       string    `bson:"title" json:"title"`
	Done        bool      `bson:"done" json:"done"`
	DueDate     time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	CompletedAt time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

type Goal struct {
	GoalID      string      `bson:"_id,omitempty" json:"id"`
	UserID      string      `bson:"user_id" json:"user_id"`
	Title       string      `bson:"title" json:"title" binding:"required"`
	Description string      `bson:"description,omitempty" json:"description,omitempty"`
	Category    Category    `bson:"category" json:"category" binding:"required"`
	Status      GoalStatus  `bson:"status" json:"status"`
	TargetDate  time.Time   `bson:"target_date,omitempty" json:"target_date,omitempty"`
	Milestones  []Milestone `bson:"milestones,omitempty" json:"milestones,omitempty"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `bson:"updated_at" json:"updated_at"`
}
