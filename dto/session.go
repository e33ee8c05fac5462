package dto

type StartSessionRequest struct {
	GoalID                 string   `json:"goal_id" binding:"required"`
	PlannedDurationMinutes int      `json:"planned_duration_minutes" binding:"required,min=1,max=480"`
	BlockedApps            []string `json:"blocked_apps" binding:"max=50"`
	BlockedSites           []string `json:"blocked_sites" binding:"max=50"`
}

// CompleteSessionRequest may omit the actual duration, in which case the
// planned duration is credited instead.
type CompleteSessionRequest struct {
	ActualDurationMinutes *int `json:"actual_duration_minutes,omitempty" binding:"omitempty,min=1,max=1440"`
}
