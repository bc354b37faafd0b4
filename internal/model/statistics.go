package model

// ClearanceStatisticsResponse aggregates the program chair dashboard numbers
// for one term.
type ClearanceStatisticsResponse struct {
	SchoolYear       string                `json:"school_year"`
	Semester         string                `json:"semester"`
	TotalStudents    int64                 `json:"total_students"`
	ReadyForUnlock   int64                 `json:"ready_for_unlock"` // cleared but permit still locked
	PermitsUnlocked  int64                 `json:"permits_unlocked"`
	RecentlyUnlocked []RecentUnlock        `json:"recently_unlocked"`
	CourseBreakdown  []CourseClearanceStat `json:"course_breakdown"`
}

// RecentUnlock is one row of the latest permit unlocks.
type RecentUnlock struct {
	StudentNumber string `json:"student_number"`
	StudentName   string `json:"student_name"`
	CourseCode    string `json:"course_code"`
	ClearedAt     string `json:"cleared_at"`
}

// CourseClearanceStat counts students and cleared students per course.
type CourseClearanceStat struct {
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
	Total      int64  `json:"total"`
	Cleared    int64  `json:"cleared"`
}
