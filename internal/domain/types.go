package domain

// Store keys shared by the application and the migration engine.
const (
	KeyTasks      = "tasks"
	KeyRoles      = "roles"
	KeyGoals      = "goals"
	KeyMetrics    = "metrics"
	KeyTasksLog   = "tasksLog"
	KeyCheckIn    = "checkin-state"
	KeyIdeas      = "ideas"
	KeyLastReview = "lastReview"
	KeyLastReset  = "lastReset"
	KeyLang       = "lang"
	KeyTheme      = "theme"
	KeyFeedback   = "feedback-list"
)

// Defaults applied when a preference has never been stored.
const (
	DefaultLanguage = "es"
	DefaultTheme    = "light"
)

// Task represents a weekly task
type Task struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Role        string `json:"role"`
	GoalID      string `json:"goalId,omitempty"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"createdAt"`
	CompletedAt string `json:"completedAt,omitempty"`
	Extra       Extra  `json:"-"`
}

// HasGoal reports whether the task references a goal.
func (t *Task) HasGoal() bool {
	return t.GoalID != ""
}

// Goal groups tasks under a role. At most one goal per role is the default.
type Goal struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	IsDefault bool   `json:"isDefault"`
	CreatedAt string `json:"createdAt"`
	Extra     Extra  `json:"-"`
}

// WeeklyMetric is an immutable snapshot taken at the weekly reset.
type WeeklyMetric struct {
	Timestamp      string `json:"timestamp"`
	TotalTasks     int    `json:"totalTasks"`
	CompletedTasks int    `json:"completedTasks"`
	Extra          Extra  `json:"-"`
}

// TaskLogEntry holds the tasks completed during one week.
type TaskLogEntry struct {
	Timestamp string `json:"timestamp"`
	Tasks     []Task `json:"tasks"`
}

// CheckInState is the in-progress weekly check-in; its shape belongs to the UI.
type CheckInState map[string]any

// Idea represents an entry in the idea backlog
type Idea struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Archived    bool   `json:"archived"`
	Implemented bool   `json:"implemented"`
	Priority    int    `json:"priority"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	Extra       Extra  `json:"-"`
}

// Feedback is a note the user left about the app.
type Feedback struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Type      string `json:"type,omitempty"`
	CreatedAt string `json:"createdAt"`
	Extra     Extra  `json:"-"`
}

// Settings holds the scalar preferences and the feedback list.
// Empty fields mean the preference was never stored.
type Settings struct {
	LastReview string     `json:"lastReview,omitempty"`
	LastReset  string     `json:"lastReset,omitempty"`
	Lang       string     `json:"lang,omitempty"`
	Theme      string     `json:"theme,omitempty"`
	Feedback   []Feedback `json:"feedback,omitempty"`
}

// Language returns the stored language or the default.
func (s Settings) Language() string {
	if s.Lang == "" {
		return DefaultLanguage
	}
	return s.Lang
}

// ThemeName returns the stored theme or the default.
func (s Settings) ThemeName() string {
	if s.Theme == "" {
		return DefaultTheme
	}
	return s.Theme
}
