package models

// TaskStatus is the board column a task sits in. Transitions are free;
// a completed task can move straight back to "To Do".
type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusBlocked    TaskStatus = "Blocked"
	StatusCompleted  TaskStatus = "Completed"
)

// ValidTaskStatus reports whether s names a known status.
func ValidTaskStatus(s string) bool {
	switch TaskStatus(s) {
	case StatusToDo, StatusInProgress, StatusBlocked, StatusCompleted:
		return true
	}
	return false
}

// TaskPriority is a task's urgency bucket.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "Low"
	PriorityMedium   TaskPriority = "Medium"
	PriorityHigh     TaskPriority = "High"
	PriorityCritical TaskPriority = "Critical"
)

// ValidTaskPriority reports whether s names a known priority.
func ValidTaskPriority(s string) bool {
	switch TaskPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Task is one record in data/tasks/tasks.json. AssignedTo and
// CreatedBy hold display names, not user ids; the team resolver maps
// them back to members on a best-effort basis.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssignedTo  string       `json:"assigned_to"`
	CreatedBy   string       `json:"created_by"`
	CreatedAt   Timestamp    `json:"created_at"`
	DueDate     Timestamp    `json:"due_date"`
	Category    string       `json:"category"`
}
