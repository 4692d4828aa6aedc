package models

// BuildLog is one record in data/logs/build_logs.json.
type BuildLog struct {
	ID               string    `json:"id"`
	Date             Timestamp `json:"date"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Author           string    `json:"author"`
	Category         string    `json:"category"`
	ImageDescription string    `json:"image_description,omitempty"`
}

// Resource is one record in data/resources/resources.json. FileSize is
// a display string ("3.2 MB"), carried over from the original files.
type Resource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadDate  Timestamp `json:"upload_date"`
	FileType    string    `json:"file_type"`
	FileSize    string    `json:"file_size"`
	Tags        []string  `json:"tags"`
	FilePath    string    `json:"file_path,omitempty"`
}

// MediaItem is one record in data/media/media_items.json. FilePath
// points into the local uploads directory.
type MediaItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	MediaType   string    `json:"media_type"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadDate  Timestamp `json:"upload_date"`
	Tags        []string  `json:"tags"`
	FilePath    string    `json:"file_path,omitempty"`
}

// Sponsor is one record in data/sponsors/sponsors.json. Contribution
// is free text ("$2,500" or "In-kind: machining services").
type Sponsor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Level        string    `json:"level"`
	Contribution string    `json:"contribution"`
	ContactName  string    `json:"contact_name"`
	ContactEmail string    `json:"contact_email"`
	Website      string    `json:"website,omitempty"`
	Description  string    `json:"description"`
	StartDate    Timestamp `json:"start_date"`
	EndDate      Timestamp `json:"end_date"`
}

// Event is one record in data/events/events.json. Organizer holds a
// display name; Participants hold display names too.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartTime    Timestamp `json:"start_time"`
	EndTime      Timestamp `json:"end_time"`
	Location     string    `json:"location"`
	Organizer    string    `json:"organizer"`
	Participants []string  `json:"participants"`
	Category     string    `json:"category"`
}

// Message is one record in data/messages/messages.json. A reply
// carries the ParentID of a top-level message; threads are one level
// deep, never a tree. Replies have category "Response" and no title.
type Message struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Timestamp Timestamp `json:"timestamp"`
	Channel   string    `json:"channel,omitempty"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority,omitempty"`
	ParentID  string    `json:"parent_id,omitempty"`
}

// IsReply reports whether m belongs to a thread rather than starting one.
func (m Message) IsReply() bool { return m.ParentID != "" }

// Settings is the single document in data/settings.json.
type Settings struct {
	AppName              string    `json:"app_name"`
	TeamLogo             string    `json:"team_logo"`
	PrimaryColor         string    `json:"primary_color"`
	ContactEmail         string    `json:"contact_email"`
	CompetitionName      string    `json:"competition_name"`
	CompetitionDate      Timestamp `json:"competition_date"`
	EnableNotifications  bool      `json:"enable_notifications"`
	MessageRetentionDays int       `json:"message_retention_days"`
	LastBackup           Timestamp `json:"last_backup"`
}

// DefaultSettings returns the settings written on first run.
func DefaultSettings() Settings {
	return Settings{
		AppName:              "Circuit Breakers Team Hub",
		TeamLogo:             "assets/logo.svg",
		PrimaryColor:         "#00B4D8",
		ContactEmail:         "admin@circuitbreakers.org",
		CompetitionName:      "Regional STEM Racing Championship",
		EnableNotifications:  true,
		MessageRetentionDays: 180,
	}
}

// AuditEntry is one record in data/admin/audit_log.json, appended on
// every admin-panel mutation.
type AuditEntry struct {
	ID        string    `json:"id"`
	Timestamp Timestamp `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	IP        string    `json:"ip,omitempty"`
}
