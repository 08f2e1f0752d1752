// Package migration implements the Habitus backup format: exporting the whole
// device store into a single CSV artifact and restoring it on another device.
//
// A backup is a CSV file with the fixed header
//
//	SECTION,TYPE,ID,DATA_JSON,TIMESTAMP,METADATA
//
// followed by one METADATA row and one row per record, grouped by section in
// a fixed order. Each row carries its record as a JSON payload, so a damaged
// row can be skipped without losing the rest of the file.
package migration

import (
	"github.com/lherron/habitus/internal/domain"
)

// FormatVersion is the version written into every backup. Files with the same
// major version can be imported.
const FormatVersion = "2.0"

// DefaultProduct prefixes backup filenames.
const DefaultProduct = "habitus"

// Section tags a group of rows.
type Section string

const (
	SectionMetadata Section = "METADATA"
	SectionTasks    Section = "TASKS"
	SectionRoles    Section = "ROLES"
	SectionGoals    Section = "GOALS"
	SectionMetrics  Section = "METRICS"
	SectionTaskLog  Section = "TASKS_LOG"
	SectionCheckIn  Section = "CHECKIN"
	SectionIdeas    Section = "IDEAS"
	SectionSettings Section = "SETTINGS"
)

// Record types written in the TYPE column.
const (
	TypeExportInfo    = "export_info"
	TypeCurrentTask   = "current_task"
	TypeRole          = "role"
	TypeGoal          = "goal"
	TypeWeeklyMetric  = "weekly_metric"
	TypeCompletedTask = "completed_task"
	TypeCheckInState  = "checkin_state"
	TypeIdea          = "idea"
	TypeSetting       = "setting"
)

// Header is the first line of every backup.
var Header = []string{"SECTION", "TYPE", "ID", "DATA_JSON", "TIMESTAMP", "METADATA"}

// Row is one flattened record.
type Row struct {
	Section   Section
	Type      string
	ID        string
	Data      string
	Timestamp string
	Summary   string
}

func (r Row) fields() []string {
	return []string{string(r.Section), r.Type, r.ID, r.Data, r.Timestamp, r.Summary}
}

// Device describes the machine that produced a backup.
type Device struct {
	UserAgent string
	Language  string
	Platform  string
}

// Metadata is the payload of the METADATA row. It is informational only and
// never written to the store.
type Metadata struct {
	Version     string `json:"version"`
	Product     string `json:"product,omitempty"`
	ExportDate  string `json:"exportDate"`
	ExportID    string `json:"exportId,omitempty"`
	UserAgent   string `json:"userAgent"`
	Language    string `json:"language"`
	Platform    string `json:"platform"`
	SnapshotRev string `json:"snapshotRev,omitempty"`
}

// Collections is every piece of state a backup carries.
type Collections struct {
	Tasks    []domain.Task
	Roles    []string
	Goals    []domain.Goal
	Metrics  []domain.WeeklyMetric
	TaskLog  []domain.TaskLogEntry
	CheckIn  domain.CheckInState
	Ideas    []domain.Idea
	Settings domain.Settings
}

// NewCollections returns collections with every list empty but non-nil.
func NewCollections() Collections {
	return Collections{
		Tasks:   []domain.Task{},
		Roles:   []string{},
		Goals:   []domain.Goal{},
		Metrics: []domain.WeeklyMetric{},
		TaskLog: []domain.TaskLogEntry{},
		CheckIn: domain.CheckInState{},
		Ideas:   []domain.Idea{},
	}
}

// Snapshot is the store contents at one instant plus capture metadata.
type Snapshot struct {
	Meta Metadata
	Collections
}

// Summary counts records per category.
type Summary struct {
	Tasks          int  `json:"tasks" yaml:"tasks"`
	Roles          int  `json:"roles" yaml:"roles"`
	Goals          int  `json:"goals" yaml:"goals"`
	Metrics        int  `json:"metrics" yaml:"metrics"`
	TaskLogEntries int  `json:"task_log_entries" yaml:"task_log_entries"`
	CompletedTasks int  `json:"completed_tasks" yaml:"completed_tasks"`
	CheckIn        bool `json:"checkin" yaml:"checkin"`
	Ideas          int  `json:"ideas" yaml:"ideas"`
	Settings       int  `json:"settings" yaml:"settings"`
}

// Summary counts the records held in c.
func (c *Collections) Summary() Summary {
	s := Summary{
		Tasks:          len(c.Tasks),
		Roles:          len(c.Roles),
		Goals:          len(c.Goals),
		Metrics:        len(c.Metrics),
		TaskLogEntries: len(c.TaskLog),
		CheckIn:        len(c.CheckIn) > 0,
		Ideas:          len(c.Ideas),
	}
	for _, entry := range c.TaskLog {
		s.CompletedTasks += len(entry.Tasks)
	}
	for _, f := range settingFields {
		if f.present(&c.Settings) {
			s.Settings++
		}
	}
	return s
}

// ExportResult describes the outcome of an export.
type ExportResult struct {
	Success      bool   `json:"success" yaml:"success"`
	Filename     string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Path         string `json:"path,omitempty" yaml:"path,omitempty"`
	TotalRecords int    `json:"total_records" yaml:"total_records"`
	Sections     int    `json:"sections" yaml:"sections"`
	SnapshotRev  string `json:"snapshot_rev,omitempty" yaml:"snapshot_rev,omitempty"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ImportResult describes the outcome of an import.
type ImportResult struct {
	Success    bool      `json:"success" yaml:"success"`
	Cancelled  bool      `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Source     string    `json:"source,omitempty" yaml:"source,omitempty"`
	Version    string    `json:"version,omitempty" yaml:"version,omitempty"`
	Summary    Summary   `json:"summary" yaml:"summary"`
	Skipped    int       `json:"skipped_rows,omitempty" yaml:"skipped_rows,omitempty"`
	Warnings   []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	BackupPath string    `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	Written    []string  `json:"written_keys,omitempty" yaml:"written_keys,omitempty"`
	Kind       ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}
