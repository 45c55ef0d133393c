// Package config handles armsboard workspace configuration.
package config

const (
	// DefaultDir is the workspace directory name looked up from the working tree.
	DefaultDir = ".armsboard"
	// ConfigFileName is the name of the config file within the workspace.
	ConfigFileName = "config.yml"
	// DefaultDBFile is the SQLite file holding tasks and measures.
	DefaultDBFile = "armsboard.db"
	// DefaultInboxDir receives spreadsheets and messages for import.
	DefaultInboxDir = "inbox"
	// LogDir holds date-named log files.
	LogDir = "logs"
	// ActivityFileName is the append-only activity log.
	ActivityFileName = "activity.jsonl"
	// LockFileName guards concurrent CLI invocations.
	LockFileName = ".lock"

	// DefaultTeam names a new workspace's team.
	DefaultTeam = "ARMS"
	// DefaultDueDays is the default number of days until a task is due.
	DefaultDueDays = 7
	// DefaultTitleLines is the default number of title lines in TUI cards.
	DefaultTitleLines = 2

	// CurrentVersion is the current config schema version.
	CurrentVersion = 1
)

// DefaultWorkflows is the team's standard workflow catalog.
var DefaultWorkflows = []WorkflowConfig{
	{Name: "Trades Tape Imports", Type: "Volume Completion %", TargetMetric: "Batches", MonthlyTarget: "100%", Priority: "High", SLAHours: 24, QualityRequired: true},
	{Name: "Pending", Type: "Volume Completion %", TargetMetric: "Items", MonthlyTarget: "100%", Priority: "High", SLAHours: 72, QualityRequired: true},
	{Name: "Placements", Type: "Target Placements", TargetMetric: "Cases", MonthlyTarget: "50", Priority: "Medium", SLAHours: 72, QualityRequired: true},
	{Name: "Judgments", Type: "Target Accuracy %", TargetMetric: "Judgments", MonthlyTarget: "98%", Priority: "Medium", SLAHours: 72, QualityRequired: true},
	{Name: "UCC", Type: "Target UCC Filings", TargetMetric: "Filings", MonthlyTarget: "30", Priority: "Medium", SLAHours: 72, QualityRequired: true},
	{Name: "Credit Files", Type: "Target Files", TargetMetric: "Files", MonthlyTarget: "150", Priority: "Low", SLAHours: 72, QualityRequired: true},
	{Name: "Chapter 11", Type: "Quality Timeliness %", TargetMetric: "Cases", MonthlyTarget: "95%", Priority: "Critical", SLAHours: 24, QualityRequired: true},
	{Name: "Chapter 7", Type: "Quality Timeliness %", TargetMetric: "Cases", MonthlyTarget: "95%", Priority: "Critical", SLAHours: 24, QualityRequired: true},
	{Name: "Trade References", Type: "Volume Processing %", TargetMetric: "References", MonthlyTarget: "100%", Priority: "High", SLAHours: 48, QualityRequired: true},
	{Name: "Credit File Audits", Type: "Quality Compliance %", TargetMetric: "Audits", MonthlyTarget: "100%", Priority: "Medium", SLAHours: 72, QualityRequired: true},
}

// DefaultAgeThresholds colors TUI cards by time in the current status.
var DefaultAgeThresholds = []AgeThreshold{
	{After: "0s", Color: "242"},   // dim gray (fresh)
	{After: "1h", Color: "34"},    // green
	{After: "24h", Color: "226"},  // yellow
	{After: "72h", Color: "208"},  // orange
	{After: "168h", Color: "196"}, // red (1 week)
}
