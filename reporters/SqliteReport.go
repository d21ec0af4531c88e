package reporters

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/utils"
)

// SqliteReport exports the result as an SQLite database so it can be queried offline.
type SqliteReport struct{}

func (SqliteReport) ID() string { return "sqlite" }

var sqliteSchema = []string{
	`CREATE TABLE Issues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		RuleSet TEXT,
		Rule TEXT,
		Severity TEXT,
		Path TEXT,
		StartLine INTEGER,
		StartColumn INTEGER,
		Message TEXT,
		Signature TEXT,
		SuppressReasons TEXT
	);`,
	`CREATE TABLE Rules (
		RuleSet TEXT,
		Rule TEXT,
		Active INTEGER,
		Severity TEXT,
		PRIMARY KEY (RuleSet, Rule)
	);`,
	`CREATE TABLE Notifications (Level TEXT, Message TEXT);`,
	`CREATE TABLE Metrics (Type TEXT PRIMARY KEY, Value INTEGER);`,
}

func (SqliteReport) Render(result *core.AnalysisResult) ([]byte, error) {
	dir, err := os.MkdirTemp("", "lintdetector-sqlite-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)
	dbPath := filepath.Join(dir, "report.db")

	db, err := utils.InitializeSQLiteDB(dbPath, sqliteSchema...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite database: %w", err)
	}

	if err := insertResult(db, result); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("failed to close SQLite database: %w", err)
	}

	data, err := os.ReadFile(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SQLite database: %w", err)
	}
	return data, nil
}

func insertResult(db *sql.DB, result *core.AnalysisResult) error {
	issues := make([][]any, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, []any{
			issue.RuleInstance.RuleSetID,
			issue.RuleInstance.ID,
			issue.Severity.String(),
			issue.Entity.Location.Path,
			issue.Entity.Location.Start.Line,
			issue.Entity.Location.Start.Column,
			issue.Message,
			issue.Entity.Signature,
			strings.Join(issue.SuppressReasons, ","),
		})
	}
	if err := utils.InsertRows(db, `INSERT INTO Issues (RuleSet, Rule, Severity, Path, StartLine, StartColumn, Message, Signature, SuppressReasons)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, issues); err != nil {
		return fmt.Errorf("failed to store issues: %w", err)
	}

	rules := make([][]any, 0, len(result.Rules))
	for _, rule := range result.Rules {
		rules = append(rules, []any{rule.RuleSetID, rule.ID, rule.Active, rule.Severity.String()})
	}
	if err := utils.InsertRows(db, `INSERT INTO Rules (RuleSet, Rule, Active, Severity) VALUES (?, ?, ?, ?)`, rules); err != nil {
		return fmt.Errorf("failed to store rules: %w", err)
	}

	notifications := make([][]any, 0, len(result.Notifications))
	for _, notification := range result.Notifications {
		notifications = append(notifications, []any{string(notification.Level), notification.Message})
	}
	if err := utils.InsertRows(db, `INSERT INTO Notifications (Level, Message) VALUES (?, ?)`, notifications); err != nil {
		return fmt.Errorf("failed to store notifications: %w", err)
	}

	metrics := make([][]any, 0, len(result.Metrics))
	for _, metric := range result.Metrics {
		metrics = append(metrics, []any{metric.Type, metric.Value})
	}
	if err := utils.InsertRows(db, `INSERT INTO Metrics (Type, Value) VALUES (?, ?)`, metrics); err != nil {
		return fmt.Errorf("failed to store metrics: %w", err)
	}
	return nil
}
