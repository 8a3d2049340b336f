package files

import (
	"fmt"
	"strings"
	"time"

	"incidentflow/core"
)

type Column struct {
	Name        string `validate:"required"`
	Type        string `validate:"required"`
	Constraints string
}

func (c Column) sql() string {
	return strings.TrimSpace(c.Name + " " + c.Type + " " + c.Constraints)
}

// DatabaseMigration generates an up migration and, with Rollback set, the matching down
// migration. Files follow the {version}_{name}.up.sql / .down.sql layout golang-migrate reads.
type DatabaseMigration struct {
	MigrationName string `validate:"required"`
	MigrationType string `validate:"required,oneof=create_table alter_table add_index custom"`
	// DatabaseEngine defaults to postgresql
	DatabaseEngine string   `validate:"omitempty,oneof=postgresql mysql sqlite"`
	TableName      string   `validate:"required_unless=MigrationType custom"`
	Columns        []Column `validate:"dive"`
	Rollback       bool
	CreatedAt      time.Time
}

func (m DatabaseMigration) Files() ([]File, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}
	if (m.MigrationType == "create_table" || m.MigrationType == "add_index") && len(m.Columns) == 0 {
		return nil, &core.ValidationError{Model: "DatabaseMigration", Fields: []string{"Columns"}}
	}

	created := timeOr(m.CreatedAt)
	header := fmt.Sprintf("-- Migration: %s\n-- Created: %s\n\n", m.MigrationName, created.Format(time.RFC3339))
	rollbackHeader := fmt.Sprintf("-- Rollback: %s\n\n", m.MigrationName)

	var up, down string
	switch m.MigrationType {
	case "create_table":
		up, down = m.createTable()
	case "alter_table":
		up, down = m.alterTable()
	case "add_index":
		up, down = m.addIndex()
	default:
		up, down = m.custom()
	}

	base := fmt.Sprintf("migrations/%s_%s", created.Format("20060102150405"), m.MigrationName)
	fs := []File{{Destination: base + ".up.sql", Content: header + up}}
	if m.Rollback {
		fs = append(fs, File{Destination: base + ".down.sql", Content: rollbackHeader + down})
	}
	return fs, nil
}

// Command writes every generated migration file
func (m DatabaseMigration) Command() (string, error) {
	fs, err := m.Files()
	if err != nil {
		return "", err
	}
	return writeAll(fs, Preview{
		Heading: "🗃️ GENERATING DATABASE MIGRATION",
		Details: []string{
			"Migration: " + m.MigrationName,
			"Engine: " + valueOr(m.DatabaseEngine, "postgresql"),
		},
		Action:  "📝 Creating migration file...",
		Subject: "Migration",
	}), nil
}

func (m DatabaseMigration) columnsSQL() string {
	cols := make([]string, 0, len(m.Columns))
	for _, c := range m.Columns {
		cols = append(cols, c.sql())
	}
	return strings.Join(cols, ",\n    ")
}

func (m DatabaseMigration) createTable() (string, string) {
	var idColumn, createdAt, updatedAt, index string
	switch valueOr(m.DatabaseEngine, "postgresql") {
	case "postgresql":
		idColumn = "id SERIAL PRIMARY KEY"
		createdAt = "created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP"
		updatedAt = "updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP"
		index = fmt.Sprintf("\n-- Add indexes\nCREATE INDEX idx_%[1]s_created_at ON %[1]s(created_at);\n", m.TableName)
	case "mysql":
		idColumn = "id INTEGER PRIMARY KEY AUTO_INCREMENT"
		createdAt = "created_at DATETIME DEFAULT CURRENT_TIMESTAMP"
		updatedAt = "updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP"
	case "sqlite":
		idColumn = "id INTEGER PRIMARY KEY AUTOINCREMENT"
		createdAt = "created_at DATETIME DEFAULT CURRENT_TIMESTAMP"
		updatedAt = "updated_at DATETIME DEFAULT CURRENT_TIMESTAMP"
	}

	up := fmt.Sprintf("CREATE TABLE %s (\n    %s,\n    %s,\n    %s,\n    %s\n);\n%s",
		m.TableName, idColumn, m.columnsSQL(), createdAt, updatedAt, index)
	down := fmt.Sprintf("DROP TABLE IF EXISTS %s;\n", m.TableName)
	return up, down
}

func (m DatabaseMigration) alterTable() (string, string) {
	columns := m.Columns
	if len(columns) == 0 {
		columns = []Column{{Name: "new_column", Type: "VARCHAR(255)"}}
	}

	var up, down strings.Builder
	up.WriteString("-- Add new columns\n")
	down.WriteString("-- Remove added columns\n")
	for _, c := range columns {
		fmt.Fprintf(&up, "ALTER TABLE %s ADD COLUMN %s;\n", m.TableName, c.sql())
		fmt.Fprintf(&down, "ALTER TABLE %s DROP COLUMN %s;\n", m.TableName, c.Name)
	}
	return up.String(), down.String()
}

func (m DatabaseMigration) addIndex() (string, string) {
	names := make([]string, 0, len(m.Columns))
	for _, c := range m.Columns {
		names = append(names, c.Name)
	}
	index := fmt.Sprintf("idx_%s_%s", m.TableName, strings.Join(names, "_"))

	up := fmt.Sprintf("CREATE INDEX %s ON %s(%s);\n", index, m.TableName, strings.Join(names, ", "))
	down := fmt.Sprintf("DROP INDEX %s;\n", index)
	if m.DatabaseEngine == "mysql" {
		down = fmt.Sprintf("DROP INDEX %s ON %s;\n", index, m.TableName)
	}
	return up, down
}

func (m DatabaseMigration) custom() (string, string) {
	table := valueOr(m.TableName, "your_table")
	up := fmt.Sprintf(`-- Custom migration SQL
-- Add your SQL statements here

-- Example:
-- UPDATE %s SET status = 'active' WHERE status IS NULL;
`, table)
	down := fmt.Sprintf(`-- Custom rollback SQL
-- Add your rollback statements here

-- Example:
-- UPDATE %s SET status = NULL WHERE status = 'active';
`, table)
	return up, down
}
