package database

import (
	"gorm.io/gorm"
)

// ColumnMismatchReport lists, per table, the database columns that no model
// field maps to. Tables that cannot be inspected are skipped.
func ColumnMismatchReport(db *gorm.DB) map[string][]string {
	report := make(map[string][]string)

	for _, model := range gormModels {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			continue
		}

		dbColumns, err := getTableColumns(db, stmt.Schema.Table)
		if err != nil {
			continue
		}

		if mismatches := findColumnMismatches(dbColumns, stmt.Schema.DBNames); len(mismatches) > 0 {
			report[stmt.Schema.Table] = mismatches
		}
	}

	return report
}

// getTableColumns retrieves column names from a database table
func getTableColumns(db *gorm.DB, tableName string) ([]string, error) {
	var columns []string
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = ?
		AND table_schema = CURRENT_SCHEMA()
		ORDER BY ordinal_position
	`

	err := db.Raw(query, tableName).Scan(&columns).Error
	return columns, err
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}

	return mismatches
}
