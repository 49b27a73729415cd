package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed annotations.sql
var annotationsSQL string

// AnnotationsFunctions lists the SQL functions the annotation backend
// relies on, used for existence verification after loading.
var AnnotationsFunctions = []string{
	"init_annotations",
	"insert_annotation",
	"delete_annotation",
	"delete_annotations_by_document",
	"delete_annotations_by_page",
	"delete_annotations_by_kind",
	"delete_all_annotations",
	"select_all_annotations",
	"select_annotations_by_document",
}

// LoadAnnotationsSql loads annotation-related SQL functions
func LoadAnnotationsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, AnnotationsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing annotations functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(annotationsSQL)
	if err != nil {
		return fmt.Errorf("error executing annotations SQL: %w", err)
	}

	exist, err := checkFunctions(db, AnnotationsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL annotations functions loaded successfully")
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
