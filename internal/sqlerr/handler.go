package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/sweetshop/internal/errs"
	"github.com/deppfellow/sweetshop/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ConvertPgError converts a pgconn.PgError (raw Postgres error) into our custom sqlerr.Error.
//
// pgconn.PgError contains Postgres-specific fields like:
//   - Code (SQLSTATE)
//   - Severity
//   - TableName/ColumnName/ConstraintName etc.
//
// We map SQLSTATE + Severity into our enums for easier switching.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),         // map SQLSTATE to friendly code enum
		Severity:       MapSeverity(src.Severity), // map severity string to enum
		DatabaseCode:   src.Code,                  // keep original SQLSTATE
		Message:        src.Message,               // DB's main message
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src, // store original for Unwrap() and debugging
	}
}

// ConvertSQLiteError converts a go-sqlite3 error into our custom sqlerr.Error.
//
// SQLite reports the violated column only in the message text, e.g.
//
//	NOT NULL constraint failed: vendor_sweets.price
//
// so TableName/ColumnName are recovered from there when present.
func ConvertSQLiteError(src sqlite3.Error) *Error {
	sqlErr := &Error{
		Code:         mapSQLiteCode(src.ExtendedCode),
		Severity:     SeverityError,
		DatabaseCode: fmt.Sprintf("%d", int(src.ExtendedCode)),
		Message:      src.Error(),
		driverErr:    src,
	}

	if _, target, ok := strings.Cut(sqlErr.Message, "constraint failed: "); ok {
		if table, column, ok := strings.Cut(target, "."); ok && !strings.ContainsAny(table, " ()") {
			sqlErr.TableName, sqlErr.ColumnName = table, column
		}
	}
	return sqlErr
}

func mapSQLiteCode(code sqlite3.ErrNoExtended) Code {
	switch code {
	case sqlite3.ErrConstraintNotNull:
		return NotNullViolation
	case sqlite3.ErrConstraintForeignKey:
		return ForeignKeyViolation
	case sqlite3.ErrConstraintCheck:
		return CheckViolation
	default:
		return Other
	}
}

// generateErrorCode creates consistent "application error codes" from DB errors.
//
// Output format:
//
//	<DOMAIN>_<ACTION>
//
// Example:
//
//	vendor_sweets + CheckViolation => VENDOR_SWEET_INVALID
//
// Rules:
//   - DOMAIN comes from tableName (uppercased, singularized crudely by removing trailing 'S')
//   - ACTION depends on violation type
//
// These codes are meant for machines (logs, metrics), not humans.
func generateErrorCode(tableName string, errType Code) string {
	// If table is unknown, default to RECORD to avoid empty domain.
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)

	// Very naive singularization:
	// "VENDOR_SWEETS" -> "VENDOR_SWEET"
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	// Decide what kind of "action" code to generate.
	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage produces an end-user-facing error message.
//
// This message is intended for clients / UI, not for logs.
// It uses table/column info to phrase messages in a more human way.
func formatUserFriendlyMessage(sqlErr *Error) string {
	// Pick an entity name that the message will refer to.
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		// Example: "The referenced Vendor does not exist"
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case NotNullViolation:
		// Example: "The Price is required"
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		// Example: "The Price value does not meet required conditions"
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	default:
		// Fallback for unknown DB errors.
		return "An error occurred while processing your request"
	}
}

// getEntityName tries to infer an entity name from table/column data.
//
// Priority rules:
//  1. If column ends with "_id", use that base name. (Best for FK relations)
//     e.g. "vendor_id" -> "Vendor"
//  2. Otherwise use table name, singularized if it ends with "s".
//  3. Otherwise fallback to "record".
func getEntityName(tableName, columnName string) string {
	// Most reliable for foreign keys: column like "user_id".
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	// Fallback: table name.
	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText converts snake_case (or lower-ish identifiers) into Title Case.
//
// Example:
//
//	"first_name" -> "First Name"
//
// It uses x/text/cases for proper title casing rules.
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// entityName renders a table name as the entity it stores, without spaces:
//
//	"vendor_sweets" -> "VendorSweet"
func entityName(table string) string {
	return strings.ReplaceAll(getEntityName(table, ""), " ", "")
}

// HandleError converts a low-level database error into an application-level error.
//
// Output:
//   - If already *errs.HTTPError: returned unchanged
//   - If *repository.NotFoundError: 404 "<Entity> not found"
//   - If pgconn.PgError or sqlite3.Error: mapped by constraint kind
//   - If a bare ErrNoRows: generic 404
//   - Otherwise: errs.NewInternalServerError
//
// This function is intended to be called in services after a repository call fails.
func HandleError(err error) error {
	// If it's already an HTTPError, don't re-wrap it.
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var notFound *repository.NotFoundError
	if errors.As(err, &notFound) {
		return errs.NewNotFoundError(fmt.Sprintf("%s not found", entityName(notFound.Table)), true, nil)
	}

	var sqlErr *Error
	var pgerr *pgconn.PgError
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pgerr):
		sqlErr = ConvertPgError(pgerr)
	case errors.As(err, &liteErr):
		sqlErr = ConvertSQLiteError(liteErr)
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return errs.NewNotFoundError("Resource not found", false, nil)
	default:
		return errs.NewInternalServerError()
	}

	// Create:
	// - a machine-friendly error code (e.g. VENDOR_SWEET_INVALID)
	// - a user-friendly message (e.g. "The Price value does not meet required conditions")
	errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
	userMessage := formatUserFriendlyMessage(sqlErr)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		// Foreign key violation usually means reference doesn't exist.
		return errs.NewBadRequestError("", false, &errorCode, []string{userMessage})

	case NotNullViolation, CheckViolation:
		return errs.NewBadRequestError("", true, &errorCode, []string{userMessage})

	default:
		// Unknown/other DB errors should not leak details to clients.
		return errs.NewInternalServerError()
	}
}
