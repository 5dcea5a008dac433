package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/repositories"
)

// handleDBError wraps a database error with the failed operation and
// classifies not-found and unique violations.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s failed: %w", operation, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%s failed: %w: %v", operation, repositories.ErrDuplicate, err)
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

// isUniqueViolation catches drivers that do not translate errors
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505")
}

// inTx reports whether the write runs inside a caller's transaction, in
// which case cache invalidation waits for the commit.
func inTx(tx *gorm.DB) bool {
	return tx != nil
}

func pickDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// applyPaginationAndSort applies pagination and sorting from a column whitelist
func applyPaginationAndSort(query *gorm.DB, allowed map[string]bool, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if sortBy == "" || !allowed[sortBy] {
		sortBy = "created_at"
	}

	if strings.EqualFold(sortOrder, "asc") {
		sortOrder = "ASC"
	} else {
		sortOrder = "DESC"
	}

	// id keeps ordering stable when timestamps collide
	query = query.Order(sortBy + " " + sortOrder).Order("id " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// likePattern escapes LIKE wildcards in user input
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
