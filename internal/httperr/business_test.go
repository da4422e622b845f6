package httperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestBusinessError(t *testing.T) {
	err := fmt.Errorf("create: %w", ErrBusiness("time_conflict"))

	assert.True(t, IsBusiness(err, "time_conflict"))
	assert.False(t, IsBusiness(err, "service_not_found"))

	code, ok := BusinessCode(err)
	assert.True(t, ok)
	assert.Equal(t, "time_conflict", code)

	_, ok = BusinessCode(errors.New("boom"))
	assert.False(t, ok)
}

func TestPostgresClassification(t *testing.T) {
	excl := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01"})
	uniq := &pgconn.PgError{Code: "23505"}

	assert.True(t, IsExclusionConflict(excl))
	assert.False(t, IsExclusionConflict(uniq))
	assert.True(t, IsUniqueViolation(uniq))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsNotFound(fmt.Errorf("x: %w", gorm.ErrRecordNotFound)))
}
