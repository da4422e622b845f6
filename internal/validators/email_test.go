package validators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	email, ok := NormalizeEmail("  Anna@Salon.COM ")
	assert.True(t, ok)
	assert.Equal(t, "anna@salon.com", email)

	for _, bad := range []string{"", "anna", "anna@", "Anna <anna@salon.com>"} {
		_, ok := NormalizeEmail(bad)
		assert.False(t, ok, bad)
	}
}

func TestIsEmailDomainValid_RejectsMissingDomain(t *testing.T) {
	assert.False(t, IsEmailDomainValid(context.Background(), "anna@"))
	assert.False(t, IsEmailDomainValid(context.Background(), "anna"))
}
