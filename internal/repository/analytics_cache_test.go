package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/grievance-service/internal/domain"
)

func TestFilterFingerprint(t *testing.T) {
	city := "Pune"
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := FilterFingerprint(domain.IssueFilter{City: &city, StartDate: &start})
	b := FilterFingerprint(domain.IssueFilter{City: &city, StartDate: &start})
	c := FilterFingerprint(domain.IssueFilter{City: &city})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
