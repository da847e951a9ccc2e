package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInvalidTransition_NamesBothStatuses(t *testing.T) {
	err := NewInvalidTransition("closed", "resolved")

	de := ToDomainError(err)
	assert.Equal(t, CodeInvalidTransition, de.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, de.HTTPStatus)
	assert.Equal(t, "closed", de.Details["current_status"])
	assert.Equal(t, "resolved", de.Details["requested_status"])
	assert.Contains(t, de.Error(), "closed")
	assert.Contains(t, de.Error(), "resolved")
}

func TestToDomainError_WrapsUnknownErrors(t *testing.T) {
	de := ToDomainError(errors.New("boom"))

	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Nil(t, ToDomainError(nil))
}

func TestHasCode_SeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("assign: %w", NewIssueClosed("i-1"))

	assert.True(t, HasCode(err, CodeIssueClosed))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeIssueClosed))
}

func TestNewStoreUnavailable_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStoreUnavailable(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusServiceUnavailable, ToDomainError(err).HTTPStatus)
}
