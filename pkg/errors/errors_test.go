package errors

import (
	"database/sql"
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, ErrInternal.Message, appErr.Message)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestCloneKeepsCodeAndMatchesTemplate(t *testing.T) {
	clone := Clone(ErrNotFound, "assignment not found")
	assert.Equal(t, "assignment not found", clone.Message)
	assert.True(t, stdErrors.Is(clone, ErrNotFound))
	assert.False(t, stdErrors.Is(clone, ErrConflict))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestHasCode(t *testing.T) {
	err := Internal(sql.ErrTxDone, "failed to duplicate planning")
	assert.True(t, HasCode(err, ErrInternal.Code))
	assert.False(t, HasCode(sql.ErrTxDone, ErrInternal.Code))
	assert.Equal(t, "failed to duplicate planning: "+sql.ErrTxDone.Error(), err.Error())
}
