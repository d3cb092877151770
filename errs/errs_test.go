package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApiErr_IsSentinel(t *testing.T) {
	err := error(NewOtpExpiredError())

	assert.True(t, errors.Is(err, ErrOtpExpired))
	assert.False(t, errors.Is(err, ErrOtpMismatch))
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestApiErr_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("toggle like: %w", NewNotFound("blog post"))

	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Equal(t, "toggle like: blog post not found", err.Error())
}

func TestApiErr_Message(t *testing.T) {
	err := NewForbiddenError("only admins can create blogs")

	assert.Equal(t, "operation not allowed: only admins can create blogs", err.Error())
	assert.True(t, IsForbidden(err))
}

func TestNewDatabaseError(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NewDatabaseError("find", "user", ErrNotFound).StatusCode)
	assert.Equal(t, http.StatusConflict, NewDatabaseError("add", "user", ErrAlreadyExists).StatusCode)

	passthrough := NewDuplicateEmailError()
	assert.Same(t, passthrough, NewDatabaseError("add", "user", passthrough))

	generic := NewDatabaseError("update", "post", errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, generic.StatusCode)
	assert.Equal(t, "database query failed: Failed to update post -> boom", generic.GetFullError())
}

func TestStatusCode_NonApiErr(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("x")))
}

func TestNewUpstreamError(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := NewUpstreamError("text to speech", cause)

	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Equal(t, "upstream service failed: text to speech", err.Error())
	assert.Contains(t, err.GetFullError(), "dial tcp")
}
