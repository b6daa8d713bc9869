package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("Validation errors",
		FieldViolation{Field: "name", Message: "name must be at least 2 characters"},
		FieldViolation{Field: "email", Message: "email must be a valid email"},
	)

	assert.Equal(t, "validation failed: name must be at least 2 characters, email must be a valid email", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())

	var found bool
	for _, d := range st.Details() {
		if br, ok := d.(*errdetails.BadRequest); ok {
			found = true
			require.Len(t, br.GetFieldViolations(), 2)
			assert.Equal(t, "name", br.GetFieldViolations()[0].GetField())
		}
	}
	assert.True(t, found, "expected BadRequest details")
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		httpCode int
		grpcCode codes.Code
	}{
		{"not found", NewNotFoundError("user", "User not found"), http.StatusNotFound, codes.NotFound},
		{"conflict", NewAlreadyExistsError("user", ""), http.StatusConflict, codes.AlreadyExists},
		{"internal", NewInternalError("Internal server error", stderrors.New("boom")), http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hs HTTPStatuser
			require.True(t, stderrors.As(tt.err, &hs))
			assert.Equal(t, tt.httpCode, hs.HTTPStatus())

			st, ok := status.FromError(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.grpcCode, st.Code())
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := NewInternalError("Internal server error", cause)

	assert.ErrorIs(t, err, cause)
	st := err.GRPCStatus()
	assert.Equal(t, "Internal server error", st.Message())
}

func TestWrappedErrorsStillMatch(t *testing.T) {
	err := fmt.Errorf("get user: %w", NewNotFoundError("user", ""))

	var nf *NotFoundError
	require.True(t, stderrors.As(err, &nf))
	assert.Equal(t, "user not found", nf.Error())
}
