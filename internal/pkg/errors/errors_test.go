package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New(CodeBadRequest, "invalid input"),
			want: "BAD_REQUEST: invalid input",
		},
		{
			name: "with wrapped error",
			err:  Wrap(CodeInternal, "something failed", errors.New("underlying")),
			want: "INTERNAL_ERROR: something failed: underlying",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Wrap(CodeInternal, "wrapped", underlying)

	if unwrapped := err.Unwrap(); unwrapped != underlying {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, underlying)
	}
}

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{CodeBadRequest, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeValidationFailed, http.StatusInternalServerError},
		{CodeEngineError, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test")
			if status := err.HTTPStatus(); status != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", status, tt.status)
			}
		})
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := New(CodeValidationFailed, "invalid").
		WithDetails(map[string]string{"field": "name"})

	if err.Details["field"] != "name" {
		t.Errorf("Details[field] = %s, want name", err.Details["field"])
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := New(CodeValidationFailed, "invalid").
		WithDetail("field", "name").
		WithDetail("reason", "required")

	if err.Details["field"] != "name" {
		t.Errorf("Details[field] = %s, want name", err.Details["field"])
	}

	if err.Details["reason"] != "required" {
		t.Errorf("Details[reason] = %s, want required", err.Details["reason"])
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("BadRequestError", func(t *testing.T) {
		err := BadRequestError("bad input")
		if err.Code != CodeBadRequest {
			t.Errorf("Code = %s, want %s", err.Code, CodeBadRequest)
		}
	})

	t.Run("NotFoundError", func(t *testing.T) {
		err := NotFoundError("generation")
		if err.Code != CodeNotFound {
			t.Errorf("Code = %s, want %s", err.Code, CodeNotFound)
		}
		if err.Message != "generation not found" {
			t.Errorf("Message = %s, want 'generation not found'", err.Message)
		}
	})

	t.Run("ConflictError", func(t *testing.T) {
		err := ConflictError("alias already points at target")
		if err.Code != CodeConflict {
			t.Errorf("Code = %s, want %s", err.Code, CodeConflict)
		}
	})

	t.Run("ValidationFailedError", func(t *testing.T) {
		err := ValidationFailedError("count mismatch: source=100 target=90")
		if err.Code != CodeValidationFailed {
			t.Errorf("Code = %s, want %s", err.Code, CodeValidationFailed)
		}
	})

	t.Run("EngineErrorWrap", func(t *testing.T) {
		err := EngineErrorWrap("bulk index failed", errors.New("connection reset"))
		if err.Code != CodeEngineError {
			t.Errorf("Code = %s, want %s", err.Code, CodeEngineError)
		}
	})

	t.Run("InternalError", func(t *testing.T) {
		underlying := errors.New("disk full")
		err := InternalError("failed to write manifest", underlying)
		if err.Code != CodeInternal {
			t.Errorf("Code = %s, want %s", err.Code, CodeInternal)
		}
		if err.Unwrap() != underlying {
			t.Error("Underlying error not preserved")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	notFound := NotFoundError("test")
	other := ValidationFailedError("test")

	if !IsNotFound(notFound) {
		t.Error("IsNotFound(NotFoundError) = false, want true")
	}

	if IsNotFound(other) {
		t.Error("IsNotFound(ValidationFailedError) = true, want false")
	}

	if IsNotFound(errors.New("standard error")) {
		t.Error("IsNotFound(standard error) = true, want false")
	}
}

func TestIsConflict(t *testing.T) {
	conflict := ConflictError("test")
	other := NotFoundError("test")

	if !IsConflict(conflict) {
		t.Error("IsConflict(ConflictError) = false, want true")
	}

	if IsConflict(other) {
		t.Error("IsConflict(NotFoundError) = true, want false")
	}
}

func TestIsValidationFailed(t *testing.T) {
	validation := ValidationFailedError("test")
	other := NotFoundError("test")

	if !IsValidationFailed(validation) {
		t.Error("IsValidationFailed(ValidationFailedError) = false, want true")
	}

	if IsValidationFailed(other) {
		t.Error("IsValidationFailed(NotFoundError) = true, want false")
	}
}
