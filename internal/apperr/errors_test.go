package apperr

import (
	"errors"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrDenied, http.StatusForbidden},
		{ErrValidation, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrInsufficientStock, http.StatusConflict},
		{ErrDuplicateKey, http.StatusConflict},
		{ErrActiveReferences, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWrappingKeepsKind(t *testing.T) {
	err := Denied("only managers can delete cars")
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("expected wrapped denial to match ErrDenied")
	}
	if HTTPStatus(err) != http.StatusForbidden {
		t.Fatalf("expected wrapped denial to map to 403")
	}

	err = NotFound("part")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped not-found to match ErrNotFound")
	}

	err = ActiveReferences("car has active work orders")
	if HTTPStatus(err) != http.StatusConflict {
		t.Fatalf("expected active-references to map to 409")
	}
}
