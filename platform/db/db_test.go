package db

import (
	"errors"
	"fmt"
	"testing"

	"educare/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslateError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind apperr.Kind
	}{
		{"no rows", fmt.Errorf("get child: %w", pgx.ErrNoRows), apperr.KindNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, apperr.KindConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, apperr.KindValidation},
		{"check", &pgconn.PgError{Code: "23514"}, apperr.KindValidation},
		{"other", errors.New("connection reset"), apperr.KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TranslateError(tc.err, "child not found")
			if apperr.GetKind(got) != tc.kind {
				t.Fatalf("expected kind %v, got %v (%v)", tc.kind, apperr.GetKind(got), got)
			}
		})
	}

	if TranslateError(nil, "x") != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestWrapErrorKeepsOpForUnexpectedErrors(t *testing.T) {
	reset := errors.New("connection reset")
	err := WrapError("list children", reset, "child not found")
	if !errors.Is(err, reset) || err.Error() != "list children: connection reset" {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	if err := WrapError("get child", pgx.ErrNoRows, "child not found"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if WrapError("noop", nil, "x") != nil {
		t.Fatal("expected nil for nil error")
	}
}
