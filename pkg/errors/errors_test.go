package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	if got := MetadataFor(CodeNotFound).HTTPStatus; got != http.StatusNotFound {
		t.Fatalf("expected 404 for not found, got %d", got)
	}
	if got := MetadataFor(CodeValidation); !got.DetailsAllowed {
		t.Fatal("validation errors should expose details")
	}
	if got := MetadataFor(Code("SOMETHING_NEW")).HTTPStatus; got != http.StatusInternalServerError {
		t.Fatalf("unknown codes should map to 500, got %d", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("socket closed")
	wrapped := Wrap(CodeDependency, cause, "query products")

	if !errors.Is(wrapped, cause) {
		t.Fatal("expected wrapped error to match the cause")
	}
	if typed := As(fmt.Errorf("outer: %w", wrapped)); typed == nil || typed.Code() != CodeDependency {
		t.Fatalf("expected typed error through the chain, got %v", typed)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"name": "is required"})
	details, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if details["name"] != "is required" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDumpIncludesPGFields(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_products_slug",
		TableName:      "products",
		Message:        "duplicate key value violates unique constraint",
	}
	dump := Dump(Wrap(CodeConflict, pgErr, "create product"))

	if dump.PGCode != "23505" {
		t.Fatalf("expected pg code 23505, got %q", dump.PGCode)
	}
	if dump.PGConstraint != "idx_products_slug" {
		t.Fatalf("expected constraint name, got %q", dump.PGConstraint)
	}
	if dump.Code != CodeConflict {
		t.Fatalf("expected typed code in dump, got %q", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected chain entries, got %v", dump.Chain)
	}
}
