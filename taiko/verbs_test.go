package taiko

import (
	"fmt"
	"testing"

	"github.com/taiko-go/taiko/action"
	"github.com/taiko-go/taiko/selector"
)

func TestWrapActionErrClassification(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want ErrCode
	}{
		{"not found", &selector.NotFoundError{Description: "button \"Submit\""}, CodeElementNotFound},
		{"covered", &action.ElementCoveredError{Description: "link \"Home\""}, CodeElementCovered},
		{"too many matches", &action.TooManyMatchesError{}, CodeTooManyMatches},
		{"not writable", &action.NotWritableError{}, CodeInvalidOperation},
		{"unsupported operation", &action.UnsupportedOperationError{Op: "attach"}, CodeInvalidOperation},
		{"file not found", &action.FileNotFoundError{Path: "/tmp/missing.txt"}, CodeFileNotFound},
		{"unrecognized", fmt.Errorf("dial tcp: EOF"), CodeWireError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := wrapActionErr(tc.in)
			te, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if te.Code != tc.want {
				t.Errorf("got code %s, want %s", te.Code, tc.want)
			}
			if te.Underlying != tc.in {
				t.Errorf("expected underlying cause to be preserved")
			}
		})
	}
}

func TestFromAction(t *testing.T) {
	r, err := fromAction(action.Result{Description: "Clicked button \"Submit\""}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Description != "Clicked button \"Submit\"" {
		t.Errorf("unexpected description: %q", r.Description)
	}

	_, err = fromAction(action.Result{}, &action.TooManyMatchesError{})
	if err == nil {
		t.Fatalf("expected error to propagate")
	}
	if te, ok := err.(*Error); !ok || te.Code != CodeTooManyMatches {
		t.Fatalf("expected CodeTooManyMatches, got %v", err)
	}
}
