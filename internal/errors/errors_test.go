package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "missing node",
			code:    "E001",
			wantMsg: "Signal node missing",
			wantCat: CategoryRuntime,
		},
		{
			name:    "cyclic dependency",
			code:    "E004",
			wantMsg: "Cyclic selector dependency",
			wantCat: CategoryRuntime,
		},
		{
			name:    "config error",
			code:    "E101",
			wantMsg: "Invalid inspector address",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New("E003")
	if got := err.Error(); got != "E003: Write to a derived node" {
		t.Errorf("Error() = %q", got)
	}

	err = Newf(CategoryCLI, "unknown flag %q", "--frobnicate")
	if !strings.Contains(err.Error(), "--frobnicate") {
		t.Errorf("Error() = %q, want flag name included", err.Error())
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New("E201").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var we *WeftError
	if !stderrors.As(err, &we) {
		t.Fatal("errors.As should find *WeftError")
	}
	if we.Code != "E201" {
		t.Errorf("Code = %q, want E201", we.Code)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E100") != nil {
		t.Error("FromError(nil) should return nil")
	}

	// Already a WeftError: passed through unchanged.
	orig := New("E002")
	if got := FromError(orig, "E100"); got != orig {
		t.Error("FromError should pass WeftError through")
	}

	wrapped := FromError(stderrors.New("boom"), "E100")
	if wrapped.Code != "E100" {
		t.Errorf("Code = %q, want E100", wrapped.Code)
	}
	if wrapped.Wrapped == nil {
		t.Error("Wrapped should carry the original error")
	}
}

func TestWithDetailf(t *testing.T) {
	err := New("E001").WithDetailf("node %d missing", 42)
	if !strings.Contains(err.Detail, "node 42 missing") {
		t.Errorf("Detail = %q", err.Detail)
	}
}
