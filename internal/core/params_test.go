package core

import (
	"errors"
	"testing"
)

func TestListParamsValidate(t *testing.T) {
	tests := []struct {
		name string
		p    ListParams
		want error
	}{
		{"defaults", ListParams{Month: 3, Page: DefaultPage, PerPage: DefaultPerPage}, nil},
		{"max per page", ListParams{Month: 12, Page: 7, PerPage: MaxPerPage}, nil},
		{"month zero", ListParams{Month: 0, Page: 1, PerPage: 10}, ErrInvalidMonth},
		{"month thirteen", ListParams{Month: 13, Page: 1, PerPage: 10}, ErrInvalidMonth},
		{"page zero", ListParams{Month: 1, Page: 0, PerPage: 10}, ErrInvalidPage},
		{"per page zero", ListParams{Month: 1, Page: 1, PerPage: 0}, ErrInvalidPerPage},
		{"per page over max", ListParams{Month: 1, Page: 1, PerPage: MaxPerPage + 1}, ErrInvalidPerPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestListParamsOffset(t *testing.T) {
	if got := (ListParams{Page: 1, PerPage: 10}).Offset(); got != 0 {
		t.Errorf("page 1 offset = %d, want 0", got)
	}
	if got := (ListParams{Page: 2, PerPage: 5}).Offset(); got != 5 {
		t.Errorf("page 2 x 5 offset = %d, want 5", got)
	}
}
