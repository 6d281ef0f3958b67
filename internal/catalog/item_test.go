package catalog_test

import (
	"errors"
	"strings"
	"testing"

	"animecat/internal/catalog"
)

func TestValidateAcceptsMinimalItem(t *testing.T) {
	item := catalog.Item{ID: "42", Name: catalog.Name{Main: "Frieren"}}
	if err := item.Validate(); err != nil {
		t.Fatalf("expected valid item, got %v", err)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name  string
		item  catalog.Item
		field string
	}{
		{"missing id", catalog.Item{Name: catalog.Name{Main: "x"}}, "id"},
		{"blank id", catalog.Item{ID: "  ", Name: catalog.Name{Main: "x"}}, "id"},
		{"missing name", catalog.Item{ID: "1"}, "main"},
		{"negative year", catalog.Item{ID: "1", Name: catalog.Name{Main: "x"}, Year: -1}, "year"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.item.Validate()
			if !errors.Is(err, catalog.ErrInvalidItem) {
				t.Fatalf("expected ErrInvalidItem, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("expected error to mention %q, got %v", tc.field, err)
			}
		})
	}
}

func TestExternalKind(t *testing.T) {
	cases := []struct {
		typ    *catalog.TypeRef
		want   string
		wantOK bool
	}{
		{nil, "", false},
		{&catalog.TypeRef{Code: "TV"}, "tv", true},
		{&catalog.TypeRef{Code: "movie"}, "movie", true},
		{&catalog.TypeRef{Code: "special"}, "special", true},
		{&catalog.TypeRef{Code: "music"}, "", false},
	}
	for _, tc := range cases {
		item := catalog.Item{ID: "1", Name: catalog.Name{Main: "x"}, Type: tc.typ}
		got, ok := item.ExternalKind()
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("ExternalKind(%v) = %q,%v want %q,%v", tc.typ, got, ok, tc.want, tc.wantOK)
		}
	}
}
