package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		target string
		want   int
	}{
		{"/audit", 1},
		{"/audit?page=3", 3},
		{"/audit?page=0", 1},
		{"/audit?page=-2", 1},
		{"/audit?page=abc", 1},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			if got := ParsePage(httptest.NewRequest("GET", tt.target, nil)); got != tt.want {
				t.Errorf("ParsePage(%q) = %d, want %d", tt.target, got, tt.want)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(1); got != 0 {
		t.Errorf("Offset(1) = %d, want 0", got)
	}
	if got := Offset(3); got != int64(2*PageSize) {
		t.Errorf("Offset(3) = %d, want %d", got, 2*PageSize)
	}
	if got := Offset(0); got != 0 {
		t.Errorf("Offset(0) = %d, want 0", got)
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		total int64
		shown int
		want  Pages
	}{
		{
			name: "empty",
			page: 1,
			want: Pages{Page: 1, TotalPages: 1, PrevPage: 1, NextPage: 1},
		},
		{
			name:  "first of two",
			page:  1,
			total: PageSize + 1,
			shown: PageSize,
			want:  Pages{Page: 1, TotalPages: 2, HasNext: true, PrevPage: 1, NextPage: 2, Start: 1, End: PageSize},
		},
		{
			name:  "last of two",
			page:  2,
			total: PageSize + 1,
			shown: 1,
			want:  Pages{Page: 2, TotalPages: 2, HasPrev: true, PrevPage: 1, NextPage: 2, Start: PageSize + 1, End: PageSize + 1},
		},
		{
			name:  "past the end",
			page:  5,
			total: 10,
			want:  Pages{Page: 5, TotalPages: 1, HasPrev: true, PrevPage: 4, NextPage: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.page, tt.total, tt.shown); got != tt.want {
				t.Errorf("Compute() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
