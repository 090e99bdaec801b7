package pagination

import "testing"

func TestLimitClampsPageSize(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, defaultPageSize},
		{-5, defaultPageSize},
		{10, 10},
		{maxPageSize + 1, maxPageSize},
	}
	for _, tc := range cases {
		got := Pagination{PageSize: tc.in}.Limit()
		if got != tc.want {
			t.Fatalf("Limit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token := NextToken(0, 25, 25)
	if token == "" {
		t.Fatalf("expected token for a full page")
	}
	offset := Pagination{PageToken: token}.Offset()
	if offset != 25 {
		t.Fatalf("expected offset 25, got %d", offset)
	}
}

func TestShortPageEndsPagination(t *testing.T) {
	if token := NextToken(50, 25, 10); token != "" {
		t.Fatalf("expected empty token for short page, got %q", token)
	}
}

func TestMalformedTokenFallsBackToFirstPage(t *testing.T) {
	for _, token := range []string{"!!not-base64!!", "bm90YW51bWJlcg", "  "} {
		if offset := (Pagination{PageToken: token}).Offset(); offset != 0 {
			t.Fatalf("token %q: expected offset 0, got %d", token, offset)
		}
	}
}
