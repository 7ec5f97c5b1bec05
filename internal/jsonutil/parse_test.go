package jsonutil

import "testing"

type reply struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestStripMarkdownFences(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"bare fence", "```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"no fence", "{\"a\":1}", "{\"a\":1}"},
		{"surrounding whitespace", "  {\"a\":1}  ", "{\"a\":1}"},
	}

	for _, tc := range cases {
		if got := StripMarkdownFences(tc.in); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestParseJSONRoundTrip(t *testing.T) {
	// Clean structured data passes through the strict parse unchanged.
	got, err := ParseJSON[reply](`{"name":"A","score":3}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "A" || got.Score != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestParseJSONNoiseWrapped(t *testing.T) {
	raw := "Here is my evaluation:\n{\"name\":\"B\",\"score\":5}\nHope that helps!"
	got, err := ParseJSON[reply](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "B" || got.Score != 5 {
		t.Errorf("got %+v", got)
	}
}

func TestParseJSONTrailingBraces(t *testing.T) {
	// Trailing noise containing '}' must not confuse extraction; the brace
	// walk stops at the first balanced object.
	raw := `{"name":"C","score":1} and then } some } garbage`
	got, err := ParseJSON[reply](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "C" {
		t.Errorf("got %+v", got)
	}
}

func TestParseJSONNestedObject(t *testing.T) {
	type nested struct {
		Outer struct {
			Inner int `json:"inner"`
		} `json:"outer"`
	}
	raw := `noise {"outer":{"inner":7}} noise`
	got, err := ParseJSON[nested](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Outer.Inner != 7 {
		t.Errorf("got %+v", got)
	}
}

func TestParseJSONUnbalanced(t *testing.T) {
	if _, err := ParseJSON[reply](`{"name":"D","score":`); err == nil {
		t.Error("expected error for unbalanced object")
	}
	if _, err := ParseJSON[reply]("no braces at all"); err == nil {
		t.Error("expected error when no object present")
	}
}

func TestExtractObject(t *testing.T) {
	got, err := ExtractObject(`prefix {"a":{"b":2}} suffix}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a":{"b":2}}` {
		t.Errorf("got %q", got)
	}
}
