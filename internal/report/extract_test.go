package report

import "testing"

func TestExtractJSON_Plain(t *testing.T) {
	var n Narrative
	ok := extractJSON(`{"summary": "Shipped the webhook fix", "highlights": ["a"], "nextSteps": ["b"]}`, &n)
	if !ok {
		t.Fatal("Expected successful extraction")
	}
	if n.Summary != "Shipped the webhook fix" {
		t.Errorf("Unexpected summary: %q", n.Summary)
	}
}

func TestExtractJSON_Fenced(t *testing.T) {
	response := "```json\n{\"summary\": \"ok\", \"highlights\": [], \"nextSteps\": []}\n```"
	var n Narrative
	if !extractJSON(response, &n) {
		t.Fatal("Expected fenced JSON to be extracted")
	}
	if n.Summary != "ok" {
		t.Errorf("Unexpected summary: %q", n.Summary)
	}
}

func TestExtractJSON_SurroundingProse(t *testing.T) {
	response := `Here is your report: {"summary": "ok", "highlights": ["x {braces} inside"], "nextSteps": []} hope that helps!`
	var n Narrative
	if !extractJSON(response, &n) {
		t.Fatal("Expected prose-wrapped JSON to be extracted")
	}
	if len(n.Highlights) != 1 || n.Highlights[0] != "x {braces} inside" {
		t.Errorf("Unexpected highlights: %v", n.Highlights)
	}
}

func TestExtractJSON_NestedObjects(t *testing.T) {
	var out map[string]any
	if !extractJSON(`{"a": {"b": {"c": 1}}, "d": "}"}`, &out) {
		t.Fatal("Expected nested object to be extracted")
	}
	if out["d"] != "}" {
		t.Errorf("Brace inside string mishandled: %v", out["d"])
	}
}

func TestExtractJSON_Failures(t *testing.T) {
	var n Narrative
	for _, response := range []string{
		"",
		"no json here",
		"{truncated",
		`{"summary": unquoted}`,
	} {
		if extractJSON(response, &n) {
			t.Errorf("Expected extraction to fail for %q", response)
		}
	}
}
