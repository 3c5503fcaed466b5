package clauses

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"legallens-backend/internal/knowledge"
)

func testBase() *knowledge.Base {
	return knowledge.New(knowledge.Contents{Explanations: []knowledge.Entry{
		{Key: "Security Deposit", Explanation: knowledge.StructuredRecord{
			Definition:    "Refundable amount held by the landlord.",
			Importance:    "HIGH",
			TypicalAmount: "2 months",
		}},
		{Key: "deposit refund", Explanation: knowledge.PlainDefinition("Return of the deposit.")},
		{Key: "deposit deductions", Explanation: knowledge.PlainDefinition("Amounts withheld.")},
		{Key: "non-refundable deposit", Explanation: knowledge.PlainDefinition("Deposit kept by landlord.")},
		{Key: "eviction", Explanation: knowledge.PlainDefinition("Removal of a tenant.")},
		{Key: "rent escalation", Explanation: knowledge.PlainDefinition("Periodic rent increase.")},
		{Key: "notice period", Explanation: knowledge.PlainDefinition("Advance notice.")},
	}})
}

func mustMatch(t *testing.T, kb *knowledge.Base, query string) Result {
	t.Helper()
	res, err := Match(kb, query)
	if err != nil {
		t.Fatalf("Match(%q): %v", query, err)
	}
	return res
}

func TestMatchExactIsCaseInsensitive(t *testing.T) {
	res := mustMatch(t, testBase(), "  SECURITY deposit ")
	if res.MatchType != MatchExact || res.Clause != "Security Deposit" {
		t.Fatalf("expected exact Security Deposit, got %s %q", res.MatchType, res.Clause)
	}
	if res.Explanation != "Refundable amount held by the landlord." {
		t.Fatalf("unexpected explanation %q", res.Explanation)
	}
	if len(res.AdditionalInfo) != 7 {
		t.Fatalf("expected 7 metadata fields, got %v", res.AdditionalInfo)
	}
	if res.AdditionalInfo["importance"] != "HIGH" || res.AdditionalInfo["penalties"] != "" {
		t.Fatalf("unexpected metadata %v", res.AdditionalInfo)
	}
}

func TestMatchExactPlainDefinitionHasEmptyInfo(t *testing.T) {
	res := mustMatch(t, testBase(), "eviction")
	if res.MatchType != MatchExact {
		t.Fatalf("expected exact, got %s", res.MatchType)
	}
	if res.AdditionalInfo == nil || len(res.AdditionalInfo) != 0 {
		t.Fatalf("expected empty non-nil info, got %#v", res.AdditionalInfo)
	}
}

func TestMatchPartialSuggestionsExcludePrimary(t *testing.T) {
	res := mustMatch(t, testBase(), "deposit")
	if res.MatchType != MatchPartial || res.Clause != "Security Deposit" {
		t.Fatalf("expected partial Security Deposit, got %s %q", res.MatchType, res.Clause)
	}
	want := []string{"deposit refund", "deposit deductions"}
	if !reflect.DeepEqual(res.Suggestions, want) {
		t.Fatalf("suggestions = %v, want %v", res.Suggestions, want)
	}
}

func TestMatchSubstringOfQuery(t *testing.T) {
	res := mustMatch(t, testBase(), "what happens on eviction")
	if res.MatchType != MatchPartial || res.Clause != "eviction" || len(res.Suggestions) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestMatchTokenOverlap(t *testing.T) {
	res := mustMatch(t, testBase(), "annual rent hike")
	if res.MatchType != MatchPartial || res.Clause != "rent escalation" {
		t.Fatalf("expected partial rent escalation, got %s %q", res.MatchType, res.Clause)
	}
}

func TestMatchShortTokensNeverOverlap(t *testing.T) {
	kb := knowledge.New(knowledge.Contents{Explanations: []knowledge.Entry{
		{Key: "on time payment", Explanation: knowledge.PlainDefinition("Paying by the due date.")},
	}})
	if res := mustMatch(t, kb, "be on it"); res.Source != SourceNone {
		t.Fatalf("expected no match, got %+v", res)
	}
}

func TestMatchNoneSuggestsFirstFiveKeys(t *testing.T) {
	res := mustMatch(t, testBase(), "zoning variance")
	if res.Matched() || res.Source != SourceNone || res.Explanation != NoMatchMessage {
		t.Fatalf("unexpected result %+v", res)
	}
	want := []string{"Security Deposit", "deposit refund", "deposit deductions", "non-refundable deposit", "eviction"}
	if !reflect.DeepEqual(res.Suggestions, want) {
		t.Fatalf("suggestions = %v, want %v", res.Suggestions, want)
	}
}

func TestMatchEmptyKnowledgeBase(t *testing.T) {
	res := mustMatch(t, knowledge.Empty(), "security deposit")
	if res.Source != SourceNone || res.Suggestions == nil || len(res.Suggestions) != 0 {
		t.Fatalf("unexpected result %#v", res)
	}
}

func TestMatchEmptyQuery(t *testing.T) {
	if _, err := Match(testBase(), "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	kb := testBase()
	a, _ := json.Marshal(mustMatch(t, kb, "deposit"))
	for i := 0; i < 20; i++ {
		b, _ := json.Marshal(mustMatch(t, kb, "deposit"))
		if string(a) != string(b) {
			t.Fatalf("run %d differs:\n%s\n%s", i, a, b)
		}
	}
}

func assertJSON(t *testing.T, v any, want string) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got, exp any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if err := json.Unmarshal([]byte(want), &exp); err != nil {
		t.Fatalf("unmarshal expected: %v", err)
	}
	if !reflect.DeepEqual(got, exp) {
		t.Fatalf("json = %s, want %s", data, want)
	}
}

func TestResultJSONShape(t *testing.T) {
	assertJSON(t, mustMatch(t, testBase(), "eviction"),
		`{"explanation":"Removal of a tenant.","source":"local","match_type":"exact","clause":"eviction","additional_info":{}}`)
	assertJSON(t, mustMatch(t, knowledge.Empty(), "x"),
		`{"explanation":"`+NoMatchMessage+`","source":"none","suggestions":[]}`)
}
