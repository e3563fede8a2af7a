package sigma

import "testing"

const sampleRuleYAML = `
title: Suspicious Whoami Execution
id: 11111111-2222-3333-4444-555555555555
status: experimental
level: medium
description: Detects whoami run via cmd.exe
author: test
tags:
    - attack.discovery
    - attack.t1033
    - made-up-tag
logsource:
    category: process_creation
    product: windows
detection:
    selection_image:
        Image|endswith: '\cmd.exe'
    selection_cmdline:
        CommandLine|contains: whoami
    filter_parent:
        ParentImage|endswith: '\explorer.exe'
    condition: selection_image and selection_cmdline and not filter_parent
`

func buildSampleRule(t *testing.T) *Rule {
	t.Helper()
	rule, err := RuleFromYAML([]byte(sampleRuleYAML))
	if err != nil {
		t.Fatalf("unexpected error building rule: %v", err)
	}
	return rule
}

func TestRuleFromYAML_BuildsMetadata(t *testing.T) {
	rule := buildSampleRule(t)
	if rule.Title() != "Suspicious Whoami Execution" {
		t.Errorf("Title() = %q", rule.Title())
	}
	md := rule.Metadata()
	if md.ID != "11111111-2222-3333-4444-555555555555" {
		t.Errorf("ID = %q", md.ID)
	}
	if md.Level != "medium" {
		t.Errorf("Level = %q", md.Level)
	}
	if len(md.TagWarnings) != 1 || md.TagWarnings[0] != "made-up-tag" {
		t.Errorf("TagWarnings = %v, want exactly [\"made-up-tag\"]", md.TagWarnings)
	}
	if rule.Logsource().Category() != "process_creation" {
		t.Errorf("Logsource().Category() = %q", rule.Logsource().Category())
	}
}

func TestRule_IsMatch(t *testing.T) {
	rule := buildSampleRule(t)

	matching := eventMap(map[string]interface{}{
		"Image":       "c:\\windows\\system32\\cmd.exe",
		"CommandLine": "cmd.exe /c whoami /all",
		"ParentImage": "c:\\windows\\system32\\services.exe",
	})
	if !rule.IsMatch(matching) {
		t.Error("expected the rule to match")
	}

	filtered := eventMap(map[string]interface{}{
		"Image":       "c:\\windows\\system32\\cmd.exe",
		"CommandLine": "cmd.exe /c whoami /all",
		"ParentImage": "c:\\windows\\explorer.exe",
	})
	if rule.IsMatch(filtered) {
		t.Error("expected the `not filter_parent` clause to exclude an explorer.exe-parented event")
	}

	unrelated := eventMap(map[string]interface{}{
		"Image":       "c:\\windows\\system32\\notepad.exe",
		"CommandLine": "notepad.exe readme.txt",
		"ParentImage": "c:\\windows\\system32\\services.exe",
	})
	if rule.IsMatch(unrelated) {
		t.Error("did not expect an unrelated event to match")
	}
}

func TestRuleFromYAML_MissingTitle(t *testing.T) {
	_, err := RuleFromYAML([]byte("detection:\n  condition: sel\n  sel:\n    Image: cmd.exe\n"))
	if err == nil {
		t.Fatal("expected an error for a missing title")
	}
	if _, ok := err.(*MissingFieldError); !ok {
		t.Fatalf("expected *MissingFieldError, got %T", err)
	}
}

func TestRuleFromYAML_ReservedSelectionName(t *testing.T) {
	_, err := RuleFromYAML([]byte("title: t\ndetection:\n  condition: timeframe\n  timeframe:\n    Image: cmd.exe\n"))
	if err == nil {
		t.Fatal("expected an error for a reserved selection name")
	}
	if _, ok := err.(*ReservedNameError); !ok {
		t.Fatalf("expected *ReservedNameError, got %T", err)
	}
}

func TestRuleFromYAML_UnknownSelectionInCondition(t *testing.T) {
	_, err := RuleFromYAML([]byte("title: t\ndetection:\n  condition: does_not_exist\n  sel:\n    Image: cmd.exe\n"))
	if err == nil {
		t.Fatal("expected an error for a condition referencing an unknown selection")
	}
	if _, ok := err.(*UnknownSelectionError); !ok {
		t.Fatalf("expected *UnknownSelectionError, got %T", err)
	}
}

func TestRuleFromJSON_EquivalentToYAML(t *testing.T) {
	jsonText := `{
		"title": "JSON rule",
		"detection": {
			"sel": {"Image": "cmd.exe"},
			"condition": "sel"
		}
	}`
	rule, err := RuleFromJSON([]byte(jsonText))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rule.IsMatch(eventMap(map[string]interface{}{"Image": "cmd.exe"})) {
		t.Error("expected the JSON-built rule to match")
	}
}
