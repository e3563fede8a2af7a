package sigma

import "testing"

func eventMap(m map[string]interface{}) Event {
	return EventFromMap(m)
}

func TestFieldMatcher_DefaultEqualityCaseInsensitive(t *testing.T) {
	fm, err := compileFieldMatcher("Image", Str("C:\\Windows\\System32\\CMD.EXE"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := eventMap(map[string]interface{}{"Image": "c:\\windows\\system32\\cmd.exe"})
	if !fm.Match(e) {
		t.Error("expected case-insensitive default equality to match")
	}
}

func TestFieldMatcher_Cased(t *testing.T) {
	fm, err := compileFieldMatcher("Image|cased", Str("CMD.EXE"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Match(eventMap(map[string]interface{}{"Image": "cmd.exe"})) {
		t.Error("cased matcher must not fold case")
	}
	if !fm.Match(eventMap(map[string]interface{}{"Image": "CMD.EXE"})) {
		t.Error("cased matcher should match an exact-case value")
	}
}

func TestFieldMatcher_Contains(t *testing.T) {
	fm, err := compileFieldMatcher("CommandLine|contains", Str("whoami"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fm.Match(eventMap(map[string]interface{}{"CommandLine": "cmd.exe /c whoami /all"})) {
		t.Error("expected contains to match")
	}
	if fm.Match(eventMap(map[string]interface{}{"CommandLine": "cmd.exe /c dir"})) {
		t.Error("did not expect contains to match")
	}
}

func TestFieldMatcher_StartsEndsWith(t *testing.T) {
	sw, _ := compileFieldMatcher("Image|startswith", Str("C:\\Windows\\"), false)
	ew, _ := compileFieldMatcher("Image|endswith", Str(".exe"), false)
	e := eventMap(map[string]interface{}{"Image": "c:\\windows\\system32\\cmd.exe"})
	if !sw.Match(e) {
		t.Error("expected startswith to match")
	}
	if !ew.Match(e) {
		t.Error("expected endswith to match")
	}
}

func TestFieldMatcher_Regex(t *testing.T) {
	fm, err := compileFieldMatcher("CommandLine|re", Str(`(?i)-enc(odedcommand)?\s+[A-Za-z0-9+/=]{20,}`), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fm.Match(eventMap(map[string]interface{}{"CommandLine": "powershell -enc SQBFAFgAIAAoAE4AZQB3AC0ATwBiAGoAZQBjAHQA"})) {
		t.Error("expected regex to match an encoded command line")
	}
	if fm.Match(eventMap(map[string]interface{}{"CommandLine": "powershell -File script.ps1"})) {
		t.Error("did not expect regex to match a plain command line")
	}
}

func TestFieldMatcher_CIDR(t *testing.T) {
	fm, err := compileFieldMatcher("DestinationIp|cidr", Str("10.0.0.0/8"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fm.Match(eventMap(map[string]interface{}{"DestinationIp": "10.1.2.3"})) {
		t.Error("expected 10.1.2.3 to be inside 10.0.0.0/8")
	}
	if fm.Match(eventMap(map[string]interface{}{"DestinationIp": "8.8.8.8"})) {
		t.Error("did not expect 8.8.8.8 to be inside 10.0.0.0/8")
	}
}

func TestFieldMatcher_InvalidCIDR(t *testing.T) {
	_, err := compileFieldMatcher("DestinationIp|cidr", Str("not-a-cidr"), false)
	if err == nil {
		t.Fatal("expected an error for a malformed CIDR needle")
	}
	if _, ok := err.(*InvalidCIDRError); !ok {
		t.Fatalf("expected *InvalidCIDRError, got %T", err)
	}
}

func TestFieldMatcher_Numeric(t *testing.T) {
	gt, _ := compileFieldMatcher("FileSize|gt", Int(1000), false)
	lte, _ := compileFieldMatcher("FileSize|lte", Int(1000), false)
	e := eventMap(map[string]interface{}{"FileSize": 1500})
	if !gt.Match(e) {
		t.Error("expected 1500 > 1000")
	}
	if lte.Match(e) {
		t.Error("did not expect 1500 <= 1000")
	}
}

func TestFieldMatcher_Exists(t *testing.T) {
	fm, err := compileFieldMatcher("ParentImage|exists", Bool(true), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fm.Match(eventMap(map[string]interface{}{"ParentImage": "cmd.exe"})) {
		t.Error("expected exists:true to match a present field")
	}
	if fm.Match(eventMap(map[string]interface{}{})) {
		t.Error("did not expect exists:true to match a missing field")
	}
}

func TestFieldMatcher_FieldRef(t *testing.T) {
	fm, err := compileFieldMatcher("ParentImage|fieldref", Str("Image"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fm.Match(eventMap(map[string]interface{}{"ParentImage": "cmd.exe", "Image": "cmd.exe"})) {
		t.Error("expected fieldref to match equal field values")
	}
	if fm.Match(eventMap(map[string]interface{}{"ParentImage": "cmd.exe", "Image": "powershell.exe"})) {
		t.Error("did not expect fieldref to match differing field values")
	}
}

func TestFieldMatcher_FieldRef_ReferencedSequence(t *testing.T) {
	fm, err := compileFieldMatcher("UserA|fieldref", Str("UserB"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := eventMap(map[string]interface{}{"UserA": "alice", "UserB": []interface{}{"alice", "bob"}})
	if !fm.Match(e) {
		t.Error("expected fieldref to match existentially against a sequence-valued referenced field")
	}
	e2 := eventMap(map[string]interface{}{"UserA": "carol", "UserB": []interface{}{"alice", "bob"}})
	if fm.Match(e2) {
		t.Error("did not expect fieldref to match when not present in the referenced sequence")
	}
}

func TestFieldMatcher_GlobWildcard(t *testing.T) {
	fm, err := compileFieldMatcher("Image", Str("*\\powershell.exe"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fm.Match(eventMap(map[string]interface{}{"Image": "c:\\windows\\system32\\powershell.exe"})) {
		t.Error("expected glob wildcard to match")
	}
}

func TestFieldMatcher_GlobWildcard_CaseFoldedByDefault(t *testing.T) {
	fm, err := compileFieldMatcher("Image", Str("*\\PowerShell.exe"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fm.Match(eventMap(map[string]interface{}{"Image": "c:\\windows\\system32\\powershell.exe"})) {
		t.Error("expected an uppercase glob pattern to match a lowercase value by default")
	}
}

func TestFieldMatcher_GlobWildcard_Cased(t *testing.T) {
	fm, err := compileFieldMatcher("Image|cased", Str("*\\PowerShell.exe"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Match(eventMap(map[string]interface{}{"Image": "c:\\windows\\system32\\powershell.exe"})) {
		t.Error("cased glob matcher must not fold case")
	}
	if !fm.Match(eventMap(map[string]interface{}{"Image": "c:\\windows\\system32\\PowerShell.exe"})) {
		t.Error("cased glob matcher should match an exact-case value")
	}
}

func TestFieldMatcher_ExistentialOverSequenceValue(t *testing.T) {
	fm, err := compileFieldMatcher("GrantedAccess", Str("0x1410"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := eventMap(map[string]interface{}{"GrantedAccess": []interface{}{"0x1010", "0x1410"}})
	if !fm.Match(e) {
		t.Error("expected any-of-sequence semantics to match a needle present in the list")
	}
}

func TestFieldMatcher_Negate(t *testing.T) {
	fm, err := compileFieldMatcher("Image", Str("cmd.exe"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Match(eventMap(map[string]interface{}{"Image": "cmd.exe"})) {
		t.Error("negated matcher should not match an equal value")
	}
	if !fm.Match(eventMap(map[string]interface{}{"Image": "powershell.exe"})) {
		t.Error("negated matcher should match an unequal value")
	}
}

func TestFieldMatcher_AllAggregator(t *testing.T) {
	fm, err := compileFieldMatcher("CommandLine|contains|all", Seq([]Value{Str("net"), Str("user")}), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fm.Match(eventMap(map[string]interface{}{"CommandLine": "net user administrator /active:yes"})) {
		t.Error("expected all-of-list to hold when both needles are present")
	}
	if fm.Match(eventMap(map[string]interface{}{"CommandLine": "net view"})) {
		t.Error("did not expect all-of-list to hold when only one needle is present")
	}
}
