// Package taxonomy recognizes the MITRE ATT&CK-shaped `tags:` a Sigma rule
// declares and flags the ones that don't match a known shape. Adapted from
// the gateway's weakness-catalog taxonomy package: where that package
// loaded a directory tree of kingdoms/categories/entries and matched
// command findings against them, this package matches rule tags against
// a small set of recognized prefixes and ATT&CK tactic names — no
// directory to load, no I/O, and
// never a build-blocking error (§4.5's builder errors don't include
// unrecognized tags; this is advisory only, surfaced on Rule.Metadata().
package taxonomy

import "strings"

// recognizedPrefixes are the tag shapes upstream Sigma rules commonly use.
// attack.txxxx / attack.txxxx.yyy name ATT&CK techniques and sub-techniques,
// attack.txxxx / attack.gxxxx / attack.sxxxx name techniques/groups/software,
// attack.ta00xx names tactics, car. and detection. name analytics
// cross-references.
var recognizedPrefixes = []string{
	"attack.t",
	"attack.g",
	"attack.s",
	"attack.ta",
	"car.",
	"detection.",
}

// ComplianceMapping links a recognized ATT&CK tactic tag to the compliance
// frameworks that commonly cite it, mirroring the gateway's
// ComplianceStandard cross-reference idea at a scale this library needs.
var ComplianceMapping = map[string][]string{
	"attack.exfiltration":        {"NIST-800-53:SC-7", "CIS:13"},
	"attack.persistence":         {"NIST-800-53:CM-7", "CIS:4"},
	"attack.privilege-escalation": {"NIST-800-53:AC-6", "CIS:5"},
	"attack.defense-evasion":     {"NIST-800-53:SI-4", "CIS:8"},
	"attack.initial-access":      {"NIST-800-53:SC-7", "CIS:12"},
}

// Validate returns the subset of tags that don't match any recognized
// shape, in input order.
func Validate(tags []string) []string {
	var warnings []string
	for _, tag := range tags {
		if !isRecognized(tag) {
			warnings = append(warnings, tag)
		}
	}
	return warnings
}

// knownTactics are the ATT&CK tactic names Sigma rules tag as attack.<tactic>.
var knownTactics = map[string]bool{
	"attack.reconnaissance": true, "attack.resource-development": true, "attack.initial-access": true,
	"attack.execution": true, "attack.persistence": true, "attack.privilege-escalation": true,
	"attack.defense-evasion": true, "attack.credential-access": true, "attack.discovery": true,
	"attack.lateral-movement": true, "attack.collection": true, "attack.command-and-control": true,
	"attack.exfiltration": true, "attack.impact": true,
}

func isRecognized(tag string) bool {
	lower := strings.ToLower(tag)
	if knownTactics[lower] {
		return true
	}
	for _, prefix := range recognizedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	_, ok := ComplianceMapping[lower]
	return ok
}

// ComplianceFor returns the compliance-framework references associated
// with a recognized tactic-shaped tag, or nil if there's no mapping.
func ComplianceFor(tag string) []string {
	return ComplianceMapping[strings.ToLower(tag)]
}
