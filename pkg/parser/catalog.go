package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/seqflow/pkg/domain"
)

// ident matches an entity token in a connection or declaration line.
const ident = `[\p{L}\p{N}_]+`

var identRe = regexp.MustCompile(`^` + ident + `$`)

// ValidID reports whether id can be written as an entity token.
func ValidID(id string) bool {
	return identRe.MatchString(id)
}

// Marker describes one arrow form of the catalog.
type Marker struct {
	Arrow string
	Kind  domain.ConnectionKind
}

type markerRule struct {
	Marker
	labeled *regexp.Regexp
	bare    *regexp.Regexp
}

// newMarkerRule compiles both forms of an arrow. before and after are the
// whitespace requirements around the arrow token.
func newMarkerRule(arrow string, kind domain.ConnectionKind, before, after string) markerRule {
	core := fmt.Sprintf(`^(%s)%s%s%s(%s)`, ident, before, regexp.QuoteMeta(arrow), after, ident)
	return markerRule{
		Marker:  Marker{Arrow: arrow, Kind: kind},
		labeled: regexp.MustCompile(core + `\s*:(.*)$`),
		bare:    regexp.MustCompile(core + `\s*$`),
	}
}

// markerRules is the connection catalog in priority order.
// Longer tokens come before their prefixes.
var markerRules = []markerRule{
	newMarkerRule("<<-", domain.ConnReverseDouble, `\s*`, `\s*`),
	newMarkerRule("->>", domain.ConnDouble, `\s*`, `\s*`),
	newMarkerRule("<--", domain.ConnReverseDashed, `\s*`, `\s*`),
	newMarkerRule("-->", domain.ConnDashed, `\s*`, `\s*`),
	newMarkerRule("<..", domain.ConnReverseDotted, `\s*`, `\s*`),
	newMarkerRule("..>", domain.ConnDotted, `\s*`, `\s*`),
	newMarkerRule("==>", domain.ConnParallel, `\s*`, `\s*`),
	newMarkerRule("o->", domain.ConnCircleStart, `\s+`, `\s*`),
	newMarkerRule("->o", domain.ConnCircleEnd, `\s*`, `\s+`),
	newMarkerRule("->x", domain.ConnBreak, `\s*`, `\s+`),
	newMarkerRule("-x", domain.ConnBreak, `\s*`, `\s+`),
	newMarkerRule("<-", domain.ConnReverseSolid, `\s*`, `\s*`),
	newMarkerRule("->", domain.ConnSolid, `\s*`, `\s*`),
	newMarkerRule("..", domain.ConnDottedLine, `\s*`, `\s*`),
}

// Markers returns the connection catalog in the order it is applied.
func Markers() []Marker {
	out := make([]Marker, len(markerRules))
	for i, r := range markerRules {
		out[i] = r.Marker
	}
	return out
}

// connectionMatch is the textual result of a catalog hit.
type connectionMatch struct {
	left, right string
	label       string
	marker      Marker
}

// matchConnection tries every marker, labeled form first.
func matchConnection(line string) (connectionMatch, bool) {
	for _, r := range markerRules {
		if m := r.labeled.FindStringSubmatch(line); m != nil {
			return connectionMatch{left: m[1], right: m[2], label: strings.TrimSpace(m[3]), marker: r.Marker}, true
		}
		if m := r.bare.FindStringSubmatch(line); m != nil {
			return connectionMatch{left: m[1], right: m[2], marker: r.Marker}, true
		}
	}
	return connectionMatch{}, false
}

// declarationForm extracts (id, displayName) from a declaration match.
type declarationForm struct {
	re      *regexp.Regexp
	extract func(m []string) (id, name string)
}

type declarationRule struct {
	kind  domain.EntityKind
	forms []declarationForm
}

func newDeclarationRule(kind domain.EntityKind) declarationRule {
	kw := fmt.Sprintf(`^(?i:%s)\s+`, kind)
	return declarationRule{
		kind: kind,
		forms: []declarationForm{
			// actor "User Name" as U
			{
				re:      regexp.MustCompile(kw + `"([^"]+)"\s+as\s+(` + ident + `)(?:\s.*)?$`),
				extract: func(m []string) (string, string) { return m[2], m[1] },
			},
			// actor U as "User Name"
			{
				re:      regexp.MustCompile(kw + `(` + ident + `)\s+as\s+"([^"]+)"(?:\s.*)?$`),
				extract: func(m []string) (string, string) { return m[1], m[2] },
			},
			// actor LongName as L
			{
				re:      regexp.MustCompile(kw + `(` + ident + `)\s+as\s+(` + ident + `)(?:\s.*)?$`),
				extract: func(m []string) (string, string) { return m[2], m[1] },
			},
			// actor "User"
			{
				re:      regexp.MustCompile(kw + `"([^"]+)"\s*$`),
				extract: func(m []string) (string, string) { return m[1], m[1] },
			},
			// actor U
			{
				re:      regexp.MustCompile(kw + `(` + ident + `)(?:\s.*)?$`),
				extract: func(m []string) (string, string) { return m[1], "" },
			},
		},
	}
}

var declarationRules = func() []declarationRule {
	rules := make([]declarationRule, 0, len(domain.EntityKinds))
	for _, k := range domain.EntityKinds {
		rules = append(rules, newDeclarationRule(k))
	}
	return rules
}()

type declarationMatch struct {
	id, name string
	kind     domain.EntityKind
}

func matchDeclaration(line string) (declarationMatch, bool) {
	for _, r := range declarationRules {
		for _, f := range r.forms {
			if m := f.re.FindStringSubmatch(line); m != nil {
				id, name := f.extract(m)
				return declarationMatch{id: id, name: name, kind: r.kind}, true
			}
		}
	}
	return declarationMatch{}, false
}

var (
	noteRe = regexp.MustCompile(`(?is)^note\s+(left of|right of|over)\s+(` + ident + `)(?:\s*,\s*(` + ident + `))?\s*:(.*)$`)
	// noteOpenRe starts a multi-line note that runs until "end note".
	noteOpenRe   = regexp.MustCompile(`(?i)^note\s+(left of|right of|over)\s+(` + ident + `)(?:\s*,\s*(` + ident + `))?\s*$`)
	noteCloseRe  = regexp.MustCompile(`(?i)^end\s*note$`)
	activationRe = regexp.MustCompile(`(?i)^(activate|deactivate)\s+(` + ident + `)\s*$`)
)

type noteMatch struct {
	note domain.Note
}

func matchNote(line string) (noteMatch, bool) {
	m := noteRe.FindStringSubmatch(line)
	if m == nil {
		return noteMatch{}, false
	}
	targets := []string{m[2]}
	if m[3] != "" {
		targets = append(targets, m[3])
	}
	return noteMatch{note: domain.Note{
		Placement: domain.NotePlacement(strings.ToLower(m[1])),
		Targets:   targets,
		Text:      strings.TrimSpace(m[4]),
	}}, true
}

func matchActivation(line string) (domain.CommandVerb, string, bool) {
	m := activationRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return domain.CommandVerb(strings.ToLower(m[1])), m[2], true
}

// blockMarkers open or close a diagram block and carry no content.
var blockMarkers = []string{"@startuml", "@enduml", "@startseq", "@endseq", "sequencediagram"}

// commentPrefixes start a line that is ignored entirely.
var commentPrefixes = []string{"'", "//", "#", "%%"}

func isSkippable(line string) bool {
	if line == "" {
		return true
	}
	lower := strings.ToLower(line)
	for _, m := range blockMarkers {
		if strings.HasPrefix(lower, m) {
			return true
		}
	}
	for _, p := range commentPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
