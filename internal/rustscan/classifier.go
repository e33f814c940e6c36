package rustscan

import m "tracefix.dev/pkg/tracefix/internal/model"

// attribute is one parsed #[...] group. path holds the ::-separated
// identifiers before the first argument token; args the tokens after.
type attribute struct {
	span  m.SourceSpan
	path  []string
	args  []Token
	inner bool
}

func (a attribute) lastSegment() string {
	if len(a.path) == 0 {
		return ""
	}

	return a.path[len(a.path)-1]
}

// findMarker returns the first attribute whose path ends in `instrument`.
// This matches #[tracing::instrument(...)], the bare #[instrument] form and
// #[log_instrument::instrument] alike.
func findMarker(attrs []attribute) *attribute {
	for i := range attrs {
		if attrs[i].lastSegment() == "instrument" {
			return &attrs[i]
		}
	}

	return nil
}

// hasTestAttribute reports whether the attributes mark a test case. Paths
// ending in `test` cover #[test] and runtime variants like #[tokio::test];
// `proof` covers #[kani::proof].
func hasTestAttribute(attrs []attribute) bool {
	for _, a := range attrs {
		switch a.lastSegment() {
		case "test", "proof":
			return true
		}
	}

	return false
}

// hasSkipAttribute reports whether the function opted out via
// #[tracefix_skip].
func hasSkipAttribute(attrs []attribute) bool {
	for _, a := range attrs {
		if a.lastSegment() == "tracefix_skip" {
			return true
		}
	}

	return false
}

// hasCfgTest reports whether the attributes gate a block behind cfg(test).
func hasCfgTest(attrs []attribute) bool {
	for _, a := range attrs {
		if len(a.path) != 1 || a.path[0] != "cfg" {
			continue
		}

		if cfgPredicateEnablesTest(a.args) {
			return true
		}
	}

	return false
}

// cfgPredicateEnablesTest scans the cfg argument tokens for a `test` ident
// that is not negated: cfg(test) and cfg(all(test, ...)) count,
// cfg(not(test)) keeps the block in the production build and does not.
func cfgPredicateEnablesTest(args []Token) bool {
	var groups []string

	pending := ""

	for _, t := range args {
		switch {
		case t.Kind == TokenIdent:
			if t.Text == "test" && !negated(groups) {
				return true
			}

			pending = t.Text
		case t.Kind == TokenPunct && t.Text == "(":
			groups = append(groups, pending)
			pending = ""
		case t.Kind == TokenPunct && t.Text == ")":
			if len(groups) > 0 {
				groups = groups[:len(groups)-1]
			}
		default:
			pending = ""
		}
	}

	return false
}

func negated(groups []string) bool {
	for _, name := range groups {
		if name == "not" {
			return true
		}
	}

	return false
}
