package dialect

import (
	"fmt"
	"regexp"
	"strings"
)

// rule pairs a compiled pattern with a human-readable description for error
// messages.
type rule struct {
	re   *regexp.Regexp
	desc string
}

func keywordRule(keyword string) rule {
	return rule{
		re:   regexp.MustCompile(`(?i)(?:^|[^a-zA-Z_])` + keyword + `(?:[^a-zA-Z_]|$)`),
		desc: keyword,
	}
}

func patternRule(pattern, desc string) rule {
	return rule{re: regexp.MustCompile(pattern), desc: desc}
}

// commonKeywordRules are DML/DDL keywords blocked for every dialect. They
// are evaluated against the stripped SQL so quoted content cannot trigger
// them.
var commonKeywordRules = []rule{
	keywordRule("INSERT"),
	keywordRule("UPDATE"),
	keywordRule("DELETE"),
	keywordRule("DROP"),
	keywordRule("CREATE"),
	keywordRule("ALTER"),
	keywordRule("TRUNCATE"),
	keywordRule("GRANT"),
	keywordRule("REVOKE"),
}

var setStatementRule = patternRule(`(?i)(?:^|;)\s*SET\b`, "SET")

// allowedPrefixes are the statement forms the query command accepts.
var allowedPrefixes = []string{"SELECT ", "SHOW ", "DESCRIBE ", "DESC ", "EXPLAIN "}

// validateCommon runs the dialect-independent read-only checks. sqlQuery is
// the original text; cleaned has strings and comments removed.
func validateCommon(sqlQuery, cleaned string) error {
	trimmed := strings.TrimSpace(sqlQuery)
	if trimmed == "" {
		return fmt.Errorf("empty query")
	}

	upper := strings.ToUpper(trimmed)
	allowed := false
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(upper, prefix) || upper == strings.TrimSpace(prefix) {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("only SELECT, SHOW, DESCRIBE, and EXPLAIN queries are allowed")
	}

	if idx := strings.Index(cleaned, ";"); idx != -1 {
		if rest := strings.TrimSpace(cleaned[idx+1:]); rest != "" {
			return fmt.Errorf("multiple statements are not allowed")
		}
	}

	for _, r := range commonKeywordRules {
		if r.re.MatchString(cleaned) {
			return fmt.Errorf("query contains forbidden keyword: %s", r.desc)
		}
	}

	if setStatementRule.re.MatchString(cleaned) {
		return fmt.Errorf("SET statements are not allowed")
	}

	return nil
}

// checkRules applies dialect-specific rules against the given text.
func checkRules(text string, rules []rule, what string) error {
	for _, r := range rules {
		if r.re.MatchString(text) {
			return fmt.Errorf("query contains forbidden %s: %s", what, r.desc)
		}
	}
	return nil
}
