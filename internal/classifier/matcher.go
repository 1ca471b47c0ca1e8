package classifier

import (
	"regexp"
	"strings"
)

// MerchantMatcher resolves a merchant name from a description, or reports
// that it has no opinion.
type MerchantMatcher func(description string) (string, bool)

// firstMatch applies the matchers in order and returns the first result.
func firstMatch(description string, matchers []MerchantMatcher) (string, bool) {
	for _, m := range matchers {
		if name, ok := m(description); ok {
			return name, true
		}
	}
	return "", false
}

// aliasMatcher looks up substrings of the upper-cased description.
func aliasMatcher(aliases []MerchantAlias) MerchantMatcher {
	return func(description string) (string, bool) {
		upper := strings.ToUpper(description)
		for _, a := range aliases {
			if strings.Contains(upper, strings.ToUpper(a.Match)) {
				return a.Name, true
			}
		}
		return "", false
	}
}

// captureMatcher returns the first word captured by re.
func captureMatcher(re *regexp.Regexp) MerchantMatcher {
	return func(description string) (string, bool) {
		m := re.FindStringSubmatch(description)
		if m == nil {
			return "", false
		}
		words := strings.Fields(m[1])
		if len(words) == 0 {
			return "", false
		}
		return words[0], true
	}
}

// entityMatcher finds a known payee name anywhere in the description.
func entityMatcher(entities []string) MerchantMatcher {
	return func(description string) (string, bool) {
		lower := strings.ToLower(description)
		for _, e := range entities {
			if strings.Contains(lower, strings.ToLower(e)) {
				return e, true
			}
		}
		return "", false
	}
}

// firstWord uses the first token of the description.
func firstWord(description string) (string, bool) {
	words := strings.Fields(description)
	if len(words) == 0 {
		return "", false
	}
	return words[0], true
}
