package analyzer

import "strings"

// Stem reduces an English word to its Porter stem so that "terminate",
// "terminated" and "termination" share one term. Words with non-ASCII
// letters are returned unchanged.
func Stem(word string) string {
	if len(word) < 3 || !isASCII(word) {
		return word
	}
	word = strings.ToLower(word)
	if strings.ContainsRune(word, '\'') {
		word = strings.TrimSuffix(word, "'s")
	}

	word = step1a(word)
	word = step1b(word)
	word = step1c(word)
	word = replaceSuffix(word, step2Rules, 0)
	word = replaceSuffix(word, step3Rules, 0)
	word = step4(word)
	word = step5(word)
	return word
}

type suffixRule struct {
	suffix, replacement string
}

// Rules are ordered so the longest matching suffix wins.
var step2Rules = []suffixRule{
	{"ational", "ate"}, {"tional", "tion"}, {"enci", "ence"}, {"anci", "ance"},
	{"izer", "ize"}, {"abli", "able"}, {"alli", "al"}, {"entli", "ent"},
	{"eli", "e"}, {"ousli", "ous"}, {"ization", "ize"}, {"ation", "ate"},
	{"ator", "ate"}, {"alism", "al"}, {"iveness", "ive"}, {"fulness", "ful"},
	{"ousness", "ous"}, {"aliti", "al"}, {"iviti", "ive"}, {"biliti", "ble"},
}

var step3Rules = []suffixRule{
	{"icate", "ic"}, {"ative", ""}, {"alize", "al"}, {"iciti", "ic"},
	{"ical", "ic"}, {"ful", ""}, {"ness", ""},
}

var step4Suffixes = []string{
	"ement", "ance", "ence", "able", "ible", "ment", "ant", "ent",
	"ism", "ate", "iti", "ous", "ive", "ize", "ion", "al", "er", "ic", "ou",
}

// replaceSuffix applies the longest rule whose suffix matches and whose
// remaining stem has measure above minMeasure.
func replaceSuffix(word string, rules []suffixRule, minMeasure int) string {
	best := -1
	for i, r := range rules {
		if strings.HasSuffix(word, r.suffix) && (best < 0 || len(r.suffix) > len(rules[best].suffix)) {
			best = i
		}
	}
	if best < 0 {
		return word
	}
	stem := word[:len(word)-len(rules[best].suffix)]
	if measure(stem) > minMeasure {
		return stem + rules[best].replacement
	}
	return word
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func isConsonant(word string, i int) bool {
	switch word[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		return i == 0 || !isConsonant(word, i-1)
	}
	return true
}

// measure counts vowel-consonant sequences in word.
func measure(word string) int {
	n, m, i := len(word), 0, 0
	for i < n && isConsonant(word, i) {
		i++
	}
	for i < n {
		for i < n && !isConsonant(word, i) {
			i++
		}
		if i >= n {
			break
		}
		m++
		for i < n && isConsonant(word, i) {
			i++
		}
	}
	return m
}

func hasVowel(word string) bool {
	for i := 0; i < len(word); i++ {
		if !isConsonant(word, i) {
			return true
		}
	}
	return false
}

func endsDoubleConsonant(word string) bool {
	n := len(word)
	return n >= 2 && word[n-1] == word[n-2] && isConsonant(word, n-1)
}

func endsCVC(word string) bool {
	n := len(word)
	if n < 3 || !isConsonant(word, n-3) || isConsonant(word, n-2) || !isConsonant(word, n-1) {
		return false
	}
	c := word[n-1]
	return c != 'w' && c != 'x' && c != 'y'
}

func step1a(word string) string {
	switch {
	case strings.HasSuffix(word, "sses"), strings.HasSuffix(word, "ies"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ss"):
		return word
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}

func step1b(word string) string {
	if strings.HasSuffix(word, "eed") {
		if measure(word[:len(word)-3]) > 0 {
			return word[:len(word)-1]
		}
		return word
	}

	var stem string
	switch {
	case strings.HasSuffix(word, "ed"):
		stem = word[:len(word)-2]
	case strings.HasSuffix(word, "ing"):
		stem = word[:len(word)-3]
	default:
		return word
	}
	if !hasVowel(stem) {
		return word
	}

	switch {
	case strings.HasSuffix(stem, "at"), strings.HasSuffix(stem, "bl"), strings.HasSuffix(stem, "iz"):
		return stem + "e"
	case endsDoubleConsonant(stem):
		if c := stem[len(stem)-1]; c != 'l' && c != 's' && c != 'z' {
			return stem[:len(stem)-1]
		}
	case measure(stem) == 1 && endsCVC(stem):
		return stem + "e"
	}
	return stem
}

func step1c(word string) string {
	if strings.HasSuffix(word, "y") && hasVowel(word[:len(word)-1]) {
		return word[:len(word)-1] + "i"
	}
	return word
}

func step4(word string) string {
	for _, suffix := range step4Suffixes {
		if !strings.HasSuffix(word, suffix) {
			continue
		}
		stem := word[:len(word)-len(suffix)]
		if measure(stem) <= 1 {
			return word
		}
		if suffix == "ion" && !strings.HasSuffix(stem, "s") && !strings.HasSuffix(stem, "t") {
			return word
		}
		return stem
	}
	return word
}

func step5(word string) string {
	if strings.HasSuffix(word, "e") {
		stem := word[:len(word)-1]
		if m := measure(stem); m > 1 || (m == 1 && !endsCVC(stem)) {
			word = stem
		}
	}
	if measure(word) > 1 && endsDoubleConsonant(word) && strings.HasSuffix(word, "l") {
		return word[:len(word)-1]
	}
	return word
}
