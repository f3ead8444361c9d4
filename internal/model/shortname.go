package model

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const shortNamePrefix = "aig"

var yearWord = regexp.MustCompile(`^\d{4}$`)

// fillerWords are skipped when building a short name acronym.
var fillerWords = makeSet(
	"in", "on", "for", "the", "of", "and", "day", "week", "month", "year", "to",
	"a", "an", "with", "by", "&", "at", "from", "as", "is", "that", "this",
	"these", "those", "it", "be", "are", "was", "were", "but", "or", "not", "so",
	"if", "then", "than", "too", "very", "just", "into", "onto", "over", "under",
	"above", "below", "about", "after", "before", "between", "during", "within",
	"without", "along", "across", "behind", "beyond", "despite", "except",
	"inside", "outside", "toward", "upon", "via", "up", "down", "off", "out",
	"such", "more", "most", "some", "any", "each", "every", "either", "neither",
	"few", "many", "much", "several", "all", "both", "one", "two", "three",
	"four", "five", "six", "seven", "eight", "nine", "ten", "first", "second",
	"third", "next", "last", "same", "other", "another", "different", "new",
	"old", "good", "bad", "great", "small", "large", "big", "little", "long",
	"short", "high", "low", "young", "early", "late", "right", "left", "true",
	"false", "real", "sure", "clear", "easy", "hard", "simple", "complex",
	"strong", "weak", "fast", "slow", "quick", "slowly", "quickly", "happy",
	"sad", "angry", "calm", "bright", "dark", "light", "heavy", "soft", "warm",
	"cold", "hot", "cool", "wet", "dry", "clean", "dirty", "rich", "poor",
	"famous", "unknown", "important", "unimportant", "interesting", "boring",
	"funny", "serious", "-", "_", ",", ".", "!", "?", "'", "\"", ":", ";", "(",
	")", "[", "]", "{", "}", "/", "\\", "|", "@", "#", "$", "%", "^", "*", "+",
	"=", "<", ">", "~", "`",
)

func makeSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// ShortName builds an event code such as "aigicc2025" from the initials of
// the significant words in name. The prefix itself, filler words and
// four-digit years are skipped. A blank name yields "".
func ShortName(name string, year int) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}

	var acronym strings.Builder
	for _, w := range words {
		lw := strings.ToLower(w)
		if lw == shortNamePrefix || yearWord.MatchString(w) {
			continue
		}
		if _, filler := fillerWords[lw]; filler {
			continue
		}
		r, _ := utf8.DecodeRuneInString(w)
		acronym.WriteRune(unicode.ToLower(r))
	}

	return shortNamePrefix + acronym.String() + strconv.Itoa(year)
}
