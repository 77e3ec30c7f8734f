package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Inline markup patterns. They never cross a line break so that the
// line-level passes below cannot create new matches by removing lines.
var (
	// imageRegex matches markdown image embeds: ![alt](src).
	imageRegex = regexp.MustCompile(`!\[[^\n]*?\]\([^\n]*?\)`)

	// linkRegex matches markdown links [text](href) with non-empty text.
	linkRegex = regexp.MustCompile(`\[([^\]\n]+)\]\([^)\n]*\)`)

	// bareURLRegex matches absolute URLs and www. hosts up to the next space.
	// A scheme with nothing after it is removed as well.
	bareURLRegex = regexp.MustCompile(`https?://\S*|www\.\S+`)

	// emptyBracketRegex matches () and [] left behind by the passes above.
	emptyBracketRegex = regexp.MustCompile(`\([ \t]*\)|\[[ \t]*\]`)

	// decorationLineRegex matches lines made only of whitespace, '*' or '#'.
	// Whitespace is every rune unicode.IsSpace reports except '\n', so the
	// final trim can never turn a kept line into a decoration line.
	decorationLineRegex = regexp.MustCompile(`(?m)^[\t\v\f\x{85}\p{Z}*#]+$`)

	// blankRunRegex matches a line break followed by any number of blank lines.
	blankRunRegex = regexp.MustCompile(`\n[\t\v\f\x{85}\p{Z}\n]*\n`)

	// spaceRunRegex matches two or more consecutive spaces.
	spaceRunRegex = regexp.MustCompile(` {2,}`)
)

// minDedupRunes is the length below which a line is exempt from dedup.
// Single characters (list markers, punctuation) legitimately repeat.
const minDedupRunes = 2

// Normalize cleans raw crawled markdown into plain text.
//
// The passes run in a fixed order:
//  1. strip image embeds
//  2. collapse links to their text
//  3. remove bare URLs
//  4. remove empty () and [] left behind
//  5. blank lines made only of whitespace, '*' or '#'
//  6. drop repeated lines (lines shorter than two characters are kept)
//  7. collapse blank-line runs to one blank line and space runs to one space
//  8. trim the result
//
// Steps 1 to 4 are repeated until the text stops changing, so removing an
// empty bracket can never expose a link for a later call to collapse.
// The text is NFC-composed before and after them, since a removal can join
// a base letter to a combining mark. Invalid UTF-8 becomes U+FFFD.
// Normalize never fails; it is idempotent.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := norm.NFC.String(strings.ToValidUTF8(raw, "\uFFFD"))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = norm.NFC.String(stripInlineMarkup(text))
	text = decorationLineRegex.ReplaceAllString(text, "")
	text = dedupLines(text)
	text = blankRunRegex.ReplaceAllString(text, "\n\n")
	text = spaceRunRegex.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// stripInlineMarkup applies the inline passes until a fixpoint. Every
// productive pass strictly shortens the text, so the loop terminates.
func stripInlineMarkup(text string) string {
	for {
		next := imageRegex.ReplaceAllString(text, "")
		next = linkRegex.ReplaceAllString(next, "$1")
		next = bareURLRegex.ReplaceAllString(next, "")
		next = emptyBracketRegex.ReplaceAllString(next, "")
		if next == text {
			return text
		}
		text = next
	}
}

// dedupLines keeps the first occurrence of every line.
//
// Lines are compared by their trimmed content with space runs collapsed,
// which is what they will look like after step 7. Trailing whitespace,
// Unicode spaces included, is removed from every kept line.
func dedupLines(text string) string {
	lines := strings.Split(text, "\n")
	seen := make(map[string]struct{}, len(lines))
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		key := spaceRunRegex.ReplaceAllString(strings.TrimSpace(line), " ")
		if utf8.RuneCountInString(key) < minDedupRunes {
			kept = append(kept, strings.TrimRightFunc(line, unicode.IsSpace))
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, strings.TrimRightFunc(line, unicode.IsSpace))
	}

	return strings.Join(kept, "\n")
}
