package transcript

import (
	"bytes"
	"encoding/json"
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// maxTranscriptChars is the length in characters past which a transcript is
// flagged as suspiciously large. The text is kept intact either way.
const maxTranscriptChars = 50000

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	inlineTagRe  = regexp.MustCompile(`<[^>]*>`)

	// startCueRe captures timed cues with an explicit start attribute
	startCueRe = regexp.MustCompile(`(?s)<text[^>]*\bstart="([0-9.]+)"[^>]*>(.*?)</text>`)

	// looseTagRe captures any text-bearing element regardless of attributes,
	// covering the v3 shape (<p>, <s>) and attribute-less <text> elements
	looseTagRe = regexp.MustCompile(`(?s)<(?:text|p|s)\b[^>]*>(.*?)</(?:text|p|s)>`)

	parserLogger = log.WithPrefix("transcript")
)

// ParseTimedText extracts plain text from a timedtext XML payload. The
// primary pass collects <text start="..."> cues ordered by start time. When
// no such cues match (the v3 shape, or a damaged payload), a looser
// tag-content scan runs, and as a last resort all markup is stripped from
// the raw payload unless it looks like XML or HTML metadata rather than
// captions. Returns "" when nothing usable is found, never an error.
func ParseTimedText(payload []byte) string {
	raw := string(bytes.TrimSpace(payload))
	if raw == "" {
		return ""
	}

	if text := parseStartCues(raw); text != "" {
		return text
	}
	if text := parseLooseTags(raw); text != "" {
		return text
	}
	return parseGenericText(raw)
}

// parseStartCues collects start-attributed cues and joins them in start-time
// order. Payloads occasionally deliver cues out of document order.
func parseStartCues(raw string) string {
	matches := startCueRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return ""
	}

	type cue struct {
		start float64
		text  string
	}
	cues := make([]cue, 0, len(matches))
	for _, m := range matches {
		start, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		cues = append(cues, cue{start: start, text: m[2]})
	}
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].start < cues[j].start })

	var sb strings.Builder
	for _, c := range cues {
		sb.WriteString(stripCueMarkup(c.text))
		sb.WriteByte(' ')
	}
	return normalize(sb.String())
}

// parseLooseTags collects the content of any text-bearing element in
// document order.
func parseLooseTags(raw string) string {
	matches := looseTagRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, m := range matches {
		sb.WriteString(stripCueMarkup(m[1]))
		sb.WriteByte(' ')
	}
	return normalize(sb.String())
}

// parseGenericText strips every tag from the payload and keeps whatever text
// remains. Fragments that are clearly XML or HTML metadata (error pages,
// bare declarations) are rejected instead of being surfaced as captions.
func parseGenericText(raw string) string {
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "doctype") || strings.Contains(lower, "xml version") || strings.HasPrefix(lower, "<html") {
		return ""
	}
	// a JSON body under an XML format label is a mislabeled payload, not text
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		return ""
	}
	return normalize(stripCueMarkup(raw))
}

// stripCueMarkup removes nested tags and decodes HTML entities in cue text.
func stripCueMarkup(s string) string {
	return html.UnescapeString(inlineTagRe.ReplaceAllString(s, " "))
}

// json3Payload is the json3 caption format. Most payloads carry events with
// utf8 segments; some older variants put whole lines in a flat text array
// whose elements are either plain strings or {text} objects.
type json3Payload struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
	Text []json.RawMessage `json:"text"`
}

// ParseJSON3 extracts plain text from a json3 caption payload. Returns ""
// on any structural mismatch, never an error.
func ParseJSON3(payload []byte) string {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return ""
	}

	var parsed json3Payload
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return ""
	}

	var sb strings.Builder
	for _, event := range parsed.Events {
		for _, seg := range event.Segs {
			if seg.UTF8 == "" || seg.UTF8 == "\n" {
				continue
			}
			sb.WriteString(seg.UTF8)
			sb.WriteByte(' ')
		}
	}

	if sb.Len() == 0 {
		for _, element := range parsed.Text {
			if line := flatTextElement(element); line != "" {
				sb.WriteString(line)
				sb.WriteByte(' ')
			}
		}
	}

	return normalize(sb.String())
}

// flatTextElement reads one element of the flat text array, which may be a
// plain string or a {text} object.
func flatTextElement(element json.RawMessage) string {
	var line string
	if err := json.Unmarshal(element, &line); err == nil {
		return line
	}

	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(element, &obj); err == nil {
		return obj.Text
	}
	return ""
}

// ParseVTT extracts plain text from a WebVTT payload. Cue timestamps, cue
// identifiers and NOTE/STYLE blocks are dropped; inline styling tags are
// stripped from the cue text. Returns "" for payloads that are not WebVTT,
// never an error.
func ParseVTT(payload []byte) string {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || looksLikeHTML(trimmed) {
		return ""
	}

	lines := strings.Split(string(trimmed), "\n")
	if !strings.HasPrefix(strings.TrimSpace(lines[0]), "WEBVTT") {
		return ""
	}

	var sb strings.Builder
	var lastLine string
	inBlockComment := false
	for i, raw := range lines {
		line := strings.TrimSpace(raw)

		if i == 0 {
			continue
		}
		if line == "" {
			inBlockComment = false
			continue
		}
		if strings.HasPrefix(line, "NOTE") || strings.HasPrefix(line, "STYLE") || strings.HasPrefix(line, "REGION") {
			inBlockComment = true
			continue
		}
		if inBlockComment {
			continue
		}
		if strings.Contains(line, "-->") {
			continue
		}
		if isCueIdentifier(line) {
			continue
		}

		text := strings.TrimSpace(inlineTagRe.ReplaceAllString(line, ""))
		if text == "" || text == lastLine {
			// rolling captions repeat the previous line
			continue
		}
		sb.WriteString(text)
		sb.WriteByte(' ')
		lastLine = text
	}

	return normalize(sb.String())
}

// isCueIdentifier reports whether a line is a bare numeric cue identifier.
func isCueIdentifier(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// looksLikeHTML detects error pages served in place of caption payloads.
func looksLikeHTML(payload []byte) bool {
	head := payload
	if len(head) > 256 {
		head = head[:256]
	}
	lower := bytes.ToLower(head)
	return bytes.Contains(lower, []byte("<!doctype")) || bytes.HasPrefix(lower, []byte("<html"))
}

// normalize collapses all whitespace runs to single spaces and trims the
// result. Suspiciously large transcripts are flagged in the log but never
// truncated.
func normalize(s string) string {
	out := strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if utf8.RuneCountInString(out) > maxTranscriptChars {
		parserLogger.Warn("transcript exceeds expected size, keeping full text", "chars", utf8.RuneCountInString(out))
	}
	return out
}
