package pipeline

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Helpers for the rich text coming back from the generation step. Model
// output is untrusted input: it is allowed to carry simple markup but must
// never carry script-capable content, and its [n] citations must resolve
// against the supplied source list only.

var (
	tagRe            = regexp.MustCompile(`<[a-zA-Z][\s\S]*?>`)
	scriptRe         = regexp.MustCompile(`(?is)<\s*(script|style|iframe|object|embed)\b[\s\S]*?<\s*/\s*(script|style|iframe|object|embed)\s*>`)
	strayScriptTagRe = regexp.MustCompile(`(?i)<\s*/?\s*(script|style|iframe|object|embed)\b[^>]*>`)
	eventAttrRe      = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	jsHrefRe         = regexp.MustCompile(`(?i)(href|src)\s*=\s*("javascript:[^"]*"|'javascript:[^']*')`)
	citationRe       = regexp.MustCompile(`\[(\d+)\]`)
	citationGroupRe  = regexp.MustCompile(`\[(\s*\d+(?:\s*[, ]\s*\d+)+\s*)\]`)
	codeFenceOpenRe  = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	codeFenceCloseRe = regexp.MustCompile("\\s*```$")
	jsonObjectRe     = regexp.MustCompile(`(?s)\{.*\}`)
)

// ensureHTML returns text as HTML: markup passes through, plain text is
// escaped and wrapped in paragraphs per line.
func ensureHTML(text string) string {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return ""
	}
	if tagRe.MatchString(stripped) {
		return stripped
	}
	var b strings.Builder
	for _, line := range strings.Split(stripped, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	if b.Len() == 0 {
		return "<p>" + html.EscapeString(stripped) + "</p>"
	}
	return b.String()
}

// sanitizeHTML neutralizes script-capable content while tolerating the
// simple formatting tags the generators are told to emit.
func sanitizeHTML(text string) string {
	out := scriptRe.ReplaceAllString(text, "")
	// Unpaired tags of the same set survive the block pass; an unclosed
	// <script src=...> still loads and executes.
	out = strayScriptTagRe.ReplaceAllString(out, "")
	out = eventAttrRe.ReplaceAllString(out, "")
	out = jsHrefRe.ReplaceAllString(out, `$1="#"`)
	return out
}

// expandReferenceGroups turns "[1, 2]" style groups into "[1][2]" so each
// citation can be linkified on its own.
func expandReferenceGroups(text string) string {
	return citationGroupRe.ReplaceAllStringFunc(text, func(match string) string {
		content := strings.Trim(match, "[]")
		fields := strings.FieldsFunc(content, func(r rune) bool { return r == ',' || r == ' ' })
		if len(fields) == 0 {
			return match
		}
		var b strings.Builder
		for _, num := range fields {
			b.WriteString("[")
			b.WriteString(num)
			b.WriteString("]")
		}
		return b.String()
	})
}

// linkifyCitations rewrites [n] markers into superscript links against the
// supplied sources. Out-of-range markers are left as-is; citations must
// never point at sources that were not provided.
func linkifyCitations(text string, sources []Source) string {
	if text == "" || len(sources) == 0 {
		return text
	}
	expanded := expandReferenceGroups(text)
	return citationRe.ReplaceAllStringFunc(expanded, func(match string) string {
		idx, err := strconv.Atoi(strings.Trim(match, "[]"))
		if err != nil || idx < 1 || idx > len(sources) {
			return match
		}
		url := sources[idx-1].URL
		if url == "" {
			return match
		}
		return fmt.Sprintf(`<sup><a href="%s" target="_blank" rel="noreferrer">[%d]</a></sup>`, html.EscapeString(url), idx)
	})
}

// normalizeRichText is the full pipeline applied to one model-authored
// rich-text field before it may cross into a result or document.
func normalizeRichText(text string, sources []Source) string {
	out := ensureHTML(text)
	if out == "" {
		return ""
	}
	return linkifyCitations(sanitizeHTML(out), sources)
}

// extractJSONPayload strips markdown fences and isolates the JSON object so
// decoding survives chatty model output.
func extractJSONPayload(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = codeFenceOpenRe.ReplaceAllString(cleaned, "")
		cleaned = codeFenceCloseRe.ReplaceAllString(cleaned, "")
	}
	if match := jsonObjectRe.FindString(cleaned); match != "" {
		return match
	}
	return cleaned
}
