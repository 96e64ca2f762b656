package template

import (
	"regexp"
	"strings"
)

// SMSMaxLength is the single-segment GSM-7 limit enforced on SMS bodies.
const SMSMaxLength = 160

var (
	placeholderRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)
	tagRegex         = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// htmlEntities covers the five entities that show up in authored notification
// templates. Anything more exotic passes through untouched.
var htmlEntities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// Render substitutes `{{key}}` placeholders with values from vars.
// Placeholders without a matching key are left verbatim, which keeps
// rendering total: authored templates may intentionally be partial.
func Render(tmpl string, vars map[string]string) string {
	if tmpl == "" || len(vars) == 0 {
		return tmpl
	}
	return placeholderRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := placeholderRegex.FindStringSubmatch(match)[1]
		if val, ok := vars[key]; ok {
			return val
		}
		return match
	})
}

// HTMLToText derives a plain-text fallback from an HTML email body by
// stripping tags, unescaping the standard entities, and collapsing runs of
// whitespace into single spaces.
func HTMLToText(html string) string {
	text := tagRegex.ReplaceAllString(html, " ")
	text = htmlEntities.Replace(text)
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// TruncateSMS caps a message at SMSMaxLength characters. Longer messages are
// cut to 157 characters plus "..." so the stored body is exactly 160. Limits
// are counted in runes, never bytes, so multibyte text is not split mid-rune.
func TruncateSMS(s string) string {
	runes := []rune(s)
	if len(runes) <= SMSMaxLength {
		return s
	}
	return string(runes[:SMSMaxLength-3]) + "..."
}
