package render

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const contentToken = "{{content}}"

// defaultTemplate is the built-in HTML shell used when no template file is
// configured. Real deployments point TEMPLATE_PATH at the branded one.
const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{brand_name}} Newsletter</title>
</head>
<body>
<div class="newsletter">
<h1 class="brand">{{brand_name}}</h1>
{{content}}
<footer>&copy; {{current_year}} {{brand_name}}</footer>
</div>
</body>
</html>`

var (
	placeholderRe = regexp.MustCompile(`\{\{.*?\}\}`)
	eachOpenRe    = regexp.MustCompile(`\{\{#each.*?\}\}`)
	eachCloseRe   = regexp.MustCompile(`\{\{/each\}\}`)
)

// LoadTemplate reads the template file, or returns the built-in shell when
// path is empty. A template without a content token cannot produce a document.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return defaultTemplate, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load template: %w", err)
	}
	tpl := string(raw)
	if !strings.Contains(tpl, contentToken) {
		return "", fmt.Errorf("template %s: missing %s token", path, contentToken)
	}
	return tpl, nil
}

// substitute fills the document-level tokens and strips whatever placeholders
// remain so a stale template never leaks raw tokens to subscribers.
func substitute(tpl, body, brand string, now time.Time) string {
	out := strings.ReplaceAll(tpl, contentToken, body)
	out = strings.ReplaceAll(out, "{{brand_name}}", brand)
	out = strings.ReplaceAll(out, "{{current_year}}", strconv.Itoa(now.Year()))
	out = eachOpenRe.ReplaceAllString(out, "")
	out = eachCloseRe.ReplaceAllString(out, "")
	return placeholderRe.ReplaceAllString(out, "")
}

// truncate cuts s to at most n runes for preview snippets.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// unescapeEntities undoes the handful of HTML entities feeds tend to leave in
// titles and abstracts before they land in Markdown.
func unescapeEntities(s string) string {
	r := strings.NewReplacer("&quot;", `"`, "&#39;", "'", "&amp;", "&")
	return r.Replace(s)
}
