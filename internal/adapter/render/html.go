package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; line-height: 1.5; }
blockquote { color: #555; border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; }
pre { background: #f6f6f6; padding: 1rem; white-space: pre-wrap; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders the Markdown form of v into a standalone page. Raw HTML in
// the model output is not passed through.
func HTML(v View) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(v)), &body); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}

	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{ReviewTitle, template.HTML(body.String())})
	if err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return out.String(), nil
}
