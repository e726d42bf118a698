package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

var tmpl = htmpl.Must(htmpl.ParseFS(FS, "*.tmpl"))

var subjects = map[string]string{
	"verify_otp":    "Email Verification - ProMan",
	"task_assigned": "New task assigned - ProMan",
}

// Render executes the named template and returns subject + HTML body.
func Render(name string, data map[string]any) (subject, html string, err error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
