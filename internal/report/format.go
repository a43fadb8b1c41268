package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"

	"github.com/example/codoc/internal/model"
)

// Formats lists the supported output formats.
var Formats = []string{"markdown", "json", "yaml", "html"}

// JSON serializes result directly, keeping requirement order.
func JSON(result *model.Result) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return append(data, '\n'), nil
}

// YAML serializes result, keeping requirement order.
func YAML(result *model.Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return buf.Bytes(), nil
}

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// HTML renders the Markdown report into a standalone page.
func HTML(result *model.Result, links Links, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownEngine.Convert([]byte(Markdown(result, links)), &body); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", html.EscapeString(title))
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// Write renders result in format to w.
func Write(w io.Writer, format string, result *model.Result, links Links) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "markdown", "md":
		data = []byte(Markdown(result, links))
	case "json":
		data, err = JSON(result)
	case "yaml", "yml":
		data, err = YAML(result)
	case "html":
		data, err = HTML(result, links, "Code documentation")
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
