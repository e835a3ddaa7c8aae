package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/user/tripagent/internal/store"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// HTMLExporter renders sessions as standalone HTML documents
type HTMLExporter struct {
	markdown     goldmark.Markdown
	htmlTemplate *template.Template
	now          func() time.Time
}

// HTMLDocument represents the data for HTML template rendering
type HTMLDocument struct {
	Title       string
	Content     template.HTML
	CSS         template.CSS
	GeneratedAt string
}

// NewHTMLExporter creates a new HTML exporter with Goldmark configured
func NewHTMLExporter() (*HTMLExporter, error) {
	// Model output is untrusted, so raw HTML stays escaped
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	tmpl, err := loadHTMLTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load HTML template: %w", err)
	}

	return &HTMLExporter{
		markdown:     md,
		htmlTemplate: tmpl,
		now:          time.Now,
	}, nil
}

// Render converts markdown into a full HTML document written to w
func (e *HTMLExporter) Render(w io.Writer, title string, markdown []byte) error {
	var buf bytes.Buffer
	if err := e.markdown.Convert(markdown, &buf); err != nil {
		return fmt.Errorf("failed to convert markdown: %w", err)
	}

	doc := HTMLDocument{
		Title:       title,
		Content:     template.HTML(buf.String()),
		CSS:         template.CSS(defaultCSS),
		GeneratedAt: e.now().Format("2006-01-02 15:04:05"),
	}

	if err := e.htmlTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// ExportToHTML writes the session transcript to outputPath
func (e *HTMLExporter) ExportToHTML(rec *store.Record, outputPath string) error {
	var htmlBuf bytes.Buffer
	if err := e.Render(&htmlBuf, Title(rec), []byte(Transcript(rec))); err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, htmlBuf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write HTML: %w", err)
	}
	return nil
}

func loadHTMLTemplate() (*template.Template, error) {
	const tmpl = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="generator" content="tripagent">
    <title>{{.Title}}</title>
    <style>
        {{.CSS}}
    </style>
</head>
<body>
    <div class="container">
        <header>
            <div class="generator-badge">Planned with tripagent</div>
        </header>
        <main>
            {{.Content}}
        </main>
        <footer>
            <p>Exported on {{.GeneratedAt}}. Prices and schedules come from live searches and may have changed.</p>
        </footer>
    </div>
</body>
</html>`

	return template.New("html").Parse(tmpl)
}

const defaultCSS = `
        * {
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif;
            line-height: 1.6;
            color: #24292f;
            background-color: #ffffff;
            margin: 0;
            padding: 0;
        }

        .container {
            max-width: 980px;
            margin: 0 auto;
            padding: 45px;
        }

        header {
            border-bottom: 1px solid #d0d7de;
            margin-bottom: 30px;
            padding-bottom: 10px;
        }

        .generator-badge {
            font-size: 12px;
            color: #57606a;
            text-align: right;
        }

        h1, h2 {
            border-bottom: 1px solid #d0d7de;
            padding-bottom: 0.3em;
            font-weight: 600;
        }

        code {
            background-color: rgba(175, 184, 193, 0.2);
            border-radius: 6px;
            font-size: 85%;
            padding: 0.2em 0.4em;
        }

        table {
            border-collapse: collapse;
            width: 100%;
            margin-bottom: 16px;
        }

        table th {
            font-weight: 600;
            background-color: #f6f8fa;
        }

        table th, table td {
            padding: 6px 13px;
            border: 1px solid #d0d7de;
        }

        table tr:nth-child(2n) {
            background-color: #f6f8fa;
        }

        blockquote {
            padding: 0 1em;
            color: #57606a;
            border-left: 0.25em solid #d0d7de;
            margin: 0 0 16px;
            font-size: 90%;
        }

        footer {
            border-top: 1px solid #d0d7de;
            padding-top: 20px;
            text-align: center;
            font-size: 14px;
            color: #57606a;
        }

        @media (max-width: 768px) {
            .container {
                padding: 15px;
            }
        }
    `
