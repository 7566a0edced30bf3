package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codefionn/codecompanion/internal/history"
	"github.com/codefionn/codecompanion/internal/syntax"
)

const playgroundSample = `public class HelloWorld {
    public static void main(String[] args) {
        System.out.println("Hello, Java Playground!");
    }
}`

// Notice is a banner shown above a form, the page counterpart of a toast.
type Notice struct {
	Title       string
	Description string
	Destructive bool
}

// ExplainView is an explanation ready to render.
type ExplainView struct {
	HasError    bool
	Explanation string
}

// IndexProps drives the tabs page.
type IndexProps struct {
	Tab           string // "generate" or "explain"
	Description   string
	JavaCode      string
	GeneratedCode string
	Explanation   *ExplainView
	Notice        *Notice
}

// PlaygroundProps drives the playground page.
type PlaygroundProps struct {
	JavaCode string
	Result   *ExplainView
	Notice   *Notice
}

// HistoryProps drives the history page.
type HistoryProps struct {
	Runs    []*history.Run
	Enabled bool
	Error   string
}

// pageWriter writes markup and remembers the first write error.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) raw(parts ...string) {
	for _, s := range parts {
		if p.err != nil {
			return
		}
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *pageWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *pageWriter) component(ctx context.Context, c templ.Component) {
	if p.err == nil {
		p.err = c.Render(ctx, p.w)
	}
}

// Layout wraps body in the shared page chrome.
func Layout(title, active string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`,
			`<meta name="viewport" content="width=device-width, initial-scale=1"/><title>`)
		p.text(title)
		p.raw(` | Code Companion</title><link rel="stylesheet" href="/static/style.css"/>`,
			`<script src="/static/app.js" defer></script></head><body>`,
			`<header class="site-header"><span class="logo">Code Companion</span><nav>`)
		for _, item := range []struct{ href, label string }{
			{"/", "Companion"},
			{"/playground", "Playground"},
			{"/history", "History"},
		} {
			class := "nav-link"
			if item.href == active {
				class += " active"
			}
			p.raw(`<a class="`, class, `" href="`, item.href, `">`)
			p.text(item.label)
			p.raw(`</a>`)
		}
		p.raw(`</nav></header><main>`)
		p.component(ctx, body)
		p.raw(`</main></body></html>`)
		return p.err
	})
}

// CodeBlock renders highlighted Java source. HighlightJava output is the
// only markup inserted without escaping.
func CodeBlock(title, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<section class="code-display"><h2>`)
		p.text(title)
		p.raw(`</h2><pre class="code"><code>`)
		p.component(ctx, templ.Raw(syntax.HighlightJava(code)))
		p.raw(`</code></pre></section>`)
		return p.err
	})
}

// Explanation renders an explanation; fenced Java blocks inside it are highlighted.
func Explanation(view *ExplainView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		status, class := "No errors found", "explanation ok"
		if view.HasError {
			status, class = "Errors found", "explanation error"
		}
		p.raw(`<section class="`, class, `"><h2>`)
		p.text(status)
		p.raw(`</h2>`)
		for _, seg := range syntax.SplitCodeBlocks(view.Explanation) {
			switch {
			case seg.Fenced && syntax.IsJavaLanguage(seg.Language):
				p.raw(`<pre class="code"><code>`)
				p.component(ctx, templ.Raw(syntax.HighlightJava(seg.Text)))
				p.raw(`</code></pre>`)
			case seg.Fenced:
				p.raw(`<pre class="code"><code>`)
				p.text(seg.Text)
				p.raw(`</code></pre>`)
			default:
				if strings.TrimSpace(seg.Text) == "" {
					continue
				}
				p.raw(`<div class="prose">`)
				p.text(seg.Text)
				p.raw(`</div>`)
			}
		}
		p.raw(`</section>`)
		return p.err
	})
}

func noticeBanner(n *Notice) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if n == nil {
			return nil
		}
		p := &pageWriter{w: w}
		class := "notice"
		if n.Destructive {
			class += " destructive"
		}
		p.raw(`<div class="`, class, `" role="status"><strong>`)
		p.text(n.Title)
		p.raw(`</strong> `)
		p.text(n.Description)
		p.raw(`</div>`)
		return p.err
	})
}

// IndexPage renders the generate/explain tabs.
func IndexPage(props IndexProps) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		tab := props.Tab
		if tab != "explain" {
			tab = "generate"
		}

		p.raw(`<div class="tabs" data-active="`, tab, `">`,
			`<a class="tab" data-tab="generate" href="/?tab=generate">Generate Code</a>`,
			`<a class="tab" data-tab="explain" href="/?tab=explain">Explain Error</a></div>`)
		p.component(ctx, noticeBanner(props.Notice))

		p.raw(`<div class="panel" id="generate-panel"`, hiddenUnless(tab == "generate"), `>`,
			`<form method="post" action="/generate" class="form">`,
			`<label for="description">Describe the Java code you want to generate:</label>`,
			`<span id="live-analysis" class="live-analysis"></span>`,
			`<textarea id="description" name="description" minlength="10" data-live-analysis="true" `,
			`placeholder="e.g., A Java function that sorts an array of integers... OR type Java code starting with 'public' for a quick analysis.">`)
		p.text(props.Description)
		p.raw(`</textarea><p class="hint">Currently, only Java is supported.</p>`,
			`<button type="submit">Generate Code</button></form>`)
		if props.GeneratedCode != "" {
			p.component(ctx, CodeBlock("Generated Java Code", props.GeneratedCode))
		}
		p.raw(`</div>`)

		p.raw(`<div class="panel" id="explain-panel"`, hiddenUnless(tab == "explain"), `>`,
			`<form method="post" action="/explain" class="form">`,
			`<label for="javaCode">Paste the Java code to analyze:</label>`,
			`<textarea id="javaCode" name="javaCode" minlength="10" placeholder="public class HelloWorld { ... }">`)
		p.text(props.JavaCode)
		p.raw(`</textarea><button type="submit">Explain Errors</button></form>`)
		if props.Explanation != nil {
			p.component(ctx, Explanation(props.Explanation))
		}
		p.raw(`</div>`)
		return p.err
	})
	return Layout("Companion", "/", body)
}

// PlaygroundPage renders the playground with its editor and analysis.
func PlaygroundPage(props PlaygroundProps) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		code := props.JavaCode
		if code == "" {
			code = playgroundSample
		}

		p.component(ctx, noticeBanner(props.Notice))
		p.raw(`<div class="playground"><form method="post" action="/playground" class="form">`,
			`<label for="javaCode">Java Playground</label><textarea id="javaCode" name="javaCode" class="editor">`)
		p.text(code)
		p.raw(`</textarea><button type="submit">Run Analysis</button></form>`)
		p.component(ctx, CodeBlock("Preview", code))
		if props.Result != nil {
			p.component(ctx, Explanation(props.Result))
		}
		p.raw(`</div>`)
		return p.err
	})
	return Layout("Playground", "/playground", body)
}

// HistoryPage lists recent flow runs.
func HistoryPage(props HistoryProps) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<section class="history"><h1>Recent runs</h1>`)
		switch {
		case !props.Enabled:
			p.raw(`<p class="hint">History is disabled.</p>`)
		case props.Error != "":
			p.component(ctx, noticeBanner(&Notice{Title: "History unavailable", Description: props.Error, Destructive: true}))
		case len(props.Runs) == 0:
			p.raw(`<p class="hint">No runs yet.</p>`)
		default:
			p.raw(`<table><thead><tr><th>When</th><th>Kind</th><th>Model</th><th>Duration</th><th>Result</th><th>Input</th></tr></thead><tbody>`)
			for _, run := range props.Runs {
				p.raw(`<tr><td>`)
				p.text(run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				p.raw(`</td><td>`)
				p.text(string(run.Kind))
				p.raw(`</td><td>`)
				p.text(run.Model)
				p.raw(`</td><td>`)
				p.text(fmt.Sprintf("%d ms", run.Duration.Milliseconds()))
				p.raw(`</td><td>`)
				p.text(runStatus(run))
				p.raw(`</td><td><code>`)
				p.text(truncate(run.Input, 80))
				p.raw(`</code></td></tr>`)
			}
			p.raw(`</tbody></table>`)
		}
		p.raw(`</section>`)
		return p.err
	})
	return Layout("History", "/history", body)
}

func hiddenUnless(visible bool) string {
	if visible {
		return ""
	}
	return ` hidden`
}

func runStatus(run *history.Run) string {
	if run.Kind == history.KindGenerate {
		return "generated"
	}
	if run.HasError {
		return "errors found"
	}
	return "no errors"
}

func truncate(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
