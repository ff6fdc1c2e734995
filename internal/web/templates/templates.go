// Package templates holds the HTML components of the import shell.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// PageData feeds the import shell page.
type PageData struct {
	SourceDir   string
	Destination string
	Active      bool
	NeedsAPIKey bool
	Tables      []TableRow
}

// TableRow is one line of the destination table overview.
type TableRow struct {
	Name    string
	Label   string
	Source  string
	Columns int
}

// Page renders the import shell: two path inputs, a trigger, a progress bar
// and the session log.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		e := templ.EscapeString
		disabled := ""
		if data.Active {
			disabled = " disabled"
		}
		keyField := ""
		if data.NeedsAPIKey {
			keyField = `<label>API key <input name="apiKey" type="password" autocomplete="off" required></label>` + "\n"
		}

		pw := &pageWriter{w: w}
		pw.print(pageHead)
		pw.printf(`<form id="import-form">
<label>Source folder <input name="sourceDir" value="%s" required></label>
<label>Database <input name="destination" value="%s" placeholder="bakery.db"></label>
%s<button id="start" type="submit"%s>Import</button>
</form>
<progress id="progress" max="100" value="0"></progress> <span id="percent">0%%</span>
<div id="alert"></div>
<pre id="log"></pre>
`, e(data.SourceDir), e(data.Destination), keyField, disabled)

		pw.print("<table><thead><tr><th>Table</th><th>Source file</th><th>Columns</th></tr></thead><tbody>\n")
		for _, t := range data.Tables {
			pw.printf("<tr><td>%s <small>%s</small></td><td>%s</td><td>%d</td></tr>\n",
				e(t.Name), e(t.Label), e(t.Source), t.Columns)
		}
		pw.print("</tbody></table>\n")
		pw.print(pageScript)
		return pw.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="alert" role="alert"><strong>%s</strong> %s <small>(Code: %s)</small></div>`,
			templ.EscapeString(message), templ.EscapeString(action), templ.EscapeString(code))
		return err
	})
}

// pageWriter stops writing after the first error and keeps it.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) print(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *pageWriter) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Bakery import</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; }
label { display: block; margin: .5rem 0; }
input { width: 100%; }
progress { width: 85%; }
pre { background: #f4f4f4; padding: .5rem; min-height: 8rem; max-height: 24rem; overflow: auto; }
.alert { color: #a00; }
.error { color: #a00; } .warn { color: #a60; }
table { border-collapse: collapse; width: 100%; } td, th { text-align: left; padding: .2rem .5rem; }
</style>
</head>
<body>
<h1>Bakery import</h1>
`

const pageScript = `<script>
const form = document.getElementById("import-form");
const start = document.getElementById("start");
const bar = document.getElementById("progress");
const pct = document.getElementById("percent");
const log = document.getElementById("log");
const alertBox = document.getElementById("alert");

function line(text, cls) {
  const span = document.createElement("span");
  if (cls) span.className = cls;
  span.textContent = text + "\n";
  log.appendChild(span);
  log.scrollTop = log.scrollHeight;
}

form.addEventListener("submit", async (ev) => {
  ev.preventDefault();
  alertBox.textContent = "";
  log.textContent = "";
  const body = Object.fromEntries(new FormData(form));
  const headers = {"Content-Type": "application/json"};
  if (body.apiKey) {
    headers["X-API-Key"] = body.apiKey;
    delete body.apiKey;
  }
  const resp = await fetch("/api/import", {
    method: "POST",
    headers: headers,
    body: JSON.stringify(body),
  });
  const data = await resp.json();
  if (!resp.ok) {
    alertBox.textContent = (data.message || data.error) + " " + (data.action || "") + (data.code ? " (Code: " + data.code + ")" : "");
    return;
  }
  start.disabled = true;
  const es = new EventSource(data.eventsUrl);
  es.addEventListener("progress", (m) => {
    const p = JSON.parse(m.data).percent || 0;
    bar.value = p;
    pct.textContent = p + "%";
  });
  es.addEventListener("log", (m) => {
    const e = JSON.parse(m.data);
    line(new Date(e.time).toLocaleTimeString() + " " + e.message, e.level);
  });
  es.addEventListener("done", (m) => {
    es.close();
    start.disabled = false;
    const r = JSON.parse(m.data).result;
    if (r && r.phase === "failed") {
      alertBox.textContent = r.error + " (Code: " + r.code + ")";
    }
  });
});
</script>
</body>
</html>
`
