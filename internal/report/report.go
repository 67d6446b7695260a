package report

import (
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/FranksOps/leadscout/internal/extract"
	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/FranksOps/leadscout/internal/pipeline"
)

// Summary describes the companies returned by one search.
type Summary struct {
	Category        string         `json:"category"`
	Path            pipeline.Path  `json:"path"`
	Reason          string         `json:"reason,omitempty"`
	Total           int            `json:"total"`
	WithEmail       int            `json:"with_email"`
	WithWebsite     int            `json:"with_website"`
	DistinctDomains int            `json:"distinct_domains"`
	Imported        int            `json:"imported"`
	GeneratedAt     time.Time      `json:"generated_at"`
	Companies       []lead.Company `json:"companies"`
}

// Summarize processes a search outcome to generate summary counts.
// Domains come from the website when present, else from the email.
func Summarize(category string, out pipeline.Outcome) Summary {
	s := Summary{
		Category:    category,
		Path:        out.Path,
		GeneratedAt: time.Now().UTC(),
		Companies:   out.Companies,
	}
	if s.Companies == nil {
		s.Companies = []lead.Company{}
	}
	if out.Reason != nil {
		s.Reason = out.Reason.Error()
	}

	domains := map[string]struct{}{}
	for _, c := range out.Companies {
		s.Total++
		if c.Email != "" {
			s.WithEmail++
		}
		if c.Website != "" {
			s.WithWebsite++
		}
		if d := companyDomain(c); d != "" {
			domains[d] = struct{}{}
		}
	}
	s.DistinctDomains = len(domains)
	return s
}

func companyDomain(c lead.Company) string {
	if c.Website != "" {
		raw := c.Website
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		}
	}
	return extract.Domain(c.Email)
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

var textTmpl = template.Must(template.New("textReport").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`Leads for "{{.Category}}"
------------------
Source:        {{.Path}}{{if .Reason}} ({{.Reason}}){{end}}
Companies:     {{.Total}}
With email:    {{.WithEmail}}
With website:  {{.WithWebsite}}
Domains:       {{.DistinctDomains}}
{{- if .Imported}}
Imported:      {{.Imported}} new
{{- end}}
{{range $i, $c := .Companies}}
{{inc $i}}. {{$c.Name}}
{{- if $c.Website}}
   site:    {{$c.Website}}
{{- end}}
{{- if $c.Email}}
   email:   {{$c.Email}}
{{- end}}
{{- if $c.Phone}}
   phone:   {{$c.Phone}}
{{- end}}
{{- if $c.Address}}
   address: {{$c.Address}}
{{- end}}
{{- else}}
  None
{{- end}}
`))

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	if err := textTmpl.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render text: %w", err)
	}
	return nil
}

var htmlTmpl = htmltemplate.Must(htmltemplate.New("htmlReport").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Leads: {{.Category}}</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>Leads: {{.Category}}</h1>
  <p><strong>Source:</strong> {{.Path}}{{if .Reason}} ({{.Reason}}){{end}}</p>

  <div class="stat-card">
    <div>Companies</div>
    <div class="stat-val">{{.Total}}</div>
  </div>
  <div class="stat-card">
    <div>With email</div>
    <div class="stat-val" style="color: {{if gt .WithEmail 0}}green{{else}}red{{end}};">{{.WithEmail}}</div>
  </div>
  <div class="stat-card">
    <div>Domains</div>
    <div class="stat-val">{{.DistinctDomains}}</div>
  </div>

  <table>
    <tr><th>Name</th><th>Website</th><th>Email</th><th>Phone</th><th>Address</th></tr>
    {{- range .Companies}}
    <tr><td>{{.Name}}</td><td>{{.Website}}</td><td>{{.Email}}</td><td>{{.Phone}}</td><td>{{.Address}}</td></tr>
    {{- else}}
    <tr><td colspan="5">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`))

// WriteHTML writes a basic HTML report to the provided writer. Company
// fields are escaped.
func WriteHTML(w io.Writer, summary Summary) error {
	if err := htmlTmpl.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render html: %w", err)
	}
	return nil
}
