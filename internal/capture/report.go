package capture

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}} - Walkthrough</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
       line-height: 1.6; max-width: 1200px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
.header { background: white; padding: 30px; border-radius: 8px; margin-bottom: 30px;
          box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
h1 { margin: 0 0 10px 0; color: #333; }
.meta { color: #666; font-size: 14px; }
.status { display: inline-block; padding: 3px 10px; border-radius: 12px; font-size: 13px; }
.status.done { background: #d4edda; color: #155724; }
.status.failed { background: #f8d7da; color: #721c24; }
.status.running { background: #fff3cd; color: #856404; }
.step { background: white; padding: 25px; border-radius: 8px; margin-bottom: 20px;
        box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.step h2 { margin-top: 0; color: #333; }
.step .action { color: #555; margin-bottom: 10px; }
.step .delta { color: #888; font-size: 13px; margin-bottom: 10px; }
.step img { max-width: 100%; border: 1px solid #ddd; border-radius: 4px; }
.outcome { font-size: 13px; color: #555; }
</style>
</head>
<body>
<div class="header">
<h1>{{.Title}}</h1>
<div class="meta">
Application: <strong>{{.App}}</strong> ·
Steps: <strong>{{.TotalSteps}}</strong> ·
<span class="status {{.Status}}">{{.Status}}</span>
</div>
</div>
{{range .Steps}}
<div class="step">
<h2>Step {{.Step}}: {{.Action}}</h2>
{{if .Target}}<div class="action">Target: <strong>{{.Target}}</strong>{{if .Value}} → “{{.Value}}”{{end}}</div>{{end}}
{{if .DeltaSummary}}<div class="delta">{{.DeltaSummary}}</div>{{end}}
<div class="outcome">Outcome: {{.Outcome}}</div>
<img src="{{.Screenshot}}" alt="Step {{.Step}}">
</div>
{{end}}
</body>
</html>
`

type reportData struct {
	Title      string
	App        string
	Status     string
	TotalSteps int
	Steps      []StepRecord
}

func (r *Recorder) writeReport() (string, error) {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return "", fmt.Errorf("разбор шаблона отчета: %w", err)
	}

	path := filepath.Join(r.dir, "report.html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("создание файла отчета: %w", err)
	}
	defer f.Close()

	data := reportData{
		Title:      titleFromSlug(r.ledger.Slug),
		App:        r.ledger.App,
		Status:     r.ledger.Status,
		TotalSteps: r.ledger.TotalSteps,
		Steps:      r.ledger.Steps,
	}
	if err := tmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("генерация отчета: %w", err)
	}
	return path, nil
}

func titleFromSlug(slug string) string {
	words := strings.Split(slug, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
