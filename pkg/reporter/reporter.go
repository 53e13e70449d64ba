package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amosWeiskopf/articlemetrics/internal/models"
)

// Reporter handles report generation in various formats
type Reporter struct {
	title string
}

// New creates a new Reporter instance
func New() *Reporter {
	return &Reporter{
		title: "Article Text Analysis",
	}
}

// Formats lists the supported report formats
var Formats = []string{"json", "yaml", "html", "markdown"}

// Generate renders a run result in the specified format
func (r *Reporter) Generate(result *models.RunResult, format string) (string, error) {
	switch format {
	case "json":
		return r.generateJSON(result)
	case "yaml":
		return r.generateYAML(result)
	case "html":
		return r.generateHTML(result)
	case "markdown", "md":
		return r.generateMarkdown(result)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// ContentType returns the MIME type of a report format
func ContentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "yaml":
		return "application/yaml"
	case "html":
		return "text/html; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// generateJSON creates a JSON formatted report
func (r *Reporter) generateJSON(result *models.RunResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

// generateYAML creates a YAML formatted report
func (r *Reporter) generateYAML(result *models.RunResult) (string, error) {
	data, err := yaml.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"f2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            margin: 0 auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 2rem;
            border-radius: 10px;
            margin-bottom: 2rem;
        }
        .card {
            background: white;
            border-radius: 10px;
            padding: 1.5rem;
            margin-bottom: 1.5rem;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
            overflow-x: auto;
        }
        .score-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 1rem;
        }
        .score-item {
            text-align: center;
            padding: 1rem;
            background: #f8f9fa;
            border-radius: 8px;
        }
        .score-value {
            font-size: 2rem;
            font-weight: bold;
            color: #667eea;
        }
        .score-label {
            color: #666;
            font-size: 0.9rem;
        }
        table {
            border-collapse: collapse;
            width: 100%;
            font-size: 0.85rem;
        }
        th, td {
            border-bottom: 1px solid #eee;
            padding: 0.4rem 0.6rem;
            text-align: left;
            white-space: nowrap;
        }
        th {
            background: #f8f9fa;
        }
        .failure {
            border-left: 4px solid #dc3545;
            padding: 0.5rem 1rem;
            margin: 0.5rem 0;
        }
        .summary {
            white-space: normal;
            min-width: 300px;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Title}}</h1>
        <p>Run {{.Result.RunID}} · {{.Result.StartedAt.Format "January 2, 2006 15:04"}}</p>
    </div>

    <div class="card">
        <div class="score-grid">
            <div class="score-item">
                <div class="score-value">{{.Result.Total}}</div>
                <div class="score-label">URLs</div>
            </div>
            <div class="score-item">
                <div class="score-value">{{.Succeeded}}</div>
                <div class="score-label">Scored</div>
            </div>
            <div class="score-item">
                <div class="score-value">{{len .Result.Failures}}</div>
                <div class="score-label">Skipped</div>
            </div>
        </div>
    </div>

    {{if .Result.Rows}}
    <div class="card">
        <h2>Results</h2>
        <table>
            <tr>
                <th>No</th><th>URL_ID</th><th>Title</th>
                <th>Positive</th><th>Negative</th><th>Polarity</th><th>Subjectivity</th>
                <th>Avg Sentence Length</th><th>% Complex</th><th>Fog Index</th>
                <th>Complex Words</th><th>Words</th><th>Syllables/Word</th>
                <th>Pronouns</th><th>Avg Word Length</th><th>Summary</th>
            </tr>
            {{range .Result.Rows}}
            <tr>
                <td>{{.ProcessingNo}}</td>
                <td><a href="{{.URL}}">{{.ID}}</a></td>
                <td>{{.Title}}</td>
                {{if .Error}}
                <td colspan="13">{{.Error}}</td>
                {{else}}
                <td>{{.Metrics.PositiveScore}}</td>
                <td>{{.Metrics.NegativeScore}}</td>
                <td>{{f2 .Metrics.PolarityScore}}</td>
                <td>{{f2 .Metrics.SubjectivityScore}}</td>
                <td>{{f2 .Metrics.AverageSentenceLength}}</td>
                <td>{{f2 .Metrics.PercentageComplexWords}}</td>
                <td>{{f2 .Metrics.FogIndex}}</td>
                <td>{{.Metrics.ComplexWordCount}}</td>
                <td>{{.Metrics.WordCount}}</td>
                <td>{{f2 .Metrics.SyllablesPerWord}}</td>
                <td>{{.Metrics.PersonalPronouns}}</td>
                <td>{{f2 .Metrics.AverageWordLength}}</td>
                <td class="summary">{{.Summary}}</td>
                {{end}}
            </tr>
            {{end}}
        </table>
    </div>
    {{end}}

    {{if .Result.Failures}}
    <div class="card">
        <h2>Skipped URLs</h2>
        {{range .Result.Failures}}
        <div class="failure">
            <strong>{{.ID}}</strong> {{.URL}}
            <p><small>{{.Reason}}</small></p>
        </div>
        {{end}}
    </div>
    {{end}}
</body>
</html>
`))

// generateHTML creates a standalone HTML dashboard page
func (r *Reporter) generateHTML(result *models.RunResult) (string, error) {
	data := struct {
		Title     string
		Result    *models.RunResult
		Succeeded int
	}{
		Title:     r.title,
		Result:    result,
		Succeeded: result.Succeeded(),
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// generateMarkdown creates a Markdown formatted report
func (r *Reporter) generateMarkdown(result *models.RunResult) (string, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", r.title)
	fmt.Fprintf(&buf, "*Run %s, %s*\n\n", result.RunID, result.StartedAt.Format("January 2, 2006 15:04"))

	fmt.Fprintf(&buf, "**URLs:** %d | **Scored:** %d | **Skipped:** %d\n\n",
		result.Total, result.Succeeded(), len(result.Failures))

	if len(result.Rows) > 0 {
		fmt.Fprintf(&buf, "## Results\n\n")
		fmt.Fprintf(&buf, "| No | URL_ID | Title | Positive | Negative | Polarity | Subjectivity | Avg Sentence Length | %% Complex | Fog Index | Words | Pronouns | Avg Word Length |\n")
		fmt.Fprintf(&buf, "|----|--------|-------|----------|----------|----------|--------------|---------------------|-----------|-----------|-------|----------|-----------------|\n")
		for _, row := range result.Rows {
			if row.Failed() {
				fmt.Fprintf(&buf, "| %d | %s | %s | error: %s |||||||||\n",
					row.ProcessingNo, escapeCell(row.ID), escapeCell(row.Title), escapeCell(row.Error))
				continue
			}
			m := row.Metrics
			fmt.Fprintf(&buf, "| %d | %s | %s | %d | %d | %.2f | %.2f | %.2f | %.2f | %.2f | %d | %d | %.2f |\n",
				row.ProcessingNo, escapeCell(row.ID), escapeCell(row.Title),
				m.PositiveScore, m.NegativeScore, m.PolarityScore, m.SubjectivityScore,
				m.AverageSentenceLength, m.PercentageComplexWords, m.FogIndex,
				m.WordCount, m.PersonalPronouns, m.AverageWordLength)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(result.Failures) > 0 {
		fmt.Fprintf(&buf, "## Skipped URLs\n\n")
		for _, failure := range result.Failures {
			fmt.Fprintf(&buf, "- **%s** %s: %s\n", failure.ID, failure.URL, failure.Reason)
		}
		fmt.Fprintf(&buf, "\n")
	}

	return buf.String(), nil
}

var cellEscaper = strings.NewReplacer("|", "\\|", "\n", " ")

func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}
