package notify

import (
	"fmt"
	"strings"
	"sync"

	"github.com/osteele/liquid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const reportSubject = `Ad Performance Report - {{ account_name }}`

const reportHTML = `<html>
<body style="font-family: Arial, sans-serif; color: #202124;">
  <h2>{{ account_name }}</h2>
  <p>Google Ads performance for {{ date_range.start }} to {{ date_range.end }}.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td>Total spend</td><td><strong>{{ summary.total_spend | money }}</strong></td></tr>
    <tr><td>Clicks</td><td>{{ summary.total_clicks }}</td></tr>
    <tr><td>Impressions</td><td>{{ summary.total_impressions }}</td></tr>
    <tr><td>Conversions</td><td>{{ summary.total_conversions | round: 2 }}</td></tr>
    <tr><td>Cost per conversion</td><td>{{ summary.cost_per_conversion | money }}</td></tr>
    <tr><td>Average CTR</td><td>{{ summary.avg_ctr | round: 2 }}%</td></tr>
    <tr><td>Average quality score</td><td>{{ summary.avg_quality_score | round: 1 }}</td></tr>
  </table>
  {% if insights.size > 0 %}
  <h3>Insights</h3>
  <ul>
    {% for insight in insights %}<li><strong>[{{ insight.type }}] {{ insight.title | escape }}</strong>: {{ insight.description | escape }}</li>
    {% endfor %}
  </ul>
  {% endif %}
  {% if recommendations.size > 0 %}
  <h3>Recommendations</h3>
  <ol>
    {% for rec in recommendations %}<li><strong>{{ rec.title | escape }}</strong> ({{ rec.impact }} impact): {{ rec.description | escape }}</li>
    {% endfor %}
  </ol>
  {% endif %}
  {% if dashboard_url != "" %}<p><a href="{{ dashboard_url }}">Open the dashboard</a></p>{% endif %}
</body>
</html>`

const failureSubject = `Dashboard refresh failed - {{ account_name }}`

const failureHTML = `<html>
<body style="font-family: Arial, sans-serif; color: #202124;">
  <h2>Dashboard refresh failed</h2>
  <p>The refresh of {{ account_name }} for {{ date_range.start }} to {{ date_range.end }} did not complete.</p>
  <pre style="background: #f8f9fa; padding: 12px;">{{ error | escape }}</pre>
  <p>The previously published data is still being served.</p>
</body>
</html>`

// templates renders the email bodies. Parsed templates are cached by name.
type templates struct {
	engine *liquid.Engine
	cache  sync.Map // name -> *liquid.Template
}

func newTemplates(currency string) *templates {
	engine := liquid.NewEngine()
	p := message.NewPrinter(language.English)

	// {{ amount | money }} -> "RM 1,234.50"
	engine.RegisterFilter("money", func(v float64) string {
		return p.Sprintf("%s %.2f", currency, v)
	})

	return &templates{engine: engine}
}

func (t *templates) render(name, src string, bindings map[string]any) (string, error) {
	var tpl *liquid.Template
	if cached, ok := t.cache.Load(name); ok {
		tpl = cached.(*liquid.Template)
	} else {
		parsed, err := t.engine.ParseString(src)
		if err != nil {
			return "", fmt.Errorf("parsing %s template: %w", name, err)
		}
		t.cache.Store(name, parsed)
		tpl = parsed
	}

	out, err := tpl.RenderString(bindings)
	if err != nil {
		return "", fmt.Errorf("rendering %s template: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}
