package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/dashboard"
	"github.com/ignite/ads-dashboard/internal/insights"
	"github.com/ignite/ads-dashboard/internal/metrics"
	"github.com/ignite/ads-dashboard/internal/recommend"
)

type fakeSES struct {
	sent []*sesv2.SendEmailInput
	err  error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, in)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func testConfig() (config.NotifyConfig, config.DashboardConfig) {
	ncfg := config.NotifyConfig{
		Enabled:      true,
		OnSuccess:    true,
		From:         "reports@example.com",
		To:           []string{"owner@example.com"},
		DashboardURL: "https://dash.example.com",
	}
	dcfg := config.DashboardConfig{
		AccountName: "YCK Chiropractic",
		Currency:    "RM",
	}
	return ncfg, dcfg
}

func testPayload() *dashboard.Payload {
	return &dashboard.Payload{
		AccountName: "YCK Chiropractic",
		GeneratedAt: time.Date(2025, 1, 29, 8, 0, 0, 0, time.UTC),
		DateRange:   metrics.DateRange{Start: "2024-12-30", End: "2025-01-28"},
		Summary: metrics.Summary{
			TotalSpend:        1234.5,
			TotalClicks:       120,
			TotalConversions:  6,
			CostPerConversion: 205.75,
		},
		Insights: []insights.Insight{
			{Type: insights.TypeWarning, Title: "Wasted Ad Spend", Description: "3 search terms spent <RM 10> without converting"},
		},
		Recommendations: []recommend.Recommendation{
			{ID: "r1", Title: "Pause Keyword: cheap massage", Impact: recommend.ImpactHigh, Description: "No conversions"},
		},
	}
}

func TestRefreshSucceededSendsReport(t *testing.T) {
	ses := &fakeSES{}
	ncfg, dcfg := testConfig()
	m := NewMailerWithClient(ses, ncfg, dcfg)

	require.NoError(t, m.RefreshSucceeded(context.Background(), testPayload()))
	require.Len(t, ses.sent, 1)

	in := ses.sent[0]
	assert.Equal(t, "reports@example.com", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"owner@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Ad Performance Report - YCK Chiropractic", aws.ToString(in.Content.Simple.Subject.Data))

	html := aws.ToString(in.Content.Simple.Body.Html.Data)
	assert.Contains(t, html, "2024-12-30 to 2025-01-28")
	assert.Contains(t, html, "RM 1,234.50")
	assert.Contains(t, html, "Pause Keyword: cheap massage")
	assert.Contains(t, html, "&lt;RM 10&gt;", "descriptions are escaped")
	assert.Contains(t, html, `href="https://dash.example.com"`)
}

func TestRefreshSucceededSkippedWithoutOnSuccess(t *testing.T) {
	ses := &fakeSES{}
	ncfg, dcfg := testConfig()
	ncfg.OnSuccess = false

	require.NoError(t, NewMailerWithClient(ses, ncfg, dcfg).RefreshSucceeded(context.Background(), testPayload()))
	assert.Empty(t, ses.sent)
}

func TestRefreshFailedSendsNotice(t *testing.T) {
	ses := &fakeSES{}
	ncfg, dcfg := testConfig()
	ncfg.OnSuccess = false

	m := NewMailerWithClient(ses, ncfg, dcfg)
	err := m.RefreshFailed(context.Background(),
		metrics.DateRange{Start: "2025-01-01", End: "2025-01-07"},
		errors.New("google ads auth failed: invalid_grant"))
	require.NoError(t, err)
	require.Len(t, ses.sent, 1)

	in := ses.sent[0]
	assert.Equal(t, "Dashboard refresh failed - YCK Chiropractic", aws.ToString(in.Content.Simple.Subject.Data))
	html := aws.ToString(in.Content.Simple.Body.Html.Data)
	assert.Contains(t, html, "invalid_grant")
	assert.Contains(t, html, "2025-01-01 to 2025-01-07")
}

func TestSendErrors(t *testing.T) {
	ncfg, dcfg := testConfig()

	m := NewMailerWithClient(&fakeSES{err: errors.New("throttled")}, ncfg, dcfg)
	err := m.RefreshFailed(context.Background(), metrics.DateRange{}, errors.New("boom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")

	ncfg.To = nil
	m = NewMailerWithClient(&fakeSES{}, ncfg, dcfg)
	assert.Error(t, m.RefreshFailed(context.Background(), metrics.DateRange{}, errors.New("boom")))
}
