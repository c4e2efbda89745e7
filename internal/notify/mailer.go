// Package notify emails refresh reports and refresh failures through SES.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/dashboard"
	"github.com/ignite/ads-dashboard/internal/metrics"
	"github.com/ignite/ads-dashboard/internal/pkg/logger"
)

// SESAPI is the subset of the SES v2 client used by Mailer.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Mailer implements dashboard.Notifier.
type Mailer struct {
	client      SESAPI
	cfg         config.NotifyConfig
	accountName string
	templates   *templates
}

var _ dashboard.Notifier = (*Mailer)(nil)

// NewMailer builds an SES client. Static keys are used when configured,
// otherwise the default credential chain.
func NewMailer(ctx context.Context, cfg config.NotifyConfig, dash config.DashboardConfig) (*Mailer, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return NewMailerWithClient(sesv2.NewFromConfig(awsCfg), cfg, dash), nil
}

// NewMailerWithClient wires a Mailer around an existing client.
func NewMailerWithClient(client SESAPI, cfg config.NotifyConfig, dash config.DashboardConfig) *Mailer {
	return &Mailer{
		client:      client,
		cfg:         cfg,
		accountName: dash.AccountName,
		templates:   newTemplates(dash.Currency),
	}
}

// RefreshSucceeded sends the performance report when on_success is set.
func (m *Mailer) RefreshSucceeded(ctx context.Context, p *dashboard.Payload) error {
	if !m.cfg.OnSuccess {
		return nil
	}

	bindings, err := toBindings(p)
	if err != nil {
		return err
	}
	bindings["account_name"] = m.accountName
	bindings["dashboard_url"] = m.cfg.DashboardURL

	return m.send(ctx, "report", reportSubject, reportHTML, bindings)
}

// RefreshFailed sends the failure notice.
func (m *Mailer) RefreshFailed(ctx context.Context, r metrics.DateRange, cause error) error {
	bindings := map[string]any{
		"account_name": m.accountName,
		"date_range":   map[string]any{"start": r.Start, "end": r.End},
		"error":        cause.Error(),
	}
	return m.send(ctx, "failure", failureSubject, failureHTML, bindings)
}

func (m *Mailer) send(ctx context.Context, name, subjectSrc, htmlSrc string, bindings map[string]any) error {
	if len(m.cfg.To) == 0 || m.cfg.From == "" {
		return fmt.Errorf("notify: from and to addresses are required")
	}

	subject, err := m.templates.render(name+"_subject", subjectSrc, bindings)
	if err != nil {
		return err
	}
	html, err := m.templates.render(name+"_html", htmlSrc, bindings)
	if err != nil {
		return err
	}

	timeout := time.Duration(m.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.cfg.From),
		Destination:      &types.Destination{ToAddresses: m.cfg.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("kind"), Value: aws.String(name)},
		},
	})
	if err != nil {
		return fmt.Errorf("sending %s email: %w", name, err)
	}

	logger.Info("notification sent", "kind", name, "recipients", len(m.cfg.To), "message_id", aws.ToString(out.MessageId))
	return nil
}

// toBindings exposes the payload to templates under its JSON field names.
func toBindings(p *dashboard.Payload) (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload for template: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding payload for template: %w", err)
	}
	return out, nil
}
