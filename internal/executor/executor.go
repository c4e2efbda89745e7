// Package executor turns one validated recommendation into exactly one Google
// Ads mutation and reports the outcome.
package executor

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/ignite/ads-dashboard/internal/googleads"
	"github.com/ignite/ads-dashboard/internal/pkg/logger"
	"github.com/ignite/ads-dashboard/internal/recommend"
)

// Result is the outcome of one apply call. It is never stored.
type Result struct {
	Success              bool      `json:"success"`
	Message              string    `json:"message"`
	ManualActionRequired bool      `json:"manual_action_required,omitempty"`
	GoogleAdsURL         string    `json:"google_ads_url,omitempty"`
	RequiresInput        bool      `json:"requires_input,omitempty"`
	DryRun               bool      `json:"dry_run,omitempty"`
	WouldExecute         *Mutation `json:"would_execute,omitempty"`
}

// Mutation is the call a dry run would have sent.
type Mutation struct {
	Resource  string              `json:"resource"`
	Operation googleads.Operation `json:"operation"`
}

// Request is one apply call: the action descriptor plus optional user input.
// A DryRun request is validated and planned but never reaches the platform.
type Request struct {
	recommend.Fields
	NewBid any  `json:"new_bid,omitempty"`
	DryRun bool `json:"dry_run,omitempty"`
}

// ExecutionError wraps a platform failure during a mutation. Its message
// carries the platform's raw error text.
type ExecutionError struct {
	ActionType recommend.ActionType
	Err        error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("failed to apply %s: %v", e.ActionType, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Options configures deep links and messages.
type Options struct {
	CustomerID string
	UIBaseURL  string
	Currency   string
}

// Executor applies recommendations against one customer.
type Executor struct {
	connector googleads.Connector
	opts      Options
}

// New creates an Executor. Every Apply that reaches the platform opens its
// own session through connector.
func New(connector googleads.Connector, opts Options) *Executor {
	if opts.UIBaseURL == "" {
		opts.UIBaseURL = "https://ads.google.com/aw"
	}
	if opts.Currency == "" {
		opts.Currency = "RM"
	}
	return &Executor{connector: connector, opts: opts}
}

// Apply validates req and issues at most one mutation. Validation failures
// return a *recommend.ValidationError before any network call; platform
// failures return an *ExecutionError. Mutations are attempted exactly once.
// Manual actions behave the same with or without DryRun.
func (e *Executor) Apply(ctx context.Context, req Request) (Result, error) {
	action, err := recommend.ParseAction(req.Fields)
	if err != nil {
		return Result{Message: err.Error()}, err
	}

	switch a := action.(type) {
	case recommend.KeywordStatusChange:
		return e.changeStatus(ctx, req.DryRun, a)
	case recommend.AddNegativeKeyword:
		return e.addNegative(ctx, req.DryRun, a)
	case recommend.KeywordBid:
		bid, err := recommend.ParseBid(req.NewBid)
		if err != nil {
			var ve *recommend.ValidationError
			errors.As(err, &ve)
			return Result{Message: err.Error(), RequiresInput: ve != nil && ve.RequiresInput()}, err
		}
		return e.setBid(ctx, req.DryRun, a, bid)
	case recommend.CampaignBudgetIncrease:
		q := url.Values{"campaignId": {a.CampaignID}}
		return e.manual("Budget changes are made in Google Ads. Open the campaign to raise its daily budget.",
			googleads.UIURL(e.opts.UIBaseURL, "campaigns", e.opts.CustomerID)+"&"+q.Encode()), nil
	default:
		return e.manual("This recommendation needs a manual review in Google Ads.",
			googleads.UIURL(e.opts.UIBaseURL, "overview", e.opts.CustomerID)), nil
	}
}

func (e *Executor) manual(message, link string) Result {
	return Result{Success: true, Message: message, ManualActionRequired: true, GoogleAdsURL: link}
}

func (e *Executor) changeStatus(ctx context.Context, dryRun bool, a recommend.KeywordStatusChange) (Result, error) {
	return e.mutate(ctx, dryRun, a.Type(), googleads.ResourceAdGroupCriteria, func(cid string) googleads.Operation {
		return googleads.Operation{
			Update:     googleads.AdGroupCriterion{ResourceName: a.Criterion.ResourceName(cid), Status: a.Status},
			UpdateMask: "status",
		}
	}, fmt.Sprintf("Keyword %s set to %s", label(a.Keyword, a.Criterion), a.Status))
}

func (e *Executor) addNegative(ctx context.Context, dryRun bool, a recommend.AddNegativeKeyword) (Result, error) {
	return e.mutate(ctx, dryRun, a.Type(), googleads.ResourceCampaignCriteria, func(cid string) googleads.Operation {
		return googleads.Operation{
			Create: googleads.CampaignCriterion{
				Campaign: googleads.CampaignResourceName(cid, a.CampaignID),
				Negative: true,
				Keyword:  &googleads.KeywordInfo{Text: a.Keyword, MatchType: a.MatchType},
			},
		}
	}, fmt.Sprintf("Added negative keyword: %s (%s)", a.Keyword, a.MatchType))
}

func (e *Executor) setBid(ctx context.Context, dryRun bool, a recommend.KeywordBid, bid float64) (Result, error) {
	micros := googleads.ToMicros(bid)
	return e.mutate(ctx, dryRun, a.Type(), googleads.ResourceAdGroupCriteria, func(cid string) googleads.Operation {
		return googleads.Operation{
			Update:     googleads.AdGroupCriterion{ResourceName: a.Criterion.ResourceName(cid), CpcBidMicros: micros},
			UpdateMask: "cpc_bid_micros",
		}
	}, fmt.Sprintf("Max CPC for %s set to %s %.2f", label(a.Keyword, a.Criterion), e.opts.Currency, googleads.FromMicros(micros)))
}

// mutate opens a session and sends the single operation built by op. A dry
// run builds the operation for the configured customer and stops there.
func (e *Executor) mutate(ctx context.Context, dryRun bool, actionType recommend.ActionType, resource string, op func(customerID string) googleads.Operation, message string) (Result, error) {
	if dryRun {
		logger.Info("recommendation dry run", "action_type", string(actionType), "resource", resource)
		return Result{
			Success:      true,
			Message:      "Dry run, no changes made. Would apply: " + message,
			DryRun:       true,
			WouldExecute: &Mutation{Resource: resource, Operation: op(e.opts.CustomerID)},
		}, nil
	}

	platform, err := e.connector.Connect(ctx)
	if err != nil {
		return Result{Message: err.Error()}, err
	}

	resp, err := platform.Mutate(ctx, resource, []googleads.Operation{op(platform.CustomerID())})
	if err != nil {
		logger.Error("recommendation failed", "action_type", string(actionType), "error", err.Error())
		execErr := &ExecutionError{ActionType: actionType, Err: err}
		return Result{Message: execErr.Error()}, execErr
	}

	fields := []interface{}{"action_type", string(actionType), "customer_id", platform.CustomerID()}
	if resp != nil && len(resp.Results) > 0 {
		fields = append(fields, "resource_name", resp.Results[0].ResourceName)
	}
	logger.Info("recommendation applied", fields...)
	return Result{Success: true, Message: message}, nil
}

func label(keyword string, c googleads.CriterionID) string {
	if keyword != "" {
		return fmt.Sprintf("%q", keyword)
	}
	return fmt.Sprintf("%d~%d", c.AdGroupID, c.CriterionID)
}
