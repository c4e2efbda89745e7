package googleads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/pkg/httpretry"
	"github.com/ignite/ads-dashboard/internal/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Platform is the narrow surface the dashboard needs from the Ads API: run a
// GAQL read query and send mutate operations, both scoped to one customer.
type Platform interface {
	CustomerID() string
	Search(ctx context.Context, query string) ([]Row, error)
	Mutate(ctx context.Context, resource string, ops []Operation) (*MutateResponse, error)
}

// Connector opens an authenticated Platform. Every call performs a fresh
// refresh-token exchange; tokens are never cached between invocations.
type Connector interface {
	Connect(ctx context.Context) (Platform, error)
}

// Client is the Google Ads REST client.
type Client struct {
	cfg        config.GoogleAdsConfig
	oauth      *oauth2.Config
	httpClient *http.Client
	readClient httpretry.HTTPDoer
}

// NewClient creates a client for cfg.CustomerID.
func NewClient(cfg config.GoogleAdsConfig) *Client {
	endpoint := google.Endpoint
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	httpClient := &http.Client{Timeout: cfg.Timeout()}

	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{"https://www.googleapis.com/auth/adwords"},
		},
		httpClient: httpClient,
		readClient: httpretry.NewRetryClient(httpClient, cfg.MaxRetries),
	}
}

// SetHTTPClient replaces the transport for token, read and mutate calls
// (useful for testing).
func (c *Client) SetHTTPClient(client *http.Client, readClient httpretry.HTTPDoer) {
	c.httpClient = client
	c.readClient = readClient
}

// Connect exchanges the refresh token for an access token and returns a
// session bound to the configured customer.
func (c *Client) Connect(ctx context.Context) (Platform, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: c.cfg.RefreshToken}).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			status := 0
			if re.Response != nil {
				status = re.Response.StatusCode
			}
			return nil, &AuthError{Status: status, Body: string(re.Body), Err: err}
		}
		return nil, &AuthError{Err: err}
	}

	logger.Debug("google ads token exchanged", "customer_id", c.cfg.CustomerID, "expiry", tok.Expiry)
	return &Session{client: c, accessToken: tok.AccessToken}, nil
}

// Session is an authenticated Platform for one invocation.
type Session struct {
	client      *Client
	accessToken string
}

// CustomerID returns the customer every call is scoped to.
func (s *Session) CustomerID() string { return s.client.cfg.CustomerID }

type searchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

type searchResponse struct {
	Results       []Row  `json:"results"`
	NextPageToken string `json:"nextPageToken"`
}

// Search runs a GAQL query and follows pagination until exhausted.
func (s *Session) Search(ctx context.Context, query string) ([]Row, error) {
	var rows []Row
	req := searchRequest{Query: strings.Join(strings.Fields(query), " ")}

	for {
		body, err := s.do(ctx, s.client.readClient, "googleAds:search", req)
		if err != nil {
			return nil, err
		}

		var page searchResponse
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&page); err != nil {
			return nil, fmt.Errorf("failed to parse search response: %w", err)
		}
		rows = append(rows, page.Results...)

		if page.NextPageToken == "" {
			return rows, nil
		}
		req.PageToken = page.NextPageToken
	}
}

// Operation is one entry of a mutate request. Exactly one of Create or
// Update is set; UpdateMask lists the fields an update touches.
type Operation struct {
	Create     any    `json:"create,omitempty"`
	Update     any    `json:"update,omitempty"`
	UpdateMask string `json:"updateMask,omitempty"`
}

// AdGroupCriterion is the update payload for keyword status and bid changes.
type AdGroupCriterion struct {
	ResourceName string `json:"resourceName"`
	Status       string `json:"status,omitempty"`
	CpcBidMicros int64  `json:"cpcBidMicros,omitempty,string"`
}

// KeywordInfo is the keyword part of a criterion.
type KeywordInfo struct {
	Text      string `json:"text"`
	MatchType string `json:"matchType"`
}

// CampaignCriterion is the create payload for campaign-level negatives.
type CampaignCriterion struct {
	Campaign string       `json:"campaign"`
	Negative bool         `json:"negative"`
	Keyword  *KeywordInfo `json:"keyword,omitempty"`
}

// MutateResult names one resource touched by a mutate call.
type MutateResult struct {
	ResourceName string `json:"resourceName"`
}

// MutateResponse is the body of a successful mutate call.
type MutateResponse struct {
	Results []MutateResult `json:"results"`
}

type mutateRequest struct {
	Operations []Operation `json:"operations"`
}

// Mutate sends ops to the "<resource>:mutate" service. It is attempted
// exactly once: a mutation is never retried.
func (s *Session) Mutate(ctx context.Context, resource string, ops []Operation) (*MutateResponse, error) {
	body, err := s.do(ctx, s.client.httpClient, resource+":mutate", mutateRequest{Operations: ops})
	if err != nil {
		return nil, err
	}

	var out MutateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse mutate response: %w", err)
	}
	return &out, nil
}

func (s *Session) do(ctx context.Context, doer httpretry.HTTPDoer, method string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	cfg := s.client.cfg
	reqURL := fmt.Sprintf("%s/%s/customers/%s/%s", strings.TrimRight(cfg.BaseURL, "/"), cfg.APIVersion, cfg.CustomerID, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("developer-token", cfg.DeveloperToken)
	if cfg.LoginCustomerID != "" {
		req.Header.Set("login-customer-id", cfg.LoginCustomerID)
	}

	resp, err := doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
