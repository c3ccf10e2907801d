package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"leadsync/internal/config"
	"leadsync/internal/domain"
)

const defaultBaseURL = "https://api.hubapi.com"

// dealToContactAssociationTypeID is the HubSpot-defined association type
// linking a deal to a contact.
const dealToContactAssociationTypeID = 3

// existingIDPattern extracts the contact ID from the 409 conflict message
// HubSpot returns when a contact with the same email already exists.
var existingIDPattern = regexp.MustCompile(`Existing ID: (\d+)`)

// Client talks to the HubSpot CRM v3 REST API. It implements
// domain.HubSpotClient.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.HubSpotConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type objectRequest struct {
	Properties   any               `json:"properties"`
	Associations []associationSpec `json:"associations,omitempty"`
}

type associationSpec struct {
	To    associationTarget `json:"to"`
	Types []associationType `json:"types"`
}

type associationTarget struct {
	ID string `json:"id"`
}

type associationType struct {
	AssociationCategory string `json:"associationCategory"`
	AssociationTypeID   int    `json:"associationTypeId"`
}

type objectResponse struct {
	ID string `json:"id"`
}

type apiErrorBody struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// CreateOrUpdateContact creates the contact, and when HubSpot reports an
// email conflict, updates the existing contact instead. Returns the HubSpot
// object ID either way.
func (c *Client) CreateOrUpdateContact(ctx context.Context, props *domain.ContactProperties) (string, error) {
	created, err := c.createObject(ctx, "/crm/v3/objects/contacts", &objectRequest{Properties: props})
	if err == nil {
		return created, nil
	}

	apiErr, ok := err.(*domain.HubSpotAPIError)
	if !ok || apiErr.StatusCode != http.StatusConflict {
		return "", err
	}

	existingID := existingIDPattern.FindStringSubmatch(apiErr.Message)
	if existingID == nil {
		return "", err
	}
	return c.updateContact(ctx, existingID[1], props)
}

func (c *Client) updateContact(ctx context.Context, id string, props *domain.ContactProperties) (string, error) {
	var resp objectResponse
	path := fmt.Sprintf("/crm/v3/objects/contacts/%s", id)
	if err := c.do(ctx, http.MethodPatch, path, &objectRequest{Properties: props}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		resp.ID = id
	}
	return resp.ID, nil
}

// CreateDeal creates a deal associated with an existing contact.
func (c *Client) CreateDeal(ctx context.Context, props *domain.DealProperties, contactID string) (string, error) {
	req := &objectRequest{
		Properties: props,
		Associations: []associationSpec{{
			To: associationTarget{ID: contactID},
			Types: []associationType{{
				AssociationCategory: "HUBSPOT_DEFINED",
				AssociationTypeID:   dealToContactAssociationTypeID,
			}},
		}},
	}
	return c.createObject(ctx, "/crm/v3/objects/deals", req)
}

// Ping performs a minimal authenticated read to verify credentials and
// reachability.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/crm/v3/objects/contacts?limit=1", nil, nil)
}

func (c *Client) createObject(ctx context.Context, path string, req *objectRequest) (string, error) {
	var resp objectResponse
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal hubspot request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build hubspot request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hubspot request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return newAPIError(httpResp)
	}

	if out != nil {
		if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode hubspot response: %w", err)
		}
	}
	return nil
}

func newAPIError(resp *http.Response) *domain.HubSpotAPIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body apiErrorBody
	message := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		message = body.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &domain.HubSpotAPIError{
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}
