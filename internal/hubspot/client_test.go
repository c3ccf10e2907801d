package hubspot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadsync/internal/config"
	"leadsync/internal/domain"

	"github.com/stretchr/testify/assert"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.HubSpotConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Timeout: 2 * time.Second,
	})
}

func TestCreateOrUpdateContact_Creates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "lead@example.com", body["properties"]["email"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"101"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	id, err := client.CreateOrUpdateContact(context.Background(), &domain.ContactProperties{
		Email:     "lead@example.com",
		FirstName: "Ada",
	})
	assert.NoError(t, err)
	assert.Equal(t, "101", id)
}

func TestCreateOrUpdateContact_UpdatesOnConflict(t *testing.T) {
	var patched bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"Contact already exists. Existing ID: 202","category":"CONFLICT"}`))
		case r.Method == http.MethodPatch:
			patched = true
			assert.Equal(t, "/crm/v3/objects/contacts/202", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":"202"}`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	id, err := client.CreateOrUpdateContact(context.Background(), &domain.ContactProperties{Email: "dup@example.com"})
	assert.NoError(t, err)
	assert.Equal(t, "202", id)
	assert.True(t, patched)
}

func TestCreateOrUpdateContact_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"You have reached your ten secondly limit."}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CreateOrUpdateContact(context.Background(), &domain.ContactProperties{Email: "lead@example.com"})
	assert.Error(t, err)

	apiErr, ok := err.(*domain.HubSpotAPIError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, domain.ErrorTypeRateLimit, apiErr.ErrorType())
	assert.Contains(t, apiErr.Message, "ten secondly limit")
}

func TestCreateDeal_AssociatesContact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/deals", r.URL.Path)

		var body struct {
			Properties   map[string]string `json:"properties"`
			Associations []struct {
				To struct {
					ID string `json:"id"`
				} `json:"to"`
				Types []struct {
					AssociationCategory string `json:"associationCategory"`
					AssociationTypeID   int    `json:"associationTypeId"`
				} `json:"types"`
			} `json:"associations"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ada Lovelace - Example Corp - Executive Briefing", body.Properties["dealname"])
		assert.Len(t, body.Associations, 1)
		assert.Equal(t, "101", body.Associations[0].To.ID)
		assert.Equal(t, "HUBSPOT_DEFINED", body.Associations[0].Types[0].AssociationCategory)
		assert.Equal(t, dealToContactAssociationTypeID, body.Associations[0].Types[0].AssociationTypeID)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"301"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	id, err := client.CreateDeal(context.Background(), &domain.DealProperties{
		DealName:  "Ada Lovelace - Example Corp - Executive Briefing",
		Pipeline:  "default",
		DealStage: "executive_briefing_requested",
		Amount:    "25000",
	}, "101")
	assert.NoError(t, err)
	assert.Equal(t, "301", id)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestPing_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"The provided token is invalid"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.Ping(context.Background())
	assert.Error(t, err)

	apiErr, ok := err.(*domain.HubSpotAPIError)
	assert.True(t, ok)
	assert.Equal(t, domain.ErrorTypeAuth, apiErr.ErrorType())
}
