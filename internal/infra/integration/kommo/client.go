package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/edureach360/leads-api/internal/entity"
)

var ErrNotConfigured = errors.New("kommo: api token not configured")

// Client creates contacts and deals in a Kommo account.
type Client struct {
	token    string
	baseURL  string
	statusID int
	http     *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		token:    cfg.Token,
		baseURL:  cfg.BaseURL,
		statusID: cfg.StatusID,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.token != "" && c.baseURL != ""
}

// CreateDeal attaches a new deal to the contact matching the email, creating
// the contact first when none exists. It returns the deal id.
func (c *Client) CreateDeal(ctx context.Context, in DealInput) (int, error) {
	if !c.Configured() {
		return 0, ErrNotConfigured
	}

	contactID, err := c.findOrCreateContact(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("kommo contact: %w", err)
	}

	tags := make([]tag, 0, len(in.Tags))
	for _, t := range in.Tags {
		tags = append(tags, tag{Name: t})
	}

	deal := map[string]any{
		"name":  dealName(in),
		"price": in.Price,
		"_embedded": map[string]any{
			"tags":     tags,
			"contacts": []contactRef{{ID: contactID}},
		},
	}
	if c.statusID > 0 {
		deal["status_id"] = c.statusID
	}

	var out leadList
	if err := c.do(ctx, http.MethodPost, "/leads", []any{deal}, &out); err != nil {
		return 0, fmt.Errorf("kommo create deal: %w", err)
	}
	if len(out.Embedded.Leads) == 0 {
		return 0, errors.New("kommo create deal: empty response")
	}
	return out.Embedded.Leads[0].ID, nil
}

// SyncPayment pushes a paying lead to the pipeline as a tagged deal.
func (c *Client) SyncPayment(ctx context.Context, s entity.LeadSnapshot) error {
	_, err := c.CreateDeal(ctx, DealInput{
		Name:     s.Name,
		Email:    s.Email,
		Phone:    s.Phone,
		PlanName: s.Plan,
		Price:    s.Amount / 100,
		Tags:     []string{"payment_completed"},
	})
	return err
}

func dealName(in DealInput) string {
	if in.PlanName == "" {
		return in.Name
	}
	return in.Name + " - " + in.PlanName
}

func (c *Client) findOrCreateContact(ctx context.Context, in DealInput) (int, error) {
	var found contactList
	err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(in.Email), nil, &found)
	if err != nil {
		return 0, err
	}
	if len(found.Embedded.Contacts) > 0 {
		return found.Embedded.Contacts[0].ID, nil
	}

	fields := []customField{{FieldCode: "EMAIL", Values: []fieldValue{{Value: in.Email, EnumCode: "WORK"}}}}
	if in.Phone != "" {
		fields = append(fields, customField{FieldCode: "PHONE", Values: []fieldValue{{Value: in.Phone, EnumCode: "WORK"}}})
	}
	contact := map[string]any{
		"name":                 in.Name,
		"custom_fields_values": fields,
	}

	var created contactList
	if err := c.do(ctx, http.MethodPost, "/contacts", []any{contact}, &created); err != nil {
		return 0, err
	}
	if len(created.Embedded.Contacts) == 0 {
		return 0, errors.New("contact not created")
	}
	return created.Embedded.Contacts[0].ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Kommo answers an empty search with 204.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
