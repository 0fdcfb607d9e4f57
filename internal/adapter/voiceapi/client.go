// Package voiceapi is the client for the remote conversational voice
// provider. Credentials are supplied per call (BYOK): every organization
// brings its own API key, so the client itself holds none.
package voiceapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io"

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// GetConversations fetches one page of conversation summaries for an agent.
func (c *Client) GetConversations(ctx context.Context, apiKey, agentID string, pageSize int) (*ConversationsPage, error) {
	q := url.Values{}
	q.Set("agent_id", agentID)
	q.Set("page_size", strconv.Itoa(pageSize))

	var page ConversationsPage
	if err := c.get(ctx, apiKey, "/v1/convai/conversations?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetConversation fetches full detail, including the transcript in
// whichever of its three remote shapes the provider chose.
func (c *Client) GetConversation(ctx context.Context, apiKey, conversationID string) (*ConversationDetail, error) {
	var detail ConversationDetail
	if err := c.get(ctx, apiKey, "/v1/convai/conversations/"+url.PathEscape(conversationID), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) get(ctx context.Context, apiKey, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("voice api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("voice api status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
