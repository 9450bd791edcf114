package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIClient talks to the chat server over HTTP. Every request after Join
// carries the participant name in the User header.
type APIClient struct {
	serverURL  string
	name       string
	httpClient *http.Client
}

func NewAPIClient(serverURL, name string) *APIClient {
	return &APIClient{
		serverURL: strings.TrimRight(serverURL, "/"),
		name:      name,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type participantResponse struct {
	Name     string `json:"name"`
	LastSeen string `json:"last_seen"`
}

type messageResponse struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Text   string `json:"text"`
	Type   string `json:"type"`
	SentAt string `json:"sent_at"`
}

type apiError struct {
	Error string `json:"error"`
}

func (c *APIClient) Join() error {
	body := fmt.Sprintf(`{"name":%s}`, mustJSON(c.name))
	req, err := http.NewRequest(http.MethodPost, c.serverURL+"/participants", strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return decodeError(resp)
	}
	return nil
}

func (c *APIClient) Leave() error {
	resp, err := c.do(http.MethodDelete, "/participants", "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func (c *APIClient) Heartbeat() error {
	resp, err := c.do(http.MethodPost, "/status", "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func (c *APIClient) Send(to, text, kind string) error {
	body := fmt.Sprintf(`{"to":%s,"text":%s,"type":%s}`,
		mustJSON(to), mustJSON(text), mustJSON(kind))
	resp, err := c.do(http.MethodPost, "/messages", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return decodeError(resp)
	}
	return nil
}

func (c *APIClient) ReadMessages(limit int) ([]messageResponse, error) {
	path := "/messages"
	if limit > 0 {
		path += "?limit=" + url.QueryEscape(strconv.Itoa(limit))
	}
	resp, err := c.do(http.MethodGet, path, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	var msgs []messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

func (c *APIClient) Participants() ([]participantResponse, error) {
	resp, err := c.do(http.MethodGet, "/participants", "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	var people []participantResponse
	if err := json.NewDecoder(resp.Body).Decode(&people); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	return people, nil
}

func (c *APIClient) do(method, path, body string) (*http.Response, error) {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.serverURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User", c.name)
	return c.httpClient.Do(req)
}

func decodeError(resp *http.Response) error {
	var apiErr apiError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("server: %s", apiErr.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
