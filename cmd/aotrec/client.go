package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// APIClient provides HTTP client functionality to communicate with the aotrec daemon
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080/api"
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// IsReachable checks if the daemon is running and reachable
func (c *APIClient) IsReachable() bool {
	resp, err := c.client.Get(c.baseURL + "/mode")
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

func (c *APIClient) get(path string, out any) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *APIClient) post(path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	resp, err := c.client.Post(c.baseURL+path, "application/json", rd)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
		return fmt.Errorf("API error: status %d", resp.StatusCode)
	}
	return fmt.Errorf("API error: %s", errorResp.Error)
}

// DaemonStatus is the assembled view the status command prints.
type DaemonStatus struct {
	Mode       string `json:"mode"`
	Recording  bool   `json:"recording"`
	Available  bool   `json:"duration_available"`
	DurationNs int64  `json:"duration_ns"`
}

// GetStatus assembles mode, recording flag and duration from the daemon.
func (c *APIClient) GetStatus() (DaemonStatus, error) {
	var st DaemonStatus
	var mode struct {
		Mode string `json:"mode"`
	}
	if err := c.get("/mode", &mode); err != nil {
		return st, err
	}
	var rec struct {
		Recording bool `json:"recording"`
	}
	if err := c.get("/recording", &rec); err != nil {
		return st, err
	}
	var dur struct {
		Available  bool  `json:"available"`
		DurationNs int64 `json:"duration_ns"`
	}
	if err := c.get("/duration", &dur); err != nil {
		return st, err
	}
	st.Mode = mode.Mode
	st.Recording = rec.Recording
	st.Available = dur.Available
	st.DurationNs = dur.DurationNs
	return st, nil
}

// EndRecording ends the recording via the daemon API. True iff this call
// performed the transition.
func (c *APIClient) EndRecording() (bool, error) {
	var out struct {
		Ended bool `json:"ended"`
	}
	if err := c.post("/end", nil, &out); err != nil {
		return false, err
	}
	return out.Ended, nil
}

// GetStats fetches aggregates: one workload when name is set, all otherwise.
func (c *APIClient) GetStats(name string) (any, error) {
	if name != "" {
		var one map[string]any
		if err := c.get("/stats?name="+url.QueryEscape(name), &one); err != nil {
			return nil, err
		}
		return one, nil
	}
	var all []map[string]any
	if err := c.get("/stats", &all); err != nil {
		return nil, err
	}
	return all, nil
}

// GetWorkloads fetches observed workload names.
func (c *APIClient) GetWorkloads() ([]string, error) {
	var names []string
	if err := c.get("/workloads", &names); err != nil {
		return nil, err
	}
	return names, nil
}

// RecordWorkDone reports one sample to the daemon.
func (c *APIClient) RecordWorkDone(name string, d time.Duration) error {
	body := struct {
		Name       string `json:"name"`
		DurationNs int64  `json:"duration_ns"`
	}{Name: name, DurationNs: int64(d)}
	return c.post("/record", body, nil)
}

// GetSessions fetches persisted sessions.
func (c *APIClient) GetSessions(limit int) (any, error) {
	var out []map[string]any
	if err := c.get(fmt.Sprintf("/sessions?limit=%d", limit), &out); err != nil {
		return nil, err
	}
	return out, nil
}
