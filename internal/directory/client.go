package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/models"
)

// Client talks to the remote sign-in, directory and attendance API.
// The bearer token is process-wide: every call made after SetToken carries it.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// flexString accepts both JSON strings and bare numbers ("year": 2 or "2").
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(data)
	return nil
}

type apiSection struct {
	ID     string     `json:"_id"`
	Name   string     `json:"name"`
	Branch string     `json:"branch"`
	Year   flexString `json:"year"`
}

type apiStudent struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken replaces the credential; an empty token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/signin", body, &resp); err != nil {
		return "", fmt.Errorf("sign in failed: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("sign in failed: empty token in response")
	}
	return resp.Token, nil
}

func (c *Client) ListSections(ctx context.Context) ([]models.Section, error) {
	var raw []apiSection
	if err := c.do(ctx, http.MethodGet, "/sections", nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}

	sections := make([]models.Section, 0, len(raw))
	for _, s := range raw {
		sections = append(sections, models.Section{
			ID:     s.ID,
			Name:   s.Name,
			Branch: s.Branch,
			Year:   string(s.Year),
		})
	}
	return sections, nil
}

func (c *Client) ListStudents(ctx context.Context, sectionID string) ([]models.Student, error) {
	var raw []apiStudent
	path := fmt.Sprintf("/sections/%s/students", url.PathEscape(sectionID))
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to list students of section %s: %w", sectionID, err)
	}

	students := make([]models.Student, 0, len(raw))
	for _, s := range raw {
		student := models.Student{ID: s.ID, Name: s.Name, RollNumber: s.StudentID}
		if err := student.Validate(); err != nil {
			logger.Debug.Printf("Skipping student without id in section %s: %+v", sectionID, s)
			continue
		}
		students = append(students, student)
	}
	return students, nil
}

func (c *Client) SubmitAttendance(ctx context.Context, submission models.Submission) error {
	if err := c.do(ctx, http.MethodPost, "/attendance", submission, nil); err != nil {
		return fmt.Errorf("failed to submit attendance: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
