// ABOUTME: HTTP client for the Blogger v3 API.
// ABOUTME: Handles the authenticated create-post operation against a single blog.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const defaultAPIBase = "https://www.googleapis.com/blogger/v3"

var (
	ErrNotAuthenticated = errors.New("client is not authenticated")
	ErrInvalidPost      = errors.New("title and content are required")
)

// APIError is a non-2xx response from the Blogger API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Blogger API error: %d - %s", e.StatusCode, e.Body)
}

type BloggerClient struct {
	baseURL    string
	blogID     string
	httpClient *http.Client
}

// Post is the API's representation of a created post. Only the fields used
// for reporting are mapped; the rest of the payload is ignored.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Status    string `json:"status"`
	Published string `json:"published"`
}

type postBody struct {
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Labels  []string `json:"labels,omitempty"`
}

func NewBloggerClient(baseURL, blogID string, httpClient *http.Client) *BloggerClient {
	if baseURL == "" {
		baseURL = defaultAPIBase
	}
	return &BloggerClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		blogID:     blogID,
		httpClient: httpClient,
	}
}

func (c *BloggerClient) BlogID() string {
	return c.blogID
}

// CreatePost inserts one post into the configured blog. Single attempt,
// no retry.
func (c *BloggerClient) CreatePost(ctx context.Context, title, content string, labels []string, draft bool) (*Post, error) {
	if c == nil || c.httpClient == nil {
		return nil, ErrNotAuthenticated
	}
	if title == "" || content == "" {
		return nil, ErrInvalidPost
	}

	body, err := json.Marshal(postBody{
		Kind:    "blogger#post",
		Title:   title,
		Content: content,
		Labels:  labels,
	})
	if err != nil {
		return nil, err
	}

	fullURL := fmt.Sprintf("%s/blogs/%s/posts?isDraft=%s", c.baseURL, c.blogID, strconv.FormatBool(draft))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var post Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, fmt.Errorf("decoding post response: %w", err)
	}

	return &post, nil
}
