package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/feedsync/internal/client/models"
	"github.com/dmitrijs2005/feedsync/internal/common"
)

// HTTPClient talks JSON over HTTP to the feed service. It holds the access
// and refresh tokens obtained at login and transparently refreshes the access
// token once when the server reports it expired, then retries the original
// request.
type HTTPClient struct {
	baseURL string
	client  *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

type apiError struct {
	Message string `json:"message"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// AccessToken returns the current access token, or "" before login. The
// session layer derives the current actor from it.
func (c *HTTPClient) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

func (c *HTTPClient) setTokens(tp tokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = tp.AccessToken
	c.refreshToken = tp.RefreshToken
}

func (c *HTTPClient) Login(ctx context.Context, username string, password []byte) error {
	in := map[string]string{"username": username, "password": string(password)}
	var tp tokenPair
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &tp); err != nil {
		return err
	}
	c.setTokens(tp)
	return nil
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	c.mu.Lock()
	rt := c.refreshToken
	c.mu.Unlock()
	if rt == "" {
		return common.ErrorUnauthorized
	}

	in := map[string]string{"refreshToken": rt}
	var tp tokenPair
	if err := c.doOnce(ctx, http.MethodPost, "/api/auth/refresh", in, &tp); err != nil {
		return err
	}
	c.setTokens(tp)
	return nil
}

// do performs one request and, if the server answers 401 with a token-expired
// message, refreshes the tokens and retries the request exactly once.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	err := c.doOnce(ctx, method, path, in, out)
	if err == nil {
		return nil
	}

	var re *remoteError
	if !errors.As(err, &re) || re.status != http.StatusUnauthorized || re.message != common.ErrTokenExpired.Error() {
		return err
	}

	if rerr := c.refresh(ctx); rerr != nil {
		return err
	}
	return c.doOnce(ctx, method, path, in, out)
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
	}
	return nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
}

// remoteError keeps the raw status and server message alongside the mapped
// sentinel so do() can recognize an expired token.
type remoteError struct {
	status  int
	message string
	mapped  error
}

func (e *remoteError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.mapped.Error()
}

func (e *remoteError) Unwrap() error { return e.mapped }

func (c *HTTPClient) mapError(resp *http.Response) error {
	var ae apiError
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(b, &ae)

	var mapped error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		mapped = common.ErrorUnauthorized
	case http.StatusForbidden:
		mapped = common.ErrorForbidden
	case http.StatusNotFound:
		mapped = common.ErrorNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		mapped = common.ErrorValidation
	default:
		mapped = common.ErrorInternal
	}

	return &remoteError{status: resp.StatusCode, message: ae.Message, mapped: mapped}
}

// doEntity issues a request whose success body is a full authoritative
// entity. Entities minted here are the only committed ones in the system.
func (c *HTTPClient) doEntity(ctx context.Context, method, path string, in any) (*models.Entity, error) {
	var e models.Entity
	if err := c.do(ctx, method, path, in, &e); err != nil {
		return nil, err
	}
	e.Origin = models.OriginCommitted
	return &e, nil
}

func (c *HTTPClient) FetchFeed(ctx context.Context, cursor string, limit int) (*FeedPage, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/feed"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page FeedPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	for _, e := range page.Items {
		e.Origin = models.OriginCommitted
	}
	return &page, nil
}

func (c *HTTPClient) CreatePost(ctx context.Context, in CreateEntityRequest) (*models.Entity, error) {
	return c.doEntity(ctx, http.MethodPost, "/api/posts", in)
}

func (c *HTTPClient) CreateComment(ctx context.Context, postID string, in CreateEntityRequest) (*models.Entity, error) {
	return c.doEntity(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/comments", in)
}

func (c *HTTPClient) RemixPost(ctx context.Context, targetID string, in CreateEntityRequest) (*models.Entity, error) {
	return c.doEntity(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(targetID)+"/remix", in)
}

func (c *HTTPClient) DeleteEntity(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/entities/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) LikeEntity(ctx context.Context, id string) (*models.Entity, error) {
	return c.doEntity(ctx, http.MethodPost, "/api/entities/"+url.PathEscape(id)+"/like", nil)
}

func (c *HTTPClient) Notify(ctx context.Context, n Notification) error {
	return c.do(ctx, http.MethodPost, "/api/notifications", n, nil)
}

// UploadFile sends one file as multipart form data together with a routing
// tag and returns the wire-shaped result. Matching the result back to the
// originating file is the coordinator's concern, not the transport's.
func (c *HTTPClient) UploadFile(ctx context.Context, name string, contentType string, data []byte, tag string) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.WriteField("tag", tag); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/uploads", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, c.mapError(resp)
	}

	var res UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return &res, nil
}
