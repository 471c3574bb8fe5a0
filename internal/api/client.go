// Package api is the HTTP client for the AskMyDocs backend. Every
// authenticated call reads the bearer token from a TokenSource at request
// time, so a token written to the session is used by the very next call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/askmydocs/askdocs/internal/chat"
	"github.com/askmydocs/askdocs/internal/docs"
)

// TokenSource supplies the current bearer token. An empty token is sent as
// no credential at all; the server decides whether to reject the call.
type TokenSource interface {
	Token() string
}

// Client talks to the backend. It never retries and sets no timeout of its
// own; callers bound calls through ctx if they want to.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	extension string
	validate  *validator.Validate
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithExtension sets the required document extension (default ".pdf").
func WithExtension(ext string) Option {
	return func(c *Client) {
		if ext != "" {
			c.extension = ext
		}
	}
}

// New creates a Client for baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		tokens:    tokens,
		extension: docs.DefaultExtension,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Extension returns the document extension uploads must carry.
func (c *Client) Extension() string {
	return c.extension
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// call describes one request/response exchange.
type call struct {
	op          string
	kind        Kind // kind used for non-2xx responses
	method      string
	path        string
	body        io.Reader
	contentType string
	authed      bool
	out         any // decoded from a 2xx JSON body when non-nil
	raw         *[]byte
}

func (c *Client) do(ctx context.Context, cl call) error {
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, cl.body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: cl.op, Err: err}
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	req.Header.Set("Accept", "application/json")
	if cl.authed {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: cl.op, Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := cl.kind
		if cl.authed && resp.StatusCode == http.StatusUnauthorized {
			kind = KindSessionExpired
		}
		return &Error{Kind: kind, Op: cl.op, Status: resp.StatusCode, Detail: parseDetail(body)}
	}

	if cl.raw != nil {
		*cl.raw = body
	}
	if cl.out != nil {
		if err := json.Unmarshal(body, cl.out); err != nil {
			return &Error{Kind: cl.kind, Op: cl.op, Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
		}
	}
	return nil
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// form builds a multipart body from fields and an optional file part.
type form struct {
	fields   [][2]string
	fileName string
	file     io.Reader
}

func (f form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	if f.file != nil {
		part, err := w.CreateFormFile("file", f.fileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.file); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// credentials is validated before register/login.
type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Client) checkCredentials(op string, cred credentials) error {
	err := c.validate.Struct(cred)
	if err == nil {
		return nil
	}
	detail := "Invalid credentials"
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		switch fe := verrs[0]; {
		case fe.Field() == "Email" && fe.Tag() == "required":
			detail = "Email is required"
		case fe.Field() == "Email":
			detail = "Please enter a valid email address"
		case fe.Field() == "Password":
			detail = "Password is required"
		}
	}
	return &Error{Kind: KindValidation, Op: op, Detail: detail}
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password string) error {
	cred := credentials{Email: strings.TrimSpace(email), Password: password}
	if err := c.checkCredentials("register", cred); err != nil {
		return err
	}
	body, err := jsonBody(cred)
	if err != nil {
		return &Error{Kind: KindValidation, Op: "register", Err: err}
	}
	return c.do(ctx, call{
		op: "register", kind: KindAuth,
		method: http.MethodPost, path: "/auth/register",
		body: body, contentType: "application/json",
	})
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	cred := credentials{Email: strings.TrimSpace(email), Password: password}
	if err := c.checkCredentials("login", cred); err != nil {
		return "", err
	}
	body, err := jsonBody(cred)
	if err != nil {
		return "", &Error{Kind: KindValidation, Op: "login", Err: err}
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		Token       string `json:"token"`
	}
	if err := c.do(ctx, call{
		op: "login", kind: KindAuth,
		method: http.MethodPost, path: "/auth/login",
		body: body, contentType: "application/json",
		out: &resp,
	}); err != nil {
		return "", err
	}

	token := resp.AccessToken
	if token == "" {
		token = resp.Token
	}
	if token == "" {
		return "", &Error{Kind: KindAuth, Op: "login", Detail: "No token in login response"}
	}
	return token, nil
}

// User is the profile returned by /auth/me.
type User struct {
	Email string `json:"email"`
}

// Me returns the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, call{
		op: "profile", kind: KindFetch,
		method: http.MethodGet, path: "/auth/me",
		authed: true, out: &u,
	})
	return u, err
}

// ListDocuments returns the user's uploaded documents in server order.
func (c *Client) ListDocuments(ctx context.Context) ([]docs.Record, error) {
	var records []docs.Record
	if err := c.do(ctx, call{
		op: "list documents", kind: KindFetch,
		method: http.MethodGet, path: "/chat/files",
		authed: true, out: &records,
	}); err != nil {
		return nil, err
	}
	if records == nil {
		records = []docs.Record{}
	}
	return records, nil
}

// UploadDocument uploads r under name. Names without the configured
// extension are rejected before any request is made.
func (c *Client) UploadDocument(ctx context.Context, name string, r io.Reader) error {
	if !docs.HasExtension(name, c.extension) {
		return &Error{
			Kind:   KindValidation,
			Op:     "upload",
			Detail: fmt.Sprintf("Please select a %s file", strings.ToUpper(strings.TrimPrefix(c.extension, "."))),
		}
	}

	body, contentType, err := form{fileName: name, file: r}.encode()
	if err != nil {
		return &Error{Kind: KindUpload, Op: "upload", Err: fmt.Errorf("reading file: %w", err)}
	}
	return c.do(ctx, call{
		op: "upload", kind: KindUpload,
		method: http.MethodPost, path: "/chat/upload",
		body: body, contentType: contentType,
		authed: true,
	})
}

// FetchHistory returns the conversation for filename, oldest first.
func (c *Client) FetchHistory(ctx context.Context, filename string) ([]chat.Message, error) {
	var msgs []chat.Message
	if err := c.do(ctx, call{
		op: "history", kind: KindFetch,
		method: http.MethodGet, path: "/chat/history/" + url.PathEscape(filename),
		authed: true, out: &msgs,
	}); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return msgs, nil
}

// SubmitQuery asks question about filename.
func (c *Client) SubmitQuery(ctx context.Context, filename, question string) (chat.Answer, error) {
	body, contentType, err := form{fields: [][2]string{
		{"filename", filename},
		{"question", question},
	}}.encode()
	if err != nil {
		return chat.Answer{}, &Error{Kind: KindQuery, Op: "query", Err: err}
	}

	var ans chat.Answer
	if err := c.do(ctx, call{
		op: "query", kind: KindQuery,
		method: http.MethodPost, path: "/chat/query",
		body: body, contentType: contentType,
		authed: true, out: &ans,
	}); err != nil {
		return chat.Answer{}, err
	}
	return ans, nil
}

// DocumentURL returns the address of the raw document anchored at page.
func (c *Client) DocumentURL(filename string, page int) string {
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("%s/uploads/%s#page=%d", c.baseURL, url.PathEscape(filename), page)
}

// DownloadDocument fetches the raw document bytes.
func (c *Client) DownloadDocument(ctx context.Context, filename string) ([]byte, error) {
	var data []byte
	if err := c.do(ctx, call{
		op: "download", kind: KindFetch,
		method: http.MethodGet, path: "/uploads/" + url.PathEscape(filename),
		authed: true, raw: &data,
	}); err != nil {
		return nil, err
	}
	return data, nil
}
