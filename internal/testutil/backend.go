package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// Call records one request received by a Backend.
type Call struct {
	Method string
	Path   string // decoded path
	Auth   string // Authorization header
	Form   map[string]string
	File   string // uploaded file name, if any
}

// QueryReply is a canned /chat/query response.
type QueryReply struct {
	Status int // 0 = 200
	Body   any
}

// Backend is an in-process fake of the AskMyDocs HTTP API.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	users     map[string]string // email -> password
	token     string
	files     []map[string]any
	history   map[string][]map[string]any
	query     QueryReply
	uploadErr string
	documents map[string][]byte
	calls     []Call
}

// NewBackend starts a fake backend that issues token on login. The server
// is closed when the test finishes.
func NewBackend(t *testing.T, token string) *Backend {
	t.Helper()
	b := &Backend{
		users:     make(map[string]string),
		token:     token,
		history:   make(map[string][]map[string]any),
		documents: make(map[string][]byte),
		query:     QueryReply{Body: map[string]any{"response": "ok"}},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", b.handleRegister)
	mux.HandleFunc("POST /auth/login", b.handleLogin)
	mux.HandleFunc("GET /auth/me", b.authed(b.handleMe))
	mux.HandleFunc("GET /chat/files", b.authed(b.handleFiles))
	mux.HandleFunc("POST /chat/upload", b.authed(b.handleUpload))
	mux.HandleFunc("GET /chat/history/{filename}", b.authed(b.handleHistory))
	mux.HandleFunc("POST /chat/query", b.authed(b.handleQuery))
	mux.HandleFunc("GET /uploads/{filename}", b.handleDocument)

	b.Server = httptest.NewServer(b.record(mux))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the server's base URL.
func (b *Backend) URL() string { return b.Server.URL }

// AddUser registers credentials that /auth/login accepts.
func (b *Backend) AddUser(email, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[email] = password
}

// AddFile adds a document to the /chat/files listing.
func (b *Backend) AddFile(filename, uploadDate string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = append(b.files, map[string]any{"filename": filename, "upload_date": uploadDate})
}

// SetHistory sets the /chat/history response for filename.
func (b *Backend) SetHistory(filename string, items []map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history[filename] = items
}

// SetQueryReply sets the /chat/query response.
func (b *Backend) SetQueryReply(r QueryReply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query = r
}

// FailUploads makes /chat/upload reply 400 with detail.
func (b *Backend) FailUploads(detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploadErr = detail
}

// SetDocument serves data at /uploads/{filename}.
func (b *Backend) SetDocument(filename string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.documents[filename] = data
}

// Calls returns every request received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// Count returns how many requests matched method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Form:   map[string]string{},
		}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(32 << 20); err == nil {
				for k, v := range r.MultipartForm.Value {
					if len(v) > 0 {
						c.Form[k] = v[0]
					}
				}
				if fh := r.MultipartForm.File["file"]; len(fh) > 0 {
					c.File = fh[0].Filename
				}
			}
		}
		b.mu.Lock()
		b.calls = append(b.calls, c)
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func (b *Backend) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		want := "Bearer " + b.token
		b.mu.Unlock()
		if r.Header.Get("Authorization") != want {
			detail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		h(w, r)
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[c.Email]; exists {
		detail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	b.users[c.Email] = c.Password
	writeJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if pw, ok := b.users[c.Email]; !ok || pw != c.Password {
		detail(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": b.token, "token_type": "bearer"})
}

func (b *Backend) handleMe(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for email := range b.users {
		writeJSON(w, http.StatusOK, map[string]string{"email": email})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": "user@example.com"})
}

func (b *Backend) handleFiles(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	files := b.files
	if files == nil {
		files = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (b *Backend) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		detail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadErr != "" {
		detail(w, http.StatusBadRequest, b.uploadErr)
		return
	}
	if !strings.HasSuffix(header.Filename, ".pdf") {
		detail(w, http.StatusBadRequest, "Only PDF files allowed")
		return
	}
	b.files = append(b.files, map[string]any{
		"filename":    header.Filename,
		"upload_date": time.Now().UTC().Format("2006-01-02T15:04:05.000000"),
	})
	b.documents[header.Filename] = data
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "File uploaded and processed successfully",
		"filename": header.Filename,
	})
}

func (b *Backend) handleHistory(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.history[r.PathValue("filename")]
	if items == nil {
		items = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (b *Backend) handleQuery(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	reply := b.query
	b.mu.Unlock()
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, reply.Body)
}

func (b *Backend) handleDocument(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	data, ok := b.documents[r.PathValue("filename")]
	b.mu.Unlock()
	if !ok {
		detail(w, http.StatusNotFound, "Not Found")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write(data)
}
