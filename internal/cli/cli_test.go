package cli

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askmydocs/askdocs/internal/testutil"
)

const testToken = "tok-cli"

// run executes the root command against b with a fresh flag state.
func run(t *testing.T, b *testutil.Backend, stdin string, args ...string) (string, error) {
	t.Helper()
	verbose, ephemeral, apiURL, configPath = false, false, "", ""
	authEmail, passwordStdin, filesSearch, openPage = "", false, "", 1
	color.NoColor = true

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--api-url", b.URL()}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func setup(t *testing.T) *testutil.Backend {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ASKDOCS_API_URL", "")
	b := testutil.NewBackend(t, testToken)
	b.AddUser("a@b.co", "secret")
	return b
}

func TestLoginThenAsk(t *testing.T) {
	b := setup(t)
	b.AddFile("a.pdf", "2024-05-01T10:00:00")
	b.AddFile("notes.pdf", "2024-05-02T10:00:00")
	b.SetQueryReply(testutil.QueryReply{Body: map[string]any{
		"response": "Summary.",
		"sources":  []map[string]any{{"page": 3, "content": "x"}, {"page": nil, "content": "y"}},
	}})

	out, err := run(t, b, "secret\n", "login", "--email", "a@b.co", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as a@b.co")

	out, err = run(t, b, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co\n", out)

	out, err = run(t, b, "", "files", "--search", "NOTES")
	require.NoError(t, err)
	assert.Contains(t, out, "notes.pdf")
	assert.NotContains(t, out, "a.pdf")

	out, err = run(t, b, "", "ask", "a.pdf", "What", "is", "this?")
	require.NoError(t, err)
	assert.Contains(t, out, "Q: What is this?")
	assert.Contains(t, out, "A: Summary.")
	assert.Contains(t, out, "Sources: Page 3, Page Unknown")

	for _, c := range b.Calls() {
		if c.Path == "/chat/query" {
			assert.Equal(t, "Bearer "+testToken, c.Auth)
			assert.Equal(t, "a.pdf", c.Form["filename"])
			assert.Equal(t, "What is this?", c.Form["question"])
		}
	}
}

func TestLoginRejected(t *testing.T) {
	b := setup(t)

	_, err := run(t, b, "wrong\n", "login", "--email", "a@b.co")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())

	_, err = run(t, b, "", "files")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLogoutForgetsSession(t *testing.T) {
	b := setup(t)

	_, err := run(t, b, "secret\n", "login", "--email", "a@b.co")
	require.NoError(t, err)
	out, err := run(t, b, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = run(t, b, "", "files")
	assert.ErrorIs(t, err, errNotLoggedIn)
	assert.Zero(t, b.Count(http.MethodGet, "/chat/files"))
}

func TestRegisterPasswordMismatch(t *testing.T) {
	b := setup(t)

	_, err := run(t, b, "new@b.co\none\ntwo\n", "register")
	require.Error(t, err)
	assert.Equal(t, "Passwords do not match", err.Error())
	assert.Zero(t, b.Count(http.MethodPost, "/auth/register"))
}

func TestRegisterDuplicate(t *testing.T) {
	b := setup(t)

	_, err := run(t, b, "secret\nsecret\n", "register", "--email", "a@b.co")
	require.Error(t, err)
	assert.Equal(t, "Email already registered", err.Error())
}

func TestUploadRejectsWrongExtension(t *testing.T) {
	b := setup(t)
	_, err := run(t, b, "secret\n", "login", "--email", "a@b.co")
	require.NoError(t, err)

	_, err = run(t, b, "", "upload", "/tmp/notes.txt")
	require.Error(t, err)
	assert.Equal(t, "Please select a PDF file", err.Error())
	assert.Zero(t, b.Count(http.MethodPost, "/chat/upload"))
}

func TestUploadSendsFile(t *testing.T) {
	b := setup(t)
	_, err := run(t, b, "secret\n", "login", "--email", "a@b.co")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "Q3 report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	out, err := run(t, b, "", "upload", "'"+path+"'")
	require.NoError(t, err)
	assert.Contains(t, out, "[DONE")
	assert.Contains(t, out, "Uploaded Q3 report.pdf")
	assert.Equal(t, 1, b.Count(http.MethodPost, "/chat/upload"))

	out, err = run(t, b, "", "files")
	require.NoError(t, err)
	assert.Contains(t, out, "Q3 report.pdf")
}

func TestHistoryPrintsExchanges(t *testing.T) {
	b := setup(t)
	b.SetHistory("a.pdf", []map[string]any{{
		"question":  "Who?",
		"answer":    "Alice.",
		"timestamp": "2024-05-01T10:00:00",
		"sources":   []map[string]any{{"page": "2", "content": "c"}},
	}})
	_, err := run(t, b, "secret\n", "login", "--email", "a@b.co")
	require.NoError(t, err)

	out, err := run(t, b, "", "history", "a.pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "Q: Who?")
	assert.Contains(t, out, "A: Alice.")
	assert.Contains(t, out, "Sources: Page 2")
}

func TestEphemeralSessionIsNotKept(t *testing.T) {
	b := setup(t)

	_, err := run(t, b, "secret\n", "--ephemeral", "login", "--email", "a@b.co")
	require.NoError(t, err)

	_, err = run(t, b, "", "files")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestRootWithoutTerminalListsCommands(t *testing.T) {
	b := setup(t)

	out, err := run(t, b, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Non-TTY environment detected.")
	assert.Contains(t, out, "askdocs files")
	assert.Empty(t, b.Calls())
}
