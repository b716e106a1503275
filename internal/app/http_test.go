package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"redline/api/internal/editor"
)

func newTestServer(t *testing.T, st *fakeStore, eng *fakeEngine) *httptest.Server {
	t.Helper()
	svc := newTestService(st, eng)
	server := httptest.NewServer(NewHTTPServer(svc, "*").Handler())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	payload := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func signUpUser(t *testing.T, server *httptest.Server, email string) (token, userID string) {
	t.Helper()
	resp, payload := doJSON(t, http.MethodPost, server.URL+"/api/auth/signup", "", map[string]any{
		"email":    email,
		"password": "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d, payload = %v", resp.StatusCode, payload)
	}
	return payload["accessToken"].(string), payload["userId"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, newFakeStore(), nil)

	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK || payload["ok"] != true {
		t.Fatalf("health = %d %v", resp.StatusCode, payload)
	}
}

func TestEditorRequiresAuth(t *testing.T) {
	server := newTestServer(t, newFakeStore(), nil)

	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/editor", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if payload["code"] != "UNAUTHORIZED" {
		t.Errorf("code = %v", payload["code"])
	}
}

func TestSignUpAndSignInOverHTTP(t *testing.T) {
	st := newFakeStore()
	server := newTestServer(t, st, nil)

	token, _ := signUpUser(t, server, "writer@example.com")

	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/session", token, nil)
	if resp.StatusCode != http.StatusOK || payload["authenticated"] != true {
		t.Fatalf("session = %d %v", resp.StatusCode, payload)
	}
	if payload["tier"] != "free" {
		t.Errorf("tier = %v, want free", payload["tier"])
	}

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/auth/signup", "", map[string]any{
		"email":    "writer@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/auth/signin", "", map[string]any{
		"email":    "writer@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad signin status = %d, want 401", resp.StatusCode)
	}
}

func TestEditorFlowOverHTTP(t *testing.T) {
	st := newFakeStore()
	eng := &fakeEngine{
		correctFn: func(context.Context, string) ([]editor.Correction, error) {
			return []editor.Correction{
				{ID: 1, Kind: "spelling", Original: "ia", Corrected: "is", StartIndex: 5, EndIndex: 7},
			}, nil
		},
	}
	server := newTestServer(t, st, eng)

	token, userID := signUpUser(t, server, "writer@example.com")
	// LLM rounds need a paid balance; flip the seeded account directly.
	user := st.users[userID]
	user.Tier = "paid"
	user.Tokens = 50
	st.users[userID] = user

	resp, payload := doJSON(t, http.MethodPut, server.URL+"/api/editor", token, map[string]any{
		"text":  "this ia a test",
		"title": "Draft",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d %v", resp.StatusCode, payload)
	}
	if payload["wordCount"] != float64(4) {
		t.Errorf("wordCount = %v, want 4", payload["wordCount"])
	}

	resp, payload = doJSON(t, http.MethodPost, server.URL+"/api/editor/submit", token, map[string]any{
		"checkType": "llm",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d %v", resp.StatusCode, payload)
	}
	if payload["readOnly"] != true {
		t.Error("expected read-only after llm submit")
	}
	corrections := payload["corrections"].([]any)
	if len(corrections) != 1 {
		t.Fatalf("corrections = %v", corrections)
	}

	resp, payload = doJSON(t, http.MethodPost, server.URL+"/api/editor/corrections/1/accept", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept status = %d %v", resp.StatusCode, payload)
	}
	if payload["text"] != "this is a test" {
		t.Errorf("text = %v, want corrected buffer", payload["text"])
	}

	resp, payload = doJSON(t, http.MethodPost, server.URL+"/api/editor/clear", token, nil)
	if resp.StatusCode != http.StatusOK || payload["text"] != "" {
		t.Fatalf("clear = %d %v", resp.StatusCode, payload)
	}
	if payload["title"] != editor.DefaultTitle {
		t.Errorf("title after clear = %v, want %q", payload["title"], editor.DefaultTitle)
	}
}

func TestSubmitInsufficientTokensOverHTTP(t *testing.T) {
	st := newFakeStore()
	server := newTestServer(t, st, nil)

	token, userID := signUpUser(t, server, "writer@example.com")
	user := st.users[userID]
	user.Tier = "paid"
	user.Tokens = 2
	st.users[userID] = user

	text := strings.Repeat("word ", 200)
	resp, payload := doJSON(t, http.MethodPut, server.URL+"/api/editor", token, map[string]any{"text": text})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d %v", resp.StatusCode, payload)
	}

	resp, payload = doJSON(t, http.MethodPost, server.URL+"/api/editor/submit", token, map[string]any{"checkType": "llm"})
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("status = %d %v, want 402", resp.StatusCode, payload)
	}
	if payload["code"] != "INSUFFICIENT_TOKENS" {
		t.Errorf("code = %v", payload["code"])
	}

	// Half the balance was taken as the penalty debit.
	if st.users[userID].Tokens != 1 {
		t.Errorf("balance = %d, want 1 after penalty", st.users[userID].Tokens)
	}
}

func TestAdminRequiresSuperTier(t *testing.T) {
	st := newFakeStore()
	server := newTestServer(t, st, nil)

	token, userID := signUpUser(t, server, "writer@example.com")

	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/admin/blacklist", token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d %v, want 403", resp.StatusCode, payload)
	}

	user := st.users[userID]
	user.Tier = "super"
	st.users[userID] = user

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/admin/blacklist", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 for super tier", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/admin/blacklist", token, map[string]any{"word": "zorp"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add word status = %d, want 201", resp.StatusCode)
	}
}

func TestDocumentEndpointsOverHTTP(t *testing.T) {
	st := newFakeStore()
	server := newTestServer(t, st, nil)

	token, userID := signUpUser(t, server, "writer@example.com")
	user := st.users[userID]
	user.Tier = "paid"
	user.Tokens = 20
	st.users[userID] = user

	resp, payload := doJSON(t, http.MethodPut, server.URL+"/api/editor", token, map[string]any{
		"text":  "words worth keeping around",
		"title": "Kept",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d %v", resp.StatusCode, payload)
	}

	resp, payload = doJSON(t, http.MethodPost, server.URL+"/api/editor/save", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d %v", resp.StatusCode, payload)
	}
	docID := payload["document"].(map[string]any)["id"].(string)

	resp, payload = doJSON(t, http.MethodGet, server.URL+"/api/documents", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	if len(payload["documents"].([]any)) != 1 {
		t.Fatalf("documents = %v", payload["documents"])
	}

	resp, payload = doJSON(t, http.MethodGet, server.URL+"/api/documents/"+docID, token, nil)
	if resp.StatusCode != http.StatusOK || payload["content"] != "words worth keeping around" {
		t.Fatalf("get = %d %v", resp.StatusCode, payload)
	}

	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/api/documents/"+docID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/documents/"+docID, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status after delete = %d, want 404", resp.StatusCode)
	}
}
