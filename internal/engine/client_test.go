package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCorrectDecodesEngineResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/correct" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Text != "this ia a test" {
			t.Errorf("text = %q", body.Text)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"corrections":[{"id":1,"type":"spelling","original":"ia","corrected":"is","startIndex":5,"endIndex":7,"message":"Correct your spelling"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, false)
	corrections, err := client.Correct(context.Background(), "this ia a test")
	if err != nil {
		t.Fatalf("Correct = %v", err)
	}
	if len(corrections) != 1 {
		t.Fatalf("corrections = %v", corrections)
	}
	c := corrections[0]
	if c.ID != 1 || c.Original != "ia" || c.Corrected != "is" || c.StartIndex != 5 || c.EndIndex != 7 {
		t.Errorf("correction = %+v", c)
	}
}

func TestCorrectEmptyCorrectionsIsNotNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, false)
	corrections, err := client.Correct(context.Background(), "clean text")
	if err != nil {
		t.Fatalf("Correct = %v", err)
	}
	if corrections == nil || len(corrections) != 0 {
		t.Errorf("corrections = %#v, want empty non-nil slice", corrections)
	}
}

func TestCorrectServerErrorWithoutFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, false)
	if _, err := client.Correct(context.Background(), "text"); err == nil {
		t.Fatal("expected error without fallback")
	}
}

func TestCorrectServerErrorWithDebugFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, true)
	corrections, err := client.Correct(context.Background(), "text")
	if err != nil {
		t.Fatalf("Correct = %v, want fallback", err)
	}
	if len(corrections) != len(SampleCorrections) {
		t.Errorf("corrections = %v, want sample set", corrections)
	}
}

func TestCorrectUnreachableEngineWithDebugFallback(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", true)
	corrections, err := client.Correct(context.Background(), "text")
	if err != nil {
		t.Fatalf("Correct = %v, want fallback", err)
	}
	if len(corrections) == 0 {
		t.Error("want sample corrections")
	}
}
