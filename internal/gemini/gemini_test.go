package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFlattenTranscript(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain string", `"already flat"`, "already flat"},
		{"segment objects", `[{"text":"hello"},{"text":"world"}]`, "hello world"},
		{"bare strings", `["one","two"]`, "one two"},
		{"mixed", `["one",{"text":"two"}]`, "one two"},
		{"segments without text", `[{"start":0},{"text":"kept"}]`, "kept"},
		{"empty array", `[]`, ""},
		{"unusable", `42`, ""},
	}

	for _, tt := range tests {
		got := FlattenTranscript(json.RawMessage(tt.raw))
		if got != tt.want {
			t.Errorf("%s: FlattenTranscript(%s) = %q, want %q", tt.name, tt.raw, got, tt.want)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("the transcript text", "what is this about?")

	if !strings.Contains(prompt, "TRANSCRIPT:\nthe transcript text") {
		t.Error("prompt missing transcript section")
	}
	if !strings.Contains(prompt, "USER QUESTION:\nwhat is this about?") {
		t.Error("prompt missing question section")
	}
}

func TestGenerateContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if key := r.URL.Query().Get("key"); key != "test-key" {
			t.Errorf("key = %q, want test-key", key)
		}

		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 {
			t.Errorf("unexpected request shape: %+v", req)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{
					{"text": "part one "},
					{"text": "part two"},
				}}},
			},
		})
	}))
	defer server.Close()

	c := NewClient("test-key", WithBaseURL(server.URL))
	got, err := c.GenerateContent(context.Background(), "hello")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "part one part two" {
		t.Errorf("response = %q, want parts joined", got)
	}
}

func TestGenerateContentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	c := NewClient("k", WithBaseURL(server.URL))
	if _, err := c.GenerateContent(context.Background(), "hello"); err == nil {
		t.Error("expected error on non-200 response")
	}
}

func TestGenerateContentEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	c := NewClient("k", WithBaseURL(server.URL))
	if _, err := c.GenerateContent(context.Background(), "hello"); err == nil {
		t.Error("expected error on empty candidates")
	}
}
