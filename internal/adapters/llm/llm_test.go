package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agribharat/agribharat-api/internal/domain"
)

func TestMockLLM(t *testing.T) {
	m := NewMockLLM()

	reply, err := m.GenerateReply(context.Background(), domain.Prompt{User: "How to grow rice?\nmore"})
	require.NoError(t, err)
	assert.Equal(t, "Mock advisory: How to grow rice?", reply)

	reply, err = m.GenerateReply(context.Background(), domain.Prompt{
		User:  "What disease is this?",
		Image: &domain.Image{Data: []byte{1, 2, 3}, MimeType: "image/png"},
	})
	require.NoError(t, err)
	assert.Contains(t, reply, "image/png")
	assert.Contains(t, reply, "3 bytes")
}

func TestBuildContentWithImage(t *testing.T) {
	c := buildContent(domain.Prompt{User: "q"})
	require.Len(t, c.Parts, 1)
	assert.Equal(t, "q", c.Parts[0].Text)

	c = buildContent(domain.Prompt{User: "q", Image: &domain.Image{Data: []byte("img"), MimeType: "image/jpeg"}})
	require.Len(t, c.Parts, 2)
	require.NotNil(t, c.Parts[0].InlineData)
	assert.Equal(t, "image/jpeg", c.Parts[0].InlineData.MIMEType)
	assert.Equal(t, "q", c.Parts[1].Text)
}

func TestOllamaClientSendsImageAndSystemPrompt(t *testing.T) {
	var got api.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llava:latest","message":{"role":"assistant","content":"Leaf blight"},"done":true}` + "\n"))
	}))
	defer srv.Close()

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	client := NewOllamaClientWith(api.NewClient(base, srv.Client()), "")

	reply, err := client.GenerateReply(context.Background(), domain.Prompt{
		System: "sys",
		User:   "what is this",
		Image:  &domain.Image{Data: []byte("png-bytes"), MimeType: "image/png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Leaf blight", reply)

	assert.Equal(t, "llava:latest", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
	require.Len(t, got.Messages[1].Images, 1)
	assert.Equal(t, []byte("png-bytes"), []byte(got.Messages[1].Images[0]))
}

func TestOllamaClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	client := NewOllamaClientWith(api.NewClient(base, srv.Client()), "llava")

	_, err = client.GenerateReply(context.Background(), domain.Prompt{User: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) GenerateReply(_ context.Context, _ domain.Prompt) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestInstrumentedPassesThrough(t *testing.T) {
	ok := &stubLLM{reply: "fine"}
	reply, err := NewInstrumented(ok, "mock").GenerateReply(context.Background(), domain.Prompt{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "fine", reply)
	assert.Equal(t, 1, ok.calls)

	boom := errors.New("quota exceeded")
	failing := &stubLLM{err: boom}
	_, err = NewInstrumented(failing, "vertex").GenerateReply(context.Background(), domain.Prompt{User: "x"})
	assert.ErrorIs(t, err, boom)
}
