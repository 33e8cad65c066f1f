package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agribharat/agribharat-api/internal/domain"
)

func newGateway(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client())
}

func TestClientRoutesEachCapability(t *testing.T) {
	var (
		paths []string
		reqs  []RunRequest
	)
	c := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req RunRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		paths = append(paths, r.URL.Path)
		reqs = append(reqs, req)

		_ = json.NewEncoder(w).Encode(RunResponse{Content: "ok " + r.URL.Path})
	})

	ctx := context.Background()
	out, err := c.AnswerQuestion(ctx, "How to grow rice?", domain.LanguageHindi)
	require.NoError(t, err)
	assert.Equal(t, "ok /run/qa", out)

	_, err = c.AnalyzeDisease(ctx, domain.Image{Data: []byte{0xff, 0xd8}, MimeType: "image/jpeg"}, "What disease?", domain.LanguageTamil)
	require.NoError(t, err)

	_, err = c.AnalyzeMarket(ctx, "Wheat", domain.LanguageEnglish)
	require.NoError(t, err)

	_, err = c.LookupSchemes(ctx, "PM-KISAN", domain.LanguageTelugu)
	require.NoError(t, err)

	assert.Equal(t, []string{"/run/qa", "/run/disease", "/run/market", "/run/schemes"}, paths)
	assert.Equal(t, "Hindi", reqs[0].Language)
	assert.Equal(t, []byte{0xff, 0xd8}, reqs[1].ImageBytes)
	assert.Equal(t, "image/jpeg", reqs[1].MimeType)
	assert.Equal(t, "Wheat", reqs[2].CropName)
	assert.Equal(t, "PM-KISAN", reqs[3].SchemeQuery)
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(RunResponse{Error: "agent crashed"})
			},
			wantErr: "agent crashed",
		},
		{
			name: "non json failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad gateway", http.StatusBadGateway)
			},
			wantErr: "agents gateway returned 502: bad gateway",
		},
		{
			name: "empty content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"content":""}`))
			},
			wantErr: "no content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newGateway(t, tt.handler)
			_, err := c.AnswerQuestion(context.Background(), "q", domain.LanguageEnglish)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil)
	_, err := c.AnalyzeMarket(context.Background(), "Rice", domain.LanguageEnglish)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agents gateway market unavailable")
}
