package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/logger"
)

type stubPDF struct {
	got []byte
}

func (p *stubPDF) ExtractText(ctx context.Context, data []byte) (string, error) {
	p.got = data
	return "pdf text", nil
}

func newDocumentServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>T</title><style>p{}</style></head>
<body><h1>Title</h1><script>var x = 1;</script><p>First   paragraph.</p><p>Second <b>bold</b> one.</p></body></html>`))
	})
	mux.HandleFunc("/notes.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("plain notes"))
	})
	mux.HandleFunc("/paper.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	})
	mux.HandleFunc("/big.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("a", 2048)))
	})
	mux.HandleFunc("/slow.txt", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte("slow"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := newDocumentServer(t)
	pdf := &stubPDF{}
	f := NewHTTPFetcher(config.FetcherConfig{Timeout: 5 * time.Second, Concurrency: 3, MaxBytes: 1024}, pdf, logger.NewNop())

	urls := []string{srv.URL + "/slow.txt", srv.URL + "/page.html", srv.URL + "/notes.txt", srv.URL + "/paper.pdf"}
	docs, err := f.Fetch(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, docs, 4)

	for i, u := range urls {
		assert.Equal(t, u, docs[i].Source, "documents keep input order")
	}
	assert.Equal(t, "slow", docs[0].Content)
	assert.Equal(t, "Title\nFirst paragraph.\nSecond bold one.", docs[1].Content)
	assert.Equal(t, "plain notes", docs[2].Content)
	assert.Equal(t, "pdf text", docs[3].Content)
	assert.Equal(t, "%PDF-1.4 fake", string(pdf.got))
}

func TestHTTPFetcher_Errors(t *testing.T) {
	srv := newDocumentServer(t)
	f := NewHTTPFetcher(config.FetcherConfig{Timeout: 5 * time.Second, Concurrency: 2, MaxBytes: 1024}, nil, logger.NewNop())

	_, err := f.Fetch(context.Background(), []string{srv.URL + "/notes.txt", srv.URL + "/missing"})
	assert.ErrorContains(t, err, "unexpected status 404")

	_, err = f.Fetch(context.Background(), []string{srv.URL + "/big.txt"})
	assert.ErrorContains(t, err, "exceeds 1024 bytes")

	_, err = f.Fetch(context.Background(), []string{srv.URL + "/paper.pdf"})
	assert.ErrorContains(t, err, "pdf extraction is not configured")

	_, err = f.Fetch(context.Background(), []string{"://bad-url"})
	assert.Error(t, err)
}

func TestHTMLToText(t *testing.T) {
	text, err := htmlToText(strings.NewReader(`<div>one<br/>two</div><noscript>hidden</noscript><ul><li>a</li><li>b</li></ul>`))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\na\nb", text)
}
