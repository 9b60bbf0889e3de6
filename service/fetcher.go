package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/types"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// DocumentFetcher turns URLs into plain text documents.
type DocumentFetcher interface {
	Fetch(ctx context.Context, urls []string) ([]types.Document, error)
}

// PDFExtractor converts raw PDF bytes to text.
type PDFExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

type HTTPFetcher struct {
	client      *http.Client
	pdf         PDFExtractor
	concurrency int
	maxBytes    int64
	logger      *logger.Logger
}

func NewHTTPFetcher(cfg config.FetcherConfig, pdf PDFExtractor, log *logger.Logger) *HTTPFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &HTTPFetcher{
		client:      &http.Client{Timeout: timeout},
		pdf:         pdf,
		concurrency: concurrency,
		maxBytes:    cfg.MaxBytes,
		logger:      log,
	}
}

// Fetch downloads every URL concurrently. Documents come back in input order;
// the first failure cancels the remaining downloads.
func (f *HTTPFetcher) Fetch(ctx context.Context, urls []string) ([]types.Document, error) {
	docs := make([]types.Document, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, url := range urls {
		g.Go(func() error {
			content, err := f.fetchOne(gctx, url)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", url, err)
			}
			docs[i] = types.Document{Source: url, Content: content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (f *HTTPFetcher) fetchOne(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := f.readBody(resp.Body)
	if err != nil {
		return "", err
	}

	contentType := mediaType(resp.Header.Get("Content-Type"), body)
	f.logger.Debug("Fetched document", nil, map[string]interface{}{
		"url":          url,
		"bytes":        len(body),
		"content_type": contentType,
	})

	switch {
	case contentType == "application/pdf" || strings.HasSuffix(strings.ToLower(url), ".pdf"):
		if f.pdf == nil {
			return "", fmt.Errorf("pdf extraction is not configured")
		}
		return f.pdf.ExtractText(ctx, body)
	case contentType == "text/html" || contentType == "application/xhtml+xml":
		return htmlToText(bytes.NewReader(body))
	default:
		return string(body), nil
	}
}

func (f *HTTPFetcher) readBody(r io.Reader) ([]byte, error) {
	if f.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", f.maxBytes)
	}
	return body, nil
}

func mediaType(header string, body []byte) string {
	if header == "" {
		header = http.DetectContentType(body)
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return mt
}

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
	"template": true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true,
	"blockquote": true, "pre": true, "table": true, "ul": true, "ol": true,
}

// htmlToText keeps the visible text of an HTML document, one line per block element.
func htmlToText(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	var sb strings.Builder
	skipDepth := 0

	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteString("\n")
		}
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return strings.TrimSpace(sb.String()), nil
			}
			return "", z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skippedElements[tag] && tt == html.StartTagToken {
				skipDepth++
			}
			if blockElements[tag] {
				newline()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skippedElements[tag] && skipDepth > 0 {
				skipDepth--
			}
			if blockElements[tag] {
				newline()
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.Join(strings.Fields(string(z.Text())), " ")
			if text == "" {
				continue
			}
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteString(" ")
			}
			sb.WriteString(text)
		}
	}
}
