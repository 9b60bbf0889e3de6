package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/utils"
)

// PDFService extracts text from PDF bytes with the poppler command line tools.
type PDFService struct {
	logger *logger.Logger
}

func NewPDFService(log *logger.Logger) *PDFService {
	return &PDFService{logger: log}
}

// ExtractText returns the cleaned text of every page, pages separated by a blank line.
// Pages that yield no text are skipped.
func (s *PDFService) ExtractText(ctx context.Context, data []byte) (string, error) {
	path, cleanup, err := utils.WriteTempFile("docqa-*.pdf", data)
	defer cleanup()
	if err != nil {
		return "", err
	}

	totalPages, err := getNumPages(ctx, path)
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text, err := extractTextWithPdftotext(ctx, path, pageNum)
		if err != nil {
			s.logger.Warn("Failed to extract page text", err, map[string]interface{}{"page": pageNum})
			continue
		}
		if text = cleanText(text); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("no text extracted from %d pages", totalPages)
	}
	return strings.Join(pages, "\n\n"), nil
}

func extractTextWithPdftotext(ctx context.Context, filepath string, pageNumber int) (string, error) {
	pdftotextCmd := exec.CommandContext(ctx, "pdftotext", "-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk",
		filepath, "-")
	var txtOut bytes.Buffer
	pdftotextCmd.Stdout = &txtOut

	if err := pdftotextCmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed on page %d: %w", pageNumber, err)
	}
	if trimmed := strings.TrimSpace(txtOut.String()); len(trimmed) > 0 {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

var pagesPattern = regexp.MustCompile(`Pages:\s+(\d+)`)

// getNumPages uses pdfinfo to get the total number of pages in a PDF file
func getNumPages(ctx context.Context, pdfPath string) (int, error) {
	cmd := exec.CommandContext(ctx, "pdfinfo", pdfPath)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %w", err)
	}
	return parsePageCount(&out)
}

func parsePageCount(out *bytes.Buffer) (int, error) {
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		if matches := pagesPattern.FindStringSubmatch(scanner.Text()); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}
	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

var textReplacer = strings.NewReplacer(
	"\u0000", "", // Null character
	"\ufffd", "", // Unicode replacement character
	"\u001b", "", // Escape character
	"\r", "",
	"\f", "\n", // Form feed to newline
	"‡", "",
	"†", "",
)

var multiSpace = regexp.MustCompile(`[ \t]{2,}`)

func cleanText(text string) string {
	cleaned := textReplacer.Replace(text)
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
