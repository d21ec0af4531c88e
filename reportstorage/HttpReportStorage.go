package reportstorage

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ReportIdGenerator interface {
	Generate() string
}

type UuidReportGenerator struct{}

func (u UuidReportGenerator) Generate() string {
	return uuid.New().String()
}

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var contentTypes = map[string]string{
	"checkstyle": "application/xml",
	"sarif":      "application/sarif+json",
	"html":       "text/html; charset=utf-8",
	"json":       "application/json",
	"jsonl":      "application/x-ndjson",
	"md":         "text/markdown; charset=utf-8",
	"profiling":  "text/csv",
	"xlsx":       "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"sqlite":     "application/vnd.sqlite3",
}

// HttpReportStorage uploads a report to a collector service: the report body is
// posted under a fresh report id, then the report is marked as completed.
type HttpReportStorage struct {
	BaseURL           string
	ReportFormat      string
	HTTPClient        HttpClient
	ReportIdGenerator ReportIdGenerator
}

func NewDefaultHttpReportStorage(baseURL, reportFormat string) HttpReportStorage {
	return HttpReportStorage{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		ReportFormat:      reportFormat,
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
		ReportIdGenerator: UuidReportGenerator{},
	}
}

func (h HttpReportStorage) Location() string {
	return h.BaseURL
}

func (h HttpReportStorage) Store(data []byte) error {
	reportId := h.ReportIdGenerator.Generate()

	if err := h.postReport(data, reportId); err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}
	if err := h.signalCompletion(reportId); err != nil {
		return fmt.Errorf("failed to signal completion: %w", err)
	}
	log.WithFields(log.Fields{"report": h.ReportFormat, "id": reportId}).Info("Uploaded report")
	return nil
}

func (h HttpReportStorage) postReport(data []byte, reportId string) error {
	url := fmt.Sprintf("%s/reports/%s/results", h.BaseURL, reportId)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	contentType, ok := contentTypes[h.ReportFormat]
	if !ok {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Report-Format", h.ReportFormat)

	return h.send(req)
}

func (h HttpReportStorage) signalCompletion(reportId string) error {
	url := fmt.Sprintf("%s/report/%s", h.BaseURL, reportId)
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader([]byte(`{"status":"completed"}`)))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return h.send(req)
}

func (h HttpReportStorage) send(req *http.Request) error {
	resp, err := h.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response status: %d", resp.StatusCode)
	}
	return nil
}
