package reportstorage

import (
	"strings"

	"github.com/reaandrew/lintdetector/utils"
)

// ReportStorage persists one rendered report.
type ReportStorage interface {
	Store(data []byte) error
	Location() string
}

// CreateReportStorage picks HTTP upload for http(s) destinations and a local file otherwise.
func CreateReportStorage(destination, reportFormat string) ReportStorage {
	if strings.HasPrefix(destination, "http://") || strings.HasPrefix(destination, "https://") {
		return NewDefaultHttpReportStorage(destination, reportFormat)
	}
	return FileReportStorage{Path: destination}
}

// FileReportStorage replaces the file at Path atomically, creating parent directories.
type FileReportStorage struct {
	Path string
}

func (s FileReportStorage) Store(data []byte) error {
	return utils.WriteFileAtomic(s.Path, data)
}

func (s FileReportStorage) Location() string {
	return s.Path
}
