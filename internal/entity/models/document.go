package models

import (
	"strings"
	"time"
)

// DocumentType classifies stored documents by their MIME type at upload time.
type DocumentType string

const (
	DocumentTypePDF   DocumentType = "PDF"
	DocumentTypeImage DocumentType = "IMAGE"
	DocumentTypeCSV   DocumentType = "CSV"
	DocumentTypeOther DocumentType = "OTHER"
)

// MaxDocumentsPerUpload caps a single upload batch. The documents list on an
// entity itself is unbounded.
const MaxDocumentsPerUpload = 10

// DocumentTypeFromMIME derives the document type from a MIME type string.
func DocumentTypeFromMIME(mimeType string) DocumentType {
	mt := strings.ToLower(mimeType)
	switch {
	case mt == "application/pdf":
		return DocumentTypePDF
	case strings.HasPrefix(mt, "image/"):
		return DocumentTypeImage
	case mt == "text/csv" || mt == "application/csv":
		return DocumentTypeCSV
	default:
		return DocumentTypeOther
	}
}

// Document is the metadata record for a stored binary. The bytes themselves
// live in the document blob store; workflow components only carry this record.
type Document struct {
	Type         DocumentType `json:"type"`
	Filename     string       `json:"filename"`
	OriginalName string       `json:"originalName"`
	MimeType     string       `json:"mimeType"`
	Size         int64        `json:"size"`
	Path         string       `json:"path"`
	UploadedAt   time.Time    `json:"uploadedAt"`
}
