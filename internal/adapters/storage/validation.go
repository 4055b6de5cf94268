package storage

import (
	"fmt"
	"slices"
	"strings"

	"educare/platform/apperr"
)

// Upload kinds with their own MIME allow-lists.
const (
	KindImage    = "image"
	KindVideo    = "video"
	KindAudio    = "audio"
	KindDocument = "document"
)

// AllowedContentTypes defines the allowed MIME types per upload kind.
var AllowedContentTypes = map[string][]string{
	KindImage: {
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
	},
	KindVideo: {
		"video/mp4",
		"video/webm",
		"video/quicktime",
		"video/mpeg",
	},
	KindAudio: {
		"audio/mpeg",
		"audio/wav",
		"audio/x-wav",
		"audio/ogg",
		"audio/webm",
		"audio/mp4",
	},
	KindDocument: {
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"text/plain",
	},
}

// NormalizeContentType lowercases a MIME type and drops parameters such as charset.
func NormalizeContentType(contentType string) string {
	normalized := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(normalized))
}

// ValidateContentType checks that contentType is allowed for kind.
func ValidateContentType(kind, contentType string) error {
	allowed, ok := AllowedContentTypes[kind]
	if !ok {
		return apperr.Validation(fmt.Sprintf("%s resources do not accept file uploads", kind))
	}
	if !slices.Contains(allowed, NormalizeContentType(contentType)) {
		return apperr.Validation(fmt.Sprintf("content type %q is not allowed for %s", contentType, kind)).
			WithDetails(map[string][]string{"allowed": allowed})
	}
	return nil
}

// ValidateFileSize checks that the file size is within limits.
func ValidateFileSize(sizeBytes, maxBytes int64) error {
	if sizeBytes <= 0 {
		return apperr.Validation("file is empty")
	}
	if sizeBytes > maxBytes {
		return apperr.Validation(fmt.Sprintf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, maxBytes))
	}
	return nil
}
