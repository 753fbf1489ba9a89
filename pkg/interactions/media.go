// ABOUTME: Loads a local media file as an inline base64 content part
// ABOUTME: MIME type comes from the file extension and selects image, audio, video or document

package interactions

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// maxInlineMedia bounds inline uploads; larger files should go through a URI.
const maxInlineMedia = 20 << 20

// mediaTypes covers the formats the service accepts inline. The system MIME
// table is consulted for anything else.
var mediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
	".heic": "image/heic",
	".heif": "image/heif",
	".mp3":  "audio/mp3",
	".wav":  "audio/wav",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".aiff": "audio/aiff",
	".mp4":  "video/mp4",
	".mpeg": "video/mpeg",
	".mov":  "video/mov",
	".avi":  "video/avi",
	".webm": "video/webm",
	".wmv":  "video/wmv",
	".3gp":  "video/3gpp",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".html": "text/html",
	".csv":  "text/csv",
}

// MIMETypeForPath guesses a MIME type from the file extension.
func MIMETypeForPath(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := mediaTypes[ext]; ok {
		return t, true
	}
	if t := mime.TypeByExtension(ext); t != "" {
		t, _, _ = strings.Cut(t, ";")
		return t, true
	}
	return "", false
}

// LoadMediaFile reads path and returns it as an inline part whose variant
// follows the MIME family: image/*, audio/* and video/* map to their parts,
// everything else to DocumentContent.
func LoadMediaFile(path string) (Content, error) {
	mimeType, ok := MIMETypeForPath(path)
	if !ok {
		return nil, fmt.Errorf("load media %s: unknown file extension", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load media: %w", err)
	}
	if info.Size() > maxInlineMedia {
		return nil, fmt.Errorf("load media %s: %d bytes exceeds inline limit of %d", path, info.Size(), maxInlineMedia)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load media: %w", err)
	}
	data := base64.StdEncoding.EncodeToString(raw)

	family, _, _ := strings.Cut(mimeType, "/")
	switch family {
	case "image":
		return NewImageData(data, mimeType), nil
	case "audio":
		return NewAudioData(data, mimeType), nil
	case "video":
		return NewVideoData(data, mimeType), nil
	default:
		return NewDocumentData(data, mimeType), nil
	}
}
