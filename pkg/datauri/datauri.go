// Package datauri turns local media files into inline data URIs for multimodal requests.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
)

var mimeExtMap = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
	".heic": "image/heic",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".json": "application/json",
}

var ErrMalformed = errors.New("malformed data URI")

// MediaType infers a media type from the file name, or "" when unknown.
func MediaType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if mt, ok := mimeExtMap[ext]; ok {
		return mt
	}
	mt := mime.TypeByExtension(ext)
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}

// Encode reads path and returns "data:<mediaType>;base64,<payload>".
// It reports false, after logging the cause, when the media type is unknown or the file
// cannot be read.
func Encode(path string) (string, bool) {
	ctx := log.WithField("path", path)

	mt := MediaType(path)
	if mt == "" {
		ctx.Warn("cannot infer media type")
		return "", false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			ctx.Error("file not found")
		} else {
			ctx.WithError(err).Error("read file for base64 encoding")
		}
		return "", false
	}
	return build(mt, data), true
}

// EncodeBytes encodes data already in memory, inferring the media type from name.
func EncodeBytes(name string, data []byte) (string, bool) {
	mt := MediaType(name)
	if mt == "" {
		log.WithField("name", name).Warn("cannot infer media type")
		return "", false
	}
	return build(mt, data), true
}

func build(mediaType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mediaType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mediaType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// Decode splits a base64 data URI into its media type and payload bytes.
func Decode(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrMalformed)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload separator", ErrMalformed)
	}
	mediaType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrMalformed)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return mediaType, data, nil
}
