package media

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// maxTextChunk bounds decompressed zTXt/iTXt payloads.
const maxTextChunk = 1 << 20

// readPNG collects Title/Description text chunks and an eXIf chunk.
func readPNG(meta *Metadata, data []byte) {
	i := len(pngSignature)
	for i+12 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[i:]))
		kind := string(data[i+4 : i+8])
		start := i + 8
		if length < 0 || start+length+4 > len(data) {
			return
		}
		chunk := data[start : start+length]
		i = start + length + 4

		switch kind {
		case "tEXt":
			key, value, ok := parseTEXt(chunk)
			if ok {
				setPNGText(meta, key, value)
			}
		case "zTXt":
			key, value, ok := parseZTXt(chunk)
			if ok {
				setPNGText(meta, key, value)
			}
		case "iTXt":
			key, value, ok := parseITXt(chunk)
			if ok {
				setPNGText(meta, key, value)
			}
		case "eXIf":
			readEXIF(meta, bytes.TrimPrefix(chunk, exifHeader))
		case "IEND":
			return
		}
	}
}

func setPNGText(meta *Metadata, key, value string) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(key) {
	case "title":
		if meta.Title == "" {
			meta.Title = value
		}
	case "description":
		if meta.Description == "" {
			meta.Description = value
		}
	}
}

func parseTEXt(chunk []byte) (string, string, bool) {
	key, rest, ok := bytes.Cut(chunk, []byte{0})
	if !ok {
		return "", "", false
	}
	return string(key), latin1(rest), true
}

func parseZTXt(chunk []byte) (string, string, bool) {
	key, rest, ok := bytes.Cut(chunk, []byte{0})
	if !ok || len(rest) < 1 || rest[0] != 0 {
		return "", "", false
	}
	text, err := inflate(rest[1:])
	if err != nil {
		return "", "", false
	}
	return string(key), latin1(text), true
}

func parseITXt(chunk []byte) (string, string, bool) {
	key, rest, ok := bytes.Cut(chunk, []byte{0})
	if !ok || len(rest) < 2 {
		return "", "", false
	}
	compressed := rest[0] == 1
	rest = rest[2:]
	// language tag, then translated keyword
	if _, rest, ok = bytes.Cut(rest, []byte{0}); !ok {
		return "", "", false
	}
	if _, rest, ok = bytes.Cut(rest, []byte{0}); !ok {
		return "", "", false
	}
	if compressed {
		text, err := inflate(rest)
		if err != nil {
			return "", "", false
		}
		rest = text
	}
	return string(key), string(rest), true
}

func inflate(b []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(io.LimitReader(r, maxTextChunk))
}

func latin1(b []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
