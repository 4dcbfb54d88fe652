package media

import (
	"bytes"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/text/encoding/unicode"
)

var exifHeader = []byte("Exif\x00\x00")

// readEXIF decodes a TIFF structure, the payload of an Exif block.
func readEXIF(meta *Metadata, tiffData []byte) {
	x, err := exif.Decode(bytes.NewReader(tiffData))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return
	}

	if tag, err := x.Get(exif.ImageDescription); err == nil {
		if s, err := tag.StringVal(); err == nil {
			meta.ImageDescription = trimNUL(s)
		}
	}
	// Windows Explorer tags hold UTF-16LE bytes.
	if tag, err := x.Get(exif.XPTitle); err == nil {
		meta.XPTitle = decodeUTF16LE(tag.Val)
	}
	if tag, err := x.Get(exif.XPComment); err == nil {
		meta.XPComment = decodeUTF16LE(tag.Val)
	}
}

func decodeUTF16LE(b []byte) string {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return trimNUL(string(out))
}

func trimNUL(s string) string {
	return strings.TrimRight(s, "\x00")
}
