package media

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrUnsupportedFormat is returned for data that is not a recognized image
// container.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Metadata collects the caption-like fields embedded in an image.
type Metadata struct {
	IPTC IPTC
	XMP  XMP

	// TIFF/EXIF IFD0
	ImageDescription string
	XPTitle          string
	XPComment        string

	// PNG text chunks
	Title       string
	Description string
}

// IPTC holds IIM application record fields.
type IPTC struct {
	Caption    string // 2:120 Caption/Abstract
	ObjectName string // 2:05
}

// XMP holds Dublin Core fields from an XMP packet.
type XMP struct {
	Description string
	Title       string
}

type format int

const (
	formatUnknown format = iota
	formatJPEG
	formatPNG
	formatTIFF
	formatWebP
	formatAVIF
)

func sniff(data []byte) format {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return formatJPEG
	case bytes.HasPrefix(data, pngSignature):
		return formatPNG
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return formatTIFF
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return formatWebP
	case len(data) >= 12 && string(data[4:8]) == "ftyp" &&
		(string(data[8:12]) == "avif" || string(data[8:12]) == "avis" || string(data[8:12]) == "mif1"):
		return formatAVIF
	}
	return formatUnknown
}

// ExtractMetadata reads IPTC, XMP, EXIF and PNG text captions from an image.
// Damaged blocks are skipped; only an unrecognized container is an error.
func ExtractMetadata(data []byte) (*Metadata, error) {
	meta := &Metadata{}

	switch sniff(data) {
	case formatJPEG:
		for _, seg := range jpegSegments(data) {
			switch {
			case seg.marker == 0xE1 && bytes.HasPrefix(seg.data, exifHeader):
				readEXIF(meta, seg.data[len(exifHeader):])
			case seg.marker == 0xED && bytes.HasPrefix(seg.data, photoshopHeader):
				readIPTC(meta, seg.data[len(photoshopHeader):])
			}
		}
	case formatPNG:
		readPNG(meta, data)
	case formatTIFF:
		readEXIF(meta, data)
	case formatWebP:
		if exif := webpChunk(data, "EXIF"); exif != nil {
			readEXIF(meta, bytes.TrimPrefix(exif, exifHeader))
		}
	case formatAVIF:
		if tiff := heifExif(data); tiff != nil {
			readEXIF(meta, tiff)
		}
	default:
		return nil, ErrUnsupportedFormat
	}

	readXMP(meta, data)
	return meta, nil
}

type segment struct {
	marker byte
	data   []byte
}

// jpegSegments returns the marker segments that precede the image scan.
func jpegSegments(data []byte) []segment {
	var segs []segment
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			break
		}
		marker := data[i+1]
		switch {
		case marker == 0xFF:
			i++
			continue
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD8):
			i += 2
			continue
		case marker == 0xDA || marker == 0xD9:
			return segs
		}
		length := int(binary.BigEndian.Uint16(data[i+2:]))
		if length < 2 || i+2+length > len(data) {
			break
		}
		segs = append(segs, segment{marker: marker, data: data[i+4 : i+2+length]})
		i += 2 + length
	}
	return segs
}

// webpChunk returns the payload of the first RIFF chunk named fourcc.
func webpChunk(data []byte, fourcc string) []byte {
	i := 12
	for i+8 <= len(data) {
		name := string(data[i : i+4])
		size := int(binary.LittleEndian.Uint32(data[i+4:]))
		start := i + 8
		if size < 0 || start+size > len(data) {
			return nil
		}
		if name == fourcc {
			return data[start : start+size]
		}
		i = start + size + size%2
	}
	return nil
}
