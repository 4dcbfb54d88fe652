package media

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var photoshopHeader = []byte("Photoshop 3.0\x00")

// Photoshop image resource holding IPTC-IIM data.
const resourceIPTC = 0x0404

const (
	iptcRecordApplication = 2
	iptcObjectName        = 5
	iptcCaption           = 120
)

// readIPTC walks the 8BIM resources of a Photoshop APP13 block.
func readIPTC(meta *Metadata, data []byte) {
	i := 0
	for i+12 <= len(data) {
		if !bytes.Equal(data[i:i+4], []byte("8BIM")) {
			return
		}
		id := binary.BigEndian.Uint16(data[i+4:])
		i += 6

		// Pascal string name, padded to an even length.
		nameLen := int(data[i])
		i += 1 + nameLen
		if (1+nameLen)%2 == 1 {
			i++
		}
		if i+4 > len(data) {
			return
		}
		size := int(binary.BigEndian.Uint32(data[i:]))
		i += 4
		if size < 0 || i+size > len(data) {
			return
		}
		if id == resourceIPTC {
			readIIM(meta, data[i:i+size])
		}
		i += size + size%2
	}
}

// readIIM parses IPTC-IIM datasets: tag marker 0x1C, record, dataset, size.
func readIIM(meta *Metadata, data []byte) {
	i := 0
	for i+5 <= len(data) && data[i] == 0x1C {
		record := data[i+1]
		dataset := data[i+2]
		size := int(binary.BigEndian.Uint16(data[i+3:]))
		i += 5
		if size&0x8000 != 0 {
			// Extended dataset: the low bits give the length of the size field.
			n := size & 0x7FFF
			if n > 4 || i+n > len(data) {
				return
			}
			size = 0
			for _, b := range data[i : i+n] {
				size = size<<8 | int(b)
			}
			i += n
		}
		if size < 0 || i+size > len(data) {
			return
		}
		value := data[i : i+size]
		i += size

		if record != iptcRecordApplication {
			continue
		}
		switch dataset {
		case iptcCaption:
			if meta.IPTC.Caption == "" {
				meta.IPTC.Caption = decodeIIMString(value)
			}
		case iptcObjectName:
			if meta.IPTC.ObjectName == "" {
				meta.IPTC.ObjectName = decodeIIMString(value)
			}
		}
	}
}

// decodeIIMString treats non-UTF-8 values as Windows-1253, the code page of
// legacy Greek cataloguing tools.
func decodeIIMString(b []byte) string {
	if utf8.Valid(b) {
		return trimNUL(string(b))
	}
	out, err := charmap.Windows1253.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return trimNUL(string(out))
}
