package media

import (
	"bytes"
	"encoding/binary"
)

type box struct {
	typ  string
	data []byte
}

// readBoxes splits an ISO base media byte range into its boxes. A truncated
// box ends the walk.
func readBoxes(data []byte) []box {
	var boxes []box
	for len(data) >= 8 {
		size := uint64(binary.BigEndian.Uint32(data))
		typ := string(data[4:8])
		header := uint64(8)
		switch size {
		case 0:
			size = uint64(len(data))
		case 1:
			if len(data) < 16 {
				return boxes
			}
			size = binary.BigEndian.Uint64(data[8:])
			header = 16
		}
		if size < header || size > uint64(len(data)) {
			return boxes
		}
		boxes = append(boxes, box{typ: typ, data: data[header:size]})
		data = data[size:]
	}
	return boxes
}

func findBox(boxes []box, typ string) []byte {
	for _, b := range boxes {
		if b.typ == typ {
			return b.data
		}
	}
	return nil
}

// readUint reads an n-byte big-endian integer (n is 0, 2, 4 or 8).
func readUint(b []byte, n int) (uint64, []byte, bool) {
	if len(b) < n {
		return 0, nil, false
	}
	switch n {
	case 0:
		return 0, b, true
	case 2:
		return uint64(binary.BigEndian.Uint16(b)), b[2:], true
	case 4:
		return uint64(binary.BigEndian.Uint32(b)), b[4:], true
	case 8:
		return binary.BigEndian.Uint64(b), b[8:], true
	}
	return 0, nil, false
}

// heifExif returns the TIFF payload of the Exif item of an AVIF/HEIF file,
// located through the meta box's iinf and iloc tables.
func heifExif(data []byte) []byte {
	meta := findBox(readBoxes(data), "meta")
	if len(meta) < 4 {
		return nil
	}
	children := readBoxes(meta[4:])

	id, ok := exifItemID(findBox(children, "iinf"))
	if !ok {
		return nil
	}
	item := itemData(data, findBox(children, "iloc"), id)
	if len(item) < 4 {
		return nil
	}

	// The item starts with the offset of the TIFF header, usually past an
	// "Exif\0\0" prefix.
	skip := uint64(binary.BigEndian.Uint32(item))
	if skip > uint64(len(item)-4) {
		return nil
	}
	return bytes.TrimPrefix(item[4+skip:], exifHeader)
}

func exifItemID(iinf []byte) (uint32, bool) {
	if len(iinf) < 4 {
		return 0, false
	}
	version := iinf[0]
	rest := iinf[4:]
	if version == 0 {
		if len(rest) < 2 {
			return 0, false
		}
		rest = rest[2:]
	} else {
		if len(rest) < 4 {
			return 0, false
		}
		rest = rest[4:]
	}

	for _, infe := range readBoxes(rest) {
		if infe.typ != "infe" || len(infe.data) < 4 {
			continue
		}
		v := infe.data[0]
		b := infe.data[4:]
		var id uint32
		switch v {
		case 2:
			if len(b) < 8 {
				continue
			}
			id = uint32(binary.BigEndian.Uint16(b))
			b = b[4:]
		case 3:
			if len(b) < 10 {
				continue
			}
			id = binary.BigEndian.Uint32(b)
			b = b[6:]
		default:
			continue
		}
		if string(b[:4]) == "Exif" {
			return id, true
		}
	}
	return 0, false
}

// itemData concatenates the file extents of item id. Only construction
// method 0 (file offsets) is supported.
func itemData(data, iloc []byte, id uint32) []byte {
	if len(iloc) < 8 {
		return nil
	}
	version := iloc[0]
	offsetSize := int(iloc[4] >> 4)
	lengthSize := int(iloc[4] & 0x0F)
	baseOffsetSize := int(iloc[5] >> 4)
	indexSize := 0
	if version == 1 || version == 2 {
		indexSize = int(iloc[5] & 0x0F)
	}
	b := iloc[6:]

	var count uint64
	var ok bool
	if version < 2 {
		count, b, ok = readUint(b, 2)
	} else {
		count, b, ok = readUint(b, 4)
	}
	if !ok {
		return nil
	}

	for i := uint64(0); i < count; i++ {
		var itemID, method, base, extents uint64
		if version < 2 {
			itemID, b, ok = readUint(b, 2)
		} else {
			itemID, b, ok = readUint(b, 4)
		}
		if !ok {
			return nil
		}
		if version == 1 || version == 2 {
			if method, b, ok = readUint(b, 2); !ok {
				return nil
			}
			method &= 0x0F
		}
		if _, b, ok = readUint(b, 2); !ok { // data_reference_index
			return nil
		}
		if base, b, ok = readUint(b, baseOffsetSize); !ok {
			return nil
		}
		if extents, b, ok = readUint(b, 2); !ok {
			return nil
		}

		var out []byte
		for e := uint64(0); e < extents; e++ {
			var offset, length uint64
			if _, b, ok = readUint(b, indexSize); !ok {
				return nil
			}
			if offset, b, ok = readUint(b, offsetSize); !ok {
				return nil
			}
			if length, b, ok = readUint(b, lengthSize); !ok {
				return nil
			}
			if uint32(itemID) != id || method != 0 {
				continue
			}
			start := base + offset
			end := start + length
			if length == 0 {
				end = uint64(len(data))
			}
			if start > end || end > uint64(len(data)) {
				return nil
			}
			out = append(out, data[start:end]...)
		}
		if uint32(itemID) == id {
			return out
		}
	}
	return nil
}
