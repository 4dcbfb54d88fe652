package media

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"
)

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0xB0, G: 0x1E, B: 0x3C, A: 0xFF})
		}
	}
	return img
}

// jpegWith encodes a w×h JPEG and splices segments in right after SOI.
func jpegWith(t *testing.T, w, h int, segments ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidImage(w, h), nil))
	data := buf.Bytes()

	out := append([]byte{}, data[:2]...)
	for _, seg := range segments {
		out = append(out, seg...)
	}
	return append(out, data[2:]...)
}

func jpegSegment(marker byte, payload []byte) []byte {
	seg := []byte{0xFF, marker, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	return append(seg, payload...)
}

type tiffEntry struct {
	tag   uint16
	typ   uint16
	value []byte
}

// tiffWith builds a little-endian TIFF with a single IFD0 holding entries.
// Values longer than four bytes are stored after the IFD.
func tiffWith(entries ...tiffEntry) []byte {
	b := []byte{'I', 'I', 0x2A, 0x00, 8, 0, 0, 0}
	b = binary.LittleEndian.AppendUint16(b, uint16(len(entries)))

	next := uint32(8 + 2 + 12*len(entries) + 4)
	var values []byte
	for _, e := range entries {
		b = binary.LittleEndian.AppendUint16(b, e.tag)
		b = binary.LittleEndian.AppendUint16(b, e.typ)
		b = binary.LittleEndian.AppendUint32(b, uint32(len(e.value)))
		if len(e.value) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.value)
			b = append(b, inline...)
			continue
		}
		b = binary.LittleEndian.AppendUint32(b, next+uint32(len(values)))
		values = append(values, e.value...)
	}
	b = binary.LittleEndian.AppendUint32(b, 0)
	return append(b, values...)
}

func tiffWithDescription(desc string) []byte {
	return tiffWith(tiffEntry{tag: 0x010E, typ: 2, value: append([]byte(desc), 0)})
}

// utf16LE encodes s the way Windows stores XP* tags, NUL terminated.
func utf16LE(s string) []byte {
	var b []byte
	for _, r := range utf16.Encode([]rune(s)) {
		b = binary.LittleEndian.AppendUint16(b, r)
	}
	return append(b, 0, 0)
}

func exifSegment(desc string) []byte {
	return jpegSegment(0xE1, append([]byte("Exif\x00\x00"), tiffWithDescription(desc)...))
}

func iimDataset(dataset byte, value []byte) []byte {
	b := []byte{0x1C, 2, dataset, 0, 0}
	binary.BigEndian.PutUint16(b[3:], uint16(len(value)))
	return append(b, value...)
}

func iptcSegment(datasets ...[]byte) []byte {
	var iim []byte
	for _, d := range datasets {
		iim = append(iim, d...)
	}
	payload := append([]byte("Photoshop 3.0\x00"), "8BIM"...)
	payload = binary.BigEndian.AppendUint16(payload, 0x0404)
	payload = append(payload, 0, 0) // empty name, padded
	payload = binary.BigEndian.AppendUint32(payload, uint32(len(iim)))
	payload = append(payload, iim...)
	if len(iim)%2 == 1 {
		payload = append(payload, 0)
	}
	return jpegSegment(0xED, payload)
}

func xmpSegment(packet string) []byte {
	return jpegSegment(0xE1, append([]byte("http://ns.adobe.com/xap/1.0/\x00"), packet...))
}

func xmpPacketWith(description, title string) string {
	return `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/">
   <dc:description>
    <rdf:Alt>
     <rdf:li xml:lang="en">English text</rdf:li>
     <rdf:li xml:lang="x-default">` + description + `</rdf:li>
    </rdf:Alt>
   </dc:description>
   <dc:title>
    <rdf:Alt>
     <rdf:li xml:lang="x-default">` + title + `</rdf:li>
    </rdf:Alt>
   </dc:title>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`
}

// pngWith encodes a w×h PNG and inserts extra chunks after IHDR.
func pngWith(t *testing.T, w, h int, chunks ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(w, h)))
	data := buf.Bytes()

	const afterIHDR = 8 + 4 + 4 + 13 + 4
	out := append([]byte{}, data[:afterIHDR]...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return append(out, data[afterIHDR:]...)
}

func pngChunk(kind string, data []byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, uint32(len(data)))
	body := append([]byte(kind), data...)
	b = append(b, body...)
	return binary.BigEndian.AppendUint32(b, crc32.ChecksumIEEE(body))
}

func isoBox(typ string, payload ...[]byte) []byte {
	body := bytes.Join(payload, nil)
	b := binary.BigEndian.AppendUint32(nil, uint32(8+len(body)))
	return append(append(b, typ...), body...)
}

func isoFullBox(typ string, version byte, payload ...[]byte) []byte {
	return isoBox(typ, append([][]byte{{version, 0, 0, 0}}, payload...)...)
}

func be16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func be32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }

// avifWithExif builds an AVIF container whose meta box declares a single
// Exif item stored in mdat.
func avifWithExif(tiff []byte) []byte {
	ftyp := isoBox("ftyp", []byte("avif"), be32(0), []byte("avifmif1"))
	hdlr := isoFullBox("hdlr", 0, be32(0), []byte("pict"), make([]byte, 12), []byte{0})
	infe := isoFullBox("infe", 2, be16(1), be16(0), []byte("Exif"), []byte{0})
	iinf := isoFullBox("iinf", 0, be16(1), infe)

	payload := append(be32(6), append([]byte("Exif\x00\x00"), tiff...)...)
	meta := func(offset uint32) []byte {
		iloc := isoFullBox("iloc", 0, []byte{0x44, 0x00}, be16(1),
			be16(1), be16(0), be16(1), be32(offset), be32(uint32(len(payload))))
		return isoFullBox("meta", 0, hdlr, iinf, iloc)
	}
	offset := uint32(len(ftyp) + len(meta(0)) + 8)

	return bytes.Join([][]byte{ftyp, meta(offset), isoBox("mdat", payload)}, nil)
}
