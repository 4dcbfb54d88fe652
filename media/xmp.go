package media

import (
	"bytes"
	"encoding/xml"
	"strings"
)

const nsDC = "http://purl.org/dc/elements/1.1/"

var (
	xmpStart = []byte("<x:xmpmeta")
	xmpEnd   = []byte("</x:xmpmeta>")
	rdfStart = []byte("<rdf:RDF")
	rdfEnd   = []byte("</rdf:RDF>")
)

// xmpPacket locates an uncompressed XMP packet anywhere in data. Every
// container embeds it verbatim, so a byte scan covers JPEG APP1, PNG iTXt,
// the WebP XMP chunk and AVIF mime items alike.
func xmpPacket(data []byte) []byte {
	for _, pair := range [][2][]byte{{xmpStart, xmpEnd}, {rdfStart, rdfEnd}} {
		start := bytes.Index(data, pair[0])
		if start < 0 {
			continue
		}
		end := bytes.Index(data[start:], pair[1])
		if end < 0 {
			continue
		}
		return data[start : start+end+len(pair[1])]
	}
	return nil
}

func readXMP(meta *Metadata, data []byte) {
	packet := xmpPacket(data)
	if packet == nil {
		return
	}
	desc, title := parseXMP(packet)
	if meta.XMP.Description == "" {
		meta.XMP.Description = desc
	}
	if meta.XMP.Title == "" {
		meta.XMP.Title = title
	}
}

// langAlt accumulates the values of a dc property. Values are usually an
// rdf:Alt list keyed by xml:lang; "x-default" wins, then the first entry.
type langAlt struct {
	direct strings.Builder
	def    string
	first  string
}

func (a *langAlt) add(lang, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if lang == "x-default" && a.def == "" {
		a.def = value
	}
	if a.first == "" {
		a.first = value
	}
}

func (a *langAlt) value() string {
	if a.def != "" {
		return a.def
	}
	if a.first != "" {
		return a.first
	}
	return strings.TrimSpace(a.direct.String())
}

// parseXMP returns dc:description and dc:title from an XMP packet.
func parseXMP(packet []byte) (description, title string) {
	props := map[string]*langAlt{
		"description": {},
		"title":       {},
	}

	dec := xml.NewDecoder(bytes.NewReader(packet))
	dec.Strict = false

	var (
		current *langAlt
		inLi    bool
		lang    string
		li      strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			// Simple properties may be written as attributes.
			for _, attr := range t.Attr {
				if attr.Name.Space == nsDC {
					if p, ok := props[attr.Name.Local]; ok {
						p.add("", attr.Value)
					}
				}
			}
			if t.Name.Space == nsDC {
				current = props[t.Name.Local]
				continue
			}
			if current != nil && t.Name.Local == "li" {
				inLi = true
				lang = ""
				li.Reset()
				for _, attr := range t.Attr {
					if attr.Name.Local == "lang" {
						lang = attr.Value
					}
				}
			}
		case xml.CharData:
			switch {
			case inLi:
				li.Write(t)
			case current != nil:
				current.direct.Write(t)
			}
		case xml.EndElement:
			switch {
			case inLi && t.Name.Local == "li":
				current.add(lang, li.String())
				inLi = false
			case t.Name.Space == nsDC:
				current = nil
			}
		}
	}

	return props["description"].value(), props["title"].value()
}
