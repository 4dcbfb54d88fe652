package config

// config/yaml.go

type PageKey string

const (
	Home     PageKey = "home"
	About    PageKey = "about"
	Products PageKey = "products"
	Contact  PageKey = "contact"
)

type PageInfo struct {
	Href        string `yaml:"href"`
	Title       string `yaml:"title"`
	Label       string `yaml:"label"`
	CTA         string `yaml:"cta"`
	Description string `yaml:"description"`
}

type Address struct {
	StreetAddress   string `yaml:"street_address"`
	AddressLocality string `yaml:"address_locality"`
	AddressRegion   string `yaml:"address_region"`
	PostalCode      string `yaml:"postal_code"`
	AddressCountry  string `yaml:"address_country"`
}

type Organization struct {
	LegalName string  `yaml:"legal_name"`
	Telephone string  `yaml:"telephone"`
	Email     string  `yaml:"email"`
	Address   Address `yaml:"address"`
}

type Social struct {
	Facebook  string `yaml:"facebook"`
	Instagram string `yaml:"instagram"`
}

type SiteInfo struct {
	Name         string       `yaml:"name"`
	Locale       string       `yaml:"locale"`
	Description  string       `yaml:"description"`
	URL          string       `yaml:"url"`
	Logo         string       `yaml:"logo"`
	Keywords     []string     `yaml:"keywords"`
	Organization Organization `yaml:"organization"`
	Social       Social       `yaml:"social"`
}

type FallbackMedia struct {
	Src  string `yaml:"src"`
	Alt  string `yaml:"alt"`
	Type string `yaml:"type"`
}

type SiteManifest struct {
	NavOrder        []PageKey                  `yaml:"nav_order"`
	Pages           map[PageKey]PageInfo       `yaml:"pages"`
	Site            SiteInfo                   `yaml:"site"`
	GalleryFallback map[string][]FallbackMedia `yaml:"gallery_fallback"`
}
