package handlers

import (
	"encoding/json"

	"github.com/lalibi/rodi-kremastos/config"
	"github.com/lalibi/rodi-kremastos/logging"
)

func OrganizationJSONLD(cfg *config.Config) map[string]interface{} {
	site := config.Site
	org := site.Organization

	data := map[string]interface{}{
		"@type":     "Organization",
		"@id":       cfg.AbsURL("/#organization"),
		"name":      site.Name,
		"legalName": org.LegalName,
		"url":       cfg.AbsURL("/"),
		"logo":      cfg.AbsURL(site.Logo),
		"telephone": org.Telephone,
		"email":     org.Email,
		"address": map[string]interface{}{
			"@type":           "PostalAddress",
			"streetAddress":   org.Address.StreetAddress,
			"addressLocality": org.Address.AddressLocality,
			"addressRegion":   org.Address.AddressRegion,
			"postalCode":      org.Address.PostalCode,
			"addressCountry":  org.Address.AddressCountry,
		},
	}

	var sameAs []string
	for _, u := range []string{site.Social.Facebook, site.Social.Instagram} {
		if u != "" {
			sameAs = append(sameAs, u)
		}
	}
	if len(sameAs) > 0 {
		data["sameAs"] = sameAs
	}
	return data
}

func WebsiteJSONLD(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"@type":       "WebSite",
		"@id":         cfg.AbsURL("/#website"),
		"name":        config.Site.Name,
		"description": config.Site.Description,
		"url":         cfg.AbsURL("/"),
		"inLanguage":  config.Site.Locale,
		"publisher":   map[string]string{"@id": cfg.AbsURL("/#organization")},
	}
}

func SiteJSONLD(cfg *config.Config) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@graph":   []interface{}{OrganizationJSONLD(cfg), WebsiteJSONLD(cfg)},
	}

	b, err := json.Marshal(data)
	if err != nil {
		logging.Error("encoding JSON-LD", "err", err)
		return "{}"
	}
	return string(b)
}
