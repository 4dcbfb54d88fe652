// Package templates embeds the page templates, content and client script
// the site is rendered from.
package templates

import "embed"

//go:embed layouts pages partials content i18n js 404.plush.html
var FS embed.FS
