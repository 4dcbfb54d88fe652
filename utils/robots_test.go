package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRobotsContent(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{
			name: "site url",
			base: "https://rodi-kremastos.gr",
			want: "User-agent: *\nAllow: /\n\nSitemap: https://rodi-kremastos.gr/sitemap.xml\n",
		},
		{
			name: "trailing slash stripped",
			base: "https://lalibi.github.io/rodi-kremastos/",
			want: "User-agent: *\nAllow: /\n\nSitemap: https://lalibi.github.io/rodi-kremastos/sitemap.xml\n",
		},
		{
			name: "empty falls back to site",
			base: "",
			want: "User-agent: *\nAllow: /\n\nSitemap: https://rodi-kremastos.gr/sitemap.xml\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateRobotsContent(tt.base))
		})
	}
}

func TestGenerateRobots_WritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	require.NoError(t, GenerateRobots(dir, "https://example.org"))

	data, err := os.ReadFile(filepath.Join(dir, "robots.txt"))
	require.NoError(t, err)
	assert.Equal(t, "User-agent: *\nAllow: /\n\nSitemap: https://example.org/sitemap.xml\n", string(data))
}
