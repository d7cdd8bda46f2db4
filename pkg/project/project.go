package project

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type Type string

const (
	TypePlugin Type = "plugin"
	TypeTheme  Type = "theme"
)

// Project describes the host plugin or theme that embeds the licensing client.
type Project struct {
	// Name is the human readable name of the project.
	Name string `yaml:"name" json:"name"`
	// File is the main plugin file or theme stylesheet path.
	File string `yaml:"file" json:"file"`
	// Basename is File relative to the plugins or themes directory, e.g. "test-slug/test-slug.php".
	Basename   string `yaml:"basename" json:"basename"`
	Slug       string `yaml:"slug" json:"slug"`
	Version    string `yaml:"version" json:"version"`
	Type       Type   `yaml:"type" json:"type"`
	TextDomain string `yaml:"textdomain" json:"textdomain"`
	// SiteURL is the fingerprint of this installation.
	SiteURL  string `yaml:"siteURL" json:"siteURL"`
	SiteName string `yaml:"siteName" json:"siteName"`
}

// FromFile derives the basename, slug and type of a project from its main file.
// Files below themesDir are themes, everything else is a plugin living below pluginsDir.
func FromFile(name string, file string, pluginsDir string, themesDir string) Project {
	p := Project{
		Name: name,
		File: file,
		Type: TypePlugin,
	}

	themesPrefix := strings.TrimRight(filepath.ToSlash(themesDir), "/") + "/"
	pluginsPrefix := strings.TrimRight(filepath.ToSlash(pluginsDir), "/") + "/"
	slashed := filepath.ToSlash(file)

	switch {
	case themesDir != "" && strings.HasPrefix(slashed, themesPrefix):
		p.Type = TypeTheme
		p.Basename = strings.TrimPrefix(slashed, themesPrefix)
	case pluginsDir != "" && strings.HasPrefix(slashed, pluginsPrefix):
		p.Basename = strings.TrimPrefix(slashed, pluginsPrefix)
	default:
		p.Basename = filepath.Base(filepath.Dir(slashed)) + "/" + filepath.Base(slashed)
	}

	p.Slug = strings.SplitN(p.Basename, "/", 2)[0]
	p.TextDomain = p.Slug
	return p
}

// Normalize fills derived fields that were left empty.
func (p *Project) Normalize() {
	if p.Type == "" {
		p.Type = TypePlugin
	}
	if p.Slug == "" && p.Basename != "" {
		p.Slug = strings.SplitN(p.Basename, "/", 2)[0]
	}
	if p.Basename == "" && p.Slug != "" {
		p.Basename = p.Slug + "/" + p.Slug + ".php"
	}
	if p.TextDomain == "" {
		p.TextDomain = p.Slug
	}
	if p.SiteName == "" {
		p.SiteName = p.SiteURL
	}
}

func (p Project) IsTheme() bool {
	return p.Type == TypeTheme
}

// UpdateKey is the key this project is listed under in the host's update data:
// the basename for plugins and the slug for themes.
func (p Project) UpdateKey() string {
	if p.IsTheme() {
		return p.Slug
	}
	return p.Basename
}

// Validate reports configuration mistakes that would break activation or updates.
func (p Project) Validate() error {
	if p.Slug == "" {
		return errors.Errorf("%s Licensing Configuration Error: the project slug could not be determined", p.Name)
	}
	if p.Version == "" {
		if p.IsTheme() {
			return errors.Errorf("%s Licensing Configuration Error: the file must point to the main file of your theme", p.Name)
		}
		return errors.Errorf("%s Licensing Configuration Error: the file must point to the main file of your plugin", p.Name)
	}
	if p.Type != TypePlugin && p.Type != TypeTheme {
		return errors.Errorf("%s Licensing Configuration Error: unknown project type %q", p.Name, p.Type)
	}
	return nil
}
