package types

// VersionInfo is the release manifest after normalization, in the shape the
// host update screens expect.
type VersionInfo struct {
	Slug        string            `json:"slug"`
	Name        string            `json:"name,omitempty"`
	Version     string            `json:"version,omitempty"`
	NewVersion  string            `json:"new_version"`
	LastUpdated string            `json:"last_updated,omitempty"`
	Package     string            `json:"package,omitempty"`
	Homepage    string            `json:"homepage,omitempty"`
	Author      string            `json:"author,omitempty"`
	Requires    string            `json:"requires,omitempty"`
	Tested      string            `json:"tested,omitempty"`
	RequiresPHP string            `json:"requires_php,omitempty"`
	Sections    map[string]string `json:"sections,omitempty"`
	Banners     map[string]string `json:"banners,omitempty"`
	Icons       map[string]string `json:"icons,omitempty"`
}

func (v VersionInfo) IsEmpty() bool {
	return v.Slug == "" && v.NewVersion == ""
}

// UpdateTransient is the host's record of pending updates, keyed by plugin
// basename or theme slug.
type UpdateTransient struct {
	LastChecked int64                   `json:"last_checked,omitempty"`
	Checked     map[string]string       `json:"checked,omitempty"`
	Response    map[string]*VersionInfo `json:"response,omitempty"`
	NoUpdate    map[string]*VersionInfo `json:"no_update,omitempty"`
}
