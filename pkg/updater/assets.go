package updater

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"strings"

	licensetypes "github.com/surecart/licensing-sdk/pkg/license/types"
	"github.com/surecart/licensing-sdk/pkg/logger"
)

type assetRule struct {
	key      string
	fragment string
	suffix   bool
}

var bannerRules = []assetRule{
	{key: "low", fragment: "772x250"},
	{key: "high", fragment: "1544x500"},
}

var iconRules = []assetRule{
	{key: "svg", fragment: ".svg", suffix: true},
	{key: "1x", fragment: "128x128"},
	{key: "2x", fragment: "256x256"},
}

var bannerProbes = []probe{
	{key: "low", files: []string{"banner-772x250.png", "banner-772x250.jpg"}},
	{key: "high", files: []string{"banner-1544x500.png", "banner-1544x500.jpg"}},
}

var iconProbes = []probe{
	{key: "svg", files: []string{"icon.svg"}},
	{key: "1x", files: []string{"icon-128x128.png", "icon-128x128.jpg"}},
	{key: "2x", files: []string{"icon-256x256.png", "icon-256x256.jpg"}},
}

type probe struct {
	key   string
	files []string
}

// normalizeAssets turns a manifest banners or icons value into a {key: url}
// map. The value may be a single url, a list of urls or an object of urls.
// Urls are keyed by the size fragment in their file name; entries of an
// object that match no rule keep their own key.
// normalizeSections accepts a section name to html object. An empty list,
// which is how an empty object is often serialized, yields no sections.
func normalizeSections(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	var object map[string]licensetypes.LooseString
	if err := json.Unmarshal(raw, &object); err != nil {
		logger.Debugf("ignoring release sections: %v", err)
		return nil
	}

	sections := map[string]string{}
	for name, html := range object {
		if html != "" {
			sections[name] = html.String()
		}
	}
	if len(sections) == 0 {
		return nil
	}
	return sections
}

func normalizeAssets(raw json.RawMessage, rules []assetRule) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	var keyed map[string]string
	var urls []string

	var single string
	var list []string
	var object map[string]string
	switch {
	case json.Unmarshal(raw, &single) == nil:
		urls = []string{single}
	case json.Unmarshal(raw, &list) == nil:
		urls = list
	case json.Unmarshal(raw, &object) == nil:
		keyed = map[string]string{}
		keys := make([]string, 0, len(object))
		for k := range object {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			u := object[k]
			if u == "" {
				continue
			}
			if key, ok := matchRule(u, rules); ok {
				keyed[key] = u
			} else if _, taken := keyed[k]; !taken {
				keyed[k] = u
			}
		}
	default:
		return nil
	}

	if keyed == nil {
		keyed = map[string]string{}
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		if key, ok := matchRule(u, rules); ok {
			keyed[key] = u
		}
	}

	if len(keyed) == 0 {
		return nil
	}
	return keyed
}

func matchRule(u string, rules []assetRule) (string, bool) {
	name := strings.ToLower(path.Base(stripQuery(u)))
	for _, r := range rules {
		if r.suffix && strings.HasSuffix(name, r.fragment) {
			return r.key, true
		}
		if !r.suffix && strings.Contains(name, r.fragment) {
			return r.key, true
		}
	}
	return "", false
}

func stripQuery(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}

// probeAssets checks the deterministic file names under base and returns the
// first existing file for each key.
func (u *Updater) probeAssets(ctx context.Context, base string, probes []probe) map[string]string {
	found := map[string]string{}
	base = strings.TrimRight(base, "/")
	for _, p := range probes {
		for _, file := range p.files {
			candidate := base + "/" + file
			if u.prober.Exists(ctx, candidate) {
				found[p.key] = candidate
				break
			}
		}
	}
	if len(found) == 0 {
		return nil
	}
	return found
}
