package types

import (
	"bytes"
	"encoding/json"
)

const (
	StatusActive  = "active"
	StatusRevoked = "revoked"
)

// License is the remote license record, fetched by key and never changed locally.
type License struct {
	ID          string `json:"id" yaml:"id"`
	Key         string `json:"key" yaml:"key"`
	Status      string `json:"status" yaml:"status"`
	ProductSlug string `json:"product_slug,omitempty" yaml:"productSlug,omitempty"`
	// ActivationLimit is 0 for unlimited activations.
	ActivationLimit int `json:"activation_limit,omitempty" yaml:"activationLimit,omitempty"`
}

func (l License) IsRevoked() bool {
	return l.Status == StatusRevoked
}

// CurrentRelease is the payload of the expose_current_release endpoint.
type CurrentRelease struct {
	ID string `json:"id,omitempty"`
	// URL is a short lived download url of the package.
	URL string `json:"url,omitempty"`
	// UpdatedAt is a unix timestamp.
	UpdatedAt int64 `json:"updated_at,omitempty"`
	// ReleaseJSON is the release manifest as uploaded by the vendor.
	ReleaseJSON json.RawMessage `json:"release_json,omitempty"`
}

// Manifest decodes the minimal identity of the release manifest.
func (r CurrentRelease) Manifest() (ReleaseIdentity, error) {
	var id ReleaseIdentity
	if len(r.ReleaseJSON) == 0 {
		return id, nil
	}
	err := json.Unmarshal(r.ReleaseJSON, &id)
	return id, err
}

type ReleaseIdentity struct {
	Slug    LooseString `json:"slug"`
	Version LooseString `json:"version"`
}

// LooseString decodes manifest fields that vendors write as strings, numbers
// or booleans. Objects, arrays and null decode to the empty string.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*s = ""
		return nil
	}

	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = LooseString(v)
	case 't', 'f':
		*s = LooseString(data)
	case '{', '[', 'n':
		*s = ""
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = LooseString(n.String())
	}
	return nil
}

func (s LooseString) String() string {
	return string(s)
}
