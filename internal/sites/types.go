package sites

import "fmt"

// VolumeSupport describes how a site structures chapters.
type VolumeSupport string

const (
	VolumesNone   VolumeSupport = "none"
	VolumesNative VolumeSupport = "native"
)

// ImageSupport describes how a site serves inline chapter images.
type ImageSupport string

const (
	ImagesNone         ImageSupport = "none"
	ImagesNative       ImageSupport = "native"
	ImagesExternalOnly ImageSupport = "external-only"
)

// LoginRequirement describes whether an account is needed to read.
type LoginRequirement string

const (
	LoginNone     LoginRequirement = "none"
	LoginOptional LoginRequirement = "optional"
	LoginRequired LoginRequirement = "required"
)

// SearchSupport describes what kind of search the site offers.
type SearchSupport string

const (
	SearchNone           SearchSupport = "none"
	SearchInternal       SearchSupport = "internal"
	SearchNativeRedirect SearchSupport = "native-redirect"
)

// Capabilities is the fixed feature vector for one site. One flat
// record per site; consumers switch on fields rather than subclassing.
type Capabilities struct {
	SiteID             string           `json:"site_id" yaml:"site_id" toml:"site_id"`
	Host               string           `json:"host,omitempty" yaml:"host,omitempty" toml:"host,omitempty"`
	Volumes            VolumeSupport    `json:"supports_volumes" yaml:"supports_volumes" toml:"supports_volumes"`
	Images             ImageSupport     `json:"supports_images" yaml:"supports_images" toml:"supports_images"`
	Login              LoginRequirement `json:"login_requirement" yaml:"login_requirement" toml:"login_requirement"`
	Search             SearchSupport    `json:"search_support" yaml:"search_support" toml:"search_support"`
	RequiresDecryption bool             `json:"requires_decryption" yaml:"requires_decryption" toml:"requires_decryption"`
}

func (v VolumeSupport) Valid() bool {
	return v == VolumesNone || v == VolumesNative
}

func (i ImageSupport) Valid() bool {
	return i == ImagesNone || i == ImagesNative || i == ImagesExternalOnly
}

func (l LoginRequirement) Valid() bool {
	return l == LoginNone || l == LoginOptional || l == LoginRequired
}

func (s SearchSupport) Valid() bool {
	return s == SearchNone || s == SearchInternal || s == SearchNativeRedirect
}

// Validate checks that the record is complete and every enum holds a
// known value.
func (c Capabilities) Validate() error {
	if c.SiteID == "" {
		return fmt.Errorf("site_id is required")
	}
	if !c.Volumes.Valid() {
		return fmt.Errorf("site %s: invalid supports_volumes %q", c.SiteID, c.Volumes)
	}
	if !c.Images.Valid() {
		return fmt.Errorf("site %s: invalid supports_images %q", c.SiteID, c.Images)
	}
	if !c.Login.Valid() {
		return fmt.Errorf("site %s: invalid login_requirement %q", c.SiteID, c.Login)
	}
	if !c.Search.Valid() {
		return fmt.Errorf("site %s: invalid search_support %q", c.SiteID, c.Search)
	}
	if c.RequiresDecryption && c.Host == "" {
		return fmt.Errorf("site %s: encrypted sites must declare a host", c.SiteID)
	}
	return nil
}
