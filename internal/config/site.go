package config

import (
	"net/url"
	"strings"
)

// Built-in markup of the member directory dirscrape was written for.
// Selectors match the whole class attribute, not a single class token.
const (
	defaultPaginationSelector  = `ul[class="pager lfr-pagination-buttons"] a`
	defaultDetailLinkSelector  = `a[class="lm"]`
	defaultCardSelector        = `div[class="socios-panel-lat"]`
	defaultNameSelector        = `h2[class="tit-soc"]`
	defaultDescriptionSelector = `div[class="socios-descripcion"]`

	defaultAddressLabel       = "Domicilio"
	defaultPhoneLabel         = "Teléfono"
	defaultEmailLabel         = "Correo electrónico"
	defaultContactPersonLabel = "Persona de contacto"
)

// Selectors are the CSS selectors locating directory elements.
type Selectors struct {
	// Pagination selects the anchors of the page navigation list.
	Pagination string `yaml:"pagination,omitempty"`

	// DetailLink selects the anchors leading to member detail pages.
	DetailLink string `yaml:"detailLink,omitempty"`

	// Card selects the detail card container. Only the first match is used.
	Card string `yaml:"card,omitempty"`

	// Name selects the business name heading inside the card.
	Name string `yaml:"name,omitempty"`

	// Description selects the labelled text blocks inside the card.
	Description string `yaml:"description,omitempty"`
}

// Labels are the label texts preceding each field inside a description block.
type Labels struct {
	Address       string `yaml:"address,omitempty"`
	Phone         string `yaml:"phone,omitempty"`
	Email         string `yaml:"email,omitempty"`
	ContactPerson string `yaml:"contactPerson,omitempty"`
}

// SiteConfig holds the profile of one directory site.
type SiteConfig struct {
	// UserAgent is the User-Agent header sent to this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie is an HTTP cookie to send.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Selectors override the built-in selectors field by field.
	Selectors Selectors `yaml:"selectors,omitempty"`

	// Labels override the built-in labels field by field.
	Labels Labels `yaml:"labels,omitempty"`
}

// File represents the structure of the .dirscrape configuration file.
type File struct {
	// Sites maps host names (e.g. "www.example.org") to site profiles.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to all sites unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// DefaultSiteConfig returns the built-in profile.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		UserAgent: DefaultUserAgent,
		Selectors: Selectors{
			Pagination:  defaultPaginationSelector,
			DetailLink:  defaultDetailLinkSelector,
			Card:        defaultCardSelector,
			Name:        defaultNameSelector,
			Description: defaultDescriptionSelector,
		},
		Labels: Labels{
			Address:       defaultAddressLabel,
			Phone:         defaultPhoneLabel,
			Email:         defaultEmailLabel,
			ContactPerson: defaultContactPersonLabel,
		},
	}
}

// GetSiteConfig returns the profile for a host: the built-in profile,
// overridden by the file defaults, overridden by the host's own entry.
// A nil File yields the built-in profile.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := DefaultSiteConfig()
	if cf == nil {
		return result
	}

	result = mergeSiteConfig(result, cf.Defaults)
	if siteConfig, ok := cf.Sites[host]; ok {
		result = mergeSiteConfig(result, siteConfig)
	}
	return result
}

// SiteConfigForURL looks up the profile by the host of rawURL.
// The host with port is tried first, then the bare host name.
func (cf *File) SiteConfigForURL(rawURL string) SiteConfig {
	u, err := url.Parse(rawURL)
	if err != nil || cf == nil {
		return cf.GetSiteConfig("")
	}

	host := strings.ToLower(u.Host)
	if _, ok := cf.Sites[host]; ok {
		return cf.GetSiteConfig(host)
	}
	return cf.GetSiteConfig(strings.ToLower(u.Hostname()))
}

// mergeSiteConfig overrides base with the non-zero values of override.
func mergeSiteConfig(base, override SiteConfig) SiteConfig {
	result := base

	if override.UserAgent != "" {
		result.UserAgent = override.UserAgent
	}
	if override.Cookie != "" {
		result.Cookie = override.Cookie
	}
	if len(override.Headers) > 0 {
		headers := make(map[string]string, len(base.Headers)+len(override.Headers))
		for k, v := range base.Headers {
			headers[k] = v
		}
		for k, v := range override.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	result.Selectors = Selectors{
		Pagination:  firstNonEmpty(override.Selectors.Pagination, base.Selectors.Pagination),
		DetailLink:  firstNonEmpty(override.Selectors.DetailLink, base.Selectors.DetailLink),
		Card:        firstNonEmpty(override.Selectors.Card, base.Selectors.Card),
		Name:        firstNonEmpty(override.Selectors.Name, base.Selectors.Name),
		Description: firstNonEmpty(override.Selectors.Description, base.Selectors.Description),
	}
	result.Labels = Labels{
		Address:       firstNonEmpty(override.Labels.Address, base.Labels.Address),
		Phone:         firstNonEmpty(override.Labels.Phone, base.Labels.Phone),
		Email:         firstNonEmpty(override.Labels.Email, base.Labels.Email),
		ContactPerson: firstNonEmpty(override.Labels.ContactPerson, base.Labels.ContactPerson),
	}

	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
