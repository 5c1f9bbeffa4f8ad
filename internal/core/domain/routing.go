package domain

import "strings"

type Domain string

const (
	DomainIT         Domain = "IT"
	DomainHR         Domain = "HR"
	DomainMultimedia Domain = "Multimedia"
)

// Domains lists the routing categories in fallback priority order.
var Domains = []Domain{DomainIT, DomainHR, DomainMultimedia}

func (d Domain) String() string { return string(d) }

func (d Domain) Valid() bool {
	switch d {
	case DomainIT, DomainHR, DomainMultimedia:
		return true
	default:
		return false
	}
}

// ParseDomainLabel accepts canonical labels and the legacy RH/Multimédia aliases.
func ParseDomainLabel(label string) (Domain, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "it":
		return DomainIT, true
	case "hr", "rh":
		return DomainHR, true
	case "multimedia", "multimédia":
		return DomainMultimedia, true
	default:
		return "", false
	}
}

// RecipientDirectory maps each domain to one address. Read-only after start-up.
type RecipientDirectory map[Domain]string

func (r RecipientDirectory) Lookup(d Domain) (string, bool) {
	addr, ok := r[d]
	if !ok || strings.TrimSpace(addr) == "" {
		return "", false
	}
	return addr, true
}

type Attribute struct {
	Key   string
	Value string
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Notification struct {
	To         string
	Subject    string
	HTMLBody   string
	Attachment Attachment
}
