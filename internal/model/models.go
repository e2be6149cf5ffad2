package model

import "time"

// Profile is a named scope partitioning certificates, typically one per
// family member.
type Profile struct {
	ID        string // UUID
	Name      string
	CreatedAt time.Time
}

// Certificate is one captured achievement document plus its extracted
// metadata. Image fields hold the raw encoded bytes (JPEG or PNG).
type Certificate struct {
	ID            string // UUID
	ProfileID     string // Foreign key to Profile
	Image         []byte // Cleaned image as stored
	OriginalImage []byte // Pre-cleanup capture, if retained
	ImageMIME     string // MIME type of Image ("image/jpeg", "image/png")
	StudentName   string
	Title         string
	Issuer        string
	Date          string // ISO date "2006-01-02"; may be empty
	Category      string
	Subject       string
	Summary       string
	Tags          []string // unique, unordered
	CreatedAt     time.Time
	Synced        bool   // true only after a confirmed remote upload
	RemoteFileID  string // id returned by the remote store, if any
}

// HasTag reports whether the certificate carries the given tag.
func (c *Certificate) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
