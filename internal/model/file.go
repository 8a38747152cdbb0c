// Package model defines database models
package model

import "strings"

// Coarse file categories derived from the MIME type at creation
const (
	TypeImage  = "image"
	TypeVideo  = "video"
	TypeAudio  = "audio"
	TypeFolder = "folder"
	TypeOther  = "other"
)

type File struct {
	// Generated client-side so the object can be written under its key
	// before the row exists
	ID      string `gorm:"primaryKey" json:"id"`
	OwnerID string `gorm:"index;not null" json:"-"`

	// nil means the record sits at the root of the owner's drive
	ParentID *string `gorm:"index" json:"parent_id,omitempty"`

	// Leaf name only, never a composite path
	Name     string `json:"name"`
	IsFolder bool   `json:"is_folder"`

	// Different users may upload files with the same name, so the object
	// lives in the bucket under a key derived from the record ID
	ObjectKey string `json:"-"`
	FileURL   string `json:"file_url"`

	Type          string `json:"type"`
	MimeType      string `json:"mime_type,omitempty"`
	FileExtension string `json:"file_extension,omitempty"`
	Size          int64  `json:"size"`

	IsShared   bool        `json:"is_shared"`
	SharedWith StringSlice `gorm:"type:text" json:"shared_with"`

	IsLiked bool `json:"is_liked"`
	// Soft delete flag. Trashed rows stay in the table but are excluded
	// from every default listing
	IsTrashed bool `json:"is_trashed"`

	Description string      `json:"description,omitempty"`
	Tags        StringSlice `gorm:"type:text" json:"tags"`

	// Provenance, set at creation and never mutated
	DeviceName string `json:"device_name,omitempty"`
	FileOrigin string `json:"file_origin,omitempty"`

	// Unix millisecond timestamps
	CreatedAt int64 `gorm:"not null" json:"created_at"`
	UpdatedAt int64 `gorm:"not null" json:"updated_at"`
}

// TypeOf maps a MIME type onto one of the coarse categories
func TypeOf(mimeType string) string {
	switch {
	case mimeType == "folder":
		return TypeFolder
	case strings.HasPrefix(mimeType, "image/"):
		return TypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return TypeVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return TypeAudio
	default:
		return TypeOther
	}
}
