package models

import (
	"time"
)

const (
	FileTypePDF  = "pdf"
	FileTypeDOC  = "doc"
	FileTypeDOCX = "docx"
	FileTypeTXT  = "txt"
)

// AllowedFileTypes are the resume formats accepted at upload.
var AllowedFileTypes = []string{FileTypePDF, FileTypeDOC, FileTypeDOCX, FileTypeTXT}

func IsAllowedFileType(fileType string) bool {
	for _, allowed := range AllowedFileTypes {
		if fileType == allowed {
			return true
		}
	}
	return false
}

type Upload struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	StoredFilename   string    `gorm:"size:255;not null" json:"stored_filename"`
	OriginalFilename string    `gorm:"size:255;not null" json:"original_filename"`
	FileType         string    `gorm:"size:10;not null" json:"file_type"`
	FileSize         int64     `gorm:"not null" json:"file_size"`
	CreatedAt        time.Time `gorm:"not null;index" json:"created_at"`

	ParsedDocument *ParsedDocument `gorm:"foreignKey:UploadID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Upload) TableName() string {
	return "uploads"
}

// ParsedDocument holds the text extracted at upload time. RawText is never
// empty: when extraction is impossible it holds a placeholder message.
type ParsedDocument struct {
	UploadID uint   `gorm:"primaryKey;autoIncrement:false" json:"upload_id"`
	RawText  string `gorm:"not null" json:"raw_text"`
}

func (ParsedDocument) TableName() string {
	return "parsed_documents"
}
