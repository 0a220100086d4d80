package document

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ScanProcessing = "processing"
	ScanSuccess    = "success"
	ScanFailed     = "failed"
	ScanSkipped    = "skipped"
)

// Scan is one uploaded identity document and the result of reading it.
type Scan struct {
	ID               string `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID           string `json:"userId" gorm:"type:varchar(36);not null;index"`
	Kind             string `json:"kind" gorm:"type:varchar(30);not null;default:'aadhar_card'"`
	OriginalFileName string `json:"originalFileName" gorm:"type:varchar(255)"`
	Location         string `json:"location" gorm:"type:varchar(1024);not null"`
	FileHash         string `json:"fileHash" gorm:"type:varchar(128);index"`
	FileSize         int64  `json:"fileSize"`
	MimeType         string `json:"mimeType" gorm:"type:varchar(100)"`
	Status           string `json:"status" gorm:"type:varchar(20);not null;default:'processing';index"`
	ProcessingTimeMs int64  `json:"processingTimeMs" gorm:"default:0"`

	// Extracted data
	ExtractedName   string `json:"extractedName,omitempty" gorm:"type:varchar(255)"`
	ExtractedNumber string `json:"-" gorm:"type:varchar(255)"`
	NumberMatches   *bool  `json:"numberMatches,omitempty"`

	ErrorMessage string `json:"errorMessage,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Scan) TableName() string {
	return "document_scans"
}

func (s *Scan) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = ScanProcessing
	}
	return nil
}

func (s *Scan) IsProcessing() bool {
	return s.Status == ScanProcessing
}

// Result is what the document reader returns for an Aadhaar card.
type Result struct {
	Name         string `json:"name"`
	AadharNumber string `json:"aadhar_number"`
	DateOfBirth  string `json:"date_of_birth"`
	Gender       string `json:"gender"`
}
