// Package document stores supplier identity documents and reads them in the background.
package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"vizhaa-backend/apperr"
	"vizhaa-backend/constants"
	"vizhaa-backend/logger"
	documentModel "vizhaa-backend/models/document"
	"vizhaa-backend/services/storage"

	"gorm.io/gorm"
)

const scanTimeout = 60 * time.Second

type Service struct {
	DB     *gorm.DB
	Store  storage.Store
	Reader Reader

	wg sync.WaitGroup
}

// NewService wires the document store. A nil reader stores files without scanning them.
func NewService(db *gorm.DB, store storage.Store, reader Reader) *Service {
	return &Service{DB: db, Store: store, Reader: reader}
}

// IsAllowedType reports whether mimeType may be uploaded as an identity document.
func IsAllowedType(mimeType string) bool {
	for _, t := range constants.AllowedDocumentTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

// Upload stores an Aadhaar card for userID and queues it for reading.
// expectedNumber, when set, is compared with the number read from the card.
func (s *Service) Upload(ctx context.Context, userID, fileName, mimeType string, data []byte, expectedNumber string) (*documentModel.Scan, error) {
	if !IsAllowedType(mimeType) {
		return nil, apperr.Validation("Invalid file type. Only JPEG, PNG, WebP and PDF files are allowed",
			apperr.FieldError{Field: "aadharCard", Message: "unsupported file type"})
	}
	if len(data) == 0 || len(data) > constants.MaxDocumentSize {
		return nil, apperr.Validation("File size must be between 1 byte and 5MB",
			apperr.FieldError{Field: "aadharCard", Message: "invalid file size"})
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	key := fmt.Sprintf("aadhar/%s/%s%s", userID, hash[:16], strings.ToLower(filepath.Ext(fileName)))

	location, err := s.Store.Put(ctx, key, mimeType, data)
	if err != nil {
		return nil, apperr.Internalf("failed to store document: %w", err)
	}

	scan := &documentModel.Scan{
		UserID:           userID,
		Kind:             "aadhar_card",
		OriginalFileName: fileName,
		Location:         location,
		FileHash:         hash,
		FileSize:         int64(len(data)),
		MimeType:         mimeType,
		Status:           documentModel.ScanProcessing,
	}
	if s.Reader == nil {
		scan.Status = documentModel.ScanSkipped
	}
	if err := s.DB.WithContext(ctx).Create(scan).Error; err != nil {
		return nil, apperr.Internalf("failed to record document: %w", err)
	}

	if s.Reader != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.process(scan.ID, data, mimeType, expectedNumber)
		}()
	}
	return scan, nil
}

func (s *Service) process(scanID string, data []byte, mimeType, expectedNumber string) {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()
	start := time.Now()

	result, err := s.Reader.Read(ctx, data, mimeType)
	elapsed := time.Since(start).Milliseconds()

	updates := map[string]interface{}{"processing_time_ms": elapsed}
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to read document %s", scanID), err)
		updates["status"] = documentModel.ScanFailed
		updates["error_message"] = err.Error()
	} else {
		updates["status"] = documentModel.ScanSuccess
		updates["extracted_name"] = result.Name
		updates["extracted_number"] = result.AadharNumber
		if expectedNumber != "" {
			updates["number_matches"] = digitsOnly(expectedNumber) == result.AadharNumber
		}
		logger.Success(fmt.Sprintf("Document %s read in %dms", scanID, elapsed))
	}

	if err := s.DB.WithContext(ctx).Model(&documentModel.Scan{}).Where("id = ?", scanID).Updates(updates).Error; err != nil {
		logger.Error(fmt.Sprintf("Failed to save result for document %s", scanID), err)
	}
}

// ListForUser returns the user's documents, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]documentModel.Scan, error) {
	scans := []documentModel.Scan{}
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&scans).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return scans, nil
}

// Wait blocks until queued scans have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
