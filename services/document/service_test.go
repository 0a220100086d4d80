package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vizhaa-backend/apperr"
	"vizhaa-backend/database/dbtest"
	documentModel "vizhaa-backend/models/document"
	"vizhaa-backend/services/storage"
)

type stubReader struct {
	result *documentModel.Result
	err    error
}

func (r stubReader) Read(context.Context, []byte, string) (*documentModel.Result, error) {
	return r.result, r.err
}

func TestUploadStoresAndReads(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dbtest.Open(t), storage.NewDiskStore(dir), stubReader{
		result: &documentModel.Result{Name: "Ravi Kumar", AadharNumber: "123412341234"},
	})
	ctx := context.Background()

	scan, err := svc.Upload(ctx, "user-1", "card.PNG", "image/png", []byte("fake image"), "1234 1234 1234")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if scan.Status != documentModel.ScanProcessing || scan.FileHash == "" {
		t.Fatalf("scan = %+v", scan)
	}
	if !strings.HasSuffix(scan.Location, ".png") {
		t.Fatalf("location = %q", scan.Location)
	}
	if _, err := os.Stat(filepath.Join(dir, "aadhar", "user-1")); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	svc.Wait()
	scans, err := svc.ListForUser(ctx, "user-1")
	if err != nil || len(scans) != 1 {
		t.Fatalf("ListForUser = %v, %v", scans, err)
	}
	got := scans[0]
	if got.Status != documentModel.ScanSuccess || got.ExtractedName != "Ravi Kumar" {
		t.Fatalf("scan after read = %+v", got)
	}
	if got.NumberMatches == nil || !*got.NumberMatches {
		t.Fatal("number should match the one given at signup")
	}
}

func TestUploadReaderFailure(t *testing.T) {
	svc := NewService(dbtest.Open(t), storage.NewDiskStore(t.TempDir()), stubReader{err: errors.New("quota exceeded")})
	ctx := context.Background()
	if _, err := svc.Upload(ctx, "user-1", "card.jpg", "image/jpeg", []byte("x"), ""); err != nil {
		t.Fatal(err)
	}
	svc.Wait()
	scans, _ := svc.ListForUser(ctx, "user-1")
	if len(scans) != 1 || scans[0].Status != documentModel.ScanFailed || scans[0].ErrorMessage == "" {
		t.Fatalf("scans = %+v", scans)
	}
}

func TestUploadWithoutReaderIsSkipped(t *testing.T) {
	svc := NewService(dbtest.Open(t), storage.NewDiskStore(t.TempDir()), nil)
	scan, err := svc.Upload(context.Background(), "user-1", "card.pdf", "application/pdf", []byte("%PDF"), "")
	if err != nil {
		t.Fatal(err)
	}
	if scan.Status != documentModel.ScanSkipped {
		t.Fatalf("status = %s", scan.Status)
	}
}

func TestUploadRejectsBadFiles(t *testing.T) {
	svc := NewService(dbtest.Open(t), storage.NewDiskStore(t.TempDir()), nil)
	ctx := context.Background()
	if _, err := svc.Upload(ctx, "u", "a.gif", "image/gif", []byte("x"), ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("gif: %v", err)
	}
	big := make([]byte, 5*1024*1024+1)
	if _, err := svc.Upload(ctx, "u", "a.png", "image/png", big, ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("oversize: %v", err)
	}
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name, in, wantNumber string
	}{
		{"plain", `{"name":"A","aadhar_number":"1234 5678 9012"}`, "123456789012"},
		{"json fence", "```json\n{\"name\":\"A\",\"aadhar_number\":\"123456789012\"}\n```", "123456789012"},
		{"bare fence", "```\n{\"aadhar_number\":\"1234-5678-9012\"}\n```", "123456789012"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := parseResult(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if r.AadharNumber != tt.wantNumber {
				t.Fatalf("number = %q", r.AadharNumber)
			}
		})
	}
	if _, err := parseResult("not json"); err == nil {
		t.Fatal("want error for non-JSON output")
	}
}
