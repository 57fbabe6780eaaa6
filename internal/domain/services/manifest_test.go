package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

type fakeChecksummer struct{}

func (fakeChecksummer) CalculateChecksum(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (f fakeChecksummer) VerifyChecksum(_ context.Context, filePath, expectedSum string) error {
	actual, err := f.CalculateChecksum(filePath)
	if err != nil {
		return err
	}
	if actual != expectedSum {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedSum, actual)
	}
	return nil
}

// fakeSigner "signs" by prefixing the message so the verifier can check it
type fakeSigner struct{}

func (fakeSigner) SignDetached(message io.Reader, signature io.Writer) error {
	data, _ := io.ReadAll(message)
	sum := sha256.Sum256(data)
	_, err := signature.Write([]byte("SIG:" + hex.EncodeToString(sum[:])))
	return err
}

func (fakeSigner) VerifyDetached(message, signature io.Reader) error {
	var want bytes.Buffer
	if err := (fakeSigner{}).SignDetached(message, &want); err != nil {
		return err
	}
	got, _ := io.ReadAll(signature)
	if !bytes.Equal(got, want.Bytes()) {
		return errors.New("bad signature")
	}
	return nil
}

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// Test manifest round trip with signature
func TestManifestService_WriteAndVerify(t *testing.T) {
	dir := t.TempDir()
	pdf := writeArtifact(t, dir, "bit_abc.pdf", "%PDF-1.4 report")
	icon := writeArtifact(t, dir, "bit_abc_icon.png", "png-bytes")

	svc := NewManifestService(fakeChecksummer{}, fakeSigner{}, fakeSigner{})
	scans := []entities.Scan{
		{AppName: "bit", BundleID: "com.bit.apk", Platform: entities.PlatformAndroid, PDFPath: pdf, IconPath: icon},
		{AppName: "noicon", PDFPath: pdf},
	}

	manifest, err := svc.Build(3, scans)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if manifest.Entries[1].IconSHA256 != "" {
		t.Error("entry without icon should have no icon digest")
	}

	if err := svc.Write(dir, manifest); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, entities.ManifestSignatureFileName)); err != nil {
		t.Fatalf("signature file missing: %v", err)
	}

	verified, err := svc.Verify(context.Background(), dir)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if verified.BatchID != 3 || len(verified.Entries) != 2 {
		t.Errorf("verified manifest = %+v", verified)
	}
}

// Test tampered artifacts are reported
func TestManifestService_Verify_Tampered(t *testing.T) {
	dir := t.TempDir()
	pdf := writeArtifact(t, dir, "r.pdf", "original")

	svc := NewManifestService(fakeChecksummer{}, nil, nil)
	manifest, err := svc.Build(1, []entities.Scan{{AppName: "r", PDFPath: pdf}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := svc.Write(dir, manifest); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	writeArtifact(t, dir, "r.pdf", "tampered")

	_, err = svc.Verify(context.Background(), dir)
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("Expected checksum mismatch, got: %v", err)
	}
}

// Test missing report fails the build
func TestManifestService_Build_MissingReport(t *testing.T) {
	svc := NewManifestService(fakeChecksummer{}, nil, nil)
	_, err := svc.Build(1, []entities.Scan{{AppName: "x", PDFPath: "/nonexistent.pdf"}})
	if err == nil {
		t.Fatal("Expected error for missing report")
	}
}
