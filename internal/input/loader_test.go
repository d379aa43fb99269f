// internal/input/loader_test.go
package input

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestLoad_CSVWithURLColumn(t *testing.T) {
	path := writeFixture(t, "targets.csv",
		"company,website,phone\nAcme,https://acme.io,123\nBeta,beta.example.net,456\n")

	got, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []string{"https://acme.io", "https://beta.example.net"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestLoad_CSVWithoutHeader(t *testing.T) {
	path := writeFixture(t, "targets.csv",
		"Acme Corp,https://acme.io\nsome note,https://beta.net\n")

	got, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Without a URL column every cell is scanned.
	want := []string{"https://acme.io", "https://beta.net"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestLoad_TextFile(t *testing.T) {
	path := writeFixture(t, "targets.txt",
		"https://acme.io\nvisit https://beta.net today\ngamma.org\n\nnot a url at all\n")

	got, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []string{"https://acme.io", "https://beta.net", "https://gamma.org"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestLoad_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.xlsx")

	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "url")
	f.SetCellValue("Sheet1", "A2", "https://acme.io")
	f.SetCellValue("Sheet1", "A3", "beta.net")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save workbook: %v", err)
	}
	f.Close()

	got, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []string{"https://acme.io", "https://beta.net"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestLoad_Docx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.docx")

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create fixture: %v", err)
	}
	zw := zip.NewWriter(file)
	part, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Failed to create document part: %v", err)
	}
	part.Write([]byte(`<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Our site is https://acme.io and more.</w:t></w:r></w:p>
    <w:p><w:r><w:t>beta.net</w:t></w:r></w:p>
    <w:p><w:r><w:t>no links here</w:t></w:r></w:p>
  </w:body>
</w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	file.Close()

	got, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []string{"https://acme.io", "https://beta.net"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeFixture(t, "targets.pdf", "not really a pdf")

	_, err := NewLoader().Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("Expected error for a missing file")
	}
}

func TestNormalizeURLs(t *testing.T) {
	got := NormalizeURLs([]string{
		"  https://acme.io/contact  ",
		"beta.net",
		"https://acme.io/contact", // duplicate after trim
		"https://gamma.org/page?x=1",
		"delta.io.",
		"",
		"not a url",
	})

	want := []string{
		"https://acme.io/contact",
		"https://beta.net",
		"https://gamma.org/page?x=1",
		"https://delta.io",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestNormalizeURLs_FragmentDropped(t *testing.T) {
	got := NormalizeURLs([]string{"https://acme.io/page#section"})
	if len(got) != 1 || got[0] != "https://acme.io/page" {
		t.Fatalf("Expected fragment stripped, got %v", got)
	}
}
