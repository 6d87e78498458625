package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// RenderPDF rasterizes every page of a PDF statement to PNG, in page order.
func RenderPDF(pdfData []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([][]byte, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.Image(i)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", i+1, err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding PNG: %w", err)
		}
		pages = append(pages, buf.Bytes())
	}

	return pages, nil
}

// RenderDirectory renders every *.pdf in inputDir into per-page PNG images
// named <stem>_page_<n>.png under outputDir. It returns the number of page
// images written.
func RenderDirectory(inputDir, outputDir string) (int, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return 0, fmt.Errorf("reading input directory: %w", err)
	}

	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		pdfs = append(pdfs, entry.Name())
	}
	sort.Strings(pdfs)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("creating pages directory: %w", err)
	}

	written := 0
	for _, name := range pdfs {
		data, err := os.ReadFile(filepath.Join(inputDir, name))
		if err != nil {
			return written, fmt.Errorf("reading %s: %w", name, err)
		}

		pages, err := RenderPDF(data)
		if err != nil {
			return written, fmt.Errorf("rendering %s: %w", name, err)
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		for i, page := range pages {
			out := filepath.Join(outputDir, fmt.Sprintf("%s_page_%d.png", stem, i+1))
			if err := os.WriteFile(out, page, 0644); err != nil {
				return written, fmt.Errorf("writing %s: %w", out, err)
			}
			written++
		}

		slog.Info("Rendered statement", "pdf", name, "pages", len(pages))
	}

	return written, nil
}

// imageToPNG converts any supported image format to PNG. HEIC/HEIF photos
// (common when statements are photographed on phones) need their own decoder.
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF. Error: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICFormat checks for the ftyp box brands HEIC/HEIF files start with.
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// preparePageImage normalizes a page image to PNG before it is sent to a
// model. PNG input passes through untouched.
func preparePageImage(imageData []byte, contentType string) ([]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	if mimeType == "image/png" && !isHEICFormat(imageData) {
		return imageData, nil
	}

	converted, err := imageToPNG(imageData, mimeType)
	if err != nil {
		return nil, fmt.Errorf("converting page image to PNG: %w", err)
	}
	return converted, nil
}
