package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/carcareai/carlo/models"
)

func init() {
	// Load .env first so the license key can live there during development.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, relying on environment variables")
	}
	if err := license.SetMeteredKey(os.Getenv("UNIDOC_LICENSE_KEY")); err != nil {
		log.Warn().Err(err).Msg("failed to set unidoc license key, PDF extraction will fail")
	}
}

// ExtractPages reads a PDF and returns one Page per document page, each
// tagged with the source filename (base name, not the full path) and its
// 1-based page number.
func ExtractPages(path string) ([]models.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count of %s: %w", path, err)
	}

	sourceFile := filepath.Base(path)
	pages := make([]models.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("failed to get page %d of %s: %w", i, path, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("failed to create extractor for page %d of %s: %w", i, path, err)
		}

		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d of %s: %w", i, path, err)
		}

		pages = append(pages, models.Page{
			Text:       text,
			SourceFile: sourceFile,
			PageNumber: i,
		})
	}

	return pages, nil
}
