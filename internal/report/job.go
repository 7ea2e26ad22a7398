package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"badgereader/internal/badge"
	"badgereader/internal/ledger"
	"badgereader/internal/platform/crypto"
)

// Generator writes monthly PDF reports for every configured person.
type Generator struct {
	book   *ledger.Book
	dir    *badge.Directory
	outDir string
	crypto *crypto.Service
}

func NewGenerator(book *ledger.Book, dir *badge.Directory, outDir string, cryptoSvc *crypto.Service) *Generator {
	return &Generator{book: book, dir: dir, outDir: outDir, crypto: cryptoSvc}
}

// GenerateAll renders the given month for every person with a ledger
// document. People without a document that month are skipped.
func (g *Generator) GenerateAll(ctx context.Context, month time.Month, year int) error {
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	var failed int
	for _, person := range g.dir.People() {
		doc, err := g.book.Read(ctx, person, month, year)
		if err != nil {
			slog.Info("no ledger document, skipping report", "person", person.Name, "month", month.String(), "year", year)
			continue
		}
		if _, err := g.Write(doc); err != nil {
			slog.Error("monthly report failed", "person", person.Name, "err", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d monthly reports failed", failed)
	}
	return nil
}

// Write renders one document and stores it, sealed when an encryption
// key is configured. Returns the written path.
func (g *Generator) Write(doc *ledger.Document) (string, error) {
	pdfBytes, err := Monthly(doc)
	if err != nil {
		return "", err
	}

	name := ledger.Filename(doc.Person, doc.Month, doc.Year)
	name = name[:len(name)-len(".xlsx")] + ".pdf"
	path := filepath.Join(g.outDir, name)

	if g.crypto != nil && g.crypto.Configured() {
		sealed, err := g.crypto.Encrypt(pdfBytes)
		if err != nil {
			return "", fmt.Errorf("encrypt report: %w", err)
		}
		path += ".enc"
		if err := os.WriteFile(path, sealed, 0o600); err != nil {
			return "", err
		}
		return path, nil
	}

	if err := os.WriteFile(path, pdfBytes, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
