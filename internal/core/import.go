package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/flashcards/internal/cardcsv"
	"github.com/JonMunkholm/flashcards/internal/logging"
	"github.com/google/uuid"
)

// PreviewImport parses a CSV or XLSX file into card records without writing
// anything.
func (s *Service) PreviewImport(fileName string, data []byte) (*ImportPreview, error) {
	if err := s.checkFile(data); err != nil {
		return nil, err
	}

	rows, err := cardcsv.RowsFromFile(fileName, data)
	if err != nil {
		return nil, err
	}

	return &ImportPreview{
		FileName: fileName,
		Rows:     len(rows),
		Report:   cardcsv.NormalizeReport(rows),
	}, nil
}

// ImportCards parses a file and appends its cards to one of the owner's
// decks. Either every surviving record is written or none is.
func (s *Service) ImportCards(ctx context.Context, ownerID, deckID uuid.UUID, fileName string, data []byte) (*ImportResult, error) {
	if err := s.checkFile(data); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := withTimeout(ctx, s.cfg.Import.Timeout)
	defer cancel()

	log := logging.WithFields(ctx, "deck_id", deckID, "file", fileName, "ip", GetIPAddressFromContext(ctx))
	start := s.now()

	preview, err := s.PreviewImport(fileName, data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileName, err)
	}
	report := preview.Report
	log.Info("import parsed",
		"rows", preview.Rows,
		"records", len(report.Records),
		"dropped", report.Dropped,
		"header", report.HeaderDetected,
	)

	cards, err := s.BulkCreateCards(ctx, ownerID, deckID, report.Records)
	if err != nil {
		log.Warn("import failed", "error", err)
		return nil, err
	}

	result := &ImportResult{
		DeckID:         deckID,
		FileName:       fileName,
		Rows:           preview.Rows,
		Imported:       len(cards),
		Dropped:        report.Dropped,
		HeaderDetected: report.HeaderDetected,
		Duration:       s.now().Sub(start),
		Cards:          cards,
	}
	log.Info("import completed", "imported", result.Imported, "duration_ms", result.Duration.Milliseconds())
	return result, nil
}

func (s *Service) checkFile(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if limit := s.cfg.Import.MaxFileSize; limit > 0 && int64(len(data)) > limit {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrFileTooLarge, len(data), limit)
	}
	return nil
}
