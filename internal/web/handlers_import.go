package web

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/JonMunkholm/flashcards/internal/core"
	"github.com/JonMunkholm/flashcards/internal/web/templates"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and part headers.
const multipartOverhead = 1 << 20

// defaultImportName is used for raw-body uploads without a filename query
// parameter.
const defaultImportName = "import.csv"

// handleImport appends the cards of an uploaded CSV or XLSX file to a deck.
// HTMX requests get a summary fragment, everyone else the JSON result.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathUUID(r, "deckID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	name, data, err := s.readImportFile(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	result, err := s.service.ImportCards(ctx, currentUser(r).ID, deckID, name, data)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		templates.ImportSummary(result).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// handlePreviewImport parses an uploaded file and returns the cards it would
// create, without saving anything.
func (s *Server) handlePreviewImport(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readImportFile(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	preview, err := s.service.PreviewImport(name, data)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.ImportPreview(preview).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// readImportFile reads the uploaded file from a multipart "file" field, or
// the raw request body with its name taken from the filename query parameter.
func (s *Server) readImportFile(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	limit := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		name := filepath.Base(r.URL.Query().Get("filename"))
		if name == "." || name == "/" {
			name = defaultImportName
		}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return "", nil, err
		}
		return name, data, nil
	}

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, err
		}
		return "", nil, &core.ValidationError{Field: "upload", Reason: "is not a valid multipart form"}
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, errNoFile
		}
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(header.Filename), data, nil
}
