package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	apperr "github.com/bookmind/bookmind/internal/errors"
	"github.com/bookmind/bookmind/internal/storage"
)

// maxUploadBytes caps document uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// handleUploadDocument accepts a multipart upload, writes the file bytes
// under the data directory, and records its metadata.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperr.Newf(apperr.ErrCodeInvalidInput, "multipart field %q is required", "file"))
		return
	}
	defer file.Close()

	dir := s.cfg.DocumentsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeError(w, apperr.New(apperr.ErrCodeStorageFailed, "creating documents directory", err))
		return
	}

	// Store under a timestamped name to avoid collisions; the original
	// filename lives only in the metadata record.
	storedName := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(header.Filename))
	storedPath := filepath.Join(dir, storedName)

	dst, err := os.Create(storedPath)
	if err != nil {
		writeError(w, apperr.New(apperr.ErrCodeStorageFailed, "creating document file", err))
		return
	}
	size, err := io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(storedPath)
		writeError(w, apperr.New(apperr.ErrCodeStorageFailed, "writing document file", err))
		return
	}

	doc, err := s.db.CreateDocument(r.Context(), storage.Document{
		Filename:    filepath.Base(header.Filename),
		StoredPath:  storedPath,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   size,
	})
	if err != nil {
		_ = os.Remove(storedPath)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.db.ListDocuments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []storage.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleDeleteDocument removes the metadata record and the stored file.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := s.db.GetDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.db.DeleteDocument(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	if err := os.Remove(doc.StoredPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("removing document file failed", "path", doc.StoredPath, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
