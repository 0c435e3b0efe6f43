/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package httpserver

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/blackbelt-technology/filestore-go/internal/transfer"
)

// uploadedFile is the per-file entry of the upload response. Exactly one of
// Token and Error is set.
type uploadedFile struct {
	Field    string `json:"field"`
	FileID   string `json:"id,omitempty"`
	Name     string `json:"name"`
	MimeType string `json:"ctype"`
	Size     int64  `json:"size"`
	Token    string `json:"token,omitempty"`
	Error    string `json:"error,omitempty"`
}

type uploadResponse struct {
	Files    []uploadedFile `json:"files"`
	Finished string         `json:"finished"`
}

// handleUpload accepts a multipart batch, runs it through the upload rules
// and answers with one entry per file. A rejected file does not fail the
// batch, its entry carries the error instead.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !s.cors.Process(w, r, http.MethodPost) {
		return
	}

	files, err := readMultipartFiles(r)
	if err != nil {
		s.logger.Debug("Malformed upload request", "error", err)
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed multipart request"})
		return
	}

	results, err := s.uploads.Process(r.Context(), requestToken(r), files)
	if err != nil {
		s.writeError(w, err)
		return
	}

	response := uploadResponse{Files: make([]uploadedFile, 0, len(results)), Finished: "ok"}
	for _, res := range results {
		entry := uploadedFile{
			Field:    res.FieldName,
			FileID:   res.FileID,
			Name:     res.Name,
			MimeType: res.MimeType,
			Size:     res.Size,
			Token:    res.Token,
		}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		}
		response.Files = append(response.Files, entry)
	}
	s.writeJSON(w, http.StatusOK, response)
}

// readMultipartFiles drains the file parts of a multipart request. Parts are
// buffered because the multipart reader invalidates a part as soon as the
// next one is opened, while the upload rules consume the batch as a whole.
func readMultipartFiles(r *http.Request) ([]transfer.UploadFile, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}

	var files []transfer.UploadFile
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if part.FileName() == "" {
			// Plain form field, not a file.
			continue
		}

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, part); err != nil {
			return nil, err
		}
		files = append(files, transfer.UploadFile{
			FieldName: part.FormName(),
			Name:      part.FileName(),
			MimeType:  part.Header.Get("Content-Type"),
			Size:      declaredSize(part, int64(buf.Len())),
			Data:      &buf,
		})
	}
	return files, nil
}

// declaredSize prefers the part's own Content-Length when the client sent
// one, otherwise the buffered length is authoritative anyway.
func declaredSize(part *multipart.Part, buffered int64) int64 {
	if v := part.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return buffered
}
