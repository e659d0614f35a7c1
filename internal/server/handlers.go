package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nconklindev/tabula/internal/converter"
	"github.com/nconklindev/tabula/internal/export"
	"github.com/nconklindev/tabula/internal/intent"
	"github.com/nconklindev/tabula/internal/session"
	"github.com/nconklindev/tabula/internal/template"
	"github.com/nconklindev/tabula/internal/types"
	"go.uber.org/zap"
)

type columnRequest struct {
	Name        string `json:"name"`
	SampleValue string `json:"sample_value"`
}

type templateRequest struct {
	Columns []types.ColumnDefinition `json:"columns"`
}

type helpRequest struct {
	Query string `json:"query"`
}

type convertResponse struct {
	FileName     string          `json:"file_name"`
	TotalRows    int             `json:"total_rows"`
	TotalColumns int             `json:"total_columns"`
	Columns      []string        `json:"columns"`
	Rows         [][]any         `json:"rows"`
	Records      []*types.Record `json:"records"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListColumns(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"columns": st.ColumnRows()})
}

func (s *Server) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r)

	var req columnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := st.AddColumn(req.Name, req.SampleValue); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("column added", zap.String("name", req.Name))
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{"columns": st.ColumnRows()})
}

func (s *Server) handleClearColumns(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r)
	st.ClearColumns()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"columns": []session.ColumnRow{}})
}

func (s *Server) handleSessionTemplate(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r)
	s.writeTemplate(w, st.Columns())
}

func (s *Server) handleBuildTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for i, col := range req.Columns {
		if strings.TrimSpace(col.Name) == "" {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("column %d: %v", i+1, session.ErrEmptyColumnName))
			return
		}
	}
	s.writeTemplate(w, req.Columns)
}

func (s *Server) writeTemplate(w http.ResponseWriter, columns []types.ColumnDefinition) {
	data, err := s.builder.Build(columns)
	if err != nil {
		s.logger.Error("template build failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("template built", zap.Int("columns", len(columns)), zap.Int("bytes", len(data)))
	s.respondFile(w, template.ContentType, template.FileName, data)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, s.converter.MaxBytes()+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, converter.ErrFileTooLarge.Error())
			return
		}
		s.respondError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	result, err := s.converter.Convert(data, header.Filename)
	if err != nil {
		s.logger.Info("conversion failed", zap.String("file", header.Filename), zap.Error(err))
		status := http.StatusBadRequest
		if errors.Is(err, converter.ErrFileTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.respondError(w, status, "Error processing file: "+err.Error())
		return
	}

	st.SetResult(result)
	s.logger.Debug("file converted",
		zap.String("file", result.FileName),
		zap.Int("rows", result.Table.NumRows()),
		zap.Int("columns", result.Table.NumCols()),
	)

	s.respondJSON(w, http.StatusOK, convertResponse{
		FileName:     result.FileName,
		TotalRows:    result.Table.NumRows(),
		TotalColumns: result.Table.NumCols(),
		Columns:      result.Table.Columns,
		Rows:         result.Table.Rows,
		Records:      result.Records,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r)

	result := st.Result()
	if result == nil {
		s.respondError(w, http.StatusNotFound, "no converted file in this session")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	exporter, err := export.NewExporter(format)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := exporter.Export(result, &buf); err != nil {
		s.logger.Error("export failed", zap.String("format", format), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondFile(w, exporter.ContentType(), export.FileName(exporter), buf.Bytes())
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	var req helpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"blocks": intent.Respond(req.Query)})
}

func (s *Server) handleFAQ(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"sections": intent.FAQ})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) respondFile(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("write response failed", zap.Error(err))
	}
}
