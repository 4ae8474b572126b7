package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/jonwraymond/fontops/codepoint"
	"github.com/jonwraymond/fontops/registry"
	"github.com/jonwraymond/fontops/store"
)

const immutable = "public, max-age=31536000, immutable"

type errorBody struct {
	Error string `json:"error"`
}

// FontInfo is one entry of the font list.
type FontInfo struct {
	ID         string                 `json:"id"`
	Version    string                 `json:"version"`
	FontFamily string                 `json:"font_family"`
	License    string                 `json:"license"`
	Fallback   []string               `json:"fallback"`
	Name       registry.LocalizedText `json:"name,omitempty"`
	Title      registry.LocalizedText `json:"title,omitempty"`

	// DisplayName and DisplayTitle are Name and Title matched against
	// the request's Accept-Language.
	DisplayName  string `json:"display_name,omitempty"`
	DisplayTitle string `json:"display_title,omitempty"`
}

// GenerateResponse summarizes a regeneration.
type GenerateResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	FontID     string `json:"font_id"`
	Key        string `json:"key"`
	Characters int    `json:"characters"`
	Bytes      int    `json:"bytes"`
	Unresolved []rune `json:"unresolved"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	prefs, _, _ := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	fonts := s.registry.Snapshot().Fonts()
	out := make([]FontInfo, 0, len(fonts))
	for _, f := range fonts {
		d := f.Descriptor()
		fb := d.Fallback
		if fb == nil {
			fb = []string{}
		}
		out = append(out, FontInfo{
			ID:           d.ID,
			Version:      d.Version,
			FontFamily:   d.Family,
			License:      d.License,
			Fallback:     fb,
			Name:         d.Name,
			Title:        d.Title,
			DisplayName:  d.Name.Best(prefs...),
			DisplayTitle: d.Title.Best(prefs...),
		})
	}
	w.Header().Add("Vary", "Accept-Language")
	writeJSON(w, http.StatusOK, out)
}

// query reads the id and char parameters shared by the font endpoints.
func query(r *http.Request) (string, codepoint.Set, error) {
	q := r.URL.Query()
	id := strings.TrimSpace(q.Get("id"))
	if id == "" {
		return "", codepoint.Set{}, fmt.Errorf("%w: id", ErrMissingParam)
	}
	if !q.Has("char") {
		return "", codepoint.Set{}, fmt.Errorf("%w: char", ErrMissingParam)
	}
	set, err := codepoint.Parse(q.Get("char"))
	if err != nil {
		return "", codepoint.Set{}, err
	}
	return id, set, nil
}

func (s *Server) handleFont(w http.ResponseWriter, r *http.Request) {
	id, set, err := query(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var art store.Artifact
	err = s.wait(r.Context(), func(ctx context.Context) error {
		var err error
		art, err = s.coord.GetOrGenerate(ctx, id, set)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeArtifact(w, art)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id, set, err := query(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var resp GenerateResponse
	err = s.wait(r.Context(), func(ctx context.Context) error {
		out, err := s.coord.ForceRegenerate(ctx, id, set)
		if err != nil {
			return err
		}
		resp = GenerateResponse{
			Success:    true,
			Message:    "font regenerated",
			FontID:     id,
			Key:        set.Key().String(),
			Characters: set.Len(),
			Bytes:      len(out.Bytes),
			Unresolved: out.Unresolved,
		}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if resp.Unresolved == nil {
		resp.Unresolved = []rune{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	art, err := s.static.ReadPath(r.Context(), r.PathValue("path"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeArtifact(w, art)
}

func writeArtifact(w http.ResponseWriter, art store.Artifact) {
	h := w.Header()
	h.Set("Content-Type", art.ContentType)
	h.Set("Cache-Control", immutable)
	h.Set("Content-Length", strconv.Itoa(len(art.Bytes)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Bytes)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
