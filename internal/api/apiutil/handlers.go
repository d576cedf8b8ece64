package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"
)

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// WriteHandlerError maps err to an http.Error, logging anything that is not
// a HandlerError below 500.
func WriteHandlerError(w http.ResponseWriter, r *http.Request, err error) {
	var herr HandlerError
	if errors.As(err, &herr) && herr.Status < http.StatusInternalServerError {
		http.Error(w, herr.Message, herr.Status)
		return
	}
	log.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderHTMLComponent renders component into a buffer first so a failed
// render still produces a clean 500. It reports whether the page was written.
func RenderHTMLComponent(ctx context.Context, w http.ResponseWriter, status int, component templ.Component, logMsg string) bool {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(logMsg)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return false
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to write response")
	}
	return true
}
