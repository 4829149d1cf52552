// Package manager orchestrates the identity codec, the rendering primitive
// and the artifact store to implement the create/list/delete lifecycle.
//
// Each artifact identity moves absent -> present (create) -> absent
// (delete) and nothing else: there is no update, and recreating after a
// delete is a fresh create that may carry different rendering parameters.
package manager

import (
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"qrmanager/internal/apperr"
	"qrmanager/internal/codec"
	"qrmanager/internal/config"
	"qrmanager/internal/store"
)

// FileExt is appended to every artifact name on disk and in locators.
const FileExt = ".png"

// Renderer turns a URL plus rendering parameters into raster bytes. The
// production renderer is qr.Render.
type Renderer func(url, fill, back string, size int) ([]byte, error)

// Manager implements the artifact lifecycle and conflict policy.
type Manager struct {
	cfg    *config.Config
	store  *store.Store
	render Renderer
	log    *zap.Logger
}

// New wires a Manager. cfg supplies the rendering defaults and the locator
// base; it is never consulted ambiently after construction.
func New(cfg *config.Config, st *store.Store, render Renderer, log *zap.Logger) *Manager {
	return &Manager{cfg: cfg, store: st, render: render, log: log}
}

// Create derives the artifact identity from rawURL, renders the image and
// stores it. Empty fill/back/size fall back to the configured defaults.
// A URL that already has an artifact is a conflict; the existing bytes are
// never regenerated or overwritten.
func (m *Manager) Create(rawURL, fill, back string, size int) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", err
	}
	if fill == "" {
		fill = m.cfg.FillColor
	}
	if back == "" {
		back = m.cfg.BackColor
	}
	if size == 0 {
		size = m.cfg.QRSize
	}

	filename := codec.Encode(rawURL) + FileExt
	if m.store.Exists(filename) {
		return "", apperr.New(apperr.KindConflict, "a qr code for this url already exists")
	}

	png, err := m.render(rawURL, fill, back, size)
	if err != nil {
		return "", err
	}
	if err := m.store.Write(filename, png); err != nil {
		// A concurrent create may win between the existence check and
		// the exclusive open; that is still a conflict, not a fault.
		if errors.Is(err, store.ErrExists) {
			return "", apperr.New(apperr.KindConflict, "a qr code for this url already exists")
		}
		return "", apperr.Wrap(apperr.KindStore, err, "could not save qr code")
	}

	m.log.Info("qr code created",
		zap.String("url", rawURL), zap.String("file", filename))
	return m.Locator(filename), nil
}

// List returns the locators of every managed artifact, in store
// enumeration order. Entries whose names do not decode are foreign files,
// not errors; they are skipped.
func (m *Manager) List() ([]string, error) {
	filenames, err := m.store.List()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, err, "could not list qr codes")
	}
	locators := make([]string, 0, len(filenames))
	for _, filename := range filenames {
		if _, err := codec.Decode(strings.TrimSuffix(filename, FileExt)); err != nil {
			m.log.Debug("skipping unrecognized entry", zap.String("file", filename))
			continue
		}
		locators = append(locators, m.Locator(filename))
	}
	return locators, nil
}

// Delete removes the artifact behind filename. The name must decode as a
// managed identity; anything else, including an artifact that was already
// deleted, is not found. The ".png" suffix is optional.
func (m *Manager) Delete(filename string) error {
	name := strings.TrimSuffix(filename, FileExt)
	if _, err := codec.Decode(name); err != nil {
		return apperr.New(apperr.KindNotFound, "qr code not found")
	}
	if err := m.store.Remove(name + FileExt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "qr code not found")
		}
		return apperr.Wrap(apperr.KindStore, err, "could not delete qr code")
	}
	m.log.Info("qr code deleted", zap.String("file", name+FileExt))
	return nil
}

// FilePath resolves a locator filename to the on-disk path of an existing
// artifact, for serving downloads. Undecodable or missing -> not found.
func (m *Manager) FilePath(filename string) (string, error) {
	name := strings.TrimSuffix(filename, FileExt)
	if _, err := codec.Decode(name); err != nil {
		return "", apperr.New(apperr.KindNotFound, "qr code not found")
	}
	if !m.store.Exists(name + FileExt) {
		return "", apperr.New(apperr.KindNotFound, "qr code not found")
	}
	return m.store.Path(name + FileExt), nil
}

// Locator builds the externally addressable URL for an artifact filename.
func (m *Manager) Locator(filename string) string {
	return strings.TrimRight(m.cfg.BaseURL, "/") + "/" + m.cfg.DownloadFolder + "/" + filename
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperr.New(apperr.KindValidation, "url must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperr.New(apperr.KindValidation, "url is not well formed")
	}
	return nil
}
