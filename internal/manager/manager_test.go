package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qrmanager/internal/apperr"
	"qrmanager/internal/codec"
	"qrmanager/internal/config"
	"qrmanager/internal/store"
)

func stubRenderer(url, fill, back string, size int) ([]byte, error) {
	return []byte(fmt.Sprintf("png:%s:%s:%s:%d", url, fill, back, size)), nil
}

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	cfg := &config.Config{
		QRDir:          filepath.Join(t.TempDir(), "qr_codes"),
		FillColor:      "red",
		BackColor:      "white",
		QRSize:         10,
		BaseURL:        "http://localhost:80",
		DownloadFolder: "downloads",
		SecretKey:      "s",
		Algorithm:      "HS256",
		TokenTTL:       time.Minute,
		AdminUser:      "admin",
		AdminPassword:  "secret",
	}
	st := store.New(cfg.QRDir, zap.NewNop())
	require.NoError(t, st.EnsureRoot())
	return New(cfg, st, stubRenderer, zap.NewNop()), st
}

func TestCreateReturnsLocator(t *testing.T) {
	m, _ := newTestManager(t)

	loc, err := m.Create("https://example.com", "", "", 0)
	require.NoError(t, err)

	want := "http://localhost:80/downloads/" + codec.Encode("https://example.com") + ".png"
	assert.Equal(t, want, loc)
}

func TestCreateUsesDefaults(t *testing.T) {
	m, st := newTestManager(t)

	_, err := m.Create("https://example.com", "", "", 0)
	require.NoError(t, err)

	data, err := os.ReadFile(st.Path(codec.Encode("https://example.com") + ".png"))
	require.NoError(t, err)
	assert.Equal(t, "png:https://example.com:red:white:10", string(data))
}

func TestCreateConflictLeavesBytesUntouched(t *testing.T) {
	m, st := newTestManager(t)

	_, err := m.Create("https://example.com", "red", "white", 10)
	require.NoError(t, err)
	path := st.Path(codec.Encode("https://example.com") + ".png")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = m.Create("https://example.com", "blue", "yellow", 20)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCreateRejectsBadURLs(t *testing.T) {
	m, _ := newTestManager(t)

	for _, u := range []string{"", "   ", "not a url", "example.com", "/relative/path", "http://"} {
		_, err := m.Create(u, "", "", 0)
		require.Error(t, err, "url %q", u)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation), "url %q", u)
	}
}

func TestCreateRenderFailurePersistsNothing(t *testing.T) {
	m, st := newTestManager(t)
	m.render = func(url, fill, back string, size int) ([]byte, error) {
		return nil, apperr.New(apperr.KindValidation, "unknown color %q", fill)
	}

	_, err := m.Create("https://example.com", "bogus", "", 0)
	require.Error(t, err)
	assert.False(t, st.Exists(codec.Encode("https://example.com")+".png"))
}

func TestListSkipsForeignEntries(t *testing.T) {
	m, st := newTestManager(t)

	_, err := m.Create("https://example.com/a", "", "", 0)
	require.NoError(t, err)
	_, err = m.Create("https://example.com/b", "", "", 0)
	require.NoError(t, err)

	// Foreign files in the directory must not break the listing.
	require.NoError(t, os.WriteFile(st.Path("README.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(st.Path(".DS_Store"), []byte{0x00}, 0o644))

	locators, err := m.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		m.Locator(codec.Encode("https://example.com/a") + ".png"),
		m.Locator(codec.Encode("https://example.com/b") + ".png"),
	}, locators)
}

func TestDeleteLifecycle(t *testing.T) {
	m, _ := newTestManager(t)

	loc, err := m.Create("https://example.com", "", "", 0)
	require.NoError(t, err)

	// Clients delete by the filename parsed out of the locator.
	filename := loc[strings.LastIndex(loc, "/")+1:]
	require.NoError(t, m.Delete(filename))

	locators, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, locators)

	err = m.Delete(filename)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteAcceptsNameWithoutExtension(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Create("https://example.com", "", "", 0)
	require.NoError(t, err)
	require.NoError(t, m.Delete(codec.Encode("https://example.com")))
}

func TestDeleteUndecodableName(t *testing.T) {
	m, _ := newTestManager(t)

	for _, name := range []string{"not base64!!!", "a", "README.txt"} {
		err := m.Delete(name)
		require.Error(t, err, "name %q", name)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "name %q", name)
	}
}

func TestFilePath(t *testing.T) {
	m, st := newTestManager(t)

	_, err := m.Create("https://example.com", "", "", 0)
	require.NoError(t, err)

	filename := codec.Encode("https://example.com") + ".png"
	path, err := m.FilePath(filename)
	require.NoError(t, err)
	assert.Equal(t, st.Path(filename), path)

	_, err = m.FilePath(codec.Encode("https://absent.example") + ".png")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = m.FilePath("..%2f..%2fetc")
	require.Error(t, err)
}
