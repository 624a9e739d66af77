package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, 0)
	require.NoError(t, err)

	ref, err := s.Save(KindDesign, "../../etc/Cake.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "media/designs/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, "designs", filepath.Base(ref)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestSave_Errors(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, 4)
	require.NoError(t, err)

	_, err = s.Save(Kind("video"), "a.mp4", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedKind)

	_, err = s.Save(KindAudio, "a.mp3", strings.NewReader("too large"))
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(filepath.Join(dir, "audio"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, 0)
	require.NoError(t, err)

	ref, err := s.Save(KindPrint, "p.jpg", strings.NewReader("jpg"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(ref))
	_, err = os.Stat(filepath.Join(dir, "prints", filepath.Base(ref)))
	assert.True(t, os.IsNotExist(err))

	// повторное удаление не ошибка
	assert.NoError(t, s.Remove(ref))
	assert.ErrorIs(t, s.Remove("media/../secret"), ErrBadReference)
	assert.ErrorIs(t, s.Remove("other/designs/x.png"), ErrBadReference)
}
