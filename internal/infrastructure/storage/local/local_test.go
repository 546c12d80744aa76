package local

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haleralex/storehub/internal/application/ports"
)

func newTestStorage(t *testing.T) (*Storage, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s, err := New(fs, "/photos", "http://localhost:8080/static/", nil)
	require.NoError(t, err)
	return s, fs
}

func TestStorage_StoreAndDelete(t *testing.T) {
	s, fs := newTestStorage(t)
	ctx := context.Background()

	stored, err := s.Store(ctx, ports.StoredFileInput{
		OriginalName: "a.png",
		ContentType:  "image/png",
		Body:         strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "png", stored.Type)
	assert.Equal(t, int64(len("png-bytes")), stored.Size)
	assert.Equal(t, "/photos", stored.Destination)
	assert.Equal(t, "http://localhost:8080/static/"+stored.Name(), stored.URL)

	data, err := afero.ReadFile(fs, "/photos/"+stored.Name())
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Delete(ctx, stored.Name()))
	ok, err := s.Exists(stored.Name())
	require.NoError(t, err)
	assert.False(t, ok)

	// повторное удаление - не ошибка
	assert.NoError(t, s.Delete(ctx, stored.Name()))
}

func TestStorage_DeleteRejectsPaths(t *testing.T) {
	s, _ := newTestStorage(t)

	assert.Error(t, s.Delete(context.Background(), "../etc/passwd"))
	assert.Error(t, s.Delete(context.Background(), ""))
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), "", "", nil)
	assert.Error(t, err)
}
