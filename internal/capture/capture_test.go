package capture

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/shiftclaim/internal/claim"
	"github.com/teemow/shiftclaim/internal/logging"
)

var (
	_ claim.Capturer = (*FileSource)(nil)
	_ claim.Capturer = (*StaticSource)(nil)
	_ claim.Replier  = (*LogReplier)(nil)
)

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.txt")
	require.NoError(t, os.WriteFile(path, []byte("cancelling OH, 2 to 4\n"), 0o600))

	src := NewFileSource(path)
	ctx := context.Background()

	text, err := src.Capture(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cancelling OH, 2 to 4", text)

	text, err = src.Capture(ctx)
	require.NoError(t, err)
	assert.Empty(t, text, "unchanged file yields no text")

	require.NoError(t, os.WriteFile(path, []byte("skipping office hours 3-5 today"), 0o600))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	text, err = src.Capture(ctx)
	require.NoError(t, err)
	assert.Equal(t, "skipping office hours 3-5 today", text)
}

func TestFileSource_Missing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.txt")).Capture(context.Background())
	assert.Error(t, err)
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource("one", "two")
	ctx := context.Background()

	for _, want := range []string{"one", "two", "", ""} {
		got, err := src.Capture(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLogReplier(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReplier(logging.New(&buf, false))

	require.NoError(t, r.Send(context.Background(), "I'm free, I can take over!"))
	assert.Equal(t, []string{"I'm free, I can take over!"}, r.Sent())
	assert.Contains(t, buf.String(), "reply (dry run)")
}
