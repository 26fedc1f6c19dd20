package persist_test

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/lariat/pkg/intern"
	"github.com/Sumatoshi-tech/lariat/pkg/persist"
)

// snapshotEntries is the vocabulary size for round-trip tests.
const snapshotEntries = 1000

func buildRodeo(t *testing.T) (*intern.Rodeo, []intern.Key) {
	t.Helper()

	rodeo := intern.New()
	keys := make([]intern.Key, snapshotEntries)

	for i := range snapshotEntries {
		key, err := rodeo.GetOrIntern(fmt.Sprintf("token-%d", i))
		require.NoError(t, err)

		keys[i] = key
	}

	return rodeo, keys
}

func TestMarshalUnmarshal_KeysSurvive(t *testing.T) {
	t.Parallel()

	rodeo, keys := buildRodeo(t)

	restored, err := persist.Unmarshal(persist.Marshal(rodeo))
	require.NoError(t, err)
	require.Equal(t, rodeo.Len(), restored.Len())

	for i, key := range keys {
		want, ok := rodeo.Resolve(key)
		require.True(t, ok)

		got, ok := restored.Resolve(key)
		require.True(t, ok, "key %d missing after restore", i)
		assert.Equal(t, want, got)
	}
}

func TestUnmarshal_EmptyInterner(t *testing.T) {
	t.Parallel()

	restored, err := persist.Unmarshal(persist.Marshal(intern.New()))
	require.NoError(t, err)
	assert.True(t, restored.IsEmpty())
}

func TestUnmarshal_RejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := persist.Unmarshal([]byte("definitely not a snapshot"))
	assert.ErrorIs(t, err, persist.ErrBadMagic)

	_, err = persist.Unmarshal([]byte{'L'})
	assert.ErrorIs(t, err, persist.ErrTruncated)

	// Valid header claiming more entries than the payload holds.
	truncated := persist.Marshal(intern.New())
	truncated[4] = 200
	_, err = persist.Unmarshal(truncated)
	assert.ErrorIs(t, err, persist.ErrTruncated)
}

func TestCodecs_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := []byte("payload with some repetition repetition repetition")

	codecs := []persist.Codec{persist.NewRawCodec(), persist.NewLZ4Codec()}

	for _, codec := range codecs {
		var buf bytes.Buffer

		require.NoError(t, codec.Encode(&buf, payload))

		decoded, err := codec.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, payload, decoded)
	}
}

func TestLZ4Codec_IncompressiblePayload(t *testing.T) {
	t.Parallel()

	// Short, high-entropy input that LZ4 cannot shrink.
	payload := []byte{0x01, 0xfe, 0x42, 0x99, 0x7a}

	codec := persist.NewLZ4Codec()

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, payload))

	decoded, err := codec.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestSaveLoad_File(t *testing.T) {
	t.Parallel()

	rodeo, keys := buildRodeo(t)

	for _, codec := range []persist.Codec{persist.NewRawCodec(), persist.NewLZ4Codec()} {
		path := filepath.Join(t.TempDir(), "snapshot"+codec.Extension())

		require.NoError(t, persist.Save(path, rodeo, codec))

		restored, err := persist.Load(path, codec)
		require.NoError(t, err)
		require.Equal(t, snapshotEntries, restored.Len())

		for i, key := range keys {
			got, ok := restored.Resolve(key)
			require.True(t, ok)
			require.Equal(t, fmt.Sprintf("token-%d", i), got)
		}
	}
}

func TestSaveLoad_FromFrozenViews(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	key, err := rodeo.GetOrIntern("frozen entry")
	require.NoError(t, err)

	resolver := rodeo.IntoResolver()

	path := filepath.Join(t.TempDir(), "view.lar")
	require.NoError(t, persist.Save(path, resolver, persist.NewRawCodec()))

	restored, err := persist.Load(path, persist.NewRawCodec())
	require.NoError(t, err)

	got, ok := restored.Resolve(key)
	require.True(t, ok)
	assert.Equal(t, "frozen entry", got)
}
