package httpbody

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func TestDecompress(t *testing.T) {
	payload := []byte(`{"id":"u1","email":"a@b.c"}`)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write(payload)
	require.NoError(t, gw.Close())

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, _ = bw.Write(payload)
	require.NoError(t, bw.Close())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zs := enc.EncodeAll(payload, nil)
	require.NoError(t, enc.Close())

	cases := []struct {
		name     string
		raw      []byte
		encoding string
	}{
		{"identity", payload, ""},
		{"gzip header", gz.Bytes(), "gzip"},
		{"gzip sniffed", gz.Bytes(), ""},
		{"brotli", br.Bytes(), "br"},
		{"zstd header", zs, "zstd"},
		{"zstd sniffed", zs, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := http.Header{}
			if tc.encoding != "" {
				h.Set("Content-Encoding", tc.encoding)
			}
			out, err := Decompress(tc.raw, h)
			require.NoError(t, err)
			require.Equal(t, payload, out)
		})
	}
}
