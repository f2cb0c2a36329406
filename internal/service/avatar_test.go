package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"joingo/config"
	client "joingo/internal/database/client"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryObjects struct {
	objects map[string][]byte
	types   map[string]string
}

func (m *memoryObjects) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryObjects) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000IHDR")

func TestAvatarService_Upload(t *testing.T) {
	users, _ := newUserService(t, newClock())
	objects := &memoryObjects{objects: map[string][]byte{}, types: map[string]string{}}
	svc := NewAvatarService(zap.NewNop(), &telemetry.Trace{}, objects, users)

	user, err := svc.Upload(context.Background(), "u1", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.Len(t, objects.objects, 1)
	for key, ct := range objects.types {
		assert.True(t, strings.HasPrefix(key, "avatars/u1/"))
		assert.True(t, strings.HasSuffix(key, ".png"))
		assert.Equal(t, "image/png", ct)
		assert.Equal(t, "https://cdn.example.com/"+key, user.AvatarURL)
	}
}

func TestAvatarService_Rejects(t *testing.T) {
	users, _ := newUserService(t, newClock())
	objects := &memoryObjects{objects: map[string][]byte{}, types: map[string]string{}}
	svc := NewAvatarService(zap.NewNop(), &telemetry.Trace{}, objects, users)

	tests := []struct {
		name string
		body []byte
	}{
		{"empty", nil},
		{"text", []byte("hello world")},
		{"too large", append(append([]byte{}, pngHeader...), make([]byte, MaxAvatarBytes)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), "u1", bytes.NewReader(tt.body))
			assert.True(t, cErr.Is(err, cErr.CodeBadRequest))
		})
	}
	assert.Empty(t, objects.objects)
}

func TestAvatarService_DisabledStorage(t *testing.T) {
	users, _ := newUserService(t, newClock())
	storage, err := client.NewObjectStorage(zap.NewNop(), &config.Configuration{})
	require.NoError(t, err)
	svc := NewAvatarService(zap.NewNop(), &telemetry.Trace{}, storage, users)

	_, err = svc.Upload(context.Background(), "u1", bytes.NewReader(pngHeader))
	assert.True(t, cErr.Is(err, cErr.CodeServiceUnavailable))
}
