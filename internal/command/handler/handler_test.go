package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"joingo/config"
	"joingo/internal/service/voice"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEnsurer struct {
	called bool
	err    error
}

func (f *fakeEnsurer) EnsureIndexes(ctx context.Context) error {
	f.called = true
	return f.err
}

func newCobra() (*cobra.Command, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetContext(context.Background())
	return cmd, out
}

func TestStoreHandler_EnsureIndexes(t *testing.T) {
	ensurer := &fakeEnsurer{}
	h := &StoreHandler{logger: zap.NewNop(), store: ensurer}
	cmd, out := newCobra()

	require.NoError(t, h.EnsureIndexes(cmd, nil))
	assert.True(t, ensurer.called)
	assert.Contains(t, out.String(), "indexes ensured")

	failing := &StoreHandler{logger: zap.NewNop(), store: &fakeEnsurer{err: errors.New("boom")}}
	cmd, _ = newCobra()
	assert.EqualError(t, failing.EnsureIndexes(cmd, nil), "boom")
}

func TestVoiceHandler_VerifyToken(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	conf := &config.Configuration{}
	conf.Voice.ServiceToken = "shared"
	h := NewVoiceHandler(zap.NewNop(), conf)
	h.now = func() time.Time { return now }

	token, err := voice.SignToken(voice.TokenPayload{
		MeetingID:   "meeting-1",
		VoiceRoomID: "meeting-1",
		UserID:      "u1",
		Exp:         "2024-03-01T10:05:00.000Z",
	}, "shared")
	require.NoError(t, err)

	cmd, out := newCobra()
	require.NoError(t, h.VerifyToken(cmd, []string{token}))
	var payload voice.TokenPayload
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.Equal(t, "u1", payload.UserID)

	forged, err := voice.SignToken(voice.TokenPayload{UserID: "u1", Exp: "2024-03-01T10:05:00.000Z"}, "other")
	require.NoError(t, err)
	cmd, _ = newCobra()
	assert.ErrorIs(t, h.VerifyToken(cmd, []string{forged}), voice.ErrBadSignature)

	h.now = func() time.Time { return now.Add(time.Hour) }
	assert.ErrorIs(t, h.VerifyToken(cmd, []string{token}), voice.ErrTokenExpired)

	unset := NewVoiceHandler(zap.NewNop(), &config.Configuration{})
	assert.ErrorIs(t, unset.VerifyToken(cmd, []string{token}), ErrVoiceSecretMissing)
}
