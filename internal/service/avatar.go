package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	client "joingo/internal/database/client"
	"joingo/internal/database/store/model"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/service/profile"
	"joingo/internal/telemetry"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

const MaxAvatarBytes = 5 << 20

var avatarExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

type AvatarService struct {
	trace   *telemetry.Trace
	logger  *zap.Logger
	storage client.ObjectStorage
	users   *UserService
}

func NewAvatarService(logger *zap.Logger, trace *telemetry.Trace, storage client.ObjectStorage, users *UserService) *AvatarService {
	return &AvatarService{trace: trace, logger: logger, storage: storage, users: users}
}

// Upload 存入物件儲存並把網址寫回 avatarUrl；內容型別以實際內容判斷
func (s *AvatarService) Upload(ctx context.Context, uid string, file io.Reader) (_ *model.User, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	data, err := io.ReadAll(io.LimitReader(file, MaxAvatarBytes+1))
	if err != nil {
		return nil, cErr.BadRequest("Failed to read upload", cErr.BAD_REQUEST_UPLOAD)
	}
	if len(data) == 0 {
		return nil, cErr.BadRequest("Empty file", cErr.BAD_REQUEST_UPLOAD)
	}
	if len(data) > MaxAvatarBytes {
		return nil, cErr.BadRequest("File exceeds 5 MiB", cErr.BAD_REQUEST_UPLOAD)
	}
	contentType, _, _ := strings.Cut(http.DetectContentType(data), ";")
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, cErr.BadRequest("Only png, jpeg and webp images are accepted", cErr.BAD_REQUEST_UPLOAD)
	}

	key := "avatars/" + uid + "/" + xid.New().String() + "." + ext
	if err := s.storage.PutObject(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		if errors.Is(err, client.ErrStorageDisabled) {
			return nil, cErr.ServiceUnavailable("Avatar storage is not configured")
		}
		s.logger.Error("avatar upload failed", zap.String("uid", uid), zap.Error(err))
		return nil, cErr.ExternalRequestError("Avatar upload failed")
	}
	return s.users.Sync(ctx, uid, profile.Partial{AvatarURL: profile.String(s.storage.PublicURL(key))})
}
