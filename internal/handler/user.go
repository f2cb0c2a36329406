package handler

import (
	"joingo/internal/dto"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/pkg/response"
	"joingo/internal/service"
	"joingo/internal/telemetry"
	"joingo/utils/validate"

	"github.com/gin-gonic/gin"
)

const avatarFormField = "file"

type UserHandler struct {
	trace         *telemetry.Trace
	userService   *service.UserService
	authService   *service.AuthService
	avatarService *service.AvatarService
}

func NewUserHandler(
	trace *telemetry.Trace,
	userService *service.UserService,
	authService *service.AuthService,
	avatarService *service.AvatarService,
) *UserHandler {
	return &UserHandler{
		trace:         trace,
		userService:   userService,
		authService:   authService,
		avatarService: avatarService,
	}
}

// Sync 建立或合併自己的檔案
// @Summary 自助同步個人檔案（不存在時建立）
// @Tags User
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.SyncProfileDto true "欲更新欄位"
// @Success 200 {object} model.User
// @Failure 400 {object} response.ErrorResponse
// @Router /api/users/sync [post]
func (h *UserHandler) Sync(c *gin.Context) {
	h.merge(c, false)
}

// UpdateMe
// @Summary 更新既有個人檔案
// @Tags User
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.SyncProfileDto true "欲更新欄位"
// @Success 200 {object} model.User
// @Failure 404 {object} response.ErrorResponse
// @Router /api/users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	h.merge(c, true)
}

func (h *UserHandler) merge(c *gin.Context, mustExist bool) {
	ctx, _, end := h.trace.WithSpan(c)
	uid, err := currentUID(c)
	if err != nil {
		end(nil)
		response.AbortWithError(c, err)
		return
	}
	var req dto.SyncProfileDto
	if cause, err := validate.BindAndValidate(c, &req); err != nil {
		end(cause)
		response.AbortWithError(c, err)
		return
	}
	partial := req.Partial()
	if mustExist {
		user, err := h.userService.Update(ctx, uid, partial)
		end(err)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}
		response.Success(c, user)
		return
	}
	user, err := h.userService.Sync(ctx, uid, partial)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, user)
}

// Me
// @Summary 取得自己的檔案
// @Tags User
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.User
// @Failure 404 {object} response.ErrorResponse
// @Router /api/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	uid, err := currentUID(c)
	if err != nil {
		end(nil)
		response.AbortWithError(c, err)
		return
	}
	user, err := h.userService.GetProfile(ctx, uid)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, user)
}

// DeleteMe
// @Summary 刪除帳號（檔案軟刪除，full=true 時一併刪除 IdP 帳號）
// @Tags User
// @Security BearerAuth
// @Produce json
// @Param full query bool false "一併刪除登入帳號"
// @Success 200 {object} model.User
// @Failure 404 {object} response.ErrorResponse
// @Router /api/users/me [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	uid, err := currentUID(c)
	if err != nil {
		end(nil)
		response.AbortWithError(c, err)
		return
	}
	var query dto.DeleteAccountQuery
	if cause, err := validate.BindQuery(c, &query); err != nil {
		end(cause)
		response.AbortWithError(c, err)
		return
	}
	user, err := h.authService.DeleteAccount(ctx, uid, query.Full)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, user)
}

// UploadAvatar
// @Summary 上傳頭像
// @Tags User
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "png / jpeg / webp，最大 5 MiB"
// @Success 200 {object} model.User
// @Failure 400 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	uid, err := currentUID(c)
	if err != nil {
		end(nil)
		response.AbortWithError(c, err)
		return
	}
	header, err := c.FormFile(avatarFormField)
	if err != nil {
		end(err)
		response.AbortWithError(c, cErr.BadRequest("Missing avatar file", cErr.BAD_REQUEST_UPLOAD))
		return
	}
	if header.Size > service.MaxAvatarBytes {
		end(nil)
		response.AbortWithError(c, cErr.BadRequest("Avatar exceeds 5 MiB", cErr.BAD_REQUEST_UPLOAD))
		return
	}
	file, err := header.Open()
	if err != nil {
		end(err)
		response.AbortWithError(c, cErr.BadRequest("Unreadable avatar file", cErr.BAD_REQUEST_UPLOAD))
		return
	}
	defer file.Close()

	user, err := h.avatarService.Upload(ctx, uid, file)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, user)
}
