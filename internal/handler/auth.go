package handler

import (
	"time"

	"joingo/internal/core"
	"joingo/internal/dto"
	"joingo/internal/pkg/response"
	"joingo/internal/service"
	"joingo/internal/telemetry"
	"joingo/utils/validate"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	trace       *telemetry.Trace
	authService *service.AuthService
}

func NewAuthHandler(trace *telemetry.Trace, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{trace: trace, authService: authService}
}

// Register 註冊帳號
// @Summary 以 email 與密碼註冊
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterDto true "註冊資料"
// @Success 201 {object} service.RegisterResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var req dto.RegisterDto
	if cause, err := validate.BindAndValidate(c, &req); err != nil {
		end(cause)
		response.AbortWithError(c, err)
		return
	}
	result, err := h.authService.Register(ctx, service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	})
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, result)
}

// Login 密碼登入
// @Summary 以 email 與密碼登入
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginDto true "登入資料"
// @Success 200 {object} identity.SignInResult
// @Failure 401 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var req dto.LoginDto
	if cause, err := validate.BindAndValidate(c, &req); err != nil {
		end(cause)
		response.AbortWithError(c, err)
		return
	}
	result, err := h.authService.Login(ctx, req.Email, req.Password)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 撤銷登入狀態
// @Summary 登出並使目前 token 失效
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 401 {object} response.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	uid, err := currentUID(c)
	if err != nil {
		end(nil)
		response.AbortWithError(c, err)
		return
	}
	exp, _ := c.Get(core.ContextTokenExpKey)
	expiresAt, _ := exp.(time.Time)
	err = h.authService.Logout(ctx, uid, c.GetString(core.ContextTokenKey), expiresAt)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"loggedOut": true})
}

// ChangeEmail
// @Summary 變更登入信箱
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.ChangeEmailDto true "新信箱"
// @Success 200 {object} map[string]string
// @Failure 409 {object} response.ErrorResponse
// @Router /api/auth/change-email [post]
func (h *AuthHandler) ChangeEmail(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	uid, err := currentUID(c)
	if err != nil {
		end(nil)
		response.AbortWithError(c, err)
		return
	}
	var req dto.ChangeEmailDto
	if cause, err := validate.BindAndValidate(c, &req); err != nil {
		end(cause)
		response.AbortWithError(c, err)
		return
	}
	err = h.authService.ChangeEmail(ctx, uid, req.Email)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"email": req.Email})
}

// ChangePassword
// @Summary 變更密碼
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.ChangePasswordDto true "新密碼"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} response.ErrorResponse
// @Router /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	uid, err := currentUID(c)
	if err != nil {
		end(nil)
		response.AbortWithError(c, err)
		return
	}
	var req dto.ChangePasswordDto
	if cause, err := validate.BindAndValidate(c, &req); err != nil {
		end(cause)
		response.AbortWithError(c, err)
		return
	}
	err = h.authService.ChangePassword(ctx, uid, req.Password)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// ProviderSync 第三方登入後同步檔案
// @Summary 以 IdP 資料同步個人檔案
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.ProviderSyncDto false "補充資料"
// @Success 200 {object} model.User
// @Failure 404 {object} response.ErrorResponse
// @Router /api/auth/provider-sync [post]
func (h *AuthHandler) ProviderSync(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	uid, err := currentUID(c)
	if err != nil {
		end(nil)
		response.AbortWithError(c, err)
		return
	}
	var req dto.ProviderSyncDto
	// body 可省略
	if c.Request.ContentLength != 0 {
		if cause, err := validate.BindAndValidate(c, &req); err != nil {
			end(cause)
			response.AbortWithError(c, err)
			return
		}
	}
	user, err := h.authService.ProviderSync(ctx, uid, service.ProviderSyncInput{
		DisplayName: req.DisplayName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		AvatarURL:   req.AvatarURL,
		PhoneNumber: req.PhoneNumber,
		Locale:      req.Locale,
		Provider:    req.Provider,
	})
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, user)
}
