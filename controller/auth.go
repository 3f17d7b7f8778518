package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-durak/service"
	"go-durak/utils"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type tokenPair struct {
	UserID       string `json:"userID"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func issueTokens(userID string) (*tokenPair, error) {
	access, err := utils.GenerateAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &tokenPair{UserID: userID, AccessToken: access, RefreshToken: refresh}, nil
}

// GuestLogin 分配一个游客 ID 并签发令牌
func GuestLogin(c *gin.Context) {
	pair, err := issueTokens(service.NewGuestID())
	if err != nil {
		fail(c, http.StatusInternalServerError, "签发令牌失败")
		return
	}
	ok(c, "登录成功", pair)
}

func Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "缺少必要字段")
		return
	}
	claims, err := utils.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		fail(c, http.StatusUnauthorized, "refresh token 无效")
		return
	}
	pair, err := issueTokens(claims.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "签发令牌失败")
		return
	}
	ok(c, "刷新成功", pair)
}

func Health(c *gin.Context) {
	ok(c, "ok", nil)
}
