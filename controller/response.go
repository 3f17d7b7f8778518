package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-durak/durak"
	"go-durak/repository"
	"go-durak/service"
)

func ok(c *gin.Context, msg string, data interface{}) {
	body := gin.H{
		"status_code": http.StatusOK,
		"msg":         msg,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"status_code": status,
		"msg":         msg,
	})
}

// statusOf 把业务错误映射成 HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidParams), errors.Is(err, durak.ErrConfig):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotInRoom), errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, repository.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, durak.ErrInvalidMove), errors.Is(err, service.ErrRoomFull), errors.Is(err, service.ErrGameNotStarted):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func failErr(c *gin.Context, err error) {
	fail(c, statusOf(err), err.Error())
}
