package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-durak/repository"
)

type ResultController struct {
	store *repository.ResultStore
}

func NewResultController(store *repository.ResultStore) *ResultController {
	return &ResultController{store: store}
}

func (rc *ResultController) ListResults(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := rc.store.ListResults(c.Request.Context(), limit)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "获取成功", records)
}

func (rc *ResultController) GetResult(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "id 格式错误")
		return
	}
	rec, err := rc.store.GetResult(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "获取成功", rec)
}
