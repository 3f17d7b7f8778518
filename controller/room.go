package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-durak/dto"
	"go-durak/service"
)

type RoomController struct {
	svc *service.RoomService
}

func NewRoomController(svc *service.RoomService) *RoomController {
	return &RoomController{svc: svc}
}

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "缺少必要字段")
		return
	}
	// 房主只认 token 里的用户
	req.UserID = c.GetString("userID")

	roomID, err := rc.svc.CreateRoom(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "房间创建成功", dto.CreateRoomResponse{RoomID: roomID})
}

func (rc *RoomController) DeleteRoom(c *gin.Context) {
	var req dto.DeleteRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "缺少必要字段")
		return
	}
	if err := rc.svc.DeleteRoom(c.Request.Context(), req, c.GetString("userID")); err != nil {
		failErr(c, err)
		return
	}
	ok(c, "房间删除成功", nil)
}

func (rc *RoomController) GetRoomList(c *gin.Context) {
	rooms, err := rc.svc.GetRoomList(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取房间列表失败")
		return
	}
	ok(c, "获取成功", dto.GetRoomList{
		Rooms:        rooms,
		OnlinePlayer: rc.svc.GetOnlinePlayer(),
	})
}

// GetRoomInfo 返回当前用户视角的牌局，未登录时按观战者处理
func (rc *RoomController) GetRoomInfo(c *gin.Context) {
	view, err := rc.svc.View(c.Request.Context(), c.Param("roomID"), c.GetString("userID"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "获取成功", view)
}

func (rc *RoomController) Join(c *gin.Context) {
	seat, err := rc.svc.JoinRoom(c.Request.Context(), c.Param("roomID"), c.GetString("userID"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "加入成功", gin.H{"seat": seat})
}

func (rc *RoomController) Move(c *gin.Context) {
	var req dto.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "缺少必要字段")
		return
	}
	view, err := rc.svc.ApplyMove(c.Request.Context(), c.Param("roomID"), c.GetString("userID"), req)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "操作成功", view)
}

func (rc *RoomController) Restart(c *gin.Context) {
	if err := rc.svc.RestartGame(c.Request.Context(), c.Param("roomID"), c.GetString("userID")); err != nil {
		failErr(c, err)
		return
	}
	ok(c, "重新开始", nil)
}
