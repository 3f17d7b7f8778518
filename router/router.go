package router

import (
	"github.com/gin-gonic/gin"

	"go-durak/controller"
	"go-durak/middleware"
	"go-durak/repository"
	"go-durak/service"
	"go-durak/ws"
)

type Deps struct {
	Rooms   *service.RoomService
	Results *repository.ResultStore
	Hub     *ws.Hub
}

func InitRouter(r *gin.Engine, deps Deps) {
	rooms := controller.NewRoomController(deps.Rooms)
	results := controller.NewResultController(deps.Results)

	r.GET("/health", controller.Health)

	auth := r.Group("/auth")
	{
		auth.POST("/guest", controller.GuestLogin)
		auth.POST("/refresh", controller.Refresh)
	}

	// 房间接口路由
	api := r.Group("/room")
	{
		api.POST("/create", middleware.AuthMiddleware(), rooms.CreateRoom)
		api.POST("/delete", middleware.AuthMiddleware(), rooms.DeleteRoom)
		api.GET("/list", rooms.GetRoomList)
		api.GET("/:roomID", middleware.OptionalAuth(), rooms.GetRoomInfo)
		api.POST("/:roomID/join", middleware.AuthMiddleware(), rooms.Join)
		api.POST("/:roomID/move", middleware.AuthMiddleware(), rooms.Move)
		api.POST("/:roomID/restart", middleware.AuthMiddleware(), rooms.Restart)
	}

	r.GET("/results", results.ListResults)
	r.GET("/results/:id", results.GetResult)

	// WebSocket 路由
	r.GET("/ws", middleware.OptionalAuth(), deps.Hub.HandleWebSocket)
}

