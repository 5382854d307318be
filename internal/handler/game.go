package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/courtside/internal/model"
	"github.com/maxviazov/courtside/internal/repository"
	"github.com/maxviazov/courtside/internal/service"
	"github.com/maxviazov/courtside/pkg/response"
)

// GameHandler is the scorer-table API: one live game per id, driven by actions.
type GameHandler struct {
	svc service.GameService
}

func NewGameHandler(svc service.GameService) *GameHandler { return &GameHandler{svc: svc} }

func (h *GameHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/games")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET(":id", h.getByID)
		g.POST(":id/actions", h.dispatch)
		g.POST(":id/undo", h.undo)
		g.POST(":id/finish", h.finish)
	}
}

func (h *GameHandler) create(c *gin.Context) {
	var req service.NewGameInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	game, err := h.svc.StartGame(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, game)
}

func (h *GameHandler) getByID(c *gin.Context) {
	game, err := h.svc.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

type listQuery struct {
	repository.Page
	Status string `form:"status"`
}

// list only serves the finished archive; live games are addressed by id.
func (h *GameHandler) list(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	if q.Status != "" && q.Status != "finished" {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	res, err := h.svc.ListFinished(c.Request.Context(), q.Page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *GameHandler) dispatch(c *gin.Context) {
	var action model.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	res, err := h.svc.Dispatch(c.Request.Context(), c.Param("id"), action)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *GameHandler) undo(c *gin.Context) {
	game, err := h.svc.Undo(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) finish(c *gin.Context) {
	game, err := h.svc.FinishGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}
