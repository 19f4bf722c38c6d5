package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"dronefarm/internal/adapter/savecodec"
	"dronefarm/internal/app/command"
	"dronefarm/internal/app/ports"
	"dronefarm/internal/app/saves"
	"dronefarm/internal/app/script"
	"dronefarm/internal/domain/console"
	"dronefarm/internal/domain/farm"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	Engine   *command.Engine
	Sessions *script.Registry
	SavesUC  saves.UseCase
	KPI      kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	farmGroup := s.Group("/api/farm")
	farmGroup.GET("", h.farm)
	farmGroup.GET("/prices", h.prices)
	farmGroup.POST("/command", h.command)
	farmGroup.POST("/unlock", h.unlock)

	sessions := s.Group("/api/sessions")
	sessions.POST("", h.createSession)
	sessions.GET("", h.listSessions)
	sessions.GET("/:id", h.getSession)
	sessions.DELETE("/:id", h.destroySession)
	sessions.POST("/:id/submit", h.submit)

	savesGroup := s.Group("/api/saves")
	savesGroup.GET("", h.listSaves)
	savesGroup.POST("/:name", h.save)
	savesGroup.POST("/:name/load", h.load)
	savesGroup.DELETE("/:name", h.deleteSave)

	s.GET("/ops/kpi", h.kpi)
}

type commandRequest struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Crop string `json:"crop,omitempty"`
	Item string `json:"item,omitempty"`
	Qty  *int   `json:"qty,omitempty"`
}

type commandResponse struct {
	OK      bool       `json:"ok"`
	Message string     `json:"message"`
	Value   any        `json:"value,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type unlockRequest struct {
	Crop string `json:"crop"`
}

type createSessionRequest struct {
	Help bool `json:"help"`
}

type submitRequest struct {
	Program string `json:"program"`
	Wait    bool   `json:"wait"`
}

type sessionView struct {
	ID          string          `json:"id"`
	ProgramText string          `json:"program_text"`
	OutputLog   []console.Entry `json:"output_log"`
	Running     bool            `json:"running"`
}

type submitResponse struct {
	Session sessionView `json:"session"`
	Result  *string     `json:"result,omitempty"`
	Fault   *string     `json:"fault,omitempty"`
}

func (h Handler) farm(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, h.Engine.Snapshot())
}

func (h Handler) prices(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]any{"prices": h.Engine.Prices()})
}

func (h Handler) command(c context.Context, ctx *app.RequestContext) {
	var body commandRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	qty := 1
	if body.Qty != nil {
		qty = *body.Qty
	}
	res := h.Engine.Execute(c, command.Request{
		Name: command.Name(strings.TrimSpace(body.Name)),
		X:    body.X,
		Y:    body.Y,
		Crop: body.Crop,
		Item: body.Item,
		Qty:  qty,
	}, nil)
	out := commandResponse{OK: res.OK, Message: res.Message, Value: res.Value}
	if res.Err != nil {
		out.Error = &errorBody{Code: commandErrorCode(res.Err), Message: res.Err.Error()}
	}
	ctx.JSON(consts.StatusOK, out)
}

func (h Handler) unlock(_ context.Context, ctx *app.RequestContext) {
	var body unlockRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := h.Engine.UnlockCrop(farm.CropType(strings.TrimSpace(body.Crop))); err != nil {
		writeError(ctx, err)
		return
	}
	snap := h.Engine.Snapshot()
	ctx.JSON(consts.StatusOK, map[string]any{"unlocked_crops": snap.UnlockedCrops, "money": snap.Money})
}

func (h Handler) createSession(_ context.Context, ctx *app.RequestContext) {
	var body createSessionRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	s := h.Sessions.Create(script.CreateOptions{Help: body.Help})
	ctx.JSON(consts.StatusCreated, viewOf(s))
}

func (h Handler) listSessions(_ context.Context, ctx *app.RequestContext) {
	list := h.Sessions.List()
	out := make([]sessionView, 0, len(list))
	for _, s := range list {
		out = append(out, viewOf(s))
	}
	ctx.JSON(consts.StatusOK, map[string]any{"sessions": out})
}

func (h Handler) getSession(_ context.Context, ctx *app.RequestContext) {
	s, err := h.Sessions.Get(ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, viewOf(s))
}

func (h Handler) destroySession(_ context.Context, ctx *app.RequestContext) {
	if err := h.Sessions.Destroy(ctx.Param("id")); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.SetStatusCode(consts.StatusNoContent)
}

func (h Handler) submit(c context.Context, ctx *app.RequestContext) {
	s, err := h.Sessions.Get(ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body submitRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	fut, err := s.Submit(c, body.Program)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if !body.Wait {
		ctx.JSON(consts.StatusAccepted, submitResponse{Session: viewOf(s)})
		return
	}
	out, err := fut.Wait(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	resp := submitResponse{Session: viewOf(s)}
	if out.Err != nil {
		msg := out.Err.Error()
		resp.Fault = &msg
	} else if out.Value != "" {
		resp.Result = &out.Value
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) listSaves(c context.Context, ctx *app.RequestContext) {
	list, err := h.SavesUC.List(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"saves": list})
}

func (h Handler) save(c context.Context, ctx *app.RequestContext) {
	sum, err := h.SavesUC.Save(c, ctx.Param("name"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, sum)
}

func (h Handler) load(c context.Context, ctx *app.RequestContext) {
	rec, err := h.SavesUC.Load(c, ctx.Param("name"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, rec)
}

func (h Handler) deleteSave(c context.Context, ctx *app.RequestContext) {
	if err := h.SavesUC.Delete(c, ctx.Param("name")); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.SetStatusCode(consts.StatusNoContent)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func viewOf(s *script.Session) sessionView {
	snap := s.Snapshot()
	return sessionView{
		ID:          snap.ID,
		ProgramText: snap.ProgramText,
		OutputLog:   snap.OutputLog,
		Running:     s.Running(),
	}
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func commandErrorCode(err error) string {
	switch {
	case errors.Is(err, command.ErrUnknownCommand):
		return "unknown_command"
	case errors.Is(err, command.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, command.ErrAlreadyPlowed):
		return "already_plowed"
	case errors.Is(err, command.ErrCropLocked):
		return "crop_locked"
	case errors.Is(err, command.ErrNoSeeds):
		return "no_seeds"
	case errors.Is(err, command.ErrTileNotPlantable):
		return "tile_not_plantable"
	case errors.Is(err, command.ErrNoReadyCrop):
		return "no_ready_crop"
	case errors.Is(err, command.ErrMaxSize):
		return "max_size"
	case errors.Is(err, command.ErrUnknownItem):
		return "unknown_item"
	case errors.Is(err, command.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, command.ErrPrerequisiteLocked):
		return "prerequisite_locked"
	case errors.Is(err, command.ErrInsufficientInventory):
		return "insufficient_inventory"
	case errors.Is(err, command.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "rejected"
	}
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, command.ErrUnknownCrop):
		writeErrorBody(ctx, consts.StatusBadRequest, "unknown_crop", err.Error())
	case errors.Is(err, command.ErrPrerequisiteLocked),
		errors.Is(err, command.ErrInsufficientFunds):
		writeErrorBody(ctx, consts.StatusConflict, commandErrorCode(err), rejectedText(err))
	case errors.Is(err, script.ErrEmptyProgram):
		writeErrorBody(ctx, consts.StatusBadRequest, "empty_program", err.Error())
	case errors.Is(err, script.ErrSessionClosed):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, script.ErrSessionBusy):
		writeErrorBody(ctx, consts.StatusConflict, "session_busy", err.Error())
	case errors.Is(err, saves.ErrInvalidName):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_save_name", err.Error())
	case errors.Is(err, farm.ErrInvalidSnapshot),
		errors.Is(err, script.ErrInvalidSessions),
		errors.Is(err, savecodec.ErrInvalidBlob):
		writeErrorBody(ctx, consts.StatusUnprocessableEntity, "invalid_save", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeErrorBody(ctx, consts.StatusGatewayTimeout, "timeout", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func rejectedText(err error) string {
	var rej *command.RejectedError
	if errors.As(err, &rej) && rej.Text != "" {
		return rej.Text
	}
	return err.Error()
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
