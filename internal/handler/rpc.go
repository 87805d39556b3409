package handler

import (
	"context"
	"net/http"

	"github.com/GoPolymarket/kylingate/internal/kylin"
	"github.com/GoPolymarket/kylingate/internal/model"
	"github.com/GoPolymarket/kylingate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// Dispatcher is satisfied by *service.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, params map[string]string) (string, error)
}

type RPCHandler struct {
	svc Dispatcher
}

func NewRPCHandler(svc Dispatcher) *RPCHandler {
	return &RPCHandler{svc: svc}
}

// APIList returns the supported command names.
func (h *RPCHandler) APIList(c *gin.Context) {
	c.JSON(http.StatusOK, kylin.Names())
}

// Call dispatches one command and writes the upstream data payload verbatim.
func (h *RPCHandler) Call(c *gin.Context) {
	var req model.RPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest("body must be {\"api_name\": string, \"api_params\"?: {string: string}}"))
		return
	}

	params := req.Params
	if params == nil {
		params = kylin.PresetParams(req.APIName)
	}

	result, err := h.svc.Dispatch(c.Request.Context(), req.APIName, params)
	if err != nil {
		c.Error(err)
		return
	}

	c.Data(http.StatusOK, "application/json", []byte(result))
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "kylingate"})
}
