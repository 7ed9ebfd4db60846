package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crescent-hq/minaret/internal/adhan"
	"github.com/crescent-hq/minaret/internal/http/api"
	"github.com/crescent-hq/minaret/internal/http/api/prayer/packets"
	"github.com/crescent-hq/minaret/internal/model"
)

type AdhanController struct {
	player *adhan.Player
}

func NewAdhanController(player *adhan.Player) *AdhanController {
	return &AdhanController{player: player}
}

func AdhanModule(player *adhan.Player) api.Module {
	ctl := NewAdhanController(player)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/adhan/options", ctl.listOptions)
		c.GET("/adhan/preview", ctl.previewSession)
		c.POST("/adhan/preview", ctl.preview)
		c.POST("/adhan/preview/stop", ctl.stopPreview)
	})
}

func (a *AdhanController) listOptions(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return adhan.Options(), nil
}

func (a *AdhanController) previewSession(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	state, loaded := a.player.Session()
	return packets.PreviewSessionResponse{State: state, Loaded: loaded}, nil
}

func (a *AdhanController) preview(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.PreviewRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	option, ok := adhan.OptionByValue(request.Value)
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown adhan sound"}
	}

	if err := a.player.PreviewSync(option); err != nil {
		if errors.Is(err, adhan.ErrAudioResource) {
			return nil, &api.APIError{Code: http.StatusBadGateway, Message: "could not load preview audio"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "preview failed"}
	}

	state, loaded := a.player.Session()
	return packets.PreviewSessionResponse{State: state, Loaded: loaded}, nil
}

func (a *AdhanController) stopPreview(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	a.player.Stop()
	state, loaded := a.player.Session()
	return packets.PreviewSessionResponse{State: state, Loaded: loaded}, nil
}
