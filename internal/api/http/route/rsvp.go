package route

import (
	"github.com/gin-gonic/gin"

	"github.com/wuwenhuang/bethel-rsvp/internal/model"
)

type RSVPHandler interface {
	Reply(category model.Category) gin.HandlerFunc
	Send(category model.Category) gin.HandlerFunc
}

func RegisterRSVP(g *gin.RouterGroup, h RSVPHandler) {
	for _, category := range model.Categories() {
		categoryPath := g.Group("/" + string(category))
		categoryPath.GET("/reply", h.Reply(category))
		categoryPath.GET("/send", h.Send(category))
	}
}
