package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rakawidhi/canteen-app/hub"
	"github.com/rakawidhi/canteen-app/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSController struct {
	Hub *hub.Hub
}

func NewWSController(h *hub.Hub) *WSController {
	return &WSController{Hub: h}
}

// Handle upgrades the connection and joins it to its topics: staff get
// the staff broadcast, customers get their own order feed. Topic
// membership is fixed at handshake time.
func (wc *WSController) Handle(c *gin.Context) {
	userID, role := requester(c)
	if role == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	var client *hub.Client
	if role == models.RoleAdmin {
		client = wc.Hub.Register(ws, hub.TopicStaff)
	} else {
		client = wc.Hub.Register(ws, hub.TopicUser(userID))
	}

	// Inbound frames are ignored; the read loop only detects disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	wc.Hub.Unregister(client)
}
