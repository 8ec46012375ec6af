package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/romnet/lobbyd/internal/app"
	"github.com/romnet/lobbyd/internal/domain"
)

// The /api group is the command surface for the external collaborator (the
// chat-platform bot): pairing confirmation plus the five lobby commands.
// Failures come back as the machine-readable code for the sink to render.

type registerRequest struct {
	ID            string `json:"id" binding:"required"`
	Username      string `json:"username" binding:"required"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	Locale        string `json:"locale"`
}

type confirmRequest struct {
	IdentityID string `json:"identity_id" binding:"required"`
	Code       string `json:"code" binding:"required"`
}

type createRequest struct {
	IdentityID string `json:"identity_id" binding:"required"`
	RomName    string `json:"rom_name" binding:"required"`
}

type joinRequest struct {
	IdentityID string `json:"identity_id" binding:"required"`
	OwnerID    string `json:"owner_id" binding:"required"`
}

type identityRequest struct {
	IdentityID string `json:"identity_id" binding:"required"`
}

func registerAPI(api *gin.RouterGroup, coord *app.Coordinator) {
	api.POST("/identities", func(c *gin.Context) {
		var req registerRequest
		if !bind(c, &req) {
			return
		}
		coord.RegisterIdentity(domain.Profile{
			ID:            req.ID,
			Username:      req.Username,
			Discriminator: req.Discriminator,
			Avatar:        req.Avatar,
			Locale:        req.Locale,
		})
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api.POST("/pairing/confirm", func(c *gin.Context) {
		var req confirmRequest
		if !bind(c, &req) {
			return
		}
		respond(c, coord.ConfirmPairing(req.IdentityID, req.Code))
	})

	api.POST("/lobbies", func(c *gin.Context) {
		var req createRequest
		if !bind(c, &req) {
			return
		}
		respond(c, coord.CreateLobby(req.IdentityID, req.RomName))
	})

	api.POST("/lobbies/join", func(c *gin.Context) {
		var req joinRequest
		if !bind(c, &req) {
			return
		}
		respond(c, coord.JoinLobby(req.IdentityID, req.OwnerID))
	})

	api.POST("/lobbies/leave", func(c *gin.Context) {
		var req identityRequest
		if !bind(c, &req) {
			return
		}
		respond(c, coord.LeaveLobby(req.IdentityID))
	})

	api.POST("/lobbies/start", func(c *gin.Context) {
		var req identityRequest
		if !bind(c, &req) {
			return
		}
		respond(c, coord.StartLobby(req.IdentityID))
	})

	api.POST("/lobbies/drop", func(c *gin.Context) {
		var req identityRequest
		if !bind(c, &req) {
			return
		}
		respond(c, coord.DropLobby(req.IdentityID))
	})

	api.GET("/lobbies", func(c *gin.Context) {
		lobbies := coord.Lobbies()
		out := make([]gin.H, 0, len(lobbies))
		for _, l := range lobbies {
			out = append(out, gin.H{
				"id":      l.ID,
				"rom":     l.RomName,
				"state":   l.State.String(),
				"members": len(l.Roster),
			})
		}
		c.JSON(http.StatusOK, gin.H{"lobbies": out})
	})
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": err.Error()})
		return false
	}
	return true
}

func respond(c *gin.Context, err error) {
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   string(domain.CodeOf(err)),
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
