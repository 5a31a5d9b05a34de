package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The first front-end build shipped against a placeholder user API.
// The bodies are frozen; nothing reads or writes through these.

func (h HandlerSet) LegacyListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Get all users"})
}

func (h HandlerSet) LegacyCreateUser(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"message": "Create new user"})
}
