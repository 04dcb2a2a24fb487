package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xavierspacelix/jamming/internal/domain"
	"github.com/xavierspacelix/jamming/pkg/log"
)

const (
	cookieGuestName = "guest_name"
	cookieHostName  = "host_name"
	cookieRoomCode  = "room_code"

	cookieMaxAge = 3600 * 24 * 30
)

// GuestMiddleware reads the guest name cookie so downstream handlers can
// tag queue entries with their requester.
func GuestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if name, err := c.Cookie(cookieGuestName); err == nil && name != "" {
			c.Set(log.FieldGuest, name)
		}
		c.Next()
	}
}

// GuestName returns the requester label for the current request, or "" if
// the client has no guest cookie.
func GuestName(c *gin.Context) string {
	return c.GetString(log.FieldGuest)
}

func setGuestCookies(c *gin.Context, room *domain.Room) {
	c.SetCookie(cookieGuestName, room.Host, cookieMaxAge, "/", "", false, true)
	c.SetCookie(cookieHostName, room.Host, cookieMaxAge, "/", "", false, true)
	c.SetCookie(cookieRoomCode, room.Code, 3600*24*7, "/", "", false, true)
}
