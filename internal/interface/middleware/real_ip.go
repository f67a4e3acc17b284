package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP stores the client IP under "real_ip".
// With trustForwarded the left-most X-Forwarded-For address (or X-Real-IP) wins;
// otherwise only the socket address reported by Gin is used.
func RealIP(trustForwarded bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if trustForwarded {
			if ip := forwardedIP(c); ip != "" {
				c.Set("real_ip", ip)
				c.Next()
				return
			}
		}
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}

func forwardedIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if xr := strings.TrimSpace(c.GetHeader("X-Real-IP")); xr != "" {
		if ip := net.ParseIP(xr); ip != nil {
			return ip.String()
		}
	}
	return ""
}
