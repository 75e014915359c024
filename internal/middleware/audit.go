package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/pkg/logger"
)

// Audit writes one audit line for every successful state changing request.
func Audit(l *zap.Logger, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}
		fields := []zap.Field{
			zap.String("action", action),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
		}
		if claims, ok := CurrentUser(c); ok {
			fields = append(fields, zap.String("actor", claims.Email), zap.String("role", string(claims.Role)))
		}
		for _, p := range c.Params {
			fields = append(fields, zap.String("param_"+p.Key, p.Value))
		}
		logger.FromContext(c, l).Info("audit", fields...)
	}
}
