package middleware

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// GatewayWebhookAuth verifies the payment gateway's webhook signature: the
// X-Gateway-Signature header must be the SHA-1 of secret + ":" + raw body.
// Sandbox mode skips the check so local gateways can post unsigned.
func GatewayWebhookAuth() gin.HandlerFunc {
	secretKey := os.Getenv("GATEWAY_WEBHOOK_SECRET")
	mode := strings.ToLower(os.Getenv("GATEWAY_MODE"))

	if secretKey == "" && mode != "sandbox" && mode != "dev" {
		panic("GATEWAY_WEBHOOK_SECRET is not set")
	}

	return func(c *gin.Context) {
		if mode == "sandbox" || mode == "dev" {
			c.Next()
			return
		}

		provided := c.GetHeader("X-Gateway-Signature")
		if provided == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "missing webhook signature"})
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body for signature verification"})
			c.Abort()
			return
		}
		// The handler still needs to bind the body after us.
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		h := sha1.New()
		h.Write([]byte(secretKey))
		h.Write([]byte(":"))
		h.Write(body)
		calculated := hex.EncodeToString(h.Sum(nil))

		if !strings.EqualFold(calculated, provided) {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid webhook signature"})
			c.Abort()
			return
		}

		c.Next()
	}
}
