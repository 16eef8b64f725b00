package middleware

import (
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var telrSignedFields = []string{
	"tran_store", "tran_type", "tran_class", "tran_test", "tran_ref",
	"tran_prevref", "tran_firstref", "tran_order", "tran_currency",
	"tran_amount", "tran_cartid", "tran_desc", "tran_status",
	"tran_authcode", "tran_authmessage",
}

// TelrSignature is the SHA1 over the secret and the signed fields, joined by ':'.
func TelrSignature(secret string, form url.Values) string {
	parts := []string{secret}
	for _, f := range telrSignedFields {
		parts = append(parts, strings.TrimSpace(form.Get(f)))
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

// TelrWebhookAuth verifies the provider's tran_check signature. Test mode
// skips the check.
func TelrWebhookAuth(secret string, testMode bool, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if testMode {
			log.Debug("telr test mode: skipping webhook signature verification")
			c.Next()
			return
		}

		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to parse form for signature verification"})
			return
		}

		provided := c.PostForm("tran_check")
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing tran_check signature"})
			return
		}

		if secret == "" || !strings.EqualFold(TelrSignature(secret, c.Request.PostForm), provided) {
			log.Warn("telr webhook signature mismatch", zap.String("cart_id", c.PostForm("tran_cartid")))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid webhook signature"})
			return
		}

		c.Next()
	}
}
