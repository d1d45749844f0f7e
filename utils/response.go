package utils

import "github.com/gin-gonic/gin"

// Detail writes the error body shape the web client consumes: a bare JSON
// object with a single human-readable "detail" field. Success responses carry
// the resource representation directly, with no envelope.
func Detail(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"detail": message})
}
