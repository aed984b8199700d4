package tool

import (
	"github.com/gin-gonic/gin"
)

func FastReturnError(msg string) gin.H {
	return gin.H{
		"error": msg,
	}
}

func FastReturnSuccess() gin.H {
	return gin.H{
		"status": "ok",
	}
}

// FastReturnSuccessWithData wraps data in the {"data": ...} envelope read by transfer.HTTPGateway.
func FastReturnSuccessWithData(data any) gin.H {
	return gin.H{
		"data": data,
	}
}
