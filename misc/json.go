package misc

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
)

func BindJSON(c *gin.Context, v interface{}) error {
	body := c.Request.Body
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

func AbortWithErr(c *gin.Context, code int, err error) {
	c.JSON(code, StatusErr(err.Error()))
	c.Abort()
}
