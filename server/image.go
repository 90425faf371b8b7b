package server

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/onetoseven/marketplace/internal/common"
	"github.com/onetoseven/marketplace/misc"
)

var (
	ErrInvalidImage = errors.New("invalid image")
	ErrNoImage      = errors.New("no image in request")
)

const (
	minImageWidth  = 100
	minImageHeight = 100
)

// uploadScreenshot accepts the order screenshot through a fallback ladder:
// a direct URL (already hosted), a multipart upload, then a base64 body.
// The stored URL is only ever written once the bytes are definitively on
// disk; a failed upload leaves the order record untouched.
func uploadScreenshot(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		appId := c.Param("id")

		url, err := extractImage(s, c, appId)
		if err != nil {
			c.JSON(400, misc.StatusErr(err.Error()))
			return
		}

		// attach to an existing order record when there is one; otherwise
		// the client passes the URL along with submitOrder
		if err := s.db.Update(func(tx *bolt.Tx) error {
			app := common.GetApplicationTx(tx, s.Cfg, appId)
			if app == nil {
				return ErrApplicationNotFound
			}
			if app.Order != nil {
				app.Order.ScreenshotUrl = url
				return common.SaveApplicationTx(tx, s.Cfg, app)
			}
			return nil
		}); err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}

		c.JSON(200, gin.H{"code": 200, "url": url})
	}
}

func extractImage(s *Server, c *gin.Context, appId string) (string, error) {
	// rung 1: the client already uploaded it somewhere stable
	if direct := c.Query("imageUrl"); direct != "" {
		return direct, nil
	}

	// rung 2: multipart upload
	if file, _, err := c.Request.FormFile("screenshot"); err == nil {
		defer file.Close()
		raw, err := io.ReadAll(file)
		if err != nil {
			return "", err
		}
		return saveImageToDisk(s, raw, appId)
	}

	// rung 3: base64 body
	var load struct {
		Data string `json:"data"`
	}
	if err := misc.BindJSON(c, &load); err != nil || load.Data == "" {
		return "", ErrNoImage
	}
	idx := strings.Index(load.Data, ";base64,")
	if idx < 0 {
		return "", ErrInvalidImage
	}
	raw, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, strings.NewReader(load.Data[idx+8:])))
	if err != nil {
		return "", err
	}
	return saveImageToDisk(s, raw, appId)
}

func saveImageToDisk(s *Server, raw []byte, appId string) (string, error) {
	imgCfg, fm, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", ErrInvalidImage
	}
	if imgCfg.Width < minImageWidth || imgCfg.Height < minImageHeight {
		return "", fmt.Errorf("invalid size (%dx%d), min size is %dx%d", imgCfg.Width, imgCfg.Height, minImageWidth, minImageHeight)
	}

	if err := os.MkdirAll(s.Cfg.ImageDir, 0755); err != nil {
		return "", err
	}

	fileName := appId + "-" + uuid.NewString() + "." + fm
	if err := os.WriteFile(filepath.Join(s.Cfg.ImageDir, fileName), raw, 0644); err != nil {
		return "", err
	}

	return s.Cfg.ServerURL + "/" + filepath.Join(s.Cfg.ImageUrlPath, fileName), nil
}
