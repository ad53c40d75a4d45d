package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/EnmanuelReynoso23/el-pensum/config"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeImage_ShrinksLargeImages(t *testing.T) {
	out, err := NormalizeImage(bytes.NewReader(pngBytes(t, 2048, 1024)), MaxImageDimension)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1024, img.Bounds().Dx())
	assert.Equal(t, 512, img.Bounds().Dy())

	_, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestNormalizeImage_KeepsSmallImages(t *testing.T) {
	out, err := NormalizeImage(bytes.NewReader(pngBytes(t, 300, 200)), 0)
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestNormalizeImage_RejectsGarbage(t *testing.T) {
	_, err := NormalizeImage(strings.NewReader("%PDF-1.4 not an image"), 0)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestGenerateKey(t *testing.T) {
	key := GenerateKey(PrefixLogos, "Logo.PNG")
	assert.True(t, strings.HasPrefix(key, "logos/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, GenerateKey(PrefixLogos, "Logo.PNG"))
}

func TestSpacesClient_URLs(t *testing.T) {
	c, err := NewSpacesClient(config.SpacesConfig{
		AccessKey: "key", SecretKey: "secret", Bucket: "pensum", Region: "nyc3",
		Endpoint: "nyc3.digitaloceanspaces.com",
	})
	require.NoError(t, err)

	url := c.URL("logos/a.jpg")
	assert.Equal(t, "https://pensum.nyc3.digitaloceanspaces.com/logos/a.jpg", url)

	key, ok := c.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "logos/a.jpg", key)

	_, ok = c.KeyFromURL("https://elsewhere.example.com/logo.png")
	assert.False(t, ok)

	cdn, err := NewSpacesClient(config.SpacesConfig{
		AccessKey: "key", SecretKey: "secret", Bucket: "pensum", Region: "nyc3",
		Endpoint: "nyc3.digitaloceanspaces.com", CDNURL: "https://cdn.elpensum.do/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.elpensum.do/syllabi/x.pdf", cdn.URL("syllabi/x.pdf"))
}

func TestNewSpacesClient_RequiresConfig(t *testing.T) {
	_, err := NewSpacesClient(config.SpacesConfig{Bucket: "pensum"})
	assert.Error(t, err)
}
