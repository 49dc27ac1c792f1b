// Package sticker is the boundary to the image-render collaborator. The
// bot composes what to render; turning it into a webp sticker blob is
// delegated to an external ImageMagick process behind the Renderer
// interface.
package sticker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"
)

// QuoteCard describes a quoted text message to be rendered as a
// WhatsApp-style chat bubble sticker.
type QuoteCard struct {
	Name          string // display name of the quoted sender
	Text          string // quoted message body
	Time          string // HH:MM shown next to the bubble
	AvatarDataURI string // optional profile picture as a data URI
}

// Renderer turns raster images or composed quote cards into sticker-ready
// webp blobs.
type Renderer interface {
	RenderImage(ctx context.Context, img []byte) ([]byte, error)
	RenderQuote(ctx context.Context, card QuoteCard) ([]byte, error)
}

// DefaultBinary is the ImageMagick executable looked up on PATH.
const DefaultBinary = "magick"

// MagickRenderer renders through an ImageMagick subprocess.
type MagickRenderer struct {
	log    zerolog.Logger
	binary string
}

// NewMagickRenderer creates a renderer using the magick binary.
func NewMagickRenderer(log zerolog.Logger) *MagickRenderer {
	return &MagickRenderer{
		log:    log.With().Str("component", "sticker").Logger(),
		binary: DefaultBinary,
	}
}

// RenderImage converts an image to a sticker-sized webp.
func (r *MagickRenderer) RenderImage(ctx context.Context, img []byte) ([]byte, error) {
	return r.convert(ctx, img, "-", "-resize", "512x512", "-quality", "80", "webp:-")
}

// RenderQuote composes the quote card as SVG and converts it to webp.
func (r *MagickRenderer) RenderQuote(ctx context.Context, card QuoteCard) ([]byte, error) {
	svg := BuildQuoteSVG(card)
	return r.convert(ctx, []byte(svg), "-background", "none", "svg:-", "-quality", "95", "webp:-")
}

func (r *MagickRenderer) convert(ctx context.Context, input []byte, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		r.log.Error().Err(err).Str("stderr", stderr.String()).Msg("ImageMagick conversion failed")
		return nil, fmt.Errorf("magick: %w", err)
	}
	return stdout.Bytes(), nil
}
