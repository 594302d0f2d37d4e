package render

import (
	"image"
	"image/color"
	stddraw "image/draw"
	"io"
	"slices"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgeps"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/matzehuels/pubplot/pkg/errors"
)

var (
	vectorFormats = []string{"pdf", "svg", "eps"}
	rasterFormats = []string{"png", "jpg", "tif"}
)

// Formats returns the image formats Encode supports.
func Formats() []string {
	return append(slices.Clone(vectorFormats), rasterFormats...)
}

// IsRaster reports whether format is drawn at the surface DPI.
func IsRaster(format string) bool { return slices.Contains(rasterFormats, format) }

// ContentType returns the MIME type for an image format.
func ContentType(format string) string {
	switch format {
	case "pdf":
		return "application/pdf"
	case "svg":
		return "image/svg+xml"
	case "eps":
		return "application/postscript"
	case "png":
		return "image/png"
	case "jpg":
		return "image/jpeg"
	case "tif":
		return "image/tiff"
	case "json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// EncodeOptions controls a single Encode call.
type EncodeOptions struct {
	Format      string
	Transparent bool // clears the figure and axes backgrounds
	DPI         int  // raster resolution; 0 uses the surface DPI
}

// Encode draws the finalized plot to w. Vector formats draw onto a fresh
// canvas each time; raster formats redraw the acquired canvas unless a
// different DPI is requested.
func (s *Surface) Encode(w io.Writer, o EncodeOptions) error {
	if err := s.usable(); err != nil {
		return err
	}
	if !s.finalized {
		return errors.New(errors.ErrCodeRender, "surface not finalized")
	}

	p := s.plot
	bg, axes := p.BackgroundColor, s.axesFill.color
	if o.Transparent {
		p.BackgroundColor, s.axesFill.color = nil, nil
		defer func() { p.BackgroundColor, s.axesFill.color = bg, axes }()
	}

	width, height := vg.Length(s.spec.Width)*vg.Inch, vg.Length(s.spec.Height)*vg.Inch
	var wt io.WriterTo
	switch o.Format {
	case "pdf":
		c := vgpdf.New(width, height)
		p.Draw(draw.New(c))
		wt = c
	case "svg":
		c := vgsvg.New(width, height)
		p.Draw(draw.New(c))
		wt = c
	case "eps":
		c := vgeps.New(width, height)
		p.Draw(draw.New(c))
		wt = c
	case "png", "jpg", "tif":
		// JPEG has no alpha channel, so it always gets an opaque base.
		base := color.Color(color.Transparent)
		if o.Format == "jpg" || !o.Transparent {
			base = color.White
		}
		c := s.canvas
		if o.DPI > 0 && o.DPI != s.spec.DPI {
			c = vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(o.DPI))
		}
		img := c.Image()
		stddraw.Draw(img, img.Bounds(), image.NewUniform(base), image.Point{}, stddraw.Src)
		p.Draw(draw.New(c))
		switch o.Format {
		case "png":
			wt = vgimg.PngCanvas{Canvas: c}
		case "jpg":
			wt = vgimg.JpegCanvas{Canvas: c}
		default:
			wt = vgimg.TiffCanvas{Canvas: c}
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q (must be one of: %v)", o.Format, Formats())
	}

	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "encode %s", o.Format)
	}
	return nil
}
