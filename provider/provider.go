package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/algo-ew/catalog"
	"github.com/cwbudde/algo-ew/spectrum"
)

// DefaultKeyTemplate locates aspcapStar files below their field directory.
const DefaultKeyTemplate = "{location}/aspcapStar-{object}.fits"

// ErrNotFound reports that the archive holds no spectrum for an ID.
var ErrNotFound = errors.New("provider: spectrum not found")

// ErrDecode wraps codec failures.
var ErrDecode = errors.New("provider: cannot decode spectrum")

// Provider supplies the spectrum for a catalog identifier.
type Provider interface {
	Fetch(ctx context.Context, id catalog.ID) (*spectrum.Spectrum, error)
}

// Codec decodes one spectrum file.
type Codec interface {
	Decode(r io.Reader) (*spectrum.Spectrum, error)
}

// Key expands the {location} and {object} placeholders of template. An
// empty template selects DefaultKeyTemplate.
func Key(template string, id catalog.ID) string {
	if template == "" {
		template = DefaultKeyTemplate
	}

	return strings.NewReplacer("{location}", id.Location, "{object}", id.Object).Replace(template)
}

func decode(c Codec, key string, data []byte) (*spectrum.Spectrum, error) {
	s, err := c.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, ErrDecode) {
			return nil, fmt.Errorf("%s: %w", key, err)
		}

		return nil, fmt.Errorf("%s: %w: %w", key, ErrDecode, err)
	}

	return s, nil
}

// CodecFor returns the codec registered under name: "fits" (the
// default) or "text".
func CodecFor(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "fits":
		return NewFITS(), nil
	case "text", "txt":
		return Text{}, nil
	default:
		return nil, fmt.Errorf("provider: unknown codec %q", name)
	}
}
