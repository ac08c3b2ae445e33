package place

import (
	"encoding/json"
	"strings"
)

// providerTokenMarker tags a stored image string as a provider photo
// reference rather than a fetchable URL. The marker exists only at the
// storage/wire edge; inside the core an ImageRef is always the tagged form.
const providerTokenMarker = "gp:"

type ImageKind int

const (
	ImageNone ImageKind = iota
	ImageDirect
	ImageProviderToken
)

// ImageRef is either a direct display URL or an opaque provider photo token
// that must be resolved through the photo proxy. A token is never handed to
// the client as a display URL.
type ImageRef struct {
	kind  ImageKind
	value string
}

func DirectImage(url string) ImageRef {
	url = strings.TrimSpace(url)
	if url == "" {
		return ImageRef{}
	}
	return ImageRef{kind: ImageDirect, value: url}
}

func ProviderImage(token string) ImageRef {
	token = strings.TrimSpace(token)
	if token == "" {
		return ImageRef{}
	}
	return ImageRef{kind: ImageProviderToken, value: token}
}

// DecodeImageRef interprets a raw stored string: marker prefix means token,
// anything else is a direct URL.
func DecodeImageRef(raw string) ImageRef {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ImageRef{}
	}
	if tok := strings.TrimPrefix(raw, providerTokenMarker); tok != raw {
		return ProviderImage(tok)
	}
	return DirectImage(raw)
}

func (r ImageRef) Kind() ImageKind { return r.kind }

func (r ImageRef) IsZero() bool { return r.kind == ImageNone }

// Token returns the provider token, or "" when this is not a token ref.
func (r ImageRef) Token() string {
	if r.kind != ImageProviderToken {
		return ""
	}
	return r.value
}

// URL returns the direct URL, or "" when this is not a direct ref.
func (r ImageRef) URL() string {
	if r.kind != ImageDirect {
		return ""
	}
	return r.value
}

// Encode returns the storage form: the raw URL, or the marker-prefixed token.
func (r ImageRef) Encode() string {
	switch r.kind {
	case ImageDirect:
		return r.value
	case ImageProviderToken:
		return providerTokenMarker + r.value
	default:
		return ""
	}
}

// DisplayURL is the single boundary that turns an ImageRef into something a
// client may render. Token refs come back as proxy paths, never raw tokens.
func (r ImageRef) DisplayURL(proxyPathPrefix string) string {
	switch r.kind {
	case ImageDirect:
		return r.value
	case ImageProviderToken:
		return strings.TrimSuffix(proxyPathPrefix, "/") + "/" + r.value
	default:
		return ""
	}
}

// JSON: the wire form matches the storage form so existing clients keep
// sending plain strings.
func (r ImageRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Encode())
}

func (r *ImageRef) UnmarshalJSON(blob []byte) error {
	var raw string
	if err := json.Unmarshal(blob, &raw); err != nil {
		return err
	}
	*r = DecodeImageRef(raw)
	return nil
}
