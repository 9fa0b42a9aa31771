package gateway

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pardaaf/backoffice/pkg/imaging"
	"github.com/pardaaf/backoffice/pkg/token"
)

// Image envelope statuses carried in the image_status form field.
const (
	imageUnchanged = "unchanged"
	imageUpdate    = "update"
	imageRemove    = "remove"
)

// imageUpdateSQL persists a rendition URL per kind. The statements are
// kind-specific on purpose: tenant schemas are otherwise opaque to the
// gateway.
var imageUpdateSQL = map[string]string{
	"product": `UPDATE products SET image_url = $1 WHERE code = $2`,
	"roll":    `UPDATE rolls SET image_url = $1 WHERE code = $2`,
	"entity":  `UPDATE entities SET image_url = $1 WHERE code = $2`,
	"user":    `UPDATE users SET avatar_url = $1 WHERE code = $2`,
}

// processImage applies the request's image envelope for the entity that
// was just written. Returns the persisted URL for update, "" otherwise.
func (s *Service) processImage(r *http.Request, kind, code string) (string, error) {
	status := r.FormValue("image_status")
	switch status {
	case "", imageUnchanged:
		return "", nil
	case imageUpdate:
		return s.updateImage(r, kind, code)
	case imageRemove:
		return "", s.removeImage(r, kind, code)
	default:
		return "", fmt.Errorf("%w: unknown image_status %q", ErrBadRequest, status)
	}
}

func (s *Service) updateImage(r *http.Request, kind, code string) (string, error) {
	file, _, err := r.FormFile("image")
	if err != nil {
		return "", fmt.Errorf("%w: image file is required for status update", ErrBadRequest)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	// A header-only size check rejects oversized uploads before they wait
	// on a transcoder slot.
	width, height, err := imaging.Dimensions(data)
	if err != nil {
		return "", err
	}
	if width > imaging.MaxDimension || height > imaging.MaxDimension {
		return "", imaging.ErrTooLarge
	}

	// Transcoding is CPU-bound; the transcoder gates how many conversions
	// run at once so uploads cannot starve the process.
	rendition, err := s.images.Transcode(r.Context(), data)
	if err != nil {
		return "", err
	}

	principal, _ := token.PrincipalFromContext(r.Context())
	path := fmt.Sprintf("%s/%s/%s/pardaaf-%s.%s",
		s.cfg.Namespace, principal.Tenant, kind, code, imaging.Extension)

	baseURL, err := s.blobs.Save(r.Context(), path, rendition, "image/webp")
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s?v=%d", baseURL, time.Now().Unix())

	if err := s.exec(r.Context(), imageUpdateSQL[kind], url, code); err != nil {
		return "", err
	}
	return url, nil
}

func (s *Service) removeImage(r *http.Request, kind, code string) error {
	principal, _ := token.PrincipalFromContext(r.Context())
	path := fmt.Sprintf("%s/%s/%s/pardaaf-%s.%s",
		s.cfg.Namespace, principal.Tenant, kind, code, imaging.Extension)

	if err := s.blobs.Delete(r.Context(), path); err != nil {
		return err
	}
	return s.exec(r.Context(), imageUpdateSQL[kind], nil, code)
}
