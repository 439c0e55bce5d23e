package blog

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/iacol-backend/internal/media"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/google/uuid"
)

// Slot names one of the five image positions of a post.
type Slot string

const (
	SlotHero         Slot = "hero_image"
	SlotProblem      Slot = "problem_image"
	SlotAgentDiagram Slot = "agent_diagram_image"
	SlotCase         Slot = "case_image"
	SlotOptionalIcon Slot = "optional_icon_image"
)

// Slots lists every slot in page order.
var Slots = []Slot{SlotHero, SlotProblem, SlotAgentDiagram, SlotCase, SlotOptionalIcon}

func (s Slot) dir() string {
	switch s {
	case SlotHero:
		return "blog/hero"
	case SlotProblem:
		return "blog/problem"
	case SlotAgentDiagram:
		return "blog/diagram"
	case SlotCase:
		return "blog/case"
	default:
		return "blog/icon"
	}
}

// ImageInput is the URL or base64 source of one slot. Base64 wins when both are set.
type ImageInput struct {
	URL    string
	Base64 string
}

func (i ImageInput) empty() bool {
	return strings.TrimSpace(i.URL) == "" && strings.TrimSpace(i.Base64) == ""
}

// slotFields returns pointers to the stored path and source URL of a slot.
func slotFields(p *models.BlogPost, s Slot) (path, source **string) {
	switch s {
	case SlotHero:
		return &p.HeroImagePath, &p.HeroImageURL
	case SlotProblem:
		return &p.ProblemImagePath, &p.ProblemImageURL
	case SlotAgentDiagram:
		return &p.AgentDiagramImagePath, &p.AgentDiagramImageURL
	case SlotCase:
		return &p.CaseImagePath, &p.CaseImageURL
	default:
		return &p.OptionalIconImagePath, &p.OptionalIconImageURL
	}
}

type decodedImage struct {
	data []byte
	ext  string
}

// decodeDataURI accepts "data:image/<ext>;base64,<payload>" or a bare payload.
// The encoded length is checked before decoding.
func decodeDataURI(raw string, maxBytes int64) (*decodedImage, error) {
	header := ""
	payload := strings.TrimSpace(raw)
	if i := strings.Index(payload, ","); i >= 0 {
		header, payload = payload[:i], payload[i+1:]
	}
	if float64(len(payload)) > float64(maxBytes)*1.4 {
		return nil, fmt.Errorf("La imagen en base64 es demasiado grande")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("Error procesando imagen base64: %v", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("La imagen en base64 supera el tamaño permitido (%dMB)", maxBytes>>20)
	}

	ext := "png"
	if _, rest, ok := strings.Cut(header, "data:image/"); ok {
		ext, _, _ = strings.Cut(rest, ";")
		ext = strings.ToLower(ext)
	}
	if _, ok := media.ContentTypeForPath("image." + ext); !ok {
		return nil, fmt.Errorf("Formato no permitido. Formatos válidos: %s", media.AllowedTypesDescription())
	}
	return &decodedImage{data: data, ext: ext}, nil
}

func imageName(s Slot, postID uuid.UUID, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", s, postID, at.UTC().Format("20060102_150405"), ext)
}

type imageFetcher interface {
	Fetch(ctx context.Context, rawURL, dir string) (string, error)
}
