package blog

import (
	"time"

	"github.com/angelmondragon/iacol-backend/internal/media"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
)

// CreateInput is the ingestion payload. Pointer text fields distinguish
// omitted from empty.
type CreateInput struct {
	Title                   string             `json:"title"`
	Category                enums.BlogCategory `json:"category"`
	Excerpt                 *string            `json:"excerpt"`
	IsPublished             bool               `json:"is_published"`
	MetaDescription         string             `json:"meta_description"`
	ProblemSection          *string            `json:"problem_section"`
	WhyAutomateSection      *string            `json:"why_automate_section"`
	SalesAngleSection       *string            `json:"sales_angle_section"`
	HowItWorksSection       *string            `json:"how_it_works_section"`
	BenefitsSection         *string            `json:"benefits_section"`
	HypotheticalCaseSection *string            `json:"hypothetical_case_section"`
	FinalCTASection         *string            `json:"final_cta_section"`

	HeroImageURL            string `json:"hero_image_url"`
	HeroImageBase64         string `json:"hero_image_base64"`
	ProblemImageURL         string `json:"problem_image_url"`
	ProblemImageBase64      string `json:"problem_image_base64"`
	AgentDiagramImageURL    string `json:"agent_diagram_image_url"`
	AgentDiagramImageBase64 string `json:"agent_diagram_image_base64"`
	CaseImageURL            string `json:"case_image_url"`
	CaseImageBase64         string `json:"case_image_base64"`
	OptionalIconImageURL    string `json:"optional_icon_image_url"`
	OptionalIconImageBase64 string `json:"optional_icon_image_base64"`
}

func (in CreateInput) image(s Slot) ImageInput {
	switch s {
	case SlotHero:
		return ImageInput{URL: in.HeroImageURL, Base64: in.HeroImageBase64}
	case SlotProblem:
		return ImageInput{URL: in.ProblemImageURL, Base64: in.ProblemImageBase64}
	case SlotAgentDiagram:
		return ImageInput{URL: in.AgentDiagramImageURL, Base64: in.AgentDiagramImageBase64}
	case SlotCase:
		return ImageInput{URL: in.CaseImageURL, Base64: in.CaseImageBase64}
	default:
		return ImageInput{URL: in.OptionalIconImageURL, Base64: in.OptionalIconImageBase64}
	}
}

// Created is the data block of a successful ingestion.
type Created struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	URL         string             `json:"url"`
	IsPublished bool               `json:"is_published"`
	Category    enums.BlogCategory `json:"category"`
	CreatedAt   time.Time          `json:"created_at"`
}

type PostSummary struct {
	ID            uuid.UUID          `json:"id"`
	Title         string             `json:"title"`
	Slug          string             `json:"slug"`
	URL           string             `json:"url"`
	Category      enums.BlogCategory `json:"category"`
	Excerpt       string             `json:"excerpt"`
	HeroImageURL  *string            `json:"hero_image_url"`
	PublishedDate time.Time          `json:"published_date"`
}

type Section struct {
	Key  string `json:"key"`
	Body string `json:"body"`
}

type PostDetail struct {
	PostSummary
	MetaDescription string           `json:"meta_description"`
	Sections        []Section        `json:"sections"`
	Images          map[Slot]*string `json:"images"`
	UpdatedDate     time.Time        `json:"updated_date"`
}

type PostPage struct {
	Posts []PostSummary   `json:"posts"`
	Meta  pagination.Meta `json:"pagination"`
}

// PostPath is the public page of a post.
func PostPath(slug string) string {
	return "/blog/" + slug + "/"
}

func imageURL(p *models.BlogPost, s Slot, mediaPrefix string) *string {
	stored, source := slotFields(p, s)
	if url := media.PublicURL(mediaPrefix, *stored); url != nil {
		return url
	}
	return *source
}

func summary(p *models.BlogPost, mediaPrefix string) PostSummary {
	return PostSummary{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		URL:           PostPath(p.Slug),
		Category:      p.Category,
		Excerpt:       p.Excerpt,
		HeroImageURL:  imageURL(p, SlotHero, mediaPrefix),
		PublishedDate: p.PublishedDate,
	}
}

func detail(p *models.BlogPost, mediaPrefix string) PostDetail {
	meta := p.MetaDescription
	if meta == "" {
		meta = p.Excerpt
	}
	images := make(map[Slot]*string, len(Slots))
	for _, s := range Slots {
		images[s] = imageURL(p, s, mediaPrefix)
	}
	return PostDetail{
		PostSummary:     summary(p, mediaPrefix),
		MetaDescription: meta,
		Sections: []Section{
			{Key: "problem", Body: p.ProblemSection},
			{Key: "why_automate", Body: p.WhyAutomateSection},
			{Key: "sales_angle", Body: p.SalesAngleSection},
			{Key: "how_it_works", Body: p.HowItWorksSection},
			{Key: "benefits", Body: p.BenefitsSection},
			{Key: "hypothetical_case", Body: p.HypotheticalCaseSection},
			{Key: "final_cta", Body: p.FinalCTASection},
		},
		Images:      images,
		UpdatedDate: p.UpdatedDate,
	}
}
