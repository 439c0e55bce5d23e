package models

import (
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogPost is a structured marketing article.
type BlogPost struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Title           string             `gorm:"column:title;not null"`
	Slug            string             `gorm:"column:slug;not null;uniqueIndex"`
	IsPublished     bool               `gorm:"column:is_published;not null;index"`
	Category        enums.BlogCategory `gorm:"column:category;type:text;not null"`
	Excerpt         string             `gorm:"column:excerpt;not null"`
	MetaDescription string             `gorm:"column:meta_description;not null"`

	ProblemSection          string `gorm:"column:problem_section;not null"`
	WhyAutomateSection      string `gorm:"column:why_automate_section;not null"`
	SalesAngleSection       string `gorm:"column:sales_angle_section;not null"`
	HowItWorksSection       string `gorm:"column:how_it_works_section;not null"`
	BenefitsSection         string `gorm:"column:benefits_section;not null"`
	HypotheticalCaseSection string `gorm:"column:hypothetical_case_section;not null"`
	FinalCTASection         string `gorm:"column:final_cta_section;not null"`

	HeroImagePath         *string `gorm:"column:hero_image_path"`
	HeroImageURL          *string `gorm:"column:hero_image_url"`
	ProblemImagePath      *string `gorm:"column:problem_image_path"`
	ProblemImageURL       *string `gorm:"column:problem_image_url"`
	AgentDiagramImagePath *string `gorm:"column:agent_diagram_image_path"`
	AgentDiagramImageURL  *string `gorm:"column:agent_diagram_image_url"`
	CaseImagePath         *string `gorm:"column:case_image_path"`
	CaseImageURL          *string `gorm:"column:case_image_url"`
	OptionalIconImagePath *string `gorm:"column:optional_icon_image_path"`
	OptionalIconImageURL  *string `gorm:"column:optional_icon_image_url"`

	CreatedByKeyID *uuid.UUID `gorm:"column:created_by_key_id;type:uuid"`
	PublishedDate  time.Time  `gorm:"column:published_date;autoCreateTime;index"`
	UpdatedDate    time.Time  `gorm:"column:updated_date;autoUpdateTime"`
}

func (p *BlogPost) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
