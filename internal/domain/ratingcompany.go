package domain

import "github.com/google/uuid"

// WebsiteField describes one data point scraped from a rating company's
// official site. The field set is replaced wholesale on update.
type WebsiteField struct {
	Name            I18NString `json:"name"`
	CrawlerSelector string     `json:"crawlerSelector"`
}

// RatingCompany is a card grading company. Scores is the closed list of
// grades the company issues; rated-card facets project entities from this
// aggregate by id.
type RatingCompany struct {
	ID                    uuid.UUID
	Name                  string
	Scores                []string
	OfficialWebsiteURL    string
	OfficialWebsiteFields []WebsiteField
	Audit                 AuditMetadata
}
