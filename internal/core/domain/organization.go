package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Plan string

const (
	PlanFree         Plan = "free"
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// PlanLimits bounds an organization's API usage. MaxChains -1 means no limit.
type PlanLimits struct {
	RequestsPerHour int
	MaxChains       int
}

func (p Plan) Limits() PlanLimits {
	switch p {
	case PlanStarter:
		return PlanLimits{RequestsPerHour: 1000, MaxChains: 50}
	case PlanProfessional:
		return PlanLimits{RequestsPerHour: 10000, MaxChains: -1}
	case PlanEnterprise:
		return PlanLimits{RequestsPerHour: 100000, MaxChains: -1}
	default:
		return PlanLimits{RequestsPerHour: 100, MaxChains: 5}
	}
}

// Organization is the tenant owning chains and API credentials. Core logic
// only reads it: plan enforcement and billing live outside the validator.
type Organization struct {
	ID      string
	Name    string
	Slug    string
	OwnerID string
	APIKey  string
	Plan    Plan
	// WebhookURL, when set, receives signed notifications for accepted
	// scans on the organization's chains.
	WebhookURL    string
	WebhookSecret string
	Active        bool
	CreatedAt     time.Time
}

func NewOrganization(name, slug, ownerID string) (*Organization, error) {
	apiKey, err := NewAPIKey()
	if err != nil {
		return nil, err
	}
	return &Organization{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      slug,
		OwnerID:   ownerID,
		APIKey:    apiKey,
		Plan:      PlanFree,
		Active:    true,
		CreatedAt: time.Now(),
	}, nil
}

// NewAPIKey produces an opaque credential from a CSPRNG.
func NewAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return "mk_" + hex.EncodeToString(buf), nil
}
