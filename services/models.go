package services

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

// AuthResult is the data of a successful login or registration.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type PolicyStatus string

const (
	PolicyActive    PolicyStatus = "active"
	PolicyPending   PolicyStatus = "pending"
	PolicyExpired   PolicyStatus = "expired"
	PolicyCancelled PolicyStatus = "cancelled"
)

type Policy struct {
	ID             string          `json:"id"`
	PolicyNumber   string          `json:"policyNumber"`
	Type           string          `json:"type"`
	Status         PolicyStatus    `json:"status"`
	HolderID       string          `json:"holderId"`
	Premium        decimal.Decimal `json:"premium"`
	CoverageAmount decimal.Decimal `json:"coverageAmount"`
	Deductible     decimal.Decimal `json:"deductible"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
}

type PolicyInput struct {
	Type           string          `json:"type"`
	CoverageAmount decimal.Decimal `json:"coverageAmount"`
	Deductible     decimal.Decimal `json:"deductible"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
}

type PolicyFilter struct {
	Status PolicyStatus
	Type   string
	Search string
}

type ClaimStatus string

const (
	ClaimSubmitted   ClaimStatus = "submitted"
	ClaimUnderReview ClaimStatus = "under_review"
	ClaimApproved    ClaimStatus = "approved"
	ClaimRejected    ClaimStatus = "rejected"
	ClaimPaid        ClaimStatus = "paid"
)

type Claim struct {
	ID             string           `json:"id"`
	ClaimNumber    string           `json:"claimNumber"`
	PolicyID       string           `json:"policyId"`
	Status         ClaimStatus      `json:"status"`
	Description    string           `json:"description"`
	IncidentDate   time.Time        `json:"incidentDate"`
	ClaimedAmount  decimal.Decimal  `json:"claimedAmount"`
	ApprovedAmount *decimal.Decimal `json:"approvedAmount,omitempty"`
	Documents      []Document       `json:"documents,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

type ClaimInput struct {
	PolicyID      string          `json:"policyId"`
	Description   string          `json:"description"`
	IncidentDate  time.Time       `json:"incidentDate"`
	ClaimedAmount decimal.Decimal `json:"claimedAmount"`
}

type ClaimUpdate struct {
	Description   *string          `json:"description,omitempty"`
	ClaimedAmount *decimal.Decimal `json:"claimedAmount,omitempty"`
}

type ClaimFilter struct {
	Status   ClaimStatus
	PolicyID string
}

type Document struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}
