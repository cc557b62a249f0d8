package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RiskOpen      = "Open"
	RiskMitigated = "Mitigated"
	RiskClosed    = "Closed"
)

// Assessment is a probability × impact rating with its derived score and level.
type Assessment struct {
	Probability int    `bson:"probability" json:"probability"`
	Impact      int    `bson:"impact" json:"impact"`
	Score       int    `bson:"score" json:"score"`
	Level       string `bson:"level" json:"level"`
}

// RiskInput is one row of the risk register.
type RiskInput struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrganizationID    primitive.ObjectID  `bson:"organizationId" json:"organizationId"`
	Code              string              `bson:"code" json:"code"`
	WorkUnitID        primitive.ObjectID  `bson:"workUnitId" json:"workUnitId"`
	CategoryID        primitive.ObjectID  `bson:"categoryId" json:"categoryId"`
	SasaranStrategiID *primitive.ObjectID `bson:"sasaranStrategiId,omitempty" json:"sasaranStrategiId,omitempty"`
	Year              int                 `bson:"year" json:"year"`
	Title             string              `bson:"title" json:"title"`
	Cause             string              `bson:"cause" json:"cause"`
	ImpactDescription string              `bson:"impactDescription" json:"impactDescription"`
	Owner             string              `bson:"owner,omitempty" json:"owner,omitempty"`
	Status            string              `bson:"status" json:"status"`
	Inherent          Assessment          `bson:"inherent" json:"inherent"`
	ExistingControls  string              `bson:"existingControls,omitempty" json:"existingControls,omitempty"`
	MitigationPlan    string              `bson:"mitigationPlan,omitempty" json:"mitigationPlan,omitempty"`
	Residual          *Assessment         `bson:"residual,omitempty" json:"residual,omitempty"`
	ResidualNotes     string              `bson:"residualNotes,omitempty" json:"residualNotes,omitempty"`
	ReviewDate        *time.Time          `bson:"reviewDate,omitempty" json:"reviewDate,omitempty"`
	CreatedBy         primitive.ObjectID  `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy         primitive.ObjectID  `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}

const (
	MonitoringOnTrack   = "On Track"
	MonitoringDelayed   = "Delayed"
	MonitoringCompleted = "Completed"
)

type MonitoringEvaluasi struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	RiskID         primitive.ObjectID `bson:"riskId" json:"riskId"`
	Period         time.Time          `bson:"period" json:"period"`
	Progress       int                `bson:"progress" json:"progress"`
	Current        Assessment         `bson:"current" json:"current"`
	Evaluation     string             `bson:"evaluation,omitempty" json:"evaluation,omitempty"`
	Status         string             `bson:"status" json:"status"`
	EvaluatedBy    primitive.ObjectID `bson:"evaluatedBy,omitempty" json:"evaluatedBy,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Peluang is an opportunity, scored like a risk.
type Peluang struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Code           string             `bson:"code" json:"code"`
	WorkUnitID     primitive.ObjectID `bson:"workUnitId" json:"workUnitId"`
	CategoryID     primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	Year           int                `bson:"year" json:"year"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Assessment     Assessment         `bson:"assessment" json:"assessment"`
	ActionPlan     string             `bson:"actionPlan,omitempty" json:"actionPlan,omitempty"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
