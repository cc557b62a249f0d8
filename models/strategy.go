package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PlanDraft    = "Draft"
	PlanActive   = "Aktif"
	PlanFinished = "Selesai"
)

// RencanaStrategis is a multi-year strategic plan.
type RencanaStrategis struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Code           string             `bson:"code" json:"code"`
	Name           string             `bson:"name" json:"name"`
	StartYear      int                `bson:"startYear" json:"startYear"`
	EndYear        int                `bson:"endYear" json:"endYear"`
	Vision         string             `bson:"vision,omitempty" json:"vision,omitempty"`
	Mission        string             `bson:"mission,omitempty" json:"mission,omitempty"`
	Status         string             `bson:"status" json:"status"`
	CreatedBy      primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

const (
	SwotStrength    = "Strength"
	SwotWeakness    = "Weakness"
	SwotOpportunity = "Opportunity"
	SwotThreat      = "Threat"
)

var SwotCategories = []string{SwotStrength, SwotWeakness, SwotOpportunity, SwotThreat}

// Balanced-scorecard perspectives.
const (
	PerspectiveStakeholder = "ES"  // eksternal stakeholder
	PerspectiveProcess     = "IBP" // internal business process
	PerspectiveLearning    = "LG"  // learning & growth
	PerspectiveFinancial   = "Fin"
)

var Perspectives = []string{PerspectiveStakeholder, PerspectiveProcess, PerspectiveLearning, PerspectiveFinancial}

type SwotItem struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrganizationID     primitive.ObjectID  `bson:"organizationId" json:"organizationId"`
	RencanaStrategisID *primitive.ObjectID `bson:"rencanaStrategisId,omitempty" json:"rencanaStrategisId,omitempty"`
	WorkUnitID         primitive.ObjectID  `bson:"workUnitId" json:"workUnitId"`
	Year               int                 `bson:"year" json:"year"`
	Category           string              `bson:"category" json:"category"`
	Perspective        string              `bson:"perspective,omitempty" json:"perspective,omitempty"`
	Description        string              `bson:"description" json:"description"`
	Weight             int                 `bson:"weight" json:"weight"`
	Rank               int                 `bson:"rank" json:"rank"`
	Score              int                 `bson:"score" json:"score"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

var TowsTypes = []string{"SO", "ST", "WO", "WT"}

type TowsStrategy struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID     primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	RencanaStrategisID primitive.ObjectID `bson:"rencanaStrategisId" json:"rencanaStrategisId"`
	Type               string             `bson:"type" json:"type"`
	Statement          string             `bson:"statement" json:"statement"`
	Priority           int                `bson:"priority,omitempty" json:"priority,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type SasaranStrategi struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrganizationID     primitive.ObjectID  `bson:"organizationId" json:"organizationId"`
	RencanaStrategisID primitive.ObjectID  `bson:"rencanaStrategisId" json:"rencanaStrategisId"`
	TowsStrategyID     *primitive.ObjectID `bson:"towsStrategyId,omitempty" json:"towsStrategyId,omitempty"`
	Perspective        string              `bson:"perspective" json:"perspective"`
	Statement          string              `bson:"statement" json:"statement"`
	Weight             int                 `bson:"weight" json:"weight"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}
