package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkUnit is a hospital department (unit kerja) that scopes risk and strategy records.
type WorkUnit struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Code           string             `bson:"code" json:"code"`
	Name           string             `bson:"name" json:"name"`
	Type           string             `bson:"type,omitempty" json:"type,omitempty"` // medis, penunjang, manajemen
	HeadName       string             `bson:"headName,omitempty" json:"headName,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type RiskCategory struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Code           string             `bson:"code" json:"code"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
