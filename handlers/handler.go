// Package handlers implements the JSON API.
package handlers

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/reports"
	"github.com/Mukhsinh/manajemenresiko-sub007/store"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
	"github.com/Mukhsinh/manajemenresiko-sub007/websocket"
)

// Publisher receives change events after successful writes.
type Publisher interface {
	Publish(orgID primitive.ObjectID, ev websocket.Event)
}

type Handler struct {
	store   store.Store
	signer  *utils.TokenSigner
	events  Publisher
	reports *reports.Builder
	log     *zap.Logger
	started time.Time
	version string
}

func New(st store.Store, signer *utils.TokenSigner, events Publisher, log *zap.Logger) *Handler {
	return &Handler{
		store:   st,
		signer:  signer,
		events:  events,
		reports: reports.NewBuilder(st),
		log:     log,
		started: time.Now(),
		version: "1.0.0",
	}
}
