// Package store is the persistence collaborator for the fallback
// socket-originated message path. Signaling never waits on it.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	SenderID   string             `bson:"senderId" json:"senderId"`
	ReceiverID string             `bson:"receiverId" json:"receiverId"`
	Text       string             `bson:"text,omitempty" json:"text,omitempty"`
	Image      string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type MessageStore interface {
	SaveMessage(ctx context.Context, msg *Message) error
	Close(ctx context.Context) error
}

// NoopStore is used when persistence is not configured.
type NoopStore struct{}

func (NoopStore) SaveMessage(context.Context, *Message) error { return nil }
func (NoopStore) Close(context.Context) error                 { return nil }
