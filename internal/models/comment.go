package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment document in the "comentarios" collection.
// Comments live in their own collection, keyed by (articulo, userId) with
// a unique compound index so the store itself rejects a second comment
// from the same user on the same article.
type Comment struct {
	OID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Article     string             `bson:"articulo" json:"-"`
	ID          int64              `bson:"id" json:"id"`
	Author      string             `bson:"autor" json:"autor"`
	Text        string             `bson:"texto" json:"texto"`
	UserID      string             `bson:"userId" json:"userId"`
	SubmittedAt time.Time          `bson:"fecha" json:"fecha"`
	OriginIP    string             `bson:"ip" json:"ip"`
}

// Field limits for comment submission, measured after trimming
const (
	MaxAuthorLen = 50
	MaxTextLen   = 500
)

// UpdateOutcome mirrors the matched/modified counts of the article stamp
// update performed alongside a comment insert.
type UpdateOutcome struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

// CommentPage is one page of an article's comments together with the
// article-level counters the listing endpoint reports.
type CommentPage struct {
	Article       string
	Comments      []*Comment
	Pagination    *Pagination
	TotalVotes    int
	LastUpdatedAt time.Time
}
