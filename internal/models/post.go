package models

import "time"

// PostStatus controls whether a post is visible on the public board.
type PostStatus string

const (
	PostStatusPublic PostStatus = "public"
	PostStatusHidden PostStatus = "hidden"
)

// Location is the approximate pin shown on the map. Fuzzing of the exact
// coordinates happens client-side before the post is created.
type Location struct {
	Lat   float64 `bson:"lat" json:"lat"`
	Lng   float64 `bson:"lng" json:"lng"`
	Label string  `bson:"label,omitempty" json:"label,omitempty"`
}

// Post is a public board entry. OwnerUID is the authorization anchor for the
// whole messaging flow: identity resolution must always read it live from
// this document, never from a cached copy.
type Post struct {
	ID          string     `bson:"_id" json:"id"`
	OwnerUID    string     `bson:"owner_uid" json:"owner_uid"`
	OwnerEmail  string     `bson:"owner_email" json:"owner_email"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description" json:"description"`
	Location    Location   `bson:"location" json:"location"`
	ImageURL    string     `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Status      PostStatus `bson:"status" json:"status"`
	IsReported  bool       `bson:"is_reported" json:"is_reported"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}
