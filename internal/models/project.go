package models

import "time"

// Project is a stored block-programming project, keyed by (user, name).
// SnapData holds the combined source+media payload served back verbatim.
type Project struct {
	User      string    `bson:"user"`
	Name      string    `bson:"name"`
	SnapData  string    `bson:"snapdata"`
	Notes     string    `bson:"notes,omitempty"`
	Thumbnail string    `bson:"thumbnail,omitempty"`
	Origin    string    `bson:"origin,omitempty"`
	Public    bool      `bson:"public"`
	Updated   time.Time `bson:"updated"`
}

// ProjectFields are the attributes a save overwrites unconditionally.
// The public flag is deliberately absent: it defaults to false on insert
// and is only ever changed by publish/unpublish.
type ProjectFields struct {
	SnapData  string
	Notes     string
	Thumbnail string
	Origin    string
	Updated   time.Time
}
