package models

import "time"

// Thread is a private conversation between a post owner and one respondent.
// Its ID is deterministic: postID + "_" + responderUID. That is what lets two
// uncoordinated clients converge on the same conversation without a central
// allocator: recomputing the ID for the same inputs always names the same
// document.
//
// A post owner can hold many threads (one per respondent); a respondent has
// exactly one thread per post. The owner/responder pairing never changes
// after creation; the document is deleted only by blocking teardown.
type Thread struct {
	ID                  string    `bson:"_id" json:"id"`
	PostID              string    `bson:"post_id" json:"post_id"`
	OwnerUID            string    `bson:"owner_uid" json:"owner_uid"`
	OwnerEmail          string    `bson:"owner_email" json:"owner_email"`
	ResponderUID        string    `bson:"responder_uid" json:"responder_uid"`
	ResponderEmail      string    `bson:"responder_email" json:"responder_email"`
	Participants        []string  `bson:"participants" json:"participants"`
	LastMessageAt       time.Time `bson:"last_message_at" json:"last_message_at"`
	LastMessagePreview  string    `bson:"last_message_preview" json:"last_message_preview"`
	LastSenderUID       string    `bson:"last_sender_uid" json:"last_sender_uid"`
	OwnerLastReadAt     time.Time `bson:"owner_last_read_at" json:"owner_last_read_at"`
	ResponderLastReadAt time.Time `bson:"responder_last_read_at" json:"responder_last_read_at"`
	UpdatedAt           time.Time `bson:"updated_at" json:"updated_at"`
}

// HasParticipant reports membership regardless of owner/responder order.
func (t *Thread) HasParticipant(uid string) bool {
	for _, p := range t.Participants {
		if p == uid {
			return true
		}
	}
	return false
}
