// Package review implements the multi-party review and approval workflow for
// a video.
//
// A review is a State snapshot: one Session plus its Participants. Every
// operation takes a State and returns a new one without touching its input,
// so the hosting layer decides how the result is persisted.
//
// Session status moves pending -> approved | rejected | changes_requested.
// Approved and rejected are terminal; Supersede opens a fresh pending session
// in their place. changes_requested returns to pending only through an
// explicit Acknowledge by the owner. Only participants with the approver role
// gate the session outcome: an approver rejection wins immediately, an
// approver change request pauses the session, and the session approves once
// the number of approving approvers reaches RequiredApprovers. Reviewers
// record their decision without moving the session.
//
// Each participant records at most one decision per session. ResetParticipant
// clears it so the participant can vote again.
package review
