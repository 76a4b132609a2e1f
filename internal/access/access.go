// Package access centralizes the authorization decisions for documents as
// pure functions over (document, requester). Every entry point that touches a
// document goes through these instead of re-deriving the rules inline.
package access

import "notesapi/internal/model"

// CanView reports whether the requester may see a document's file bytes.
// Approved documents are public, including to anonymous requesters. Pending
// and rejected documents are visible only to their uploader and to admins.
func CanView(doc *model.Document, r *model.Requester) bool {
	if doc.Status == model.StatusApproved {
		return true
	}
	if r == nil {
		return false
	}
	return r.ID == doc.UploaderID || r.IsAdmin()
}

// CanDelete reports whether the requester may destroy a document. Only the
// uploader and admins qualify; anonymous requesters never do.
func CanDelete(doc *model.Document, r *model.Requester) bool {
	if r == nil {
		return false
	}
	return r.ID == doc.UploaderID || r.IsAdmin()
}
