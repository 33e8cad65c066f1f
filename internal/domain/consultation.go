package domain

// Session holds one user's interactive state. The consultation history lives
// in a ConsultationStore keyed by the session ID.
type Session struct {
	ID               SessionID
	SelectedLanguage Language
	CreatedAt        Timestamp
	UpdatedAt        Timestamp
}

// ConsultationRecord is one logged question/response exchange. Records are
// never modified after they are appended.
type ConsultationRecord struct {
	ID        ConsultationID
	SessionID SessionID
	Seq       int // position in the session history, 0-based
	Type      ConsultationType
	Question  string
	Response  string
	Language  Language // language in effect when the request was submitted
	CreatedAt Timestamp
}

// Image is a raw uploaded picture plus its sniffed media type.
type Image struct {
	Data     []byte
	MimeType string
}
