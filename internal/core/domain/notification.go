package domain

// Notification is an outbound message handed to the e-mail collaborator.
type Notification struct {
	ID      string
	To      string
	Subject string
	Body    string
	HTML    bool
}
