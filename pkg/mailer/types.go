package mailer

// Address is a named email address.
type Address struct {
	Name  string
	Email string
}

// String formats the address in RFC 5322 form.
// Returns "Name <email>" if a name is present, otherwise just the email.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}

// Attachment is a file carried with an email.
type Attachment struct {
	Filename string
	Content  []byte // raw bytes; providers base64-encode as required
}

// Email is a fully-prepared message ready for dispatch.
type Email struct {
	From        Address
	ReplyTo     *Address
	Subject     string
	HTML        string
	To          []string
	Tags        []string
	Attachments []Attachment
}
