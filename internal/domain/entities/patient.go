package entities

import "time"

// Patient is the read-only patient record consumed by the summary pipeline
type Patient struct {
	PatientID int64      `json:"patient_id"`
	Name      string     `json:"name"`
	DOB       *time.Time `json:"dob,omitempty"`
	Gender    string     `json:"gender"`
	MRN       *int64     `json:"mrn,omitempty"`
	Address   string     `json:"address"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`

	// XMLData is the raw intake (H&P) document. Only administrator prompts read it.
	XMLData *string `json:"xml_data,omitempty"`
}

// HasXMLData reports whether the patient carries a non-empty intake document
func (p *Patient) HasXMLData() bool {
	return p != nil && p.XMLData != nil && *p.XMLData != ""
}
