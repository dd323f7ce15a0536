package entities

import "time"

// FormType tags the kind of visit a form documents
type FormType string

const (
	FormTypePTVIS  FormType = "PTVIS"  // Physical Therapy Visit
	FormTypePTEVAL FormType = "PTEVAL" // Physical Therapy Evaluation
	FormTypeSOC    FormType = "SOC"    // Start of Care
	FormTypeRN     FormType = "RN"     // Registered Nurse
	FormTypeDC     FormType = "DC"     // Discharge
)

// IsValid checks if the form type is a known visit type
func (t FormType) IsValid() bool {
	switch t {
	case FormTypePTVIS, FormTypePTEVAL, FormTypeSOC, FormTypeRN, FormTypeDC:
		return true
	}
	return false
}

// FieldAnswer is one answered question on a form
type FieldAnswer struct {
	Value               interface{} `json:"value"`
	QuestionDescription string      `json:"question_description,omitempty"`
}

// IsBlank reports whether the answer carries no value (null or empty string).
// Zero values such as 0 or false are real answers.
func (a FieldAnswer) IsBlank() bool {
	if a.Value == nil {
		return true
	}
	if s, ok := a.Value.(string); ok && s == "" {
		return true
	}
	return false
}

// SurveyData maps form type -> category -> field name -> answer
type SurveyData map[string]map[string]map[string]FieldAnswer

// Form is the read-only visit form consumed by the summary pipeline
type Form struct {
	FormID     int64      `json:"form_id"`
	PatientID  int64      `json:"patient_id"`
	FormDate   time.Time  `json:"form_date"`
	FormType   FormType   `json:"form_type"`
	SurveyData SurveyData `json:"survey_data"`
}
