package summary

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/visitnote/visit-summary/internal/domain/entities"
)

const (
	unknownValue = "Unknown"
	dateLayout   = "2006-01-02"
)

const fieldClinicianPreamble = `You are a medical AI assistant helping field clinicians prepare for patient visits.

Your task is to create a concise, mobile-friendly summary of this patient's visit data. The summary should be:
- Approximately 400 words or less
- Focused on key clinical information needed before a visit
- Easy to read on a mobile device
- Highlight important findings, medications, and care needs
- Use clear, professional medical language
`

const fieldClinicianClosing = `Please provide a structured summary that includes:
1. Key patient demographics and visit context
2. Primary clinical findings and assessments
3. Current medications and treatments
4. Functional status and mobility
5. Care needs and recommendations
6. Any alerts or important notes

Format the response as a clean, scannable summary suitable for quick review before a patient visit.`

const administratorPreamble = `You are a medical AI assistant helping quality administrators review documentation for insurance claims and compliance.

Your task is to create a comprehensive, detailed analysis of this patient's visit documentation. The analysis should be:
- Thorough and detailed (800-1200 words)
- Focused on documentation quality and completeness
- Identify potential issues for insurance claims
- Highlight compliance concerns
- Provide recommendations for documentation improvement
`

const administratorClosing = `Please provide a structured analysis that includes:
1. Documentation completeness assessment
2. Clinical accuracy and consistency review
3. Insurance claim readiness evaluation
4. Compliance and regulatory considerations
5. Risk factors and documentation gaps
6. Specific recommendations for improvement
7. Quality metrics and scoring

Format the response as a detailed report suitable for quality assurance review.`

const referenceInstruction = `Cross-reference the REFERENCE SUMMARY above against the FORM DATA. Call out any discrepancies between the two, information missing from the visit form, and anything that poses a compliance risk.`

// PromptBuilder renders the completion prompt for a form. Output depends only
// on its inputs; the logger only reports unknown roles and form types.
type PromptBuilder struct {
	logger *zap.Logger
}

// NewPromptBuilder creates a prompt builder
func NewPromptBuilder(logger *zap.Logger) *PromptBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromptBuilder{logger: logger.Named("prompt")}
}

// Build renders the prompt for role. An unknown role gets the field
// clinician template.
func (b *PromptBuilder) Build(form *entities.Form, patient *entities.Patient, role entities.Role) string {
	if form == nil {
		form = &entities.Form{}
	}
	if patient == nil {
		patient = &entities.Patient{}
	}
	if form.FormType != "" && !form.FormType.IsValid() {
		b.logger.Warn("Unknown form type, rendering prompt as-is",
			zap.String("form_type", string(form.FormType)),
			zap.Int64("form_id", form.FormID),
		)
	}

	switch role {
	case entities.RoleQualityAdministrator:
		return administratorPrompt(form, patient)
	case entities.RoleFieldClinician:
		return fieldClinicianPrompt(form, patient)
	default:
		b.logger.Warn("Unknown role, falling back to field clinician prompt",
			zap.String("role", role.String()),
			zap.Int64("form_id", form.FormID),
		)
		return fieldClinicianPrompt(form, patient)
	}
}

func fieldClinicianPrompt(form *entities.Form, patient *entities.Patient) string {
	var sb strings.Builder
	sb.WriteString(fieldClinicianPreamble)
	sb.WriteString("\n")
	writeFormContext(&sb, form, patient)
	sb.WriteString("\n")
	sb.WriteString(fieldClinicianClosing)
	return sb.String()
}

func administratorPrompt(form *entities.Form, patient *entities.Patient) string {
	var sb strings.Builder
	sb.WriteString(administratorPreamble)
	sb.WriteString("\n")
	writeFormContext(&sb, form, patient)

	if patient.HasXMLData() {
		sections := ExtractClinicalSections(*patient.XMLData)
		if !sections.Empty() {
			sb.WriteString("\n")
			writeReferenceSummary(&sb, sections)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(administratorClosing)
	return sb.String()
}

func writeFormContext(sb *strings.Builder, form *entities.Form, patient *entities.Patient) {
	sb.WriteString("PATIENT INFORMATION:\n")
	fmt.Fprintf(sb, "- Name: %s\n", orUnknown(patient.Name))
	fmt.Fprintf(sb, "- Date of Birth: %s\n", formatDate(patient.DOB))
	fmt.Fprintf(sb, "- Gender: %s\n", orUnknown(patient.Gender))
	fmt.Fprintf(sb, "- MRN: %s\n", formatMRN(patient.MRN))
	fmt.Fprintf(sb, "- Address: %s\n", orUnknown(patient.Address))
	fmt.Fprintf(sb, "- Phone: %s\n", orUnknown(patient.Phone))
	fmt.Fprintf(sb, "- Email: %s\n", orUnknown(patient.Email))

	sb.WriteString("\nVISIT INFORMATION:\n")
	fmt.Fprintf(sb, "- Form Type: %s\n", orUnknown(string(form.FormType)))
	fmt.Fprintf(sb, "- Visit Date: %s\n", formatDate(&form.FormDate))
	fmt.Fprintf(sb, "- Form ID: %d\n", form.FormID)

	sb.WriteString("\nFORM DATA:\n")
	sb.WriteString(renderFormData(form.SurveyData))
}

// renderFormData flattens survey data into indented lines, sorted at every
// level. Blank answers are skipped.
func renderFormData(data entities.SurveyData) string {
	var sb strings.Builder
	for _, formType := range sortedKeys(data) {
		fmt.Fprintf(&sb, "\n%s:\n", strings.ToUpper(formType))

		categories := data[formType]
		for _, category := range sortedKeys(categories) {
			fmt.Fprintf(&sb, "\n  %s:\n", category)

			fields := categories[category]
			for _, field := range sortedKeys(fields) {
				answer := fields[field]
				if answer.IsBlank() {
					continue
				}
				question := answer.QuestionDescription
				if question == "" {
					question = field
				}
				fmt.Fprintf(&sb, "    - %s: %s\n", question, formatValue(answer.Value))
			}
		}
	}
	return sb.String()
}

func writeReferenceSummary(sb *strings.Builder, s ClinicalSections) {
	sb.WriteString("REFERENCE SUMMARY (from the patient's intake document):\n")
	writeSection(sb, "Diagnoses", s.Diagnoses)
	writeSection(sb, "Medications", s.Medications)
	writeSection(sb, "Allergies", s.Allergies)
	writeSection(sb, "Vital Signs", s.VitalSigns)
	sb.WriteString("\n")
	sb.WriteString(referenceInstruction)
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, label string, content *string) {
	if content == nil {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n%s\n", label, *content)
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		parts := make([]string, 0, len(val))
		for _, k := range sortedKeys(val) {
			if val[k] == nil {
				continue
			}
			parts = append(parts, k+": "+formatValue(val[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(val)
	}
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return unknownValue
	}
	return t.Format(dateLayout)
}

func formatMRN(mrn *int64) string {
	if mrn == nil {
		return unknownValue
	}
	return strconv.FormatInt(*mrn, 10)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownValue
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
