package summary

import (
	"regexp"
	"strings"
)

// ClinicalSections holds the labeled sections found in a patient's intake
// document. A nil field means the section was not present.
type ClinicalSections struct {
	Diagnoses   *string
	Medications *string
	Allergies   *string
	VitalSigns  *string
}

// Empty reports whether no section was found
func (s ClinicalSections) Empty() bool {
	return s.Diagnoses == nil && s.Medications == nil && s.Allergies == nil && s.VitalSigns == nil
}

var (
	diagnosesPattern   = sectionPattern("diagnoses")
	medicationsPattern = sectionPattern("medications")
	allergiesPattern   = sectionPattern("allergies")
	vitalSignsPattern  = sectionPattern("vital_signs")
)

// (?is): case-insensitive, dot matches newline; lazy body so the first
// closing tag ends the section
func sectionPattern(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<` + tag + `>(.*?)</` + tag + `>`)
}

// ExtractClinicalSections pulls the diagnoses, medications, allergies and
// vital signs out of doc. It never fails; missing, malformed or empty tag
// pairs simply leave the section nil.
func ExtractClinicalSections(doc string) ClinicalSections {
	if doc == "" {
		return ClinicalSections{}
	}
	return ClinicalSections{
		Diagnoses:   findSection(diagnosesPattern, doc),
		Medications: findSection(medicationsPattern, doc),
		Allergies:   findSection(allergiesPattern, doc),
		VitalSigns:  findSection(vitalSignsPattern, doc),
	}
}

func findSection(re *regexp.Regexp, doc string) *string {
	m := re.FindStringSubmatch(doc)
	if m == nil {
		return nil
	}
	content := strings.TrimSpace(m[1])
	if content == "" {
		// an empty tag pair carries nothing worth rendering
		return nil
	}
	return &content
}
