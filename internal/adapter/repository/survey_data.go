package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/visitnote/visit-summary/internal/domain/entities"
)

// decodeSurveyData parses the stored survey JSON. Numbers are kept as
// json.Number so integers render without a decimal point. Entries that are
// not nested objects are dropped; a field that is not a {value,...} object is
// treated as a bare value.
func decodeSurveyData(raw []byte) (entities.SurveyData, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return entities.SurveyData{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode survey data: %w", err)
	}

	data := make(entities.SurveyData, len(doc))
	for formType, rawCategories := range doc {
		categories, ok := rawCategories.(map[string]interface{})
		if !ok {
			continue
		}
		out := make(map[string]map[string]entities.FieldAnswer, len(categories))
		for category, rawFields := range categories {
			fields, ok := rawFields.(map[string]interface{})
			if !ok {
				continue
			}
			answers := make(map[string]entities.FieldAnswer, len(fields))
			for name, rawField := range fields {
				answers[name] = fieldAnswer(rawField)
			}
			out[category] = answers
		}
		data[formType] = out
	}
	return data, nil
}

func fieldAnswer(raw interface{}) entities.FieldAnswer {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return entities.FieldAnswer{Value: raw}
	}
	if _, hasValue := obj["value"]; !hasValue {
		if _, hasQuestion := obj["question_description"]; !hasQuestion {
			return entities.FieldAnswer{Value: raw}
		}
	}

	answer := entities.FieldAnswer{Value: obj["value"]}
	if q, ok := obj["question_description"].(string); ok {
		answer.QuestionDescription = q
	}
	return answer
}
